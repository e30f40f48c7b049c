package sqlite

const schema = `
-- Watched repositories
CREATE TABLE IF NOT EXISTS repositories (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    path TEXT UNIQUE NOT NULL,
    name TEXT NOT NULL,
    is_active BOOLEAN NOT NULL DEFAULT 1,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    last_activity DATETIME
);

CREATE INDEX IF NOT EXISTS idx_repositories_active ON repositories(is_active);

-- Work sessions
CREATE TABLE IF NOT EXISTS work_sessions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    repository_id INTEGER NOT NULL,
    branch_name TEXT NOT NULL,
    jira_issue TEXT,
    start_time DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    end_time DATETIME,
    total_minutes INTEGER NOT NULL DEFAULT 0,
    is_active BOOLEAN NOT NULL DEFAULT 1,
    jira_worklog_id TEXT,
    status TEXT NOT NULL DEFAULT 'active',
    FOREIGN KEY (repository_id) REFERENCES repositories(id)
);

CREATE INDEX IF NOT EXISTS idx_sessions_repo ON work_sessions(repository_id);
CREATE INDEX IF NOT EXISTS idx_sessions_active ON work_sessions(repository_id, is_active);

-- Per-session activity log, append-only
CREATE TABLE IF NOT EXISTS activities (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id INTEGER NOT NULL,
    activity_type TEXT NOT NULL,
    file_path TEXT,
    commit_hash TEXT,
    commit_message TEXT,
    timestamp DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    details TEXT,
    FOREIGN KEY (session_id) REFERENCES work_sessions(id)
);

CREATE INDEX IF NOT EXISTS idx_activities_session ON activities(session_id);

-- Worklog emission attempts
CREATE TABLE IF NOT EXISTS jira_worklogs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id INTEGER NOT NULL,
    jira_issue TEXT NOT NULL,
    jira_worklog_id TEXT NOT NULL DEFAULT '',
    time_spent_minutes INTEGER NOT NULL,
    description TEXT,
    sent_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    status TEXT NOT NULL DEFAULT 'sent',
    FOREIGN KEY (session_id) REFERENCES work_sessions(id)
);

CREATE INDEX IF NOT EXISTS idx_worklogs_session ON jira_worklogs(session_id);

-- Sessions that started without a derivable issue key
CREATE TABLE IF NOT EXISTS orphan_records (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id INTEGER NOT NULL,
    branch_name TEXT NOT NULL,
    total_minutes INTEGER NOT NULL DEFAULT 0,
    activities_count INTEGER NOT NULL DEFAULT 0,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    assigned_issue TEXT,
    status TEXT NOT NULL DEFAULT 'orphaned',
    FOREIGN KEY (session_id) REFERENCES work_sessions(id)
);

CREATE INDEX IF NOT EXISTS idx_orphans_status ON orphan_records(status);
`
