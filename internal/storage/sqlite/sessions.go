package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/devpeace/devpeace/internal/storage"
)

const sessionColumns = `id, repository_id, branch_name, jira_issue, start_time, end_time,
	total_minutes, is_active, jira_worklog_id, status, original_jira_status, current_jira_status`

// StartSession opens a session on a repository branch. A session without an
// issue key is created directly in the orphaned state.
func (s *Store) StartSession(ctx context.Context, repositoryID int64, branch, jiraIssue, originalStatus, currentStatus string) (int64, error) {
	status := storage.SessionActive
	if jiraIssue == "" {
		status = storage.SessionOrphaned
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO work_sessions
			(repository_id, branch_name, jira_issue, status, original_jira_status, current_jira_status)
		VALUES (?, ?, ?, ?, ?, ?)`,
		repositoryID, branch, nullString(jiraIssue), string(status),
		nullString(originalStatus), nullString(currentStatus))
	if err != nil {
		return 0, fmt.Errorf("failed to start session: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read session id: %w", err)
	}
	return id, nil
}

// EndSession closes a session in one atomic statement: the end instant and
// the accumulated minutes are computed inside the database so the duration
// is fixed exactly once. Returns the closed session, or nil when the session
// was not active.
func (s *Store) EndSession(ctx context.Context, sessionID int64) (*storage.WorkSession, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE work_sessions
		SET end_time = CURRENT_TIMESTAMP,
		    total_minutes = CAST((julianday(CURRENT_TIMESTAMP) - julianday(start_time)) * 1440 AS INTEGER),
		    is_active = 0,
		    status = ?
		WHERE id = ? AND is_active = 1`,
		string(storage.SessionCompleted), sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to end session: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read end result: %w", err)
	}
	if affected == 0 {
		return nil, nil
	}
	return s.GetSession(ctx, sessionID)
}

// GetSession returns a session by id, or nil when unknown.
func (s *Store) GetSession(ctx context.Context, sessionID int64) (*storage.WorkSession, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM work_sessions WHERE id = ?`, sessionID)
	return scanSession(row)
}

// ActiveSessionForRepo returns the repository's single active session, or
// nil when the repository is idle.
func (s *Store) ActiveSessionForRepo(ctx context.Context, repositoryID int64) (*storage.WorkSession, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+sessionColumns+` FROM work_sessions
		WHERE repository_id = ? AND is_active = 1
		ORDER BY start_time DESC LIMIT 1`, repositoryID)
	return scanSession(row)
}

// ListActiveSessions returns every active session across all repositories.
func (s *Store) ListActiveSessions(ctx context.Context) ([]*storage.WorkSession, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM work_sessions WHERE is_active = 1 ORDER BY start_time`)
	if err != nil {
		return nil, fmt.Errorf("failed to list active sessions: %w", err)
	}
	return collectSessions(rows)
}

// ListSessions returns a repository's sessions, newest first. A zero
// repositoryID lists sessions across all repositories. limit <= 0 means no
// limit.
func (s *Store) ListSessions(ctx context.Context, repositoryID int64, limit int) ([]*storage.WorkSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM work_sessions`
	var args []any
	if repositoryID > 0 {
		query += ` WHERE repository_id = ?`
		args = append(args, repositoryID)
	}
	query += ` ORDER BY start_time DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return collectSessions(rows)
}

// UpdateSessionStatuses applies a partial update of tracker-status fields.
func (s *Store) UpdateSessionStatuses(ctx context.Context, sessionID int64, patch storage.SessionPatch) error {
	var (
		sets []string
		args []any
	)
	if patch.OriginalJiraStatus != nil {
		sets = append(sets, "original_jira_status = ?")
		args = append(args, *patch.OriginalJiraStatus)
	}
	if patch.CurrentJiraStatus != nil {
		sets = append(sets, "current_jira_status = ?")
		args = append(args, *patch.CurrentJiraStatus)
	}
	if patch.JiraWorklogID != nil {
		sets = append(sets, "jira_worklog_id = ?")
		args = append(args, *patch.JiraWorklogID)
	}
	if len(sets) == 0 {
		return nil
	}

	args = append(args, sessionID)
	query := `UPDATE work_sessions SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update session statuses: %w", err)
	}
	return nil
}

func collectSessions(rows *sql.Rows) ([]*storage.WorkSession, error) {
	defer func() { _ = rows.Close() }()
	var sessions []*storage.WorkSession
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

func scanSession(row rowScanner) (*storage.WorkSession, error) {
	var (
		session                       storage.WorkSession
		jiraIssue, worklogID          sql.NullString
		originalStatus, currentStatus sql.NullString
		endTime                       sql.NullTime
		status                        string
	)
	err := row.Scan(&session.ID, &session.RepositoryID, &session.BranchName, &jiraIssue,
		&session.StartTime, &endTime, &session.TotalMinutes, &session.IsActive,
		&worklogID, &status, &originalStatus, &currentStatus)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan session: %w", err)
	}

	session.JiraIssue = jiraIssue.String
	session.JiraWorklogID = worklogID.String
	session.OriginalJiraStatus = originalStatus.String
	session.CurrentJiraStatus = currentStatus.String
	session.Status = storage.SessionStatus(status)
	if endTime.Valid {
		t := endTime.Time
		session.EndTime = &t
	}
	return &session, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
