// Package storage defines the persisted entities and the store interface the
// rest of the observer programs against.
package storage

import "time"

// SessionStatus enumerates the lifecycle states of a work session.
type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
	SessionOrphaned  SessionStatus = "orphaned"
)

// ActivityType enumerates the kinds of recorded activity.
type ActivityType string

const (
	ActivityRepoEntered   ActivityType = "repo_entered"
	ActivityBranchChanged ActivityType = "branch_changed"
	ActivityFileModified  ActivityType = "file_modified"
	ActivityCommit        ActivityType = "commit"
)

// WorklogStatus enumerates the delivery states of a worklog record.
type WorklogStatus string

const (
	WorklogSent    WorklogStatus = "sent"
	WorklogFailed  WorklogStatus = "failed"
	WorklogPending WorklogStatus = "pending"
)

// OrphanStatus enumerates the states of an orphan record.
type OrphanStatus string

const (
	OrphanUnassigned OrphanStatus = "orphaned"
	OrphanAssigned   OrphanStatus = "assigned"
)

// Repository is a watched working tree. The canonical absolute path is the
// identity; repositories are never deleted, only toggled inactive.
type Repository struct {
	ID           int64      `json:"id"`
	Path         string     `json:"path"`
	Name         string     `json:"name"`
	IsActive     bool       `json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	LastActivity *time.Time `json:"last_activity,omitempty"`
}

// WorkSession is one stretch of work on a repository branch. At most one
// session per repository is active at a time.
type WorkSession struct {
	ID                 int64         `json:"id"`
	RepositoryID       int64         `json:"repository_id"`
	BranchName         string        `json:"branch_name"`
	JiraIssue          string        `json:"jira_issue,omitempty"`
	StartTime          time.Time     `json:"start_time"`
	EndTime            *time.Time    `json:"end_time,omitempty"`
	TotalMinutes       int           `json:"total_minutes"`
	IsActive           bool          `json:"is_active"`
	JiraWorklogID      string        `json:"jira_worklog_id,omitempty"`
	Status             SessionStatus `json:"status"`
	OriginalJiraStatus string        `json:"original_jira_status,omitempty"`
	CurrentJiraStatus  string        `json:"current_jira_status,omitempty"`
}

// Activity is one append-only observation within a session.
type Activity struct {
	ID            int64        `json:"id"`
	SessionID     int64        `json:"session_id"`
	Type          ActivityType `json:"activity_type"`
	FilePath      string       `json:"file_path,omitempty"`
	CommitHash    string       `json:"commit_hash,omitempty"`
	CommitMessage string       `json:"commit_message,omitempty"`
	Timestamp     time.Time    `json:"timestamp"`
	Details       string       `json:"details,omitempty"`
}

// JiraWorklog records one worklog emission attempt, successful or not.
type JiraWorklog struct {
	ID               int64         `json:"id"`
	SessionID        int64         `json:"session_id"`
	JiraIssue        string        `json:"jira_issue"`
	JiraWorklogID    string        `json:"jira_worklog_id"`
	TimeSpentMinutes int           `json:"time_spent_minutes"`
	Description      string        `json:"description"`
	SentAt           time.Time     `json:"sent_at"`
	Status           WorklogStatus `json:"status"`
}

// OrphanRecord marks a session that started without a derivable issue key,
// waiting for the user to assign one or discard it.
type OrphanRecord struct {
	ID              int64        `json:"id"`
	SessionID       int64        `json:"session_id"`
	BranchName      string       `json:"branch_name"`
	TotalMinutes    int          `json:"total_minutes"`
	ActivitiesCount int          `json:"activities_count"`
	CreatedAt       time.Time    `json:"created_at"`
	AssignedIssue   string       `json:"assigned_issue,omitempty"`
	Status          OrphanStatus `json:"status"`
}

// SessionPatch carries optional tracker-status updates for a session. Nil
// fields are left untouched.
type SessionPatch struct {
	OriginalJiraStatus *string
	CurrentJiraStatus  *string
	JiraWorklogID      *string
}
