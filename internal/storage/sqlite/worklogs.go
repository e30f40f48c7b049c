package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/devpeace/devpeace/internal/storage"
)

// AddWorklog records one worklog emission attempt. Failed and pending
// attempts are recorded too; the status field carries the outcome.
func (s *Store) AddWorklog(ctx context.Context, w *storage.JiraWorklog) (int64, error) {
	status := w.Status
	if status == "" {
		status = storage.WorklogSent
	}
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO jira_worklogs
			(session_id, jira_issue, jira_worklog_id, time_spent_minutes, description, status)
		VALUES (?, ?, ?, ?, ?, ?)`,
		w.SessionID, w.JiraIssue, w.JiraWorklogID, w.TimeSpentMinutes, w.Description, string(status))
	if err != nil {
		return 0, fmt.Errorf("failed to add worklog: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read worklog id: %w", err)
	}
	return id, nil
}

// SessionWorklogs returns a session's worklog records in insertion order.
func (s *Store) SessionWorklogs(ctx context.Context, sessionID int64) ([]*storage.JiraWorklog, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, jira_issue, jira_worklog_id, time_spent_minutes, description, sent_at, status
		FROM jira_worklogs WHERE session_id = ? ORDER BY id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list worklogs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var worklogs []*storage.JiraWorklog
	for rows.Next() {
		var (
			w           storage.JiraWorklog
			description sql.NullString
			status      string
		)
		if err := rows.Scan(&w.ID, &w.SessionID, &w.JiraIssue, &w.JiraWorklogID,
			&w.TimeSpentMinutes, &description, &w.SentAt, &status); err != nil {
			return nil, fmt.Errorf("failed to scan worklog: %w", err)
		}
		w.Description = description.String
		w.Status = storage.WorklogStatus(status)
		worklogs = append(worklogs, &w)
	}
	return worklogs, rows.Err()
}
