package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/devpeace/devpeace/internal/storage"
)

// AddActivity appends an observation to a session's activity log.
func (s *Store) AddActivity(ctx context.Context, a *storage.Activity) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO activities
			(session_id, activity_type, file_path, commit_hash, commit_message, details)
		VALUES (?, ?, ?, ?, ?, ?)`,
		a.SessionID, string(a.Type), nullString(a.FilePath),
		nullString(a.CommitHash), nullString(a.CommitMessage), nullString(a.Details))
	if err != nil {
		return 0, fmt.Errorf("failed to add activity: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read activity id: %w", err)
	}
	return id, nil
}

// SessionActivities returns a session's activities in insertion order.
func (s *Store) SessionActivities(ctx context.Context, sessionID int64) ([]*storage.Activity, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, activity_type, file_path, commit_hash, commit_message, timestamp, details
		FROM activities WHERE session_id = ? ORDER BY id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var activities []*storage.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		activities = append(activities, a)
	}
	return activities, rows.Err()
}

func scanActivity(row rowScanner) (*storage.Activity, error) {
	var (
		a                               storage.Activity
		filePath, hash, message, detail sql.NullString
		typ                             string
	)
	err := row.Scan(&a.ID, &a.SessionID, &typ, &filePath, &hash, &message, &a.Timestamp, &detail)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan activity: %w", err)
	}
	a.Type = storage.ActivityType(typ)
	a.FilePath = filePath.String
	a.CommitHash = hash.String
	a.CommitMessage = message.String
	a.Details = detail.String
	return &a, nil
}
