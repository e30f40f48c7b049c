package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/devpeace/devpeace/internal/storage"
)

// CreateOrphanRecord snapshots a session that has no derivable issue key.
// The activity count and accumulated minutes are captured at call time.
func (s *Store) CreateOrphanRecord(ctx context.Context, sessionID int64, branch string) (int64, error) {
	var activitiesCount int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM activities WHERE session_id = ?`, sessionID).Scan(&activitiesCount); err != nil {
		return 0, fmt.Errorf("failed to count activities: %w", err)
	}

	var totalMinutes int
	err := s.db.QueryRowContext(ctx,
		`SELECT total_minutes FROM work_sessions WHERE id = ?`, sessionID).Scan(&totalMinutes)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to read session minutes: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO orphan_records (session_id, branch_name, total_minutes, activities_count)
		VALUES (?, ?, ?, ?)`,
		sessionID, branch, totalMinutes, activitiesCount)
	if err != nil {
		return 0, fmt.Errorf("failed to create orphan record: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read orphan id: %w", err)
	}
	return id, nil
}

// ListOrphans returns unassigned orphan records, newest first.
func (s *Store) ListOrphans(ctx context.Context) ([]*storage.OrphanRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, branch_name, total_minutes, activities_count, created_at, assigned_issue, status
		FROM orphan_records WHERE status = ? ORDER BY created_at DESC`,
		string(storage.OrphanUnassigned))
	if err != nil {
		return nil, fmt.Errorf("failed to list orphans: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var orphans []*storage.OrphanRecord
	for rows.Next() {
		var (
			o        storage.OrphanRecord
			assigned sql.NullString
			status   string
		)
		if err := rows.Scan(&o.ID, &o.SessionID, &o.BranchName, &o.TotalMinutes,
			&o.ActivitiesCount, &o.CreatedAt, &assigned, &status); err != nil {
			return nil, fmt.Errorf("failed to scan orphan: %w", err)
		}
		o.AssignedIssue = assigned.String
		o.Status = storage.OrphanStatus(status)
		orphans = append(orphans, &o)
	}
	return orphans, rows.Err()
}

// AssignOrphan ties an orphan record to an issue key.
func (s *Store) AssignOrphan(ctx context.Context, orphanID int64, jiraIssue string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE orphan_records SET assigned_issue = ?, status = ? WHERE id = ?`,
		jiraIssue, string(storage.OrphanAssigned), orphanID)
	if err != nil {
		return fmt.Errorf("failed to assign orphan: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read assign result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("orphan record %d not found", orphanID)
	}
	return nil
}

// DeleteOrphan discards an orphan record. The underlying session is kept.
func (s *Store) DeleteOrphan(ctx context.Context, orphanID int64) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM orphan_records WHERE id = ?`, orphanID); err != nil {
		return fmt.Errorf("failed to delete orphan: %w", err)
	}
	return nil
}
