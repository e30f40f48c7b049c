package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// migration is one ordered, idempotent schema change. Migrations run on
// every open; each checks its own precondition before altering anything.
type migration struct {
	name string
	fn   func(context.Context, *sql.DB) error
}

var migrationsList = []migration{
	{"session_jira_status_columns", migrateSessionJiraStatusColumns},
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	for _, m := range migrationsList {
		if err := m.fn(ctx, db); err != nil {
			return fmt.Errorf("migration %s: %w", m.name, err)
		}
	}
	return nil
}

// migrateSessionJiraStatusColumns adds the tracker-status snapshot columns
// to work_sessions for databases created before they existed.
func migrateSessionJiraStatusColumns(ctx context.Context, db *sql.DB) error {
	columns, err := tableColumns(ctx, db, "work_sessions")
	if err != nil {
		return err
	}

	if !columns["original_jira_status"] {
		if _, err := db.ExecContext(ctx, `ALTER TABLE work_sessions ADD COLUMN original_jira_status TEXT`); err != nil {
			return fmt.Errorf("failed to add original_jira_status: %w", err)
		}
	}
	if !columns["current_jira_status"] {
		if _, err := db.ExecContext(ctx, `ALTER TABLE work_sessions ADD COLUMN current_jira_status TEXT`); err != nil {
			return fmt.Errorf("failed to add current_jira_status: %w", err)
		}
	}
	return nil
}

func tableColumns(ctx context.Context, db *sql.DB, table string) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf(`PRAGMA table_info(%s)`, table))
	if err != nil {
		return nil, fmt.Errorf("failed to inspect %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	columns := make(map[string]bool)
	for rows.Next() {
		var (
			cid        int
			name, typ  string
			notNull    int
			dflt       sql.NullString
			primaryKey int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &primaryKey); err != nil {
			return nil, fmt.Errorf("failed to scan column info: %w", err)
		}
		columns[name] = true
	}
	return columns, rows.Err()
}
