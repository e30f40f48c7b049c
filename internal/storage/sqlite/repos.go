package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/devpeace/devpeace/internal/storage"
)

const repoColumns = `id, path, name, is_active, created_at, last_activity`

// AddRepository registers a working tree for watching. The path must be
// canonical and unique.
func (s *Store) AddRepository(ctx context.Context, path, name string) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO repositories (path, name) VALUES (?, ?)`, path, name)
	if err != nil {
		return 0, fmt.Errorf("failed to add repository: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read repository id: %w", err)
	}
	return id, nil
}

// GetRepositoryByPath returns the repository at path, or nil when unknown.
func (s *Store) GetRepositoryByPath(ctx context.Context, path string) (*storage.Repository, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+repoColumns+` FROM repositories WHERE path = ?`, path)
	return scanRepository(row)
}

// GetRepositoryByID returns the repository with the given id, or nil.
func (s *Store) GetRepositoryByID(ctx context.Context, id int64) (*storage.Repository, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+repoColumns+` FROM repositories WHERE id = ?`, id)
	return scanRepository(row)
}

// ListRepositories returns all repositories ordered by name.
func (s *Store) ListRepositories(ctx context.Context) ([]*storage.Repository, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+repoColumns+` FROM repositories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list repositories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var repos []*storage.Repository
	for rows.Next() {
		repo, err := scanRepository(rows)
		if err != nil {
			return nil, err
		}
		repos = append(repos, repo)
	}
	return repos, rows.Err()
}

// ToggleRepository flips a repository's active flag and returns the new
// value.
func (s *Store) ToggleRepository(ctx context.Context, id int64) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE repositories SET is_active = NOT is_active WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to toggle repository: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read toggle result: %w", err)
	}
	if affected == 0 {
		return false, fmt.Errorf("repository %d not found", id)
	}

	var active bool
	if err := s.db.QueryRowContext(ctx,
		`SELECT is_active FROM repositories WHERE id = ?`, id).Scan(&active); err != nil {
		return false, fmt.Errorf("failed to read repository state: %w", err)
	}
	return active, nil
}

// TouchRepository stamps a repository's last-activity instant.
func (s *Store) TouchRepository(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx,
		`UPDATE repositories SET last_activity = ? WHERE id = ?`, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("failed to touch repository: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRepository(row rowScanner) (*storage.Repository, error) {
	var (
		repo         storage.Repository
		lastActivity sql.NullTime
	)
	err := row.Scan(&repo.ID, &repo.Path, &repo.Name, &repo.IsActive, &repo.CreatedAt, &lastActivity)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan repository: %w", err)
	}
	if lastActivity.Valid {
		t := lastActivity.Time
		repo.LastActivity = &t
	}
	return &repo, nil
}
