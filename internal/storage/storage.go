package storage

import "context"

// Storage is the persistence contract. The sqlite subpackage provides the
// production implementation; the session manager and supervisor depend only
// on this interface.
type Storage interface {
	// Repositories
	AddRepository(ctx context.Context, path, name string) (int64, error)
	GetRepositoryByPath(ctx context.Context, path string) (*Repository, error)
	GetRepositoryByID(ctx context.Context, id int64) (*Repository, error)
	ListRepositories(ctx context.Context) ([]*Repository, error)
	ToggleRepository(ctx context.Context, id int64) (bool, error)
	TouchRepository(ctx context.Context, id int64) error

	// Sessions
	StartSession(ctx context.Context, repositoryID int64, branch, jiraIssue, originalStatus, currentStatus string) (int64, error)
	EndSession(ctx context.Context, sessionID int64) (*WorkSession, error)
	GetSession(ctx context.Context, sessionID int64) (*WorkSession, error)
	ActiveSessionForRepo(ctx context.Context, repositoryID int64) (*WorkSession, error)
	ListActiveSessions(ctx context.Context) ([]*WorkSession, error)
	ListSessions(ctx context.Context, repositoryID int64, limit int) ([]*WorkSession, error)
	UpdateSessionStatuses(ctx context.Context, sessionID int64, patch SessionPatch) error

	// Activities
	AddActivity(ctx context.Context, a *Activity) (int64, error)
	SessionActivities(ctx context.Context, sessionID int64) ([]*Activity, error)

	// Worklogs
	AddWorklog(ctx context.Context, w *JiraWorklog) (int64, error)
	SessionWorklogs(ctx context.Context, sessionID int64) ([]*JiraWorklog, error)

	// Orphans
	CreateOrphanRecord(ctx context.Context, sessionID int64, branch string) (int64, error)
	ListOrphans(ctx context.Context) ([]*OrphanRecord, error)
	AssignOrphan(ctx context.Context, orphanID int64, jiraIssue string) error
	DeleteOrphan(ctx context.Context, orphanID int64) error

	Close() error
}
