// Package monitor ties the watcher and the session manager together for the
// lifetime of the daemon: it seeds the watched set from the store, refreshes
// it on demand, and drives graceful shutdown.
package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/devpeace/devpeace/internal/session"
	"github.com/devpeace/devpeace/internal/storage"
	"github.com/devpeace/devpeace/internal/watcher"
)

// Stats is the aggregate view surfaced by the status command.
type Stats struct {
	TotalRepositories  int  `json:"total_repositories"`
	ActiveRepositories int  `json:"active_repositories"`
	ActiveSessions     int  `json:"active_sessions"`
	OrphanRecords      int  `json:"orphan_records"`
	MonitoredPaths     int  `json:"monitored_paths"`
	Running            bool `json:"running"`
}

// Supervisor owns the watcher and the manager goroutine.
type Supervisor struct {
	store   storage.Storage
	watch   *watcher.Watcher
	manager *session.Manager
	logger  *slog.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// New wires a supervisor. The watcher must not have been started yet.
func New(store storage.Storage, watch *watcher.Watcher, manager *session.Manager, logger *slog.Logger) *Supervisor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Supervisor{store: store, watch: watch, manager: manager, logger: logger}
}

// Start schedules every active repository with the watcher and launches the
// signal consumer. It returns once monitoring is running; an empty watched
// set is not an error.
func (s *Supervisor) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("monitor already running")
	}

	count, err := s.scheduleActive(ctx)
	if err != nil {
		return err
	}
	if count == 0 {
		s.logger.Info("no repositories configured yet, waiting for additions")
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.done = make(chan struct{})
	s.watch.Start(runCtx)

	go func() {
		defer close(s.done)
		s.manager.Run(runCtx, s.watch.Events())
	}()

	s.running = true
	s.logger.Info("activity monitor started", "repositories", count)
	return nil
}

// Refresh re-reads the active repository list and schedules any new paths.
// Paths toggled inactive are not unwatched mid-run; the next start honors
// the change.
func (s *Supervisor) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return nil
	}
	_, err := s.scheduleActive(ctx)
	return err
}

func (s *Supervisor) scheduleActive(ctx context.Context) (int, error) {
	repos, err := s.store.ListRepositories(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list repositories: %w", err)
	}

	count := 0
	for _, repo := range repos {
		if !repo.IsActive {
			continue
		}
		count++
		if err := s.watch.AddRoot(repo.Path); err != nil {
			// One bad path must not take down the rest.
			s.logger.Error("failed to watch repository", "path", repo.Path, "error", err)
		}
	}
	return count, nil
}

// Stop closes the watcher and waits for the manager to end all active
// sessions.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	// Closing the watcher closes the signal channel; the manager drains it
	// and tears down sessions before done is signaled.
	if err := s.watch.Close(); err != nil {
		s.logger.Warn("failed to close watcher", "error", err)
	}
	<-done
	cancel()
	s.logger.Info("activity monitor stopped")
}

// Running reports whether the supervisor has been started and not stopped.
func (s *Supervisor) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Stats aggregates the observable state of the monitor.
func (s *Supervisor) Stats(ctx context.Context) (*Stats, error) {
	repos, err := s.store.ListRepositories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list repositories: %w", err)
	}
	orphans, err := s.store.ListOrphans(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list orphans: %w", err)
	}

	active := 0
	for _, repo := range repos {
		if repo.IsActive {
			active++
		}
	}
	return &Stats{
		TotalRepositories:  len(repos),
		ActiveRepositories: active,
		ActiveSessions:     s.manager.ActiveCount(),
		OrphanRecords:      len(orphans),
		MonitoredPaths:     len(s.watch.Roots()),
		Running:            s.Running(),
	}, nil
}
