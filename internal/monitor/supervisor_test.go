package monitor

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/devpeace/devpeace/internal/automation"
	"github.com/devpeace/devpeace/internal/session"
	"github.com/devpeace/devpeace/internal/storage/sqlite"
	"github.com/devpeace/devpeace/internal/watcher"
)

func newSupervisor(t *testing.T) (*Supervisor, *sqlite.Store) {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store, err := sqlite.New(ctx, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	watch, err := watcher.New(nil, logger)
	if err != nil {
		t.Fatalf("failed to create watcher: %v", err)
	}

	engine := automation.NewEngine(automation.DefaultConfig(), nil, logger)
	manager := session.NewManager(store, nil, engine, session.Config{}, logger)
	return New(store, watch, manager, logger), store
}

func TestStartStop(t *testing.T) {
	sup, store := newSupervisor(t)
	ctx := context.Background()

	repoPath := t.TempDir()
	if _, err := store.AddRepository(ctx, repoPath, "api"); err != nil {
		t.Fatal(err)
	}

	if err := sup.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !sup.Running() {
		t.Error("Running = false after Start")
	}

	// Double start is rejected.
	if err := sup.Start(ctx); err == nil {
		t.Error("second Start succeeded")
	}

	sup.Stop()
	if sup.Running() {
		t.Error("Running = true after Stop")
	}
	// Stop is idempotent.
	sup.Stop()
}

func TestStartWithNoRepositories(t *testing.T) {
	sup, _ := newSupervisor(t)
	if err := sup.Start(context.Background()); err != nil {
		t.Fatalf("Start with empty set: %v", err)
	}
	sup.Stop()
}

func TestRefreshPicksUpNewRepositories(t *testing.T) {
	sup, store := newSupervisor(t)
	ctx := context.Background()

	if err := sup.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer sup.Stop()

	stats, err := sup.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.MonitoredPaths != 0 {
		t.Errorf("MonitoredPaths = %d, want 0", stats.MonitoredPaths)
	}

	repoPath := t.TempDir()
	if _, err := store.AddRepository(ctx, repoPath, "api"); err != nil {
		t.Fatal(err)
	}
	if err := sup.Refresh(ctx); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	stats, err = sup.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.MonitoredPaths != 1 {
		t.Errorf("MonitoredPaths after refresh = %d, want 1", stats.MonitoredPaths)
	}
	if stats.TotalRepositories != 1 || stats.ActiveRepositories != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestRefreshSkipsInactive(t *testing.T) {
	sup, store := newSupervisor(t)
	ctx := context.Background()

	repoPath := t.TempDir()
	id, err := store.AddRepository(ctx, repoPath, "api")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.ToggleRepository(ctx, id); err != nil {
		t.Fatal(err)
	}

	if err := sup.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer sup.Stop()

	stats, err := sup.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.MonitoredPaths != 0 {
		t.Errorf("inactive repo scheduled: %+v", stats)
	}
	if stats.ActiveRepositories != 0 || stats.TotalRepositories != 1 {
		t.Errorf("stats = %+v", stats)
	}
}
