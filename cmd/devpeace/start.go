package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/devpeace/devpeace/internal/gitinspect"
	"github.com/devpeace/devpeace/internal/ui"
)

var (
	startVerbose bool
	startPaths   []string
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Monitor repositories in the foreground",
	Long: `Run the activity monitor attached to the terminal. Useful for trying
things out; for unattended operation use 'devpeace daemon'.

SIGHUP re-reads the repository list; Ctrl-C ends all open sessions and
exits.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		level := slog.LevelInfo
		if startVerbose {
			level = slog.LevelDebug
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

		release, err := acquireDaemonLock()
		if err != nil {
			return err
		}
		defer release()

		if err := registerPaths(ctx, startPaths); err != nil {
			return err
		}

		sup, cleanup, err := buildMonitor(ctx, logger)
		if err != nil {
			return err
		}
		defer cleanup()

		if err := sup.Start(ctx); err != nil {
			return err
		}
		fmt.Println(ui.RenderSuccess("✓ Monitoring started, press Ctrl-C to stop"))

		signals := make(chan os.Signal, 1)
		signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
		defer signal.Stop(signals)

		for sig := range signals {
			if sig == syscall.SIGHUP {
				if err := sup.Refresh(ctx); err != nil {
					logger.Error("failed to refresh repositories", "error", err)
				}
				continue
			}
			break
		}

		sup.Stop()
		fmt.Println(ui.RenderMuted("Monitoring stopped"))
		return nil
	},
}

// registerPaths adds ad-hoc repository paths before the supervisor starts,
// skipping ones already registered.
func registerPaths(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("failed to resolve path %q: %w", p, err)
		}
		if !gitinspect.IsRepo(abs) {
			return fmt.Errorf("%s is not a git repository", abs)
		}
		existing, err := store.GetRepositoryByPath(ctx, abs)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}
		if _, err := store.AddRepository(ctx, abs, gitinspect.RepoName(abs)); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	startCmd.Flags().BoolVarP(&startVerbose, "verbose", "v", false, "debug logging")
	startCmd.Flags().StringSliceVar(&startPaths, "paths", nil, "repositories to register before starting")
	rootCmd.AddCommand(startCmd)
}
