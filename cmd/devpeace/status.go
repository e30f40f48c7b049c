package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devpeace/devpeace/internal/config"
	"github.com/devpeace/devpeace/internal/monitor"
	"github.com/devpeace/devpeace/internal/ui"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon and monitoring state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		store, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		repos, err := store.ListRepositories(ctx)
		if err != nil {
			return err
		}
		sessions, err := store.ListActiveSessions(ctx)
		if err != nil {
			return err
		}
		orphans, err := store.ListOrphans(ctx)
		if err != nil {
			return err
		}
		pid, err := daemonPid()
		if err != nil {
			return err
		}

		active := 0
		for _, repo := range repos {
			if repo.IsActive {
				active++
			}
		}
		stats := monitor.Stats{
			TotalRepositories:  len(repos),
			ActiveRepositories: active,
			ActiveSessions:     len(sessions),
			OrphanRecords:      len(orphans),
			Running:            pid != 0,
		}
		if stats.Running {
			stats.MonitoredPaths = active
		}

		if jsonOutput {
			return outputJSON(map[string]any{"daemon_pid": pid, "stats": stats})
		}

		fmt.Println(ui.RenderTitle("dev-peace status"))
		if pid != 0 {
			fmt.Println(ui.RenderSuccess(fmt.Sprintf("  Daemon running (pid %d)", pid)))
		} else {
			fmt.Println(ui.RenderMuted("  Daemon not running"))
		}
		fmt.Printf("  Repositories: %d (%d active)\n", stats.TotalRepositories, stats.ActiveRepositories)
		fmt.Printf("  Active sessions: %d\n", stats.ActiveSessions)
		fmt.Printf("  Unassigned orphan sessions: %d\n", stats.OrphanRecords)
		if config.IsJiraConfigured() {
			fmt.Println(ui.RenderSuccess("  Jira configured: " + config.JiraURL()))
		} else {
			fmt.Println(ui.RenderWarning("  Jira not configured (offline mode)"))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
