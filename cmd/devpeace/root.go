package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/devpeace/devpeace/internal/config"
	"github.com/devpeace/devpeace/internal/jira"
	"github.com/devpeace/devpeace/internal/storage/sqlite"
)

var (
	jsonOutput bool
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "devpeace",
	Short: "Background observer for git working trees",
	Long: `devpeace watches registered git repositories for filesystem activity,
infers work sessions from branch names, and keeps the matching issue
tracker entries up to date: worklogs on session end, commit comments,
and optional workflow transitions.

Register repositories with 'devpeace add', then run 'devpeace daemon'
(or 'devpeace start' for a foreground run).`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return config.Initialize(configPath)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "machine-readable JSON output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ${XDG_CONFIG_HOME}/dev-peace/config.json)")
}

// openStore opens the SQLite store at the configured location.
func openStore(ctx context.Context) (*sqlite.Store, error) {
	dbPath, err := config.DatabasePath()
	if err != nil {
		return nil, err
	}
	return sqlite.New(ctx, dbPath)
}

// newTracker builds a tracker client from the configured credentials. It
// returns nil when the tracker is not configured; callers treat a nil
// tracker as "offline mode".
func newTracker(logger *slog.Logger) *jira.Client {
	if !config.IsJiraConfigured() {
		return nil
	}
	return jira.NewClient(config.JiraURL(), config.JiraUser(), config.JiraToken(), logger)
}

// requireTracker is newTracker for commands that cannot run offline. It
// performs the authentication handshake; client methods refuse to run
// without it.
func requireTracker(ctx context.Context, logger *slog.Logger) (*jira.Client, error) {
	client := newTracker(logger)
	if client == nil {
		return nil, fmt.Errorf("jira is not configured: set jira_url, jira_user and jira_token in %s", config.FilePath())
	}
	if !client.Connect(ctx) {
		return nil, fmt.Errorf("failed to connect to %s: check jira_user and jira_token", config.JiraURL())
	}
	return client, nil
}

// connectedTracker returns an authenticated client, or nil when the tracker
// is unconfigured or unreachable. For best-effort lookups.
func connectedTracker(ctx context.Context, logger *slog.Logger) *jira.Client {
	client := newTracker(logger)
	if client == nil || !client.Connect(ctx) {
		return nil
	}
	return client
}

// quietLogger keeps library noise away from command output.
func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// outputJSON writes v as indented JSON to stdout.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
