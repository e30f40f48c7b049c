package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/devpeace/devpeace/internal/jira"
	"github.com/devpeace/devpeace/internal/storage"
	"github.com/devpeace/devpeace/internal/ui"
)

var (
	sessionsRepoID int64
	sessionsLimit  int
	sessionsActive bool
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List recorded work sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		store, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		var sessions []*storage.WorkSession
		if sessionsActive {
			sessions, err = store.ListActiveSessions(ctx)
		} else {
			sessions, err = store.ListSessions(ctx, sessionsRepoID, sessionsLimit)
		}
		if err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(sessions)
		}
		if len(sessions) == 0 {
			fmt.Println(ui.RenderMuted("No sessions recorded"))
			return nil
		}

		rows := make([][]string, 0, len(sessions))
		for _, s := range sessions {
			issue := s.JiraIssue
			if issue == "" {
				issue = "-"
			}
			end := ui.RenderSuccess("open")
			if s.EndTime != nil {
				end = s.EndTime.Local().Format("15:04")
			}
			rows = append(rows, []string{
				strconv.FormatInt(s.ID, 10),
				s.BranchName,
				issue,
				string(s.Status),
				s.StartTime.Local().Format("2006-01-02 15:04"),
				end,
				jira.FormatDuration(s.TotalMinutes),
			})
		}
		fmt.Println(ui.RenderTable(
			[]string{"ID", "Branch", "Issue", "Status", "Started", "Ended", "Time"}, rows))
		return nil
	},
}

func init() {
	sessionsCmd.Flags().Int64Var(&sessionsRepoID, "repo", 0, "only sessions of this repository id")
	sessionsCmd.Flags().IntVar(&sessionsLimit, "limit", 20, "maximum sessions to show")
	sessionsCmd.Flags().BoolVar(&sessionsActive, "active-only", false, "only currently open sessions")
	rootCmd.AddCommand(sessionsCmd)
}
