package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/devpeace/devpeace/internal/branch"
	"github.com/devpeace/devpeace/internal/jira"
	"github.com/devpeace/devpeace/internal/ui"
)

var orphansCmd = &cobra.Command{
	Use:   "orphans",
	Short: "Manage sessions recorded without an issue key",
	Long: `Sessions started on branches whose name carries no issue key are kept
as orphan records. Assign them to an issue after the fact, or discard
them.`,
}

var orphansListCmd = &cobra.Command{
	Use:   "list",
	Short: "List unassigned orphan sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		store, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		orphans, err := store.ListOrphans(ctx)
		if err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(orphans)
		}
		if len(orphans) == 0 {
			fmt.Println(ui.RenderMuted("No orphan sessions"))
			return nil
		}

		rows := make([][]string, 0, len(orphans))
		for _, o := range orphans {
			rows = append(rows, []string{
				strconv.FormatInt(o.ID, 10),
				o.BranchName,
				jira.FormatDuration(o.TotalMinutes),
				strconv.Itoa(o.ActivitiesCount),
				o.CreatedAt.Local().Format("2006-01-02 15:04"),
			})
		}
		fmt.Println(ui.RenderTable(
			[]string{"ID", "Branch", "Time", "Activities", "Recorded"}, rows))
		return nil
	},
}

var orphansAssignCmd = &cobra.Command{
	Use:   "assign <id> <issue-key>",
	Short: "Assign an orphan session to an issue",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid orphan id %q", args[0])
		}
		issue := args[1]
		if branch.ExtractIssue(issue) != issue {
			return fmt.Errorf("%q does not look like an issue key", issue)
		}

		if tracker := connectedTracker(ctx, quietLogger()); tracker != nil {
			if !tracker.IssueExists(ctx, issue) {
				return fmt.Errorf("issue %s not found in tracker", issue)
			}
		}

		store, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		if err := store.AssignOrphan(ctx, id, issue); err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(map[string]any{"id": id, "assigned_issue": issue})
		}
		fmt.Println(ui.RenderSuccess(fmt.Sprintf("✓ Orphan %d assigned to %s", id, issue)))
		return nil
	},
}

var orphansDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Discard an orphan record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid orphan id %q", args[0])
		}

		store, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		if err := store.DeleteOrphan(ctx, id); err != nil {
			return err
		}
		fmt.Println(ui.RenderMuted(fmt.Sprintf("Orphan %d discarded", id)))
		return nil
	},
}

func init() {
	orphansCmd.AddCommand(orphansListCmd)
	orphansCmd.AddCommand(orphansAssignCmd)
	orphansCmd.AddCommand(orphansDeleteCmd)
	rootCmd.AddCommand(orphansCmd)
}
