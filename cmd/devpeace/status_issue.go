package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devpeace/devpeace/internal/ui"
)

var statusIssueComment string

var statusIssueCmd = &cobra.Command{
	Use:   "status-issue <key> <status>",
	Short: "Move a tracker issue to another workflow status",
	Long: `Transition an issue to the named status, matching case-insensitively
against the transitions available from its current status.

EXAMPLES:
  devpeace status-issue PROJ-123 "In Progress"
  devpeace status-issue PROJ-123 Done --comment "Wrapped up in v2.1"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		key, target := args[0], args[1]

		tracker, err := requireTracker(ctx, quietLogger())
		if err != nil {
			return err
		}

		issue := tracker.GetIssue(ctx, key)
		if issue == nil {
			return fmt.Errorf("issue %s not found", key)
		}
		if !tracker.TransitionIssue(ctx, key, target) {
			return fmt.Errorf("no transition from %q to %q for %s", issue.Status, target, key)
		}
		if statusIssueComment != "" {
			if !tracker.AddComment(ctx, key, statusIssueComment) {
				fmt.Println(ui.RenderWarning("Status changed but the comment could not be posted"))
			}
		}

		if jsonOutput {
			return outputJSON(map[string]any{"key": key, "from": issue.Status, "to": target})
		}
		fmt.Println(ui.RenderSuccess(fmt.Sprintf("✓ %s: %s → %s", key, issue.Status, target)))
		return nil
	},
}

func init() {
	statusIssueCmd.Flags().StringVar(&statusIssueComment, "comment", "", "comment to post after the transition")
	rootCmd.AddCommand(statusIssueCmd)
}
