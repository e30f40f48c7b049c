package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devpeace/devpeace/internal/config"
	"github.com/devpeace/devpeace/internal/ui"
)

var jiraStatusCmd = &cobra.Command{
	Use:   "jira-status",
	Short: "Inspect tracker projects, statuses and workflows",
}

var jiraTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Verify the tracker connection and credentials",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := requireTracker(cmd.Context(), quietLogger()); err != nil {
			return err
		}
		fmt.Println(ui.RenderSuccess("✓ Connected to " + config.JiraURL()))
		return nil
	},
}

var jiraProjectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List visible projects",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tracker, err := requireTracker(cmd.Context(), quietLogger())
		if err != nil {
			return err
		}

		projects := tracker.ListProjects(cmd.Context())
		if jsonOutput {
			return outputJSON(projects)
		}
		if len(projects) == 0 {
			fmt.Println(ui.RenderMuted("No projects visible"))
			return nil
		}
		rows := make([][]string, 0, len(projects))
		for _, p := range projects {
			rows = append(rows, []string{p.Key, p.Name, p.Lead})
		}
		fmt.Println(ui.RenderTable([]string{"Key", "Name", "Lead"}, rows))
		return nil
	},
}

var jiraListCmd = &cobra.Command{
	Use:   "list [project-key]",
	Short: "List workflow statuses, optionally scoped to one project",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		tracker, err := requireTracker(ctx, quietLogger())
		if err != nil {
			return err
		}

		var statuses []string
		if len(args) == 1 {
			statuses = tracker.ProjectStatuses(ctx, args[0])
		} else {
			statuses = tracker.AllStatuses(ctx)
		}

		if jsonOutput {
			return outputJSON(statuses)
		}
		if len(statuses) == 0 {
			fmt.Println(ui.RenderMuted("No statuses found"))
			return nil
		}
		for _, s := range statuses {
			fmt.Println("  " + s)
		}
		return nil
	},
}

var jiraWorkflowCmd = &cobra.Command{
	Use:   "workflow <issue-key>",
	Short: "Show an issue's current status and reachable transitions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		key := args[0]

		tracker, err := requireTracker(ctx, quietLogger())
		if err != nil {
			return err
		}

		workflow := tracker.IssueWorkflow(ctx, key)
		if workflow == nil {
			return fmt.Errorf("issue %s not found", key)
		}

		if jsonOutput {
			return outputJSON(workflow)
		}

		fmt.Println(ui.RenderTitle(workflow.IssueKey))
		fmt.Printf("  Project: %s  Type: %s\n", workflow.Project, workflow.IssueType)
		fmt.Printf("  Current status: %s\n", workflow.CurrentStatus)
		if len(workflow.AvailableTransitions) > 0 {
			fmt.Println("  Available transitions:")
			for _, t := range workflow.AvailableTransitions {
				fmt.Printf("    %s → %s\n", t.Name, t.ToStatus)
			}
		}
		if len(workflow.AllPossibleStatuses) > 0 {
			fmt.Println("  Workflow statuses:")
			for _, s := range workflow.AllPossibleStatuses {
				fmt.Println("    " + s)
			}
		}
		return nil
	},
}

var jiraMineStatus string

var jiraMineCmd = &cobra.Command{
	Use:   "mine",
	Short: "List issues assigned to the configured user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tracker, err := requireTracker(cmd.Context(), quietLogger())
		if err != nil {
			return err
		}

		issues := tracker.MyIssues(cmd.Context(), jiraMineStatus)
		if jsonOutput {
			return outputJSON(issues)
		}
		if len(issues) == 0 {
			fmt.Println(ui.RenderMuted("No issues assigned to you"))
			return nil
		}
		rows := make([][]string, 0, len(issues))
		for _, issue := range issues {
			rows = append(rows, []string{issue.Key, issue.Status, issue.Summary})
		}
		fmt.Println(ui.RenderTable([]string{"Key", "Status", "Summary"}, rows))
		return nil
	},
}

func init() {
	jiraMineCmd.Flags().StringVar(&jiraMineStatus, "status", "", "only issues in this status")
	jiraStatusCmd.AddCommand(jiraTestCmd)
	jiraStatusCmd.AddCommand(jiraProjectsCmd)
	jiraStatusCmd.AddCommand(jiraListCmd)
	jiraStatusCmd.AddCommand(jiraWorkflowCmd)
	jiraStatusCmd.AddCommand(jiraMineCmd)
	rootCmd.AddCommand(jiraStatusCmd)
}
