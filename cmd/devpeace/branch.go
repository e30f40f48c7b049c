package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devpeace/devpeace/internal/branch"
	"github.com/devpeace/devpeace/internal/ui"
)

var branchCmd = &cobra.Command{
	Use:   "branch",
	Short: "Work with issue-carrying branch names",
}

var branchParseCmd = &cobra.Command{
	Use:   "parse <name>",
	Short: "Show what a branch name resolves to",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		info := branch.Parse(args[0])
		if jsonOutput {
			return outputJSON(info)
		}

		if info.Issue == "" {
			fmt.Println(ui.RenderWarning("No issue key found; sessions on this branch will be recorded as orphans"))
			return nil
		}
		fmt.Printf("Issue: %s\n", info.Issue)
		if !info.ValidIssueFormat {
			fmt.Println(ui.RenderWarning("Key is not in the canonical PROJ-123 form"))
		}
		if info.Type != "" {
			fmt.Printf("Type: %s (%s)\n", info.Type, branch.Category(args[0]))
		}
		if info.Description != "" {
			fmt.Printf("Description: %s\n", info.Description)
		}
		return nil
	},
}

var branchSuggestType string

var branchSuggestCmd = &cobra.Command{
	Use:   "suggest <issue-key> [description]",
	Short: "Suggest a conventional branch name for an issue",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		key := args[0]

		description := ""
		if len(args) == 2 {
			description = args[1]
		}
		if description == "" {
			// Fall back to the issue summary when the tracker is reachable.
			if tracker := connectedTracker(ctx, quietLogger()); tracker != nil {
				if issue := tracker.GetIssue(ctx, key); issue != nil {
					description = issue.Summary
				}
			}
		}

		name := branch.Suggest(key, branchSuggestType, description)
		if name == "" {
			return fmt.Errorf("cannot suggest a branch name without an issue key")
		}
		fmt.Println(name)
		return nil
	},
}

func init() {
	branchSuggestCmd.Flags().StringVar(&branchSuggestType, "type", "feature", "branch type prefix")
	branchCmd.AddCommand(branchParseCmd)
	branchCmd.AddCommand(branchSuggestCmd)
	rootCmd.AddCommand(branchCmd)
}
