package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/devpeace/devpeace/internal/ui"
)

var listActiveOnly bool

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List registered repositories",
	Args:    cobra.NoArgs,
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
		if listActiveOnly {
			kept := repos[:0]
			for _, repo := range repos {
				if repo.IsActive {
					kept = append(kept, repo)
				}
			}
			repos = kept
		}

		if jsonOutput {
			return outputJSON(repos)
		}
		if len(repos) == 0 {
			fmt.Println(ui.RenderMuted("No repositories registered. Use 'devpeace add <path>' to start."))
			return nil
		}

		rows := make([][]string, 0, len(repos))
		for _, repo := range repos {
			state := ui.RenderSuccess("active")
			if !repo.IsActive {
				state = ui.RenderMuted("paused")
			}
			last := "-"
			if repo.LastActivity != nil {
				last = repo.LastActivity.Local().Format("2006-01-02 15:04")
			}
			rows = append(rows, []string{
				strconv.FormatInt(repo.ID, 10), repo.Name, repo.Path, state, last,
			})
		}
		fmt.Println(ui.RenderTable([]string{"ID", "Name", "Path", "State", "Last activity"}, rows))
		return nil
	},
}

func init() {
	listCmd.Flags().BoolVar(&listActiveOnly, "active-only", false, "only repositories being monitored")
	rootCmd.AddCommand(listCmd)
}
