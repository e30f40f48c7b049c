package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/devpeace/devpeace/internal/gitinspect"
	"github.com/devpeace/devpeace/internal/ui"
)

var addCmd = &cobra.Command{
	Use:   "add <path> [name]",
	Short: "Register a git repository for monitoring",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		path, err := filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("failed to resolve path: %w", err)
		}
		if !gitinspect.IsRepo(path) {
			return fmt.Errorf("%s is not a git repository", path)
		}

		name := gitinspect.RepoName(path)
		if len(args) == 2 {
			name = args[1]
		}

		store, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		if existing, err := store.GetRepositoryByPath(ctx, path); err != nil {
			return err
		} else if existing != nil {
			return fmt.Errorf("repository already registered as %q (id %d)", existing.Name, existing.ID)
		}

		id, err := store.AddRepository(ctx, path, name)
		if err != nil {
			return err
		}

		if jsonOutput {
			repo, err := store.GetRepositoryByID(ctx, id)
			if err != nil {
				return err
			}
			return outputJSON(repo)
		}
		fmt.Println(ui.RenderSuccess(fmt.Sprintf("✓ Monitoring %s (%s)", name, path)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
}
