package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/devpeace/devpeace/internal/ui"
)

var toggleCmd = &cobra.Command{
	Use:   "toggle <id>",
	Short: "Pause or resume monitoring of a repository",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid repository id %q", args[0])
		}

		store, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		active, err := store.ToggleRepository(ctx, id)
		if err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(map[string]any{"id": id, "is_active": active})
		}
		if active {
			fmt.Println(ui.RenderSuccess(fmt.Sprintf("✓ Repository %d resumed", id)))
		} else {
			fmt.Println(ui.RenderMuted(fmt.Sprintf("Repository %d paused", id)))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(toggleCmd)
}
