package main

import (
	"fmt"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/devpeace/devpeace/internal/ui"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running daemon",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pid, err := daemonPid()
		if err != nil {
			return err
		}
		if pid == 0 {
			fmt.Println(ui.RenderMuted("No daemon running"))
			return nil
		}
		if err := syscall.Kill(pid, syscall.SIGTERM); err != nil {
			return fmt.Errorf("failed to signal daemon (pid %d): %w", pid, err)
		}
		fmt.Println(ui.RenderSuccess(fmt.Sprintf("✓ Stop signal sent to daemon (pid %d)", pid)))
		return nil
	},
}

var reloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Ask the running daemon to re-read the repository list",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pid, err := daemonPid()
		if err != nil {
			return err
		}
		if pid == 0 {
			fmt.Println(ui.RenderMuted("No daemon running"))
			return nil
		}
		if err := syscall.Kill(pid, syscall.SIGHUP); err != nil {
			return fmt.Errorf("failed to signal daemon (pid %d): %w", pid, err)
		}
		fmt.Println(ui.RenderSuccess("✓ Reload signal sent"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(reloadCmd)
}
