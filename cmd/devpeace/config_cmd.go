package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devpeace/devpeace/internal/config"
	"github.com/devpeace/devpeace/internal/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change settings",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the active configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings := config.All()
		// Never print credentials.
		if _, ok := settings["jira_token"]; ok {
			if config.JiraToken() != "" {
				settings["jira_token"] = "****"
			}
		}
		if jsonOutput {
			return outputJSON(settings)
		}
		fmt.Println(ui.RenderMuted("# " + config.FilePath()))
		for key, value := range settings {
			fmt.Printf("%s: %v\n", key, value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set one configuration value",
	Long: `Set one configuration value and write it back to the config file.

EXAMPLES:
  devpeace config set jira_url https://example.atlassian.net
  devpeace config set jira_user dev@example.com
  devpeace config set min_session_minutes 10`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Set(args[0], args[1]); err != nil {
			return err
		}
		fmt.Println(ui.RenderSuccess(fmt.Sprintf("✓ %s updated", args[0])))
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(config.FilePath())
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}
