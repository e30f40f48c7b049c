package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/devpeace/devpeace/internal/automation"
	"github.com/devpeace/devpeace/internal/config"
	"github.com/devpeace/devpeace/internal/ui"
)

var automationCmd = &cobra.Command{
	Use:   "automation",
	Short: "Inspect and control status automation",
	Long: `Status automation moves tracker issues through their workflow as work
is observed: when a session opens, on the first commit, and when a
session ends. Rules live in the status_automation section of the
config file.`,
}

var automationShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the active automation rules",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rules, err := config.AutomationRules()
		if err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(rules)
		}

		fmt.Println(ui.RenderTitle("Status automation"))
		if rules.Enabled {
			fmt.Println(ui.RenderSuccess("  Enabled"))
		} else {
			fmt.Println(ui.RenderMuted("  Disabled"))
		}
		if rules.AutoRevertOnSessionEnd {
			fmt.Println("  Revert to original status on session end: yes")
		}

		for _, event := range []automation.Event{
			automation.EventWorkStart,
			automation.EventFirstCommit,
			automation.EventWorkComplete,
		} {
			eventRules := rules.Events[event]
			if len(eventRules) == 0 {
				continue
			}
			fmt.Printf("\n  %s:\n", event)
			for _, r := range eventRules {
				fmt.Printf("    %s → %s\n", strings.Join(r.From, ", "), r.To)
			}
		}
		return nil
	},
}

func setAutomationEnabled(enabled bool) error {
	rules, err := config.AutomationRules()
	if err != nil {
		return err
	}
	rules.Enabled = enabled
	return config.SaveAutomationRules(rules)
}

var automationEnableCmd = &cobra.Command{
	Use:   "enable",
	Short: "Enable status automation",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := setAutomationEnabled(true); err != nil {
			return err
		}
		fmt.Println(ui.RenderSuccess("✓ Status automation enabled"))
		return nil
	},
}

var automationDisableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Disable status automation",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := setAutomationEnabled(false); err != nil {
			return err
		}
		fmt.Println(ui.RenderMuted("Status automation disabled"))
		return nil
	},
}

var automationAutoRevertCmd = &cobra.Command{
	Use:   "auto-revert {on|off}",
	Short: "Control status revert when a session ends",
	Long: `When enabled, an issue moved by automation is returned to the status it
had before the session started, once the session ends.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"on", "off"},
	RunE: func(cmd *cobra.Command, args []string) error {
		rules, err := config.AutomationRules()
		if err != nil {
			return err
		}
		switch args[0] {
		case "on":
			rules.AutoRevertOnSessionEnd = true
		case "off":
			rules.AutoRevertOnSessionEnd = false
		default:
			return fmt.Errorf("expected 'on' or 'off', got %q", args[0])
		}
		if err := config.SaveAutomationRules(rules); err != nil {
			return err
		}
		if rules.AutoRevertOnSessionEnd {
			fmt.Println(ui.RenderSuccess("✓ Auto-revert on session end enabled"))
		} else {
			fmt.Println(ui.RenderMuted("Auto-revert on session end disabled"))
		}
		return nil
	},
}

var automationResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the default automation rules",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.SaveAutomationRules(automation.DefaultConfig()); err != nil {
			return err
		}
		fmt.Println(ui.RenderSuccess("✓ Automation rules reset to defaults"))
		return nil
	},
}

func init() {
	automationCmd.AddCommand(automationShowCmd)
	automationCmd.AddCommand(automationEnableCmd)
	automationCmd.AddCommand(automationDisableCmd)
	automationCmd.AddCommand(automationAutoRevertCmd)
	automationCmd.AddCommand(automationResetCmd)
	rootCmd.AddCommand(automationCmd)
}
