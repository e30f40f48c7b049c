// Package config is the viper-backed configuration singleton. Settings live
// in ${XDG_CONFIG_HOME}/dev-peace/config.json; DEVPEACE_* environment
// variables override file values.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/devpeace/devpeace/internal/automation"
)

var v *viper.Viper

// DefaultWorklogTemplate is the header line of synthesized worklog
// descriptions.
const DefaultWorklogTemplate = "Development session recorded automatically"

// Initialize sets up the configuration singleton. Should be called once at
// application startup. An empty configFile selects the default location,
// creating it with defaults on first run.
func Initialize(configFile string) error {
	v = viper.New()
	v.SetConfigType("json")

	if configFile == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
		configFile = filepath.Join(dir, "config.json")
	}
	v.SetConfigFile(configFile)

	v.SetEnvPrefix("DEVPEACE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	setDefaults()

	if err := v.ReadInConfig(); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to read config: %w", err)
		}
		// First run: materialize the defaults so users have a file to edit.
		if writeErr := v.WriteConfigAs(configFile); writeErr != nil {
			return fmt.Errorf("failed to create config file: %w", writeErr)
		}
	}
	return nil
}

func setDefaults() {
	v.SetDefault("jira_url", "")
	v.SetDefault("jira_user", "")
	v.SetDefault("jira_token", "")
	v.SetDefault("auto_worklog", true)
	v.SetDefault("min_session_minutes", 5)
	v.SetDefault("commit_comment_threshold", 1)
	v.SetDefault("worklog_description_template", DefaultWorklogTemplate)
	v.SetDefault("monitoring.recursive", true)
	v.SetDefault("monitoring.ignore_patterns", []string{
		"*.tmp",
		"*.log",
		".DS_Store",
		"node_modules/*",
		".venv/*",
		"__pycache__/*",
	})
}

// Dir returns the application's config directory.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config directory: %w", err)
	}
	return filepath.Join(base, "dev-peace"), nil
}

// FilePath returns the path of the loaded config file.
func FilePath() string {
	return v.ConfigFileUsed()
}

// DatabasePath returns the SQLite database location, next to the config
// file.
func DatabasePath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "database.db"), nil
}

// PidFilePath returns the daemon's pid file location.
func PidFilePath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "daemon.pid"), nil
}

// LogFilePath returns the daemon's rotating log location.
func LogFilePath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "daemon.log"), nil
}

// JiraURL returns the tracker base URL.
func JiraURL() string { return v.GetString("jira_url") }

// JiraUser returns the tracker account name.
func JiraUser() string { return v.GetString("jira_user") }

// JiraToken returns the tracker API token.
func JiraToken() string { return v.GetString("jira_token") }

// IsJiraConfigured reports whether all tracker credentials are present.
func IsJiraConfigured() bool {
	return JiraURL() != "" && JiraUser() != "" && JiraToken() != ""
}

// AutoWorklog reports whether worklogs are emitted on session end.
func AutoWorklog() bool { return v.GetBool("auto_worklog") }

// MinSessionMinutes returns the minimum session length that produces a
// worklog.
func MinSessionMinutes() int { return v.GetInt("min_session_minutes") }

// CommitCommentThreshold returns the commit-message line count above which
// a commit is posted as an issue comment.
func CommitCommentThreshold() int { return v.GetInt("commit_comment_threshold") }

// WorklogTemplate returns the worklog description header.
func WorklogTemplate() string { return v.GetString("worklog_description_template") }

// IgnorePatterns returns the monitoring ignore patterns.
func IgnorePatterns() []string { return v.GetStringSlice("monitoring.ignore_patterns") }

// AutomationRules loads the status-automation configuration, accepting both
// the current and the legacy rule shapes. A missing section yields the
// shipped defaults.
func AutomationRules() (*automation.Config, error) {
	raw := v.Get("status_automation")
	if raw == nil {
		return automation.DefaultConfig(), nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to read automation rules: %w", err)
	}
	return automation.FromSpec(data)
}

// SaveAutomationRules persists the automation configuration.
func SaveAutomationRules(rules *automation.Config) error {
	data, err := json.Marshal(rules)
	if err != nil {
		return fmt.Errorf("failed to encode automation rules: %w", err)
	}
	var generic map[string]any
	if err := json.Unmarshal(data, &generic); err != nil {
		return fmt.Errorf("failed to encode automation rules: %w", err)
	}
	v.Set("status_automation", generic)
	return Save()
}

// Set stores one setting and persists the file.
func Set(key string, value any) error {
	v.Set(key, value)
	return Save()
}

// Save writes the current configuration back to its file.
func Save() error {
	if err := v.WriteConfig(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// All returns a copy of every setting, for display.
func All() map[string]any {
	return v.AllSettings()
}
