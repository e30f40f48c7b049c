package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/devpeace/devpeace/internal/automation"
)

func initTestConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := Initialize(path); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	return path
}

func TestInitializeCreatesDefaultFile(t *testing.T) {
	path := initTestConfig(t)

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not created: %v", err)
	}
	if FilePath() != path {
		t.Errorf("FilePath = %q, want %q", FilePath(), path)
	}

	if IsJiraConfigured() {
		t.Error("IsJiraConfigured = true with empty credentials")
	}
	if !AutoWorklog() {
		t.Error("AutoWorklog default = false")
	}
	if got := MinSessionMinutes(); got != 5 {
		t.Errorf("MinSessionMinutes default = %d, want 5", got)
	}
	if got := CommitCommentThreshold(); got != 1 {
		t.Errorf("CommitCommentThreshold default = %d, want 1", got)
	}
	if got := WorklogTemplate(); got != DefaultWorklogTemplate {
		t.Errorf("WorklogTemplate default = %q", got)
	}

	patterns := IgnorePatterns()
	if len(patterns) == 0 {
		t.Fatal("IgnorePatterns default is empty")
	}
	found := false
	for _, p := range patterns {
		if p == "node_modules/*" {
			found = true
		}
	}
	if !found {
		t.Errorf("default ignore patterns missing node_modules/*: %v", patterns)
	}
}

func TestInitializeReadsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	body := `{
		"jira_url": "https://jira.example.com",
		"jira_user": "dev@example.com",
		"jira_token": "secret",
		"min_session_minutes": 10
	}`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := Initialize(path); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	if !IsJiraConfigured() {
		t.Error("IsJiraConfigured = false with full credentials")
	}
	if got := JiraURL(); got != "https://jira.example.com" {
		t.Errorf("JiraURL = %q", got)
	}
	if got := MinSessionMinutes(); got != 10 {
		t.Errorf("MinSessionMinutes = %d, want 10", got)
	}
	// Keys absent from the file keep their defaults.
	if got := CommitCommentThreshold(); got != 1 {
		t.Errorf("CommitCommentThreshold = %d, want 1", got)
	}
}

func TestInitializeRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := Initialize(path); err == nil {
		t.Fatal("Initialize accepted malformed config")
	}
}

func TestSetPersists(t *testing.T) {
	path := initTestConfig(t)

	if err := Set("jira_url", "https://jira.example.com"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	// Reload from disk to prove the write stuck.
	if err := Initialize(path); err != nil {
		t.Fatal(err)
	}
	if got := JiraURL(); got != "https://jira.example.com" {
		t.Errorf("JiraURL after reload = %q", got)
	}
}

func TestAutomationRulesDefaultWhenAbsent(t *testing.T) {
	initTestConfig(t)

	rules, err := AutomationRules()
	if err != nil {
		t.Fatalf("AutomationRules: %v", err)
	}
	if rules.Enabled {
		t.Error("default automation enabled")
	}
	if len(rules.Events[automation.EventWorkStart]) == 0 {
		t.Error("default automation has no work-start rules")
	}
}

func TestAutomationRulesRoundTrip(t *testing.T) {
	path := initTestConfig(t)

	rules := automation.DefaultConfig()
	rules.Enabled = true
	rules.AutoRevertOnSessionEnd = true
	rules.Events[automation.EventWorkComplete] = []automation.Rule{
		{From: automation.StatusList{"In Progress"}, To: "Closed"},
	}
	if err := SaveAutomationRules(rules); err != nil {
		t.Fatalf("SaveAutomationRules: %v", err)
	}

	if err := Initialize(path); err != nil {
		t.Fatal(err)
	}
	got, err := AutomationRules()
	if err != nil {
		t.Fatalf("AutomationRules after reload: %v", err)
	}
	if !got.Enabled || !got.AutoRevertOnSessionEnd {
		t.Errorf("flags lost in round trip: %+v", got)
	}
	complete := got.Events[automation.EventWorkComplete]
	if len(complete) != 1 || complete[0].To != "Closed" {
		t.Errorf("work-complete rules = %+v", complete)
	}
}

func TestEnvironmentOverride(t *testing.T) {
	t.Setenv("DEVPEACE_JIRA_TOKEN", "from-env")
	initTestConfig(t)

	if got := JiraToken(); got != "from-env" {
		t.Errorf("JiraToken = %q, want env override", got)
	}
}
