package automation

import (
	"encoding/json"
	"testing"
)

func TestFromSpecEventsShape(t *testing.T) {
	raw := []byte(`{
		"enabled": true,
		"auto_revert_on_session_end": true,
		"events": {
			"on_work_start": [
				{"from": ["To Do", "Open"], "to": "In Progress"}
			],
			"on_work_complete": [
				{"from": "In Progress", "to": "Done"}
			]
		}
	}`)

	cfg, err := FromSpec(raw)
	if err != nil {
		t.Fatalf("FromSpec: %v", err)
	}
	if !cfg.Enabled || !cfg.AutoRevertOnSessionEnd {
		t.Errorf("flags = %v/%v, want true/true", cfg.Enabled, cfg.AutoRevertOnSessionEnd)
	}
	if got := cfg.Match(EventWorkStart, "Open"); got != "In Progress" {
		t.Errorf("Match(work_start, Open) = %q", got)
	}
	// Single-string from still matches.
	if got := cfg.Match(EventWorkComplete, "In Progress"); got != "Done" {
		t.Errorf("Match(work_complete, In Progress) = %q", got)
	}
}

func TestFromSpecLegacyShape(t *testing.T) {
	// The event-keyed rules mapping older config files carry.
	raw := []byte(`{
		"enabled": true,
		"auto_revert_on_session_end": false,
		"rules": {
			"on_work_start": {
				"enabled": true,
				"from_status": ["To Do", "Open", "Backlog"],
				"to_status": "In Progress"
			},
			"on_first_commit": {
				"enabled": false,
				"from_status": ["To Do"],
				"to_status": "In Progress"
			},
			"on_work_complete": {
				"from_status": "In Progress",
				"to_status": "Done"
			}
		}
	}`)

	cfg, err := FromSpec(raw)
	if err != nil {
		t.Fatalf("FromSpec legacy: %v", err)
	}
	if !cfg.Enabled || cfg.AutoRevertOnSessionEnd {
		t.Errorf("flags = %v/%v, want true/false", cfg.Enabled, cfg.AutoRevertOnSessionEnd)
	}
	if got := cfg.Match(EventWorkStart, "Backlog"); got != "In Progress" {
		t.Errorf("Match(work_start, Backlog) = %q", got)
	}
	// A disabled rule is dropped on conversion.
	if got := cfg.Match(EventFirstCommit, "To Do"); got != "" {
		t.Errorf("Match(first_commit, To Do) = %q, want empty for disabled rule", got)
	}
	// A missing enabled flag counts as enabled; single-string from_status works.
	if got := cfg.Match(EventWorkComplete, "In Progress"); got != "Done" {
		t.Errorf("Match(work_complete, In Progress) = %q", got)
	}
}

func TestFromSpecUnknownEvent(t *testing.T) {
	raw := []byte(`{"enabled": true, "rules": {"on_coffee": {"from_status": "A", "to_status": "B"}}}`)
	if _, err := FromSpec(raw); err == nil {
		t.Fatal("FromSpec accepted unknown event name")
	}
}

func TestMatchFirstRuleWins(t *testing.T) {
	cfg := &Config{
		Enabled: true,
		Events: map[Event][]Rule{
			EventWorkStart: {
				{From: StatusList{"To Do"}, To: "In Progress"},
				{From: StatusList{"To Do"}, To: "Blocked"},
			},
		},
	}
	if got := cfg.Match(EventWorkStart, "To Do"); got != "In Progress" {
		t.Errorf("Match = %q, want first rule's target", got)
	}
	if got := cfg.Match(EventWorkStart, "Done"); got != "" {
		t.Errorf("Match(no rule) = %q, want empty", got)
	}
}

func TestStatusListRoundTrip(t *testing.T) {
	rule := Rule{From: StatusList{"To Do"}, To: "In Progress"}
	data, err := json.Marshal(rule)
	if err != nil {
		t.Fatal(err)
	}
	// Single-element lists serialize back to a bare string.
	if string(data) != `{"from":"To Do","to":"In Progress"}` {
		t.Errorf("marshaled rule = %s", data)
	}

	var back Rule
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if len(back.From) != 1 || back.From[0] != "To Do" {
		t.Errorf("round-tripped From = %v", back.From)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Enabled {
		t.Error("defaults ship enabled")
	}
	if got := cfg.Match(EventWorkStart, "Backlog"); got != "In Progress" {
		t.Errorf("default work_start rule = %q", got)
	}
	if got := cfg.Match(EventWorkComplete, "In Review"); got != "Done" {
		t.Errorf("default work_complete rule = %q", got)
	}
}
