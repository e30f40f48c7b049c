// Package automation moves tracked issues through their remote workflow in
// response to session events: work starting, the first commit of a session,
// work completing, and session end (auto-revert).
package automation

import (
	"encoding/json"
	"fmt"
)

// Event names the session moments a rule can fire on.
type Event string

const (
	EventWorkStart    Event = "on_work_start"
	EventFirstCommit  Event = "on_first_commit"
	EventWorkComplete Event = "on_work_complete"
)

// Events lists the recognized event names in firing order.
var Events = []Event{EventWorkStart, EventFirstCommit, EventWorkComplete}

// StatusList accepts either a single JSON string or an array of strings, so
// rule authors can write `"from": "To Do"` and `"from": ["To Do", "Open"]`
// interchangeably.
type StatusList []string

func (s *StatusList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*s = StatusList{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("from must be a string or array of strings: %w", err)
	}
	*s = StatusList(many)
	return nil
}

func (s StatusList) MarshalJSON() ([]byte, error) {
	if len(s) == 1 {
		return json.Marshal(s[0])
	}
	return json.Marshal([]string(s))
}

// Contains reports a case-sensitive membership test. Remote status names are
// compared exactly, matching what the tracker returns.
func (s StatusList) Contains(status string) bool {
	for _, v := range s {
		if v == status {
			return true
		}
	}
	return false
}

// Rule maps a set of source statuses to one destination status. The first
// rule whose From matches the issue's current remote status wins.
type Rule struct {
	From StatusList `json:"from"`
	To   string     `json:"to"`
}

// Config is the full status-automation configuration.
type Config struct {
	Enabled                bool             `json:"enabled"`
	AutoRevertOnSessionEnd bool             `json:"auto_revert_on_session_end"`
	Events                 map[Event][]Rule `json:"events"`
}

// legacyConfig is the shape older configurations wrote: a `rules` mapping
// keyed by event name, one rule per event, with `from_status`/`to_status`
// fields and a per-rule enabled flag.
type legacyConfig struct {
	Enabled                bool                 `json:"enabled"`
	AutoRevertOnSessionEnd bool                 `json:"auto_revert_on_session_end"`
	Rules                  map[Event]legacyRule `json:"rules"`
}

type legacyRule struct {
	Enabled    *bool      `json:"enabled"`
	FromStatus StatusList `json:"from_status"`
	ToStatus   string     `json:"to_status"`
}

// FromSpec decodes an automation configuration from raw JSON, accepting both
// the current events-keyed shape and the legacy event-keyed `rules` mapping.
// Legacy rules marked disabled are dropped; a missing enabled flag counts as
// enabled.
func FromSpec(data []byte) (*Config, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse automation config: %w", err)
	}

	if _, hasLegacy := probe["rules"]; hasLegacy {
		var legacy legacyConfig
		if err := json.Unmarshal(data, &legacy); err != nil {
			return nil, fmt.Errorf("failed to parse legacy automation config: %w", err)
		}
		cfg := &Config{
			Enabled:                legacy.Enabled,
			AutoRevertOnSessionEnd: legacy.AutoRevertOnSessionEnd,
			Events:                 emptyEvents(),
		}
		for event, r := range legacy.Rules {
			if !validEvent(event) {
				return nil, fmt.Errorf("unknown automation event %q", event)
			}
			if r.Enabled != nil && !*r.Enabled {
				continue
			}
			cfg.Events[event] = append(cfg.Events[event], Rule{From: r.FromStatus, To: r.ToStatus})
		}
		return cfg, nil
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse automation config: %w", err)
	}
	if cfg.Events == nil {
		cfg.Events = emptyEvents()
	}
	for event := range cfg.Events {
		if !validEvent(event) {
			return nil, fmt.Errorf("unknown automation event %q", event)
		}
	}
	return &cfg, nil
}

// DefaultConfig returns the shipped rule set: disabled, with sensible
// transitions ready to switch on.
func DefaultConfig() *Config {
	return &Config{
		Enabled:                false,
		AutoRevertOnSessionEnd: false,
		Events: map[Event][]Rule{
			EventWorkStart: {
				{From: StatusList{"To Do", "Open", "Backlog", "New"}, To: "In Progress"},
			},
			EventFirstCommit: {},
			EventWorkComplete: {
				{From: StatusList{"In Progress", "In Review"}, To: "Done"},
			},
		},
	}
}

func emptyEvents() map[Event][]Rule {
	return map[Event][]Rule{
		EventWorkStart:    {},
		EventFirstCommit:  {},
		EventWorkComplete: {},
	}
}

func validEvent(e Event) bool {
	for _, known := range Events {
		if e == known {
			return true
		}
	}
	return false
}

// Match walks the rules for an event in order and returns the destination
// status for the first rule matching the current status, or "" when none do.
func (c *Config) Match(event Event, currentStatus string) string {
	for _, rule := range c.Events[event] {
		if rule.From.Contains(currentStatus) {
			return rule.To
		}
	}
	return ""
}
