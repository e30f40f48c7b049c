package automation

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/devpeace/devpeace/internal/jira"
)

// fakeTracker records transition calls and serves a fixed status per issue.
type fakeTracker struct {
	statuses    map[string]string
	transitions []string
	failNext    bool
}

func (f *fakeTracker) GetIssue(_ context.Context, key string) *jira.Issue {
	status, ok := f.statuses[key]
	if !ok {
		return nil
	}
	return &jira.Issue{Key: key, Status: status}
}

func (f *fakeTracker) TransitionIssue(_ context.Context, key, target string) bool {
	if f.failNext {
		f.failNext = false
		return false
	}
	f.transitions = append(f.transitions, key+"->"+target)
	f.statuses[key] = target
	return true
}

func testEngine(cfg *Config, tracker Tracker) *Engine {
	return NewEngine(cfg, tracker, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func enabledConfig() *Config {
	cfg := DefaultConfig()
	cfg.Enabled = true
	cfg.AutoRevertOnSessionEnd = true
	return cfg
}

func TestOnWorkStartTransitions(t *testing.T) {
	tracker := &fakeTracker{statuses: map[string]string{"PROJ-1": "To Do"}}
	engine := testEngine(enabledConfig(), tracker)

	if !engine.OnWorkStart(context.Background(), "PROJ-1") {
		t.Fatal("OnWorkStart did not transition")
	}
	if len(tracker.transitions) != 1 || tracker.transitions[0] != "PROJ-1->In Progress" {
		t.Errorf("transitions = %v", tracker.transitions)
	}
}

func TestDisabledEngineIsNoOp(t *testing.T) {
	tracker := &fakeTracker{statuses: map[string]string{"PROJ-1": "To Do"}}
	engine := testEngine(DefaultConfig(), tracker)

	if engine.OnWorkStart(context.Background(), "PROJ-1") {
		t.Error("disabled engine performed a transition")
	}
	if len(tracker.transitions) != 0 {
		t.Errorf("transitions = %v, want none", tracker.transitions)
	}
}

func TestNoMatchingRule(t *testing.T) {
	tracker := &fakeTracker{statuses: map[string]string{"PROJ-1": "Blocked"}}
	engine := testEngine(enabledConfig(), tracker)

	if engine.OnWorkStart(context.Background(), "PROJ-1") {
		t.Error("transition fired with no matching rule")
	}
}

func TestIssueNotFound(t *testing.T) {
	tracker := &fakeTracker{statuses: map[string]string{}}
	engine := testEngine(enabledConfig(), tracker)

	if engine.OnWorkStart(context.Background(), "PROJ-404") {
		t.Error("transition fired for missing issue")
	}
}

func TestOnWorkComplete(t *testing.T) {
	tracker := &fakeTracker{statuses: map[string]string{"PROJ-2": "In Progress"}}
	engine := testEngine(enabledConfig(), tracker)

	if !engine.OnWorkComplete(context.Background(), "PROJ-2") {
		t.Fatal("OnWorkComplete did not transition")
	}
	if tracker.statuses["PROJ-2"] != "Done" {
		t.Errorf("status = %q, want Done", tracker.statuses["PROJ-2"])
	}
}

func TestOnSessionEndReverts(t *testing.T) {
	tracker := &fakeTracker{statuses: map[string]string{"PROJ-3": "In Progress"}}
	engine := testEngine(enabledConfig(), tracker)

	if !engine.OnSessionEnd(context.Background(), "PROJ-3", "To Do") {
		t.Fatal("auto-revert failed")
	}
	if tracker.statuses["PROJ-3"] != "To Do" {
		t.Errorf("status = %q, want To Do", tracker.statuses["PROJ-3"])
	}
}

func TestOnSessionEndAlreadyOriginal(t *testing.T) {
	tracker := &fakeTracker{statuses: map[string]string{"PROJ-3": "To Do"}}
	engine := testEngine(enabledConfig(), tracker)

	// Current status equals original: success without a tracker call.
	if !engine.OnSessionEnd(context.Background(), "PROJ-3", "To Do") {
		t.Fatal("no-op revert reported failure")
	}
	if len(tracker.transitions) != 0 {
		t.Errorf("transitions = %v, want none", tracker.transitions)
	}
}

func TestOnSessionEndRevertDisabled(t *testing.T) {
	cfg := enabledConfig()
	cfg.AutoRevertOnSessionEnd = false
	tracker := &fakeTracker{statuses: map[string]string{"PROJ-3": "In Progress"}}
	engine := testEngine(cfg, tracker)

	if engine.OnSessionEnd(context.Background(), "PROJ-3", "To Do") {
		t.Error("revert fired with auto_revert_on_session_end off")
	}
}

func TestNilTracker(t *testing.T) {
	engine := testEngine(enabledConfig(), nil)
	if engine.OnWorkStart(context.Background(), "PROJ-1") {
		t.Error("engine without tracker performed a transition")
	}
	if engine.OnSessionEnd(context.Background(), "PROJ-1", "To Do") {
		t.Error("engine without tracker reverted")
	}
}
