package automation

import (
	"context"
	"log/slog"

	"github.com/devpeace/devpeace/internal/jira"
)

// Tracker is the slice of the issue-tracker client the engine needs.
type Tracker interface {
	GetIssue(ctx context.Context, key string) *jira.Issue
	TransitionIssue(ctx context.Context, key, targetStatus string) bool
}

// Engine applies the configured transition rules to tracked issues. All
// outcomes are reported as booleans: a false return means "no transition
// happened", which is a normal outcome (disabled, no matching rule, issue
// unreachable), not an error.
type Engine struct {
	config  *Config
	tracker Tracker
	logger  *slog.Logger
}

// NewEngine builds an engine. tracker may be nil, in which case every event
// is a no-op.
func NewEngine(config *Config, tracker Tracker, logger *slog.Logger) *Engine {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{config: config, tracker: tracker, logger: logger}
}

// Enabled reports whether automation is switched on.
func (e *Engine) Enabled() bool {
	return e.config.Enabled
}

// AutoRevertEnabled reports whether sessions revert issue status on end.
func (e *Engine) AutoRevertEnabled() bool {
	return e.config.AutoRevertOnSessionEnd
}

// OnWorkStart fires when a session opens on an issue.
func (e *Engine) OnWorkStart(ctx context.Context, issueKey string) bool {
	return e.ProcessEvent(ctx, EventWorkStart, issueKey)
}

// OnFirstCommit fires on the first commit observed within a session.
func (e *Engine) OnFirstCommit(ctx context.Context, issueKey string) bool {
	return e.ProcessEvent(ctx, EventFirstCommit, issueKey)
}

// OnWorkComplete fires when work on an issue is declared done.
func (e *Engine) OnWorkComplete(ctx context.Context, issueKey string) bool {
	return e.ProcessEvent(ctx, EventWorkComplete, issueKey)
}

// ProcessEvent fetches the issue's current remote status, finds the first
// matching rule for the event, and executes the transition. Returns true
// only when a transition was performed.
func (e *Engine) ProcessEvent(ctx context.Context, event Event, issueKey string) bool {
	if !e.config.Enabled || e.tracker == nil || issueKey == "" {
		return false
	}
	if len(e.config.Events[event]) == 0 {
		return false
	}

	issue := e.tracker.GetIssue(ctx, issueKey)
	if issue == nil {
		e.logger.Warn("issue not found for automation event", "issue", issueKey, "event", string(event))
		return false
	}

	target := e.config.Match(event, issue.Status)
	if target == "" {
		e.logger.Debug("no automation rule matched",
			"issue", issueKey, "event", string(event), "status", issue.Status)
		return false
	}

	e.logger.Info("automation transition",
		"issue", issueKey, "event", string(event), "from", issue.Status, "to", target)
	return e.tracker.TransitionIssue(ctx, issueKey, target)
}

// OnSessionEnd reverts an issue to the status it had when the session began.
// When the issue is already at its original status the revert is a no-op
// success.
func (e *Engine) OnSessionEnd(ctx context.Context, issueKey, originalStatus string) bool {
	if !e.config.Enabled || !e.config.AutoRevertOnSessionEnd || e.tracker == nil {
		return false
	}
	if issueKey == "" || originalStatus == "" {
		return false
	}

	issue := e.tracker.GetIssue(ctx, issueKey)
	if issue == nil {
		e.logger.Warn("issue not found for auto-revert", "issue", issueKey)
		return false
	}

	if issue.Status == originalStatus {
		e.logger.Debug("auto-revert not needed", "issue", issueKey, "status", originalStatus)
		return true
	}

	e.logger.Info("auto-reverting issue status",
		"issue", issueKey, "from", issue.Status, "to", originalStatus)
	return e.tracker.TransitionIssue(ctx, issueKey, originalStatus)
}
