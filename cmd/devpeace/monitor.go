package main

import (
	"context"
	"log/slog"

	"github.com/devpeace/devpeace/internal/automation"
	"github.com/devpeace/devpeace/internal/config"
	"github.com/devpeace/devpeace/internal/jira"
	"github.com/devpeace/devpeace/internal/monitor"
	"github.com/devpeace/devpeace/internal/session"
	"github.com/devpeace/devpeace/internal/watcher"
)

// engineTracker converts a possibly-nil client into the automation
// interface without producing a non-nil interface around a nil pointer.
func engineTracker(c *jira.Client) automation.Tracker {
	if c == nil {
		return nil
	}
	return c
}

func managerTracker(c *jira.Client) session.Tracker {
	if c == nil {
		return nil
	}
	return c
}

// buildMonitor assembles the full monitoring stack from configuration:
// store, watcher, tracker, automation engine, session manager, supervisor.
// The returned cleanup closes the store.
func buildMonitor(ctx context.Context, logger *slog.Logger) (*monitor.Supervisor, func(), error) {
	store, err := openStore(ctx)
	if err != nil {
		return nil, nil, err
	}

	watch, err := watcher.New(config.IgnorePatterns(), logger)
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}

	tracker := newTracker(logger)
	if tracker != nil {
		if tracker.Connect(ctx) {
			logger.Info("issue tracker connected", "url", config.JiraURL())
		} else {
			logger.Warn("issue tracker unreachable, continuing offline")
		}
	} else {
		logger.Info("issue tracker not configured, running offline")
	}

	rules, err := config.AutomationRules()
	if err != nil {
		logger.Warn("invalid automation rules, automation disabled", "error", err)
		rules = automation.DefaultConfig()
	}
	engine := automation.NewEngine(rules, engineTracker(tracker), logger)

	manager := session.NewManager(store, managerTracker(tracker), engine, session.Config{
		AutoWorklog:            config.AutoWorklog(),
		MinSessionMinutes:      config.MinSessionMinutes(),
		CommitCommentThreshold: config.CommitCommentThreshold(),
		WorklogTemplate:        config.WorklogTemplate(),
	}, logger)

	sup := monitor.New(store, watch, manager, logger)
	cleanup := func() { _ = store.Close() }
	return sup, cleanup, nil
}
