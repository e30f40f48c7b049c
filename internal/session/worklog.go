package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/devpeace/devpeace/internal/jira"
	"github.com/devpeace/devpeace/internal/storage"
)

const recentCommitsInDescription = 3

// emitWorklog posts a worklog for an ended session and records the attempt.
// Emission is best-effort: a failed or suppressed worklog leaves the session
// untouched.
func (m *Manager) emitWorklog(ctx context.Context, session *storage.WorkSession) {
	if !m.cfg.AutoWorklog || m.tracker == nil || session.JiraIssue == "" {
		return
	}
	if session.TotalMinutes < m.cfg.MinSessionMinutes {
		m.logger.Debug("session below worklog minimum",
			"session", session.ID, "minutes", session.TotalMinutes, "minimum", m.cfg.MinSessionMinutes)
		return
	}

	activities, err := m.store.SessionActivities(ctx, session.ID)
	if err != nil {
		m.logger.Warn("failed to load activities for worklog", "session", session.ID, "error", err)
		return
	}
	description := m.describeSession(activities)
	if description == "" {
		m.logger.Debug("no activity to report, worklog suppressed", "session", session.ID)
		return
	}

	timeSpent := jira.FormatDuration(session.TotalMinutes)
	remoteID := m.tracker.AddWorklog(ctx, session.JiraIssue, timeSpent, description, session.StartTime)

	record := &storage.JiraWorklog{
		SessionID:        session.ID,
		JiraIssue:        session.JiraIssue,
		JiraWorklogID:    remoteID,
		TimeSpentMinutes: session.TotalMinutes,
		Description:      description,
		Status:           storage.WorklogSent,
	}
	if remoteID == "" {
		record.Status = storage.WorklogFailed
	}
	if _, err := m.store.AddWorklog(ctx, record); err != nil {
		m.logger.Warn("failed to record worklog", "session", session.ID, "error", err)
	}

	if remoteID != "" {
		if err := m.store.UpdateSessionStatuses(ctx, session.ID, storage.SessionPatch{
			JiraWorklogID: &remoteID,
		}); err != nil {
			m.logger.Warn("failed to link worklog to session", "session", session.ID, "error", err)
		}
		m.logger.Info("worklog emitted",
			"session", session.ID, "issue", session.JiraIssue, "time_spent", timeSpent)
	}
}

// describeSession synthesizes a worklog description from a session's
// activity log: the configured header, then bullets summarizing file and
// commit counts and the most recent commit messages. An empty activity log
// yields "", which suppresses the worklog.
func (m *Manager) describeSession(activities []*storage.Activity) string {
	if len(activities) == 0 {
		return ""
	}

	var (
		filesModified  int
		commitMessages []string
	)
	for _, a := range activities {
		switch a.Type {
		case storage.ActivityFileModified:
			filesModified++
		case storage.ActivityCommit:
			commitMessages = append(commitMessages, firstLine(a.CommitMessage))
		}
	}

	lines := []string{m.cfg.WorklogTemplate}
	if filesModified > 0 {
		lines = append(lines, fmt.Sprintf("- %d file(s) modified", filesModified))
	}
	if len(commitMessages) > 0 {
		lines = append(lines, fmt.Sprintf("- %d commit(s) made", len(commitMessages)))
		start := len(commitMessages) - recentCommitsInDescription
		if start < 0 {
			start = 0
		}
		for _, msg := range commitMessages[start:] {
			if msg != "" {
				lines = append(lines, "- "+msg)
			}
		}
	}
	return strings.Join(lines, "\n")
}
