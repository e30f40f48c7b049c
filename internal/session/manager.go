// Package session owns the per-repository work-session state machine. One
// Manager consumes the watcher's signal stream and performs all session and
// activity writes, all tracker calls, and all automation side effects, so
// the single-active-session rule needs no locking around the store.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/devpeace/devpeace/internal/automation"
	"github.com/devpeace/devpeace/internal/branch"
	"github.com/devpeace/devpeace/internal/jira"
	"github.com/devpeace/devpeace/internal/storage"
	"github.com/devpeace/devpeace/internal/watcher"
)

// Tracker is the slice of the issue-tracker client the manager needs. A nil
// tracker disables all remote side effects.
type Tracker interface {
	GetIssue(ctx context.Context, key string) *jira.Issue
	AddWorklog(ctx context.Context, key, timeSpent, comment string, started time.Time) string
	AddComment(ctx context.Context, key, body string) bool
	TransitionIssue(ctx context.Context, key, targetStatus string) bool
}

// Config carries the session-shaping knobs.
type Config struct {
	// AutoWorklog enables worklog emission when a session ends.
	AutoWorklog bool
	// MinSessionMinutes suppresses worklogs for sessions shorter than this.
	MinSessionMinutes int
	// CommitCommentThreshold is the line count above which a commit message
	// is posted as an issue comment.
	CommitCommentThreshold int
	// WorklogTemplate is the header line of synthesized worklog
	// descriptions.
	WorklogTemplate string
}

// Manager reduces classified signals against persisted session state.
type Manager struct {
	store   storage.Storage
	tracker Tracker
	engine  *automation.Engine
	cfg     Config
	logger  *slog.Logger

	// mu guards the maps: the Run goroutine owns all mutations, but the
	// supervisor reads counts and forces session ends from outside.
	mu           sync.Mutex
	active       map[string]int64 // repo root -> active session id
	firstCommits map[int64]bool   // session ids that already fired on_first_commit
}

// NewManager builds a manager. tracker may be nil; engine must not be.
func NewManager(store storage.Storage, tracker Tracker, engine *automation.Engine, cfg Config, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		store:        store,
		tracker:      tracker,
		engine:       engine,
		cfg:          cfg,
		logger:       logger,
		active:       make(map[string]int64),
		firstCommits: make(map[int64]bool),
	}
}

// Run consumes signals until the channel closes or ctx is canceled, then
// ends every active session.
func (m *Manager) Run(ctx context.Context, events <-chan watcher.Event) {
	for {
		select {
		case event, ok := <-events:
			if !ok {
				m.Shutdown(ctx)
				return
			}
			m.HandleEvent(ctx, event)
		case <-ctx.Done():
			// Session teardown still needs store access; use a fresh
			// context for the final writes.
			m.Shutdown(context.WithoutCancel(ctx))
			return
		}
	}
}

// HandleEvent processes one signal. A failure in one repository's handling
// is logged and isolated.
func (m *Manager) HandleEvent(ctx context.Context, event watcher.Event) {
	var err error
	switch event.Kind {
	case watcher.KindRepoEntry:
		err = m.handleRepoEntry(ctx, event)
	case watcher.KindBranchChange:
		err = m.handleBranchChange(ctx, event)
	case watcher.KindFileModified:
		err = m.handleFileModified(ctx, event)
	case watcher.KindCommit:
		err = m.handleCommit(ctx, event)
	}
	if err != nil {
		m.logger.Error("failed to process signal",
			"kind", string(event.Kind), "repo", event.Root, "error", err)
	}
}

func (m *Manager) handleRepoEntry(ctx context.Context, event watcher.Event) error {
	repo, err := m.store.GetRepositoryByPath(ctx, event.Root)
	if err != nil {
		return err
	}
	if repo == nil {
		// A watched path that was never registered; adopt it.
		if _, err := m.store.AddRepository(ctx, event.Root, filepath.Base(event.Root)); err != nil {
			return err
		}
		if repo, err = m.store.GetRepositoryByPath(ctx, event.Root); err != nil || repo == nil {
			return fmt.Errorf("repository %s not found after registration: %w", event.Root, err)
		}
	}
	if err := m.store.TouchRepository(ctx, repo.ID); err != nil {
		m.logger.Warn("failed to touch repository", "repo", repo.Path, "error", err)
	}

	existing, err := m.store.ActiveSessionForRepo(ctx, repo.ID)
	if err != nil {
		return err
	}
	if existing != nil {
		if existing.BranchName == event.Branch {
			// Continue the session already open on this branch.
			m.setActive(event.Root, existing.ID)
			m.logger.Info("continuing session", "repo", repo.Name, "branch", event.Branch)
			return nil
		}
		m.endSession(ctx, event.Root, existing.ID)
	}

	return m.openSession(ctx, repo, event.Root, event.Branch,
		storage.ActivityRepoEntered,
		fmt.Sprintf("Entered repository %s, branch: %s", repo.Name, event.Branch))
}

func (m *Manager) handleBranchChange(ctx context.Context, event watcher.Event) error {
	repo, err := m.store.GetRepositoryByPath(ctx, event.Root)
	if err != nil {
		return err
	}
	if repo == nil {
		return fmt.Errorf("repository %s not registered", event.Root)
	}
	m.logger.Info("branch change",
		"repo", repo.Name, "from", event.OldBranch, "to", event.Branch)

	existing, err := m.store.ActiveSessionForRepo(ctx, repo.ID)
	if err != nil {
		return err
	}
	if existing != nil {
		m.endSession(ctx, event.Root, existing.ID)
	}

	return m.openSession(ctx, repo, event.Root, event.Branch,
		storage.ActivityBranchChanged,
		fmt.Sprintf("Branch change: %s -> %s", event.OldBranch, event.Branch))
}

func (m *Manager) handleFileModified(ctx context.Context, event watcher.Event) error {
	sessionID, ok := m.activeSession(event.Root)
	if !ok {
		return nil
	}
	_, err := m.store.AddActivity(ctx, &storage.Activity{
		SessionID: sessionID,
		Type:      storage.ActivityFileModified,
		FilePath:  event.RelPath,
		Details:   "File modified: " + event.RelPath,
	})
	return err
}

func (m *Manager) handleCommit(ctx context.Context, event watcher.Event) error {
	sessionID, ok := m.activeSession(event.Root)
	if !ok {
		return nil
	}

	short := event.CommitID
	if len(short) > 8 {
		short = short[:8]
	}
	if _, err := m.store.AddActivity(ctx, &storage.Activity{
		SessionID:     sessionID,
		Type:          storage.ActivityCommit,
		CommitHash:    event.CommitID,
		CommitMessage: event.CommitMessage,
		Details:       fmt.Sprintf("Commit: %s - %s", short, firstLine(event.CommitMessage)),
	}); err != nil {
		return err
	}
	m.logger.Info("commit recorded", "repo", event.Root, "commit", short)

	session, err := m.store.GetSession(ctx, sessionID)
	if err != nil || session == nil {
		return err
	}

	if m.markFirstCommit(sessionID) {
		if session.JiraIssue != "" {
			if m.engine.OnFirstCommit(ctx, session.JiraIssue) {
				m.refreshCurrentStatus(ctx, sessionID, session.JiraIssue)
			}
		}
	}

	if session.JiraIssue != "" && m.tracker != nil &&
		lineCount(event.CommitMessage) > m.cfg.CommitCommentThreshold {
		comment := fmt.Sprintf("*Commit:* %s\n*Date:* %s\n*Message:* %s",
			short, time.Now().Format("02/01/2006 15:04"), event.CommitMessage)
		if m.tracker.AddComment(ctx, session.JiraIssue, comment) {
			m.logger.Info("commit comment posted", "issue", session.JiraIssue, "commit", short)
		}
	}
	return nil
}

// openSession creates a session for a branch, captures the issue's original
// tracker status, fires work-start automation, and records the opening
// activity. Sessions without a derivable issue get an orphan record right
// away.
func (m *Manager) openSession(ctx context.Context, repo *storage.Repository, root, branchName string, activityType storage.ActivityType, details string) error {
	issueKey := branch.ExtractIssue(branchName)

	sessionID, err := m.store.StartSession(ctx, repo.ID, branchName, issueKey, "", "")
	if err != nil {
		return err
	}
	m.setActive(root, sessionID)

	if _, err := m.store.AddActivity(ctx, &storage.Activity{
		SessionID: sessionID,
		Type:      activityType,
		Details:   details,
	}); err != nil {
		m.logger.Warn("failed to record opening activity", "session", sessionID, "error", err)
	}

	m.logger.Info("session started",
		"repo", repo.Name, "branch", branchName, "issue", issueKey, "session", sessionID)

	if issueKey == "" {
		if _, err := m.store.CreateOrphanRecord(ctx, sessionID, branchName); err != nil {
			m.logger.Warn("failed to create orphan record", "session", sessionID, "error", err)
		}
		return nil
	}

	// Capture the original status before automation moves anything, so
	// auto-revert has a target.
	originalStatus := ""
	if m.tracker != nil {
		if issue := m.tracker.GetIssue(ctx, issueKey); issue != nil {
			originalStatus = issue.Status
		}
	}

	transitioned := m.engine.OnWorkStart(ctx, issueKey)

	if originalStatus != "" {
		currentStatus := originalStatus
		if transitioned && m.tracker != nil {
			if issue := m.tracker.GetIssue(ctx, issueKey); issue != nil {
				currentStatus = issue.Status
			}
		}
		if err := m.store.UpdateSessionStatuses(ctx, sessionID, storage.SessionPatch{
			OriginalJiraStatus: &originalStatus,
			CurrentJiraStatus:  &currentStatus,
		}); err != nil {
			m.logger.Warn("failed to record tracker statuses", "session", sessionID, "error", err)
		}
	}
	return nil
}

// endSession closes a session: atomic completion in the store, auto-revert,
// then worklog emission. Remote failures never undo the local close.
func (m *Manager) endSession(ctx context.Context, root string, sessionID int64) {
	m.mu.Lock()
	delete(m.active, root)
	delete(m.firstCommits, sessionID)
	m.mu.Unlock()

	ended, err := m.store.EndSession(ctx, sessionID)
	if err != nil {
		m.logger.Error("failed to end session", "session", sessionID, "error", err)
		return
	}
	if ended == nil {
		return
	}
	m.logger.Info("session ended",
		"session", sessionID, "branch", ended.BranchName, "minutes", ended.TotalMinutes)

	if ended.JiraIssue != "" && ended.OriginalJiraStatus != "" {
		if m.engine.OnSessionEnd(ctx, ended.JiraIssue, ended.OriginalJiraStatus) {
			status := ended.OriginalJiraStatus
			if err := m.store.UpdateSessionStatuses(ctx, sessionID, storage.SessionPatch{
				CurrentJiraStatus: &status,
			}); err != nil {
				m.logger.Warn("failed to record reverted status", "session", sessionID, "error", err)
			}
		}
	}

	m.emitWorklog(ctx, ended)
}

// refreshCurrentStatus re-reads an issue's remote status after a successful
// automated transition.
func (m *Manager) refreshCurrentStatus(ctx context.Context, sessionID int64, issueKey string) {
	if m.tracker == nil {
		return
	}
	issue := m.tracker.GetIssue(ctx, issueKey)
	if issue == nil {
		return
	}
	if err := m.store.UpdateSessionStatuses(ctx, sessionID, storage.SessionPatch{
		CurrentJiraStatus: &issue.Status,
	}); err != nil {
		m.logger.Warn("failed to refresh tracker status", "session", sessionID, "error", err)
	}
}

// ForceEnd ends the active session for a repository path, if any.
func (m *Manager) ForceEnd(ctx context.Context, root string) bool {
	sessionID, ok := m.activeSession(root)
	if !ok {
		return false
	}
	m.endSession(ctx, root, sessionID)
	return true
}

// Shutdown ends every active session. Called on graceful stop.
func (m *Manager) Shutdown(ctx context.Context) {
	m.mu.Lock()
	snapshot := make(map[string]int64, len(m.active))
	for root, sessionID := range m.active {
		snapshot[root] = sessionID
	}
	m.mu.Unlock()

	for root, sessionID := range snapshot {
		m.endSession(ctx, root, sessionID)
	}
}

// ActiveCount returns the number of in-memory active sessions.
func (m *Manager) ActiveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.active)
}

func (m *Manager) setActive(root string, sessionID int64) {
	m.mu.Lock()
	m.active[root] = sessionID
	m.mu.Unlock()
}

func (m *Manager) activeSession(root string) (int64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sessionID, ok := m.active[root]
	return sessionID, ok
}

// markFirstCommit records a session's first commit; the return reports
// whether this call was the first.
func (m *Manager) markFirstCommit(sessionID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.firstCommits[sessionID] {
		return false
	}
	m.firstCommits[sessionID] = true
	return true
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func lineCount(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(strings.TrimRight(s, "\n"), "\n") + 1
}
