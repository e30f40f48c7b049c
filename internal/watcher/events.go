// Package watcher turns raw filesystem notifications on watched working
// trees into classified activity signals: repository entry, branch changes,
// commits, and plain file modifications.
package watcher

// Kind classifies an activity signal.
type Kind string

const (
	KindRepoEntry    Kind = "repo_entry"
	KindBranchChange Kind = "branch_change"
	KindFileModified Kind = "file_modified"
	KindCommit       Kind = "commit"
)

// Event is one classified signal. Root is always the working tree root the
// signal belongs to; the remaining fields are populated per kind.
type Event struct {
	Kind Kind
	Root string

	// Branch is the current branch for repo_entry, the new branch for
	// branch_change.
	Branch    string
	OldBranch string

	// RelPath is set for file_modified, relative to Root.
	RelPath string

	// Commit fields are set for commit events.
	CommitID      string
	CommitMessage string
}
