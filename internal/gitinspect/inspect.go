// Package gitinspect answers questions about git working trees by reading
// repository internals directly. Every lookup is fail-soft: a missing or
// unreadable repository yields a zero value, never an error, because the
// callers (the event classifier and session manager) must treat inspection
// failure as "no information".
package gitinspect

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

const headRefPrefix = "ref: refs/heads/"

// IsRepo reports whether path is the root of a git working tree. A `.git`
// entry that is a plain file (worktree checkouts) counts too.
func IsRepo(path string) bool {
	_, err := os.Stat(filepath.Join(path, ".git"))
	return err == nil
}

// RepoRoot walks upward from path until it finds a working tree root.
// Returns "" when no ancestor is a repository.
func RepoRoot(path string) string {
	current, err := filepath.Abs(path)
	if err != nil {
		return ""
	}
	for {
		if IsRepo(current) {
			return current
		}
		parent := filepath.Dir(current)
		if parent == current {
			return ""
		}
		current = parent
	}
}

// RepoName returns the directory name of a working tree root.
func RepoName(root string) string {
	return filepath.Base(root)
}

// GitDir resolves the actual git directory for a working tree root,
// following the `gitdir:` indirection that worktree checkouts use.
func GitDir(root string) string {
	dotGit := filepath.Join(root, ".git")
	info, err := os.Stat(dotGit)
	if err != nil {
		return ""
	}
	if info.IsDir() {
		return dotGit
	}

	// .git is a file pointing at the real git dir (worktree layout)
	data, err := os.ReadFile(dotGit)
	if err != nil {
		return ""
	}
	line := strings.TrimSpace(string(data))
	target, ok := strings.CutPrefix(line, "gitdir:")
	if !ok {
		return ""
	}
	target = strings.TrimSpace(target)
	if !filepath.IsAbs(target) {
		target = filepath.Join(root, target)
	}
	return filepath.Clean(target)
}

// commonDir resolves the shared git directory for a worktree git dir, where
// refs and packed-refs live. For a primary checkout it is the git dir itself.
func commonDir(gitDir string) string {
	data, err := os.ReadFile(filepath.Join(gitDir, "commondir"))
	if err != nil {
		return gitDir
	}
	target := strings.TrimSpace(string(data))
	if !filepath.IsAbs(target) {
		target = filepath.Join(gitDir, target)
	}
	return filepath.Clean(target)
}

// CurrentBranch returns the short name of the branch checked out at root.
// Returns "" for detached HEAD, unborn branches (no commits yet), and any
// read failure.
func CurrentBranch(root string) string {
	gitDir := GitDir(root)
	if gitDir == "" {
		return ""
	}

	data, err := os.ReadFile(filepath.Join(gitDir, "HEAD"))
	if err != nil {
		return ""
	}
	line := strings.TrimSpace(string(data))
	name, ok := strings.CutPrefix(line, headRefPrefix)
	if !ok {
		// Detached HEAD: a raw object id, no branch name to report.
		return ""
	}

	if !branchExists(commonDir(gitDir), name) {
		// HEAD points at a ref that was never created: unborn branch.
		return ""
	}
	return name
}

// branchExists checks loose refs first, then packed-refs.
func branchExists(commonDir, name string) bool {
	if _, err := os.Stat(filepath.Join(commonDir, "refs", "heads", name)); err == nil {
		return true
	}

	f, err := os.Open(filepath.Join(commonDir, "packed-refs"))
	if err != nil {
		return false
	}
	defer func() { _ = f.Close() }()

	want := "refs/heads/" + name
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "#") || strings.HasPrefix(line, "^") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) == 2 && fields[1] == want {
			return true
		}
	}
	return false
}

// LatestCommit reads the tail line of the HEAD reflog and returns the
// new commit id it records. Returns "" when the log is missing or empty.
func LatestCommit(root string) string {
	gitDir := GitDir(root)
	if gitDir == "" {
		return ""
	}

	data, err := os.ReadFile(filepath.Join(gitDir, "logs", "HEAD"))
	if err != nil {
		return ""
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	last := strings.TrimSpace(lines[len(lines)-1])
	if last == "" {
		return ""
	}

	// Format: <old-id> <new-id> <author> <timestamp> <message>
	parts := strings.SplitN(last, " ", 3)
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

// CommitMessage looks up a commit by id in the repository's object store and
// returns its trimmed message. Returns "" when the repository cannot be
// opened or the object is not a commit.
func CommitMessage(root, id string) string {
	repo, err := git.PlainOpen(root)
	if err != nil {
		return ""
	}
	commit, err := repo.CommitObject(plumbing.NewHash(id))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(commit.Message)
}
