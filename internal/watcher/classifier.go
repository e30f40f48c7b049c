package watcher

import (
	"path/filepath"
	"strings"

	"github.com/devpeace/devpeace/internal/gitinspect"
)

// classifier holds the per-root memory needed to turn repeated raw
// notifications into single meaningful signals: the last seen branch, the
// set of already-reported commits, and which roots have been entered.
//
// It is not safe for concurrent use; the watcher run loop is its only
// caller.
type classifier struct {
	ignorePatterns []string

	lastBranch      map[string]string
	reportedCommits map[string]bool
	entered         map[string]bool
}

func newClassifier(ignorePatterns []string) *classifier {
	return &classifier{
		ignorePatterns:  ignorePatterns,
		lastBranch:      make(map[string]string),
		reportedCommits: make(map[string]bool),
		entered:         make(map[string]bool),
	}
}

// classify maps one notification path to zero or more signals. Evaluation
// order mirrors the priority of the underlying git operations: ref updates
// beat commit logs beat ordinary file writes.
func (c *classifier) classify(name string) []Event {
	base := filepath.Base(name)
	parent := filepath.Base(filepath.Dir(name))
	grandparent := filepath.Base(filepath.Dir(filepath.Dir(name)))

	switch {
	case base == "HEAD" && parent == ".git":
		root := gitinspect.RepoRoot(filepath.Dir(filepath.Dir(name)))
		if root == "" {
			return nil
		}
		events := c.repoEntry(root)
		return append(events, c.branchChange(root)...)

	case base == "index" && parent == ".git":
		root := gitinspect.RepoRoot(filepath.Dir(filepath.Dir(name)))
		if root == "" {
			return nil
		}
		return c.repoEntry(root)

	case base == "HEAD" && parent == "logs" && grandparent == ".git":
		root := gitinspect.RepoRoot(filepath.Dir(filepath.Dir(filepath.Dir(name))))
		if root == "" {
			return nil
		}
		return c.commit(root)

	case isGitInternal(name):
		return nil

	default:
		root := gitinspect.RepoRoot(filepath.Dir(name))
		if root == "" {
			return nil
		}
		rel, err := filepath.Rel(root, name)
		if err != nil || c.ignored(rel) {
			return nil
		}
		// A checkout can land between HEAD notifications and file writes;
		// re-check the branch before attributing the modification.
		events := c.branchChange(root)
		return append(events, Event{Kind: KindFileModified, Root: root, RelPath: rel})
	}
}

// repoEntry fires once per root, the first time any of its git bookkeeping
// files is touched.
func (c *classifier) repoEntry(root string) []Event {
	if c.entered[root] {
		return nil
	}
	c.entered[root] = true

	branch := gitinspect.CurrentBranch(root)
	if branch != "" {
		if _, tracked := c.lastBranch[root]; !tracked {
			c.lastBranch[root] = branch
		}
	}
	return []Event{{Kind: KindRepoEntry, Root: root, Branch: branch}}
}

// branchChange compares the checked-out branch against the remembered one.
// The first observation of a root initializes the memory without firing.
func (c *classifier) branchChange(root string) []Event {
	newBranch := gitinspect.CurrentBranch(root)
	if newBranch == "" {
		return nil
	}

	oldBranch, tracked := c.lastBranch[root]
	c.lastBranch[root] = newBranch
	if !tracked || oldBranch == newBranch {
		return nil
	}
	return []Event{{Kind: KindBranchChange, Root: root, OldBranch: oldBranch, Branch: newBranch}}
}

// commit reads the latest commit id from the reflog and fires once per id.
func (c *classifier) commit(root string) []Event {
	id := gitinspect.LatestCommit(root)
	if id == "" {
		return nil
	}
	key := root + ":" + id
	if c.reportedCommits[key] {
		return nil
	}
	c.reportedCommits[key] = true

	return []Event{{
		Kind:          KindCommit,
		Root:          root,
		CommitID:      id,
		CommitMessage: gitinspect.CommitMessage(root, id),
	}}
}

// ignored matches a root-relative path against the configured ignore
// patterns. Directory patterns ("node_modules/*") match any path under that
// directory; plain patterns match the file name.
func (c *classifier) ignored(rel string) bool {
	base := filepath.Base(rel)
	segments := strings.Split(filepath.ToSlash(rel), "/")

	for _, pattern := range c.ignorePatterns {
		if dir, ok := strings.CutSuffix(pattern, "/*"); ok {
			for _, segment := range segments[:len(segments)-1] {
				if segment == dir {
					return true
				}
			}
			continue
		}
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}
	return false
}

func isGitInternal(name string) bool {
	for _, segment := range strings.Split(filepath.ToSlash(name), "/") {
		if segment == ".git" {
			return true
		}
	}
	return false
}
