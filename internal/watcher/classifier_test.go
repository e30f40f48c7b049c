package watcher

import (
	"os"
	"path/filepath"
	"testing"
)

// makeRepo lays out the minimal .git structure the classifier reads.
func makeRepo(t *testing.T, branch string) string {
	t.Helper()
	root := t.TempDir()
	for _, dir := range []string{
		filepath.Join(".git", "refs", "heads"),
		filepath.Join(".git", "logs"),
	} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o750); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
	writeFile(t, root, ".git/HEAD", "ref: refs/heads/"+branch+"\n")
	writeFile(t, root, ".git/refs/heads/"+branch, "0123456789012345678901234567890123456789\n")
	return root
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("mkdir for %s: %v", rel, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}

func switchBranch(t *testing.T, root, branch string) {
	t.Helper()
	writeFile(t, root, ".git/refs/heads/"+branch, "0123456789012345678901234567890123456789\n")
	writeFile(t, root, ".git/HEAD", "ref: refs/heads/"+branch+"\n")
}

func headPath(root string) string {
	return filepath.Join(root, ".git", "HEAD")
}

func TestClassifyRepoEntryOnce(t *testing.T) {
	root := makeRepo(t, "main")
	c := newClassifier(nil)

	events := c.classify(headPath(root))
	if len(events) != 1 {
		t.Fatalf("len(events) = %d, want 1", len(events))
	}
	if events[0].Kind != KindRepoEntry || events[0].Root != root || events[0].Branch != "main" {
		t.Errorf("entry event = %+v", events[0])
	}

	// Second touch of the same root is silent.
	if events := c.classify(headPath(root)); len(events) != 0 {
		t.Errorf("repeat entry events = %+v", events)
	}

	// index touches also count as entry for a fresh root.
	other := makeRepo(t, "develop")
	events = c.classify(filepath.Join(other, ".git", "index"))
	if len(events) != 1 || events[0].Kind != KindRepoEntry || events[0].Branch != "develop" {
		t.Errorf("index entry events = %+v", events)
	}
}

func TestClassifyBranchChange(t *testing.T) {
	root := makeRepo(t, "main")
	c := newClassifier(nil)

	// First HEAD observation initializes, it is not a change.
	events := c.classify(headPath(root))
	for _, e := range events {
		if e.Kind == KindBranchChange {
			t.Errorf("branch change fired on initialization: %+v", e)
		}
	}

	switchBranch(t, root, "feature/PROJ-1-login")
	events = c.classify(headPath(root))
	if len(events) != 1 {
		t.Fatalf("len(events) = %d, want 1", len(events))
	}
	e := events[0]
	if e.Kind != KindBranchChange || e.OldBranch != "main" || e.Branch != "feature/PROJ-1-login" {
		t.Errorf("branch change = %+v", e)
	}

	// Same branch again: no event.
	if events := c.classify(headPath(root)); len(events) != 0 {
		t.Errorf("no-op HEAD touch events = %+v", events)
	}
}

func TestClassifyCommitDeduped(t *testing.T) {
	root := makeRepo(t, "main")
	c := newClassifier(nil)
	c.classify(headPath(root))

	logPath := filepath.Join(root, ".git", "logs", "HEAD")
	writeFile(t, root, ".git/logs/HEAD",
		"0000000000000000000000000000000000000000 aaaa111122223333444455556666777788889999 Dev <dev@example.com> 1700000000 +0000\tcommit (initial): first\n")

	events := c.classify(logPath)
	if len(events) != 1 {
		t.Fatalf("len(events) = %d, want 1", len(events))
	}
	if events[0].Kind != KindCommit || events[0].CommitID != "aaaa111122223333444455556666777788889999" {
		t.Errorf("commit event = %+v", events[0])
	}

	// Replayed notification for the same commit id is swallowed.
	if events := c.classify(logPath); len(events) != 0 {
		t.Errorf("replayed commit events = %+v", events)
	}

	// A new commit id fires again.
	writeFile(t, root, ".git/logs/HEAD",
		"0000000000000000000000000000000000000000 aaaa111122223333444455556666777788889999 Dev <dev@example.com> 1700000000 +0000\tcommit (initial): first\n"+
			"aaaa111122223333444455556666777788889999 bbbb111122223333444455556666777788889999 Dev <dev@example.com> 1700000100 +0000\tcommit: second\n")
	events = c.classify(logPath)
	if len(events) != 1 || events[0].CommitID != "bbbb111122223333444455556666777788889999" {
		t.Errorf("second commit events = %+v", events)
	}
}

func TestClassifyFileModification(t *testing.T) {
	root := makeRepo(t, "main")
	c := newClassifier([]string{"*.tmp", "node_modules/*"})
	c.classify(headPath(root))

	target := filepath.Join(root, "src", "main.go")
	writeFile(t, root, "src/main.go", "package main\n")

	events := c.classify(target)
	if len(events) != 1 {
		t.Fatalf("len(events) = %d, want 1", len(events))
	}
	if events[0].Kind != KindFileModified || events[0].RelPath != filepath.Join("src", "main.go") {
		t.Errorf("file event = %+v", events[0])
	}

	// Ignored patterns are dropped.
	writeFile(t, root, "build.tmp", "x")
	if events := c.classify(filepath.Join(root, "build.tmp")); len(events) != 0 {
		t.Errorf("ignored suffix events = %+v", events)
	}
	writeFile(t, root, "node_modules/pkg/index.js", "x")
	if events := c.classify(filepath.Join(root, "node_modules", "pkg", "index.js")); len(events) != 0 {
		t.Errorf("ignored dir events = %+v", events)
	}

	// Git internals that are not classified patterns stay silent.
	if events := c.classify(filepath.Join(root, ".git", "objects", "ab", "cdef")); len(events) != 0 {
		t.Errorf("git internal events = %+v", events)
	}

	// Paths outside any repository stay silent.
	outside := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(outside, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	if events := c.classify(outside); len(events) != 0 {
		t.Errorf("outside events = %+v", events)
	}
}

// TestClassifyFileModificationAfterCheckout covers the race where file
// writes arrive before the HEAD notification: the modification path itself
// re-checks the branch.
func TestClassifyFileModificationAfterCheckout(t *testing.T) {
	root := makeRepo(t, "main")
	c := newClassifier(nil)
	c.classify(headPath(root))

	switchBranch(t, root, "feature/PROJ-2")
	writeFile(t, root, "app.go", "package app\n")

	events := c.classify(filepath.Join(root, "app.go"))
	if len(events) != 2 {
		t.Fatalf("len(events) = %d, want 2", len(events))
	}
	if events[0].Kind != KindBranchChange || events[0].Branch != "feature/PROJ-2" {
		t.Errorf("first event = %+v, want branch change", events[0])
	}
	if events[1].Kind != KindFileModified || events[1].RelPath != "app.go" {
		t.Errorf("second event = %+v, want file modification", events[1])
	}
}
