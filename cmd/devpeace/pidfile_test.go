package main

import (
	"os"
	"testing"

	"github.com/devpeace/devpeace/internal/config"
)

func setupConfigDir(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	dir, err := config.Dir()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		t.Fatal(err)
	}
}

func TestDaemonLockSingleHolder(t *testing.T) {
	setupConfigDir(t)

	release, err := acquireDaemonLock()
	if err != nil {
		t.Fatalf("first acquire: %v", err)
	}

	if _, err := acquireDaemonLock(); err == nil {
		t.Error("second acquire succeeded while lock held")
	}

	pid, err := daemonPid()
	if err != nil {
		t.Fatalf("daemonPid: %v", err)
	}
	if pid != os.Getpid() {
		t.Errorf("daemonPid = %d, want %d", pid, os.Getpid())
	}

	release()

	pid, err = daemonPid()
	if err != nil {
		t.Fatal(err)
	}
	if pid != 0 {
		t.Errorf("daemonPid after release = %d, want 0", pid)
	}

	release2, err := acquireDaemonLock()
	if err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
	release2()
}
