package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/gofrs/flock"

	"github.com/devpeace/devpeace/internal/config"
)

// acquireDaemonLock takes the daemon's advisory lock and records our pid.
// The lock is held for the process lifetime; the caller releases it via the
// returned function. Flock-based detection is immune to pid reuse.
func acquireDaemonLock() (release func(), err error) {
	pidPath, err := config.PidFilePath()
	if err != nil {
		return nil, err
	}

	lock := flock.New(pidPath + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to lock daemon pid file: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("daemon already running (lock held on %s.lock)", pidPath)
	}

	if err := os.WriteFile(pidPath, []byte(strconv.Itoa(os.Getpid())), 0o600); err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("failed to write pid file: %w", err)
	}

	return func() {
		_ = os.Remove(pidPath)
		_ = lock.Unlock()
	}, nil
}

// daemonPid reads the recorded daemon pid. Returns 0 when no daemon is
// running.
func daemonPid() (int, error) {
	pidPath, err := config.PidFilePath()
	if err != nil {
		return 0, err
	}

	// If we can take the lock, nobody holds it and the pid file is stale.
	lock := flock.New(pidPath + ".lock")
	if locked, err := lock.TryLock(); err == nil && locked {
		_ = lock.Unlock()
		return 0, nil
	}

	data, err := os.ReadFile(pidPath)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read pid file: %w", err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("malformed pid file %s: %w", pidPath, err)
	}
	return pid, nil
}
