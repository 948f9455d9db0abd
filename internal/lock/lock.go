package lock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/partman-wizard/partman-wizard/internal/config"
)

const DefaultPath = "~/.partman-wizard/wizard.lock"

// ErrHeld is returned by Acquire when a live process owns the lock.
var ErrHeld = errors.New("lock held")

// Acquire creates the lock file with the current process PID. A lock file
// left behind by a dead process is taken over.
func Acquire(path string) error {
	path = resolve(path)

	if held, pid, err := IsHeld(path); err == nil && held && pid != os.Getpid() {
		return fmt.Errorf("another partman-wizard instance is running (PID %d). Only one wizard can run at a time: %w", pid, ErrHeld)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating lock directory: %w", err)
	}

	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644)
}

// Release removes the lock file.
func Release(path string) error {
	err := os.Remove(resolve(path))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// IsHeld checks if the lock is currently held by a running process.
func IsHeld(path string) (bool, int, error) {
	data, err := os.ReadFile(resolve(path))
	if err != nil {
		if os.IsNotExist(err) {
			return false, 0, nil
		}
		return false, 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return false, 0, nil
	}
	return isProcessRunning(pid), pid, nil
}

func resolve(path string) string {
	if path == "" {
		path = DefaultPath
	}
	return config.ExpandHome(path)
}

func isProcessRunning(pid int) bool {
	if pid <= 0 {
		return false
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = process.Signal(syscall.Signal(0))
	return err == nil
}
