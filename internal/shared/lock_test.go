package shared

import (
	"errors"
	"os/exec"
	"path/filepath"
	"testing"
)

func TestAcquireLock(t *testing.T) {
	t.Run("second acquire fails while held", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "popcorn.db.lock")

		first, err := AcquireLock(path)
		if err != nil {
			t.Fatalf("failed to acquire lock: %v", err)
		}
		defer first.Release()

		if first.Path() != path {
			t.Errorf("expected lock path %s, got %s", path, first.Path())
		}

		if _, err := AcquireLock(path); !errors.Is(err, ErrStoreLocked) {
			t.Errorf("expected ErrStoreLocked, got %v", err)
		}
	})

	t.Run("release allows reacquire", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "popcorn.db.lock")

		first, err := AcquireLock(path)
		if err != nil {
			t.Fatalf("failed to acquire lock: %v", err)
		}
		if err := first.Release(); err != nil {
			t.Fatalf("failed to release lock: %v", err)
		}

		second, err := AcquireLock(path)
		if err != nil {
			t.Fatalf("expected reacquire to succeed, got %v", err)
		}
		second.Release()
	})

	t.Run("nil release", func(t *testing.T) {
		var l *StoreLock
		if err := l.Release(); err != nil {
			t.Errorf("expected nil release to be a no-op, got %v", err)
		}
	})
}

func TestOpenBrowser(t *testing.T) {
	origRuntime, origStart := getRuntime, startCommand
	t.Cleanup(func() { getRuntime, startCommand = origRuntime, origStart })

	var started *exec.Cmd
	startCommand = func(cmd *exec.Cmd) error {
		started = cmd
		return nil
	}

	t.Run("linux uses xdg-open", func(t *testing.T) {
		getRuntime = func() string { return "linux" }
		if err := OpenBrowser(IMDbURL("tt0111161")); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if filepath.Base(started.Args[0]) != "xdg-open" {
			t.Errorf("expected xdg-open, got %v", started.Args)
		}
		if started.Args[1] != "https://www.imdb.com/title/tt0111161/" {
			t.Errorf("unexpected url %s", started.Args[1])
		}
	})

	t.Run("unsupported platform", func(t *testing.T) {
		getRuntime = func() string { return "plan9" }
		if err := OpenBrowser("https://example.com"); err == nil {
			t.Error("expected error for unsupported platform")
		}
	})

	t.Run("start failure", func(t *testing.T) {
		getRuntime = func() string { return "darwin" }
		startCommand = func(*exec.Cmd) error { return errors.New("boom") }
		if err := OpenBrowser("https://example.com"); err == nil {
			t.Error("expected error when command fails to start")
		}
	})
}
