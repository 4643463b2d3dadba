package hostctl

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestReadPID(t *testing.T) {
	dir := t.TempDir()
	valid := filepath.Join(dir, "tether.pid")
	if err := os.WriteFile(valid, []byte("4242\n"), 0o644); err != nil {
		t.Fatalf("write pid: %v", err)
	}
	pid, err := ReadPID(valid)
	if err != nil || pid != 4242 {
		t.Fatalf("ReadPID: %d, %v", pid, err)
	}

	garbage := filepath.Join(dir, "garbage.pid")
	if err := os.WriteFile(garbage, []byte("nope"), 0o644); err != nil {
		t.Fatalf("write pid: %v", err)
	}
	if _, err := ReadPID(garbage); err == nil {
		t.Fatal("expected error for malformed pid file")
	}
	if _, err := ReadPID(filepath.Join(dir, "missing.pid")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestShutdownWithoutHost(t *testing.T) {
	dir := t.TempDir()
	_, err := Shutdown(filepath.Join(dir, "tether.sock"), filepath.Join(dir, "tether.pid"), time.Second)
	if !errors.Is(err, ErrHostNotRunning) {
		t.Fatalf("expected ErrHostNotRunning, got %v", err)
	}
}

func TestWaitForShutdownWithoutSocket(t *testing.T) {
	if err := WaitForShutdown(filepath.Join(t.TempDir(), "tether.sock"), time.Second); err != nil {
		t.Fatalf("expected immediate return, got %v", err)
	}
}

func TestWaitForClientTimesOut(t *testing.T) {
	_, err := WaitForClient(filepath.Join(t.TempDir(), "tether.sock"), 150*time.Millisecond)
	if err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestLaunchRequiresExecutable(t *testing.T) {
	if err := Launch("  ", LaunchOptions{}); err == nil {
		t.Fatal("expected error for empty executable")
	}
}
