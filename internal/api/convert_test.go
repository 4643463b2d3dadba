package api

import (
	"errors"
	"syscall"
	"testing"
	"time"

	"tether/internal/deps"
	"tether/internal/readiness"
	"tether/internal/supervisor"
)

func TestFromCommand(t *testing.T) {
	ok := FromCommand(supervisor.StatusAlreadyRunning, nil)
	if !ok.OK() || ok.Status != "already-running" || ok.Message != "Backend already running" {
		t.Fatalf("unexpected success result %#v", ok)
	}

	failed := FromCommand("", &supervisor.LaunchError{Command: "python manage.py", Err: errors.New("boom")})
	if failed.OK() || failed.Status != "" {
		t.Fatalf("failure must carry only an error, got %#v", failed)
	}
	if failed.Error == "" {
		t.Fatal("expected error text")
	}
}

func TestFromStateFormatsTimestamps(t *testing.T) {
	started := time.Date(2024, 5, 1, 10, 0, 0, 0, time.FixedZone("X", 3600))
	state := supervisor.State{Running: true, PID: 42, StartedAt: started, Command: "python manage.py"}
	cmd := supervisor.Command{Dir: "/srv/profit", StopSignal: syscall.SIGKILL}

	got := FromState(state, cmd)
	if got.StartedAt != "2024-05-01T09:00:00.000Z" {
		t.Fatalf("unexpected startedAt %q", got.StartedAt)
	}
	if got.StopSignal != "SIGKILL" {
		t.Fatalf("unexpected stop signal %q", got.StopSignal)
	}
	if !ParseTime(got.StartedAt).Equal(started) {
		t.Fatalf("round trip mismatch: %v", ParseTime(got.StartedAt))
	}

	empty := FromState(supervisor.State{}, cmd)
	if empty.StartedAt != "" || empty.Running {
		t.Fatalf("expected empty backend status, got %#v", empty)
	}
}

func TestFromEventAndDependencies(t *testing.T) {
	at := time.Date(2024, 5, 1, 10, 0, 2, 0, time.UTC)
	event := FromEvent(readiness.Event{Name: "ready", At: at})
	if event.Name != "ready" || event.At != "2024-05-01T10:00:02.000Z" {
		t.Fatalf("unexpected event %#v", event)
	}

	converted := FromDependencies([]deps.Status{{Name: "Backend", Command: "python", Available: false, Detail: "missing"}})
	if len(converted) != 1 || converted[0].Detail != "missing" || converted[0].Available {
		t.Fatalf("unexpected dependencies %#v", converted)
	}
	if ParseTime("garbage") != (time.Time{}) {
		t.Fatal("expected zero time for malformed input")
	}
}
