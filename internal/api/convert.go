package api

import (
	"time"

	"golang.org/x/sys/unix"

	"tether/internal/deps"
	"tether/internal/readiness"
	"tether/internal/supervisor"
)

// FromCommand converts a supervisor operation outcome into a CommandResult.
func FromCommand(status supervisor.Status, err error) CommandResult {
	if err != nil {
		return CommandResult{Error: err.Error()}
	}
	return CommandResult{Status: string(status), Message: status.Message()}
}

// FromState converts a supervisor snapshot.
func FromState(state supervisor.State, cmd supervisor.Command) BackendStatus {
	return BackendStatus{
		Running:    state.Running,
		PID:        state.PID,
		StartedAt:  formatTime(state.StartedAt),
		Exited:     state.Exited,
		ExitError:  state.ExitError,
		Command:    state.Command,
		WorkingDir: cmd.Dir,
		StopSignal: unix.SignalName(cmd.StopSignal),
		LogPath:    cmd.OutputPath,
	}
}

// FromEvent converts a fired ready event.
func FromEvent(event readiness.Event) ReadyEvent {
	return ReadyEvent{Name: event.Name, At: formatTime(event.At)}
}

// FromDependencies converts preflight results.
func FromDependencies(statuses []deps.Status) []DependencyStatus {
	out := make([]DependencyStatus, len(statuses))
	for i, dep := range statuses {
		out[i] = DependencyStatus{
			Name:        dep.Name,
			Command:     dep.Command,
			Description: dep.Description,
			Optional:    dep.Optional,
			Available:   dep.Available,
			Detail:      dep.Detail,
		}
	}
	return out
}

// ParseTime parses an API timestamp. Empty or malformed values yield the zero time.
func ParseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	parsed, err := time.Parse(dateTimeFormat, value)
	if err != nil {
		return time.Time{}
	}
	return parsed
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}
