package supervisor

// Status is the successful outcome of a Start or Stop command.
type Status string

const (
	StatusStarted        Status = "started"
	StatusAlreadyRunning Status = "already-running"
	StatusStopped        Status = "stopped"
	StatusNotRunning     Status = "not-running"
)

// Message returns the sentence the shell surfaces for the status.
func (s Status) Message() string {
	switch s {
	case StatusStarted:
		return "Backend started"
	case StatusAlreadyRunning:
		return "Backend already running"
	case StatusStopped:
		return "Backend stopped"
	case StatusNotRunning:
		return "Backend was not running"
	default:
		return string(s)
	}
}
