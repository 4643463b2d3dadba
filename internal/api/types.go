package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// CommandResult is returned by backend start and stop. A successful call
// carries Status; a failed call carries only Error.
type CommandResult struct {
	Status  string `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// OK reports whether the command succeeded.
func (r CommandResult) OK() bool {
	return r.Error == ""
}

// BackendStatus describes the supervised backend slot.
type BackendStatus struct {
	Running    bool   `json:"running"`
	PID        int    `json:"pid,omitempty"`
	StartedAt  string `json:"startedAt,omitempty"`
	Exited     bool   `json:"exited"`
	ExitError  string `json:"exitError,omitempty"`
	Command    string `json:"command"`
	WorkingDir string `json:"workingDir,omitempty"`
	StopSignal string `json:"stopSignal,omitempty"`
	LogPath    string `json:"logPath,omitempty"`
}

// ReadyEvent is the delivered form of the ready notification.
type ReadyEvent struct {
	Name string `json:"name"`
	At   string `json:"at"`
}

// ReadyStatus reports whether the ready event has fired.
type ReadyStatus struct {
	Name      string `json:"name"`
	Fired     bool   `json:"fired"`
	FiredAt   string `json:"firedAt,omitempty"`
	DelayMS   int64  `json:"delayMs"`
	Autostart bool   `json:"autostart"`
}

// DependencyStatus captures availability of a launch prerequisite.
type DependencyStatus struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description"`
	Optional    bool   `json:"optional"`
	Available   bool   `json:"available"`
	Detail      string `json:"detail,omitempty"`
}

// HostStatus aggregates host runtime information for API consumers.
type HostStatus struct {
	Running      bool               `json:"running"`
	PID          int                `json:"pid"`
	LockFilePath string             `json:"lockFilePath"`
	LogPath      string             `json:"logPath,omitempty"`
	Backend      BackendStatus      `json:"backend"`
	Ready        ReadyStatus        `json:"ready"`
	Dependencies []DependencyStatus `json:"dependencies"`
}
