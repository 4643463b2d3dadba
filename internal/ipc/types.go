package ipc

import "tether/internal/api"

// BackendStartRequest is the payload for the BackendStart RPC.
type BackendStartRequest struct{}

// BackendStopRequest is the payload for the BackendStop RPC.
type BackendStopRequest struct{}

// CommandResponse reports the outcome of a backend command.
type CommandResponse struct {
	Result api.CommandResult `json:"result"`
}

// StatusRequest is the payload for the Status RPC.
type StatusRequest struct{}

// StatusResponse wraps the host status document.
type StatusResponse struct {
	Status api.HostStatus `json:"status"`
}

// WaitReadyRequest blocks until the ready event fires. A non-positive
// TimeoutMillis waits until the server shuts down.
type WaitReadyRequest struct {
	TimeoutMillis int64 `json:"timeout_millis"`
}

// WaitReadyResponse reports whether the ready event fired before the timeout.
type WaitReadyResponse struct {
	Fired bool           `json:"fired"`
	Event api.ReadyEvent `json:"event"`
}
