// Package api defines wire-format types and converters shared by the HTTP API
// and the JSON-RPC IPC layer.
//
// # Key Types
//
// CommandResult: outcome of a backend start or stop. Exactly one of Status
// or Error is set.
//
// HostStatus: aggregated host state including the backend snapshot, the ready
// event, and preflight checks.
//
// ReadyEvent: the one-shot ready notification as delivered to clients.
//
// # Design Notes
//
// DTOs use camelCase JSON tags for JavaScript/TypeScript consumers. Timestamps
// use RFC3339 with milliseconds and are omitted when unset.
package api
