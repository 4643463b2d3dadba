// Package ipc exposes the host over JSON-RPC on a Unix socket and ships the
// matching client used by the CLI.
//
// Backend start and stop failures travel inside the response as an error
// string, the same shape the HTTP API returns, so RPC transport errors and
// command failures stay distinguishable on the client side.
package ipc
