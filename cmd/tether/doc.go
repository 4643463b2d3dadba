// Package main hosts the tether CLI entrypoint and command graph.
//
// The Cobra command tree runs the host in the foreground, and translates
// backend start/stop, status, and wait-ready invocations into IPC calls
// against a running host. Configuration resolution and socket discovery are
// centralized in the command context so subcommands stay declarative.
package main
