// Package hostctl launches a detached tether host and shuts a running one
// down from the CLI.
package hostctl
