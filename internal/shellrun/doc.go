// Package shellrun runs the tether host as a foreground process: per-run log
// files, log retention, the pid file, the IPC server, and signal-driven
// shutdown.
package shellrun
