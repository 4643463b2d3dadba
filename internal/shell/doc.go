// Package shell is the application host the desktop UI talks to.
//
// A Shell owns exactly one backend Supervisor and one ready Notifier; there
// is no package-level state. Start acquires a flock in the log directory so
// only one host supervises a backend at a time, schedules the ready event
// under the host context, and serves the HTTP API when a bind address is
// configured. With autostart enabled the backend is started when ready
// fires, which reproduces the desktop flow where the UI reacts to the ready
// event by issuing a start command.
//
// Stop tears the host down in reverse order and, unless stop_on_exit is
// disabled, stops the backend too. Shutdown errors are collected rather than
// short-circuiting so every resource gets a chance to release.
package shell
