// Package logs reads host and backend log files for the CLI: the last N
// lines, then optionally new lines as they are appended.
package logs
