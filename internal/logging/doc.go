// Package logging assembles structured slog loggers and formatting helpers used
// across tether.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes helpers so host components emit warnings and errors
// with consistent event_type, error_hint, and impact fields. The package also
// provides a no-op logger for tests and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup to ensure new
// components emit data with the same shape and routing guarantees as the rest
// of the system.
package logging
