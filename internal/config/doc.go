// Package config loads, normalizes, and validates tether configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// TETHER_API_TOKEN. The Config type centralizes every knob the host and CLI
// need: where logs and sockets live, how the backend process is launched and
// terminated, and how long the readiness heuristic waits.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
