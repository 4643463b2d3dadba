package deps

import "tether/internal/config"

// BackendPreflight returns the checks relevant to launching the configured
// backend. Results are informational; they never gate a start.
func BackendPreflight(cfg *config.Config) []Status {
	if cfg == nil {
		return nil
	}
	results := CheckBinaries([]Requirement{{
		Name:        "Backend",
		Command:     cfg.Backend.Command,
		Dir:         cfg.Backend.WorkingDir,
		Description: "Backend server executable",
	}})
	return append(results, CheckWorkingDir("Working directory", cfg.Backend.WorkingDir))
}
