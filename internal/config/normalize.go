package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize(baseDir string) error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeBackend(baseDir); err != nil {
		return err
	}
	c.normalizeReadiness()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.SocketPath = strings.TrimSpace(c.Paths.SocketPath)
	if c.Paths.SocketPath == "" {
		c.Paths.SocketPath = filepath.Join(c.Paths.LogDir, "tether.sock")
	} else if c.Paths.SocketPath, err = expandPath(c.Paths.SocketPath); err != nil {
		return fmt.Errorf("paths.socket_path: %w", err)
	}
	// An empty api_bind disables the HTTP API, so it is only trimmed.
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	if c.Paths.APIToken == "" {
		if value, ok := os.LookupEnv("TETHER_API_TOKEN"); ok {
			c.Paths.APIToken = strings.TrimSpace(value)
		}
	}
	return nil
}

func (c *Config) normalizeBackend(baseDir string) error {
	c.Backend.Command = strings.TrimSpace(c.Backend.Command)

	workDir := strings.TrimSpace(c.Backend.WorkingDir)
	if workDir != "" && baseDir != "" && !filepath.IsAbs(workDir) && !strings.HasPrefix(workDir, "~") {
		workDir = filepath.Join(baseDir, workDir)
	}
	var err error
	if c.Backend.WorkingDir, err = expandPath(workDir); err != nil {
		return fmt.Errorf("backend.working_dir: %w", err)
	}

	env := make([]string, 0, len(c.Backend.Env))
	for _, entry := range c.Backend.Env {
		if trimmed := strings.TrimSpace(entry); trimmed != "" {
			env = append(env, trimmed)
		}
	}
	c.Backend.Env = env

	sig := strings.ToUpper(strings.TrimSpace(c.Backend.StopSignal))
	if sig == "" {
		sig = defaultStopSignal
	}
	if !strings.HasPrefix(sig, "SIG") {
		sig = "SIG" + sig
	}
	c.Backend.StopSignal = sig
	return nil
}

func (c *Config) normalizeReadiness() {
	c.Readiness.EventName = strings.TrimSpace(c.Readiness.EventName)
	if c.Readiness.EventName == "" {
		c.Readiness.EventName = defaultReadyEventName
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
