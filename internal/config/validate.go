package config

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"golang.org/x/sys/unix"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateBackend(); err != nil {
		return err
	}
	if err := c.validateReadiness(); err != nil {
		return err
	}
	if err := c.validatePaths(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateBackend() error {
	if c.Backend.Command == "" {
		return errors.New("backend.command must be set")
	}
	if unix.SignalNum(c.Backend.StopSignal) == 0 {
		return fmt.Errorf("backend.stop_signal: unknown signal %q", c.Backend.StopSignal)
	}
	for _, entry := range c.Backend.Env {
		if !strings.Contains(entry, "=") || strings.HasPrefix(entry, "=") {
			return fmt.Errorf("backend.env: entry %q must be KEY=VALUE", entry)
		}
	}
	return nil
}

func (c *Config) validateReadiness() error {
	if c.Readiness.DelaySeconds < 0 {
		return errors.New("readiness.delay_seconds must not be negative")
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.APIBind == "" {
		return nil
	}
	if _, _, err := net.SplitHostPort(c.Paths.APIBind); err != nil {
		return fmt.Errorf("paths.api_bind: %w", err)
	}
	return nil
}
