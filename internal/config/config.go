package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/sys/unix"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory, socket, and bind address configuration.
type Paths struct {
	LogDir     string `toml:"log_dir"`
	SocketPath string `toml:"socket_path"`
	APIBind    string `toml:"api_bind"`
	APIToken   string `toml:"api_token"`
}

// Backend describes how the supervised backend process is launched and
// terminated. The values are fixed for the lifetime of the host.
type Backend struct {
	Command    string   `toml:"command"`
	Args       []string `toml:"args"`
	WorkingDir string   `toml:"working_dir"`
	Env        []string `toml:"env"`
	// StopSignal is the signal delivered by stop. Default: SIGKILL.
	StopSignal string `toml:"stop_signal"`
	// KillProcessGroup starts the backend in its own process group and
	// signals the whole group on stop.
	KillProcessGroup bool `toml:"kill_process_group"`
	// CaptureOutput appends backend stdout/stderr to backend.log in log_dir.
	CaptureOutput bool `toml:"capture_output"`
	// StopOnExit stops the backend when the host shuts down.
	StopOnExit bool `toml:"stop_on_exit"`
}

// Readiness controls the fixed-delay ready notification.
type Readiness struct {
	DelaySeconds int    `toml:"delay_seconds"`
	Autostart    bool   `toml:"autostart"`
	EventName    string `toml:"event_name"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for tether.
//
// Configuration sections by subsystem:
//   - Paths: log directory, IPC socket, and HTTP API bind address
//   - Backend: launch command, arguments, working directory, stop policy
//   - Readiness: ready event delay and autostart behaviour
//   - Logging: log format, level, and retention
type Config struct {
	Paths     Paths     `toml:"paths"`
	Backend   Backend   `toml:"backend"`
	Readiness Readiness `toml:"readiness"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/tether/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized. A relative backend working directory is resolved
// against the directory holding the configuration file when one exists.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	baseDir := ""
	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
		baseDir = filepath.Dir(resolvedPath)
	}

	if err := cfg.normalize(baseDir); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("tether.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for host operation.
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(c.Paths.LogDir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", c.Paths.LogDir, err)
	}
	if dir := filepath.Dir(c.Paths.SocketPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create socket directory %q: %w", dir, err)
		}
	}
	return nil
}

// StopSignal returns the parsed backend termination signal.
func (c *Config) StopSignal() syscall.Signal {
	if sig := unix.SignalNum(c.Backend.StopSignal); sig != 0 {
		return sig
	}
	return syscall.SIGKILL
}

// ReadyDelay returns the readiness heuristic delay.
func (c *Config) ReadyDelay() time.Duration {
	return time.Duration(c.Readiness.DelaySeconds) * time.Second
}

// LockPath returns the single-instance lock file location.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.LogDir, "tether.lock")
}

// PIDPath returns the host pid file location.
func (c *Config) PIDPath() string {
	return filepath.Join(c.Paths.LogDir, "tether.pid")
}

// BackendLogPath returns where captured backend output is appended.
func (c *Config) BackendLogPath() string {
	return filepath.Join(c.Paths.LogDir, "backend.log")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string, backend SampleBackend) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(backend.render()), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// SampleBackend overrides the backend launch settings written by
// CreateSample. Empty fields keep the sample defaults.
type SampleBackend struct {
	Command    string
	WorkingDir string
}

func (b SampleBackend) render() string {
	content := sampleConfig
	if cmd := strings.TrimSpace(b.Command); cmd != "" {
		content = strings.Replace(content, `command = "python"`, fmt.Sprintf("command = %q", cmd), 1)
	}
	if dir := strings.TrimSpace(b.WorkingDir); dir != "" {
		content = strings.Replace(content, `working_dir = "../profit"`, fmt.Sprintf("working_dir = %q", dir), 1)
	}
	return content
}
