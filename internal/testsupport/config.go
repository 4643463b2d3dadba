package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"tether/internal/config"
)

// BackendScript is the default stub backend: it stays alive until signalled.
const BackendScript = "#!/bin/sh\nexec sleep 30\n"

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The backend is a stub script in the temp tree, the API binds an ephemeral
// port, the ready delay is zero, and autostart is off.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.SocketPath = filepath.Join(base, "logs", "tether.sock")
	cfgVal.Paths.APIBind = "127.0.0.1:0"
	cfgVal.Backend.WorkingDir = filepath.Join(base, "backend")
	cfgVal.Backend.Command = filepath.Join(base, "bin", "backend")
	cfgVal.Backend.Args = nil
	cfgVal.Readiness.DelaySeconds = 0
	cfgVal.Readiness.Autostart = false

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	MkdirAll(t, cfgVal.Paths.LogDir)
	MkdirAll(t, cfgVal.Backend.WorkingDir)
	WriteExecutable(t, cfgVal.Backend.Command, BackendScript)

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithBackendScript replaces the stub backend body.
func WithBackendScript(script string) ConfigOption {
	return func(b *configBuilder) {
		WriteExecutable(b.t, b.cfg.Backend.Command, script)
	}
}

// WithMissingBackend points the backend command at a path that does not exist.
func WithMissingBackend() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Backend.Command = filepath.Join(b.baseDir, "bin", "missing-backend")
	}
}

// WithAutostart toggles starting the backend when the ready event fires.
func WithAutostart(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Readiness.Autostart = enabled
	}
}

// WithAPIBind overrides the HTTP bind address. Empty disables the API.
func WithAPIBind(bind string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.APIBind = bind
	}
}

// WithAPIToken sets the bearer token required by the HTTP API.
func WithAPIToken(token string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.APIToken = token
	}
}

// WithStopOnExit toggles stopping the backend on host shutdown.
func WithStopOnExit(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Backend.StopOnExit = enabled
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH for the duration of the test.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		binDir := filepath.Join(b.baseDir, "path-bin")
		for _, name := range names {
			WriteExecutable(b.t, filepath.Join(binDir, name), "#!/bin/sh\nexit 0\n")
		}

		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.LogDir)
}
