package shell

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
	"github.com/hashicorp/go-multierror"
	"github.com/jonboulle/clockwork"

	"tether/internal/api"
	"tether/internal/config"
	"tether/internal/deps"
	"tether/internal/logging"
	"tether/internal/readiness"
	"tether/internal/supervisor"
)

// ErrLocked is returned by Start when another host holds the instance lock.
var ErrLocked = errors.New("another tether instance is already running")

// Shell wires the backend supervisor, the ready notifier, and the host
// surfaces into a single lifecycle.
type Shell struct {
	cfg        *config.Config
	logger     *slog.Logger
	supervisor *supervisor.Supervisor
	ready      *readiness.Notifier
	logPath    string

	lockPath string
	lock     *flock.Flock
	api      *apiServer

	running   atomic.Bool
	mu        sync.Mutex
	cancel    context.CancelFunc
	startedAt time.Time
}

// Option customizes a Shell.
type Option func(*options)

type options struct {
	launcher supervisor.Launcher
	clock    clockwork.Clock
	logPath  string
}

// WithLauncher replaces the os/exec backend launcher.
func WithLauncher(l supervisor.Launcher) Option {
	return func(o *options) { o.launcher = l }
}

// WithClock replaces the clock driving the ready timer.
func WithClock(clock clockwork.Clock) Option {
	return func(o *options) { o.clock = clock }
}

// WithLogPath records the host log file reported by Status.
func WithLogPath(path string) Option {
	return func(o *options) { o.logPath = path }
}

// BackendCommand derives the supervisor launch configuration from cfg.
func BackendCommand(cfg *config.Config) supervisor.Command {
	cmd := supervisor.Command{
		Path:         cfg.Backend.Command,
		Args:         append([]string(nil), cfg.Backend.Args...),
		Dir:          cfg.Backend.WorkingDir,
		Env:          append([]string(nil), cfg.Backend.Env...),
		StopSignal:   cfg.StopSignal(),
		ProcessGroup: cfg.Backend.KillProcessGroup,
	}
	if cfg.Backend.CaptureOutput {
		cmd.OutputPath = cfg.BackendLogPath()
	}
	return cmd
}

// New constructs a host with an empty backend slot and an unscheduled ready
// notifier.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Shell, error) {
	if cfg == nil {
		return nil, errors.New("shell requires config")
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	supOpts := []supervisor.Option{supervisor.WithLogger(logger)}
	if o.launcher != nil {
		supOpts = append(supOpts, supervisor.WithLauncher(o.launcher))
	}
	readyOpts := []readiness.Option{
		readiness.WithLogger(logger),
		readiness.WithEventName(cfg.Readiness.EventName),
	}
	if o.clock != nil {
		readyOpts = append(readyOpts, readiness.WithClock(o.clock))
	}

	lockPath := cfg.LockPath()
	s := &Shell{
		cfg:        cfg,
		logger:     logging.NewComponentLogger(logger, "shell"),
		supervisor: supervisor.New(BackendCommand(cfg), supOpts...),
		ready:      readiness.New(cfg.ReadyDelay(), readyOpts...),
		logPath:    o.logPath,
		lockPath:   lockPath,
		lock:       flock.New(lockPath),
	}
	s.api = newAPIServer(cfg, s, logger)
	return s, nil
}

// Start acquires the instance lock, schedules the ready event, and starts the
// HTTP API. A Shell can be started once.
func (s *Shell) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running.Load() {
		return errors.New("shell already running")
	}

	if err := os.MkdirAll(s.cfg.Paths.LogDir, 0o755); err != nil {
		return fmt.Errorf("ensure log directory: %w", err)
	}
	ok, err := s.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return ErrLocked
	}

	runCtx, cancel := context.WithCancel(ctx)
	if s.cfg.Readiness.Autostart {
		s.ready.OnReady(runCtx, s.autostart)
	}
	if err := s.ready.Schedule(runCtx); err != nil {
		cancel()
		_ = s.lock.Unlock()
		return fmt.Errorf("schedule ready event: %w", err)
	}
	if err := s.api.start(runCtx); err != nil {
		cancel()
		_ = s.lock.Unlock()
		return err
	}

	s.cancel = cancel
	s.startedAt = time.Now()
	s.running.Store(true)
	s.logger.Info("tether host started",
		logging.String("lock", s.lockPath),
		logging.Duration("ready_delay", s.ready.Delay()),
		logging.Bool("autostart", s.cfg.Readiness.Autostart),
		logging.String(logging.FieldEventType, "host_started"))
	return nil
}

func (s *Shell) autostart(event readiness.Event) {
	// Serialized with Stop; a ready event that races shutdown must not leave
	// a backend behind.
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running.Load() {
		s.logger.Info("ready event after host stop; backend not started",
			logging.String("event", event.Name),
			logging.String(logging.FieldEventType, "backend_autostart_skipped"))
		return
	}
	s.logger.Info("starting backend on ready event",
		logging.String("event", event.Name),
		logging.String(logging.FieldEventType, "backend_autostart"))
	// Failures are logged by the supervisor and remain retryable by command.
	_, _ = s.supervisor.Start()
}

// Stop cancels the ready timer, stops the API, stops the backend when
// stop_on_exit is set, and releases the instance lock.
func (s *Shell) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running.Load() {
		return nil
	}

	var result *multierror.Error
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if err := s.api.stop(); err != nil {
		result = multierror.Append(result, fmt.Errorf("stop api: %w", err))
	}
	if s.cfg.Backend.StopOnExit {
		if _, err := s.supervisor.Stop(); err != nil {
			result = multierror.Append(result, fmt.Errorf("stop backend: %w", err))
		}
	}
	if err := s.lock.Unlock(); err != nil {
		result = multierror.Append(result, fmt.Errorf("release lock: %w", err))
	}
	s.running.Store(false)

	if err := result.ErrorOrNil(); err != nil {
		logging.WarnWithContext(s.logger, "tether host stopped with errors", "host_stop_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check for a leftover backend process"),
			logging.String(logging.FieldImpact, "backend may still be running"))
		return err
	}
	s.logger.Info("tether host stopped", logging.String(logging.FieldEventType, "host_stopped"))
	return nil
}

// Close releases resources held by the host.
func (s *Shell) Close() error {
	return s.Stop()
}

// StartBackend starts the backend if it is not already running.
func (s *Shell) StartBackend() (supervisor.Status, error) {
	return s.supervisor.Start()
}

// StopBackend stops the backend if one is running.
func (s *Shell) StopBackend() (supervisor.Status, error) {
	return s.supervisor.Stop()
}

// Ready exposes the ready notifier for listeners.
func (s *Shell) Ready() *readiness.Notifier {
	return s.ready
}

// Running reports whether the host has been started and not yet stopped.
func (s *Shell) Running() bool {
	return s.running.Load()
}

// APIAddr returns the bound HTTP address, or "" when the API is disabled or
// not yet listening.
func (s *Shell) APIAddr() string {
	return s.api.addr()
}

// LockPath returns the instance lock file path.
func (s *Shell) LockPath() string {
	return s.lockPath
}

// Status returns the aggregated host state.
func (s *Shell) Status() api.HostStatus {
	event, fired := s.ready.Fired()
	ready := api.ReadyStatus{
		Name:      s.ready.Name(),
		Fired:     fired,
		DelayMS:   s.ready.Delay().Milliseconds(),
		Autostart: s.cfg.Readiness.Autostart,
	}
	if fired {
		ready.FiredAt = api.FromEvent(event).At
	}
	return api.HostStatus{
		Running:      s.running.Load(),
		PID:          os.Getpid(),
		LockFilePath: s.lockPath,
		LogPath:      s.logPath,
		Backend:      api.FromState(s.supervisor.Snapshot(), s.supervisor.Command()),
		Ready:        ready,
		Dependencies: api.FromDependencies(deps.BackendPreflight(s.cfg)),
	}
}
