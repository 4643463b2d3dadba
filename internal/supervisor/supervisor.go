package supervisor

import (
	"log/slog"
	"sync"
	"syscall"
	"time"

	"tether/internal/logging"
)

// Supervisor manages at most one backend process.
type Supervisor struct {
	command  Command
	launcher Launcher
	logger   *slog.Logger
	now      func() time.Time

	mu   sync.Mutex
	slot *supervised
}

type supervised struct {
	proc      Process
	startedAt time.Time
}

// State is a point-in-time view of the slot for status surfaces.
type State struct {
	Running   bool
	PID       int
	StartedAt time.Time
	// Exited reports that the held process was reaped. The slot is not
	// cleared by this; only Stop empties it.
	Exited    bool
	ExitError string
	Command   string
}

// Option customizes a Supervisor.
type Option func(*Supervisor)

// WithLauncher replaces the os/exec launcher.
func WithLauncher(l Launcher) Option {
	return func(s *Supervisor) {
		if l != nil {
			s.launcher = l
		}
	}
}

// WithLogger sets the logger used for lifecycle events.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Supervisor) {
		s.logger = logger
	}
}

// WithClock overrides the time source used for StartedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Supervisor) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a Supervisor with an empty slot.
func New(cmd Command, opts ...Option) *Supervisor {
	if cmd.StopSignal == 0 {
		cmd.StopSignal = syscall.SIGKILL
	}
	s := &Supervisor{
		command:  cmd,
		launcher: ExecLauncher{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.NewComponentLogger(s.logger, "supervisor")
	return s
}

// Start launches the backend unless one is already held. Starting while
// running is a successful no-op. On launch failure the slot stays empty and
// the returned error is a *LaunchError.
func (s *Supervisor) Start() (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.slot != nil {
		s.logger.Info("backend already running",
			logging.Int(logging.FieldPID, s.slot.proc.PID()),
			logging.String(logging.FieldEventType, "backend_already_running"))
		return StatusAlreadyRunning, nil
	}

	proc, err := s.launcher.Launch(s.command)
	if err != nil {
		launchErr := &LaunchError{Command: s.command.String(), Err: err}
		logging.WarnWithContext(s.logger, "backend launch failed", "backend_launch_failed",
			logging.String("command", s.command.String()),
			logging.String("dir", s.command.Dir),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check backend.command and backend.working_dir"),
			logging.String(logging.FieldImpact, "backend is not running; start can be retried"))
		return "", launchErr
	}

	s.slot = &supervised{proc: proc, startedAt: s.now()}
	s.logger.Info("backend started",
		logging.Int(logging.FieldPID, proc.PID()),
		logging.String("command", s.command.String()),
		logging.String("dir", s.command.Dir),
		logging.String(logging.FieldEventType, "backend_started"))
	go s.watch(proc)
	return StatusStarted, nil
}

// Stop empties the slot and signals the held process. The slot is empty
// afterwards even when the signal fails; that case returns a
// *TerminationError. Stopping while empty is a successful no-op.
func (s *Supervisor) Stop() (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.slot
	s.slot = nil
	if current == nil {
		s.logger.Info("backend not running",
			logging.String(logging.FieldEventType, "backend_not_running"))
		return StatusNotRunning, nil
	}

	pid := current.proc.PID()
	if err := current.proc.Signal(s.command.StopSignal); err != nil {
		logging.WarnWithContext(s.logger, "backend stop failed; handle released", "backend_stop_failed",
			logging.Int(logging.FieldPID, pid),
			logging.String("signal", s.command.StopSignal.String()),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "verify the process is gone and kill it manually if needed"),
			logging.String(logging.FieldImpact, "backend may still be running untracked"))
		return "", &TerminationError{PID: pid, Err: err}
	}

	s.logger.Info("backend stopped",
		logging.Int(logging.FieldPID, pid),
		logging.String("signal", s.command.StopSignal.String()),
		logging.String(logging.FieldEventType, "backend_stopped"))
	return StatusStopped, nil
}

// Snapshot reports the current slot without modifying it.
func (s *Supervisor) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := State{Command: s.command.String()}
	if s.slot == nil {
		return state
	}
	state.Running = true
	state.PID = s.slot.proc.PID()
	state.StartedAt = s.slot.startedAt
	select {
	case <-s.slot.proc.Done():
		state.Exited = true
		if err := s.slot.proc.ExitErr(); err != nil {
			state.ExitError = err.Error()
		}
	default:
	}
	return state
}

// Command returns the launch configuration.
func (s *Supervisor) Command() Command {
	return s.command
}

func (s *Supervisor) watch(proc Process) {
	<-proc.Done()
	attrs := []logging.Attr{
		logging.Int(logging.FieldPID, proc.PID()),
		logging.String(logging.FieldEventType, "backend_exited"),
	}
	if err := proc.ExitErr(); err != nil {
		attrs = append(attrs, logging.Error(err))
	}
	s.logger.Info("backend exited", logging.Args(attrs...)...)
}
