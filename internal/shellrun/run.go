package shellrun

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/google/uuid"

	"tether/internal/config"
	"tether/internal/deps"
	"tether/internal/ipc"
	"tether/internal/logging"
	"tether/internal/shell"
)

// Options configures host process runtime behavior.
type Options struct {
	LogLevel    string
	Development bool
	// Console mirrors logs to stdout/stderr in addition to the run log.
	Console bool
}

// Run starts the tether host and blocks until ctx is cancelled or the process
// receives SIGINT or SIGTERM.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runID := uuid.NewString()
	logPath := RunLogPath(cfg, runID)

	level := opts.LogLevel
	if level == "" {
		level = cfg.Logging.Level
	}
	outputs := []string{logPath}
	errorOutputs := []string{logPath}
	if opts.Console {
		outputs = append([]string{"stdout"}, outputs...)
		errorOutputs = append([]string{"stderr"}, errorOutputs...)
	}
	logger, err := logging.New(logging.Options{
		Level:            level,
		Format:           cfg.Logging.Format,
		OutputPaths:      outputs,
		ErrorOutputPaths: errorOutputs,
		Development:      opts.Development,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger = logger.With(logging.String(logging.FieldRunID, runID))

	if err := ensureCurrentLogPointer(cfg.Paths.LogDir, logPath); err != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to update tether.log link: %v\n", err)
	}
	logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays,
		logging.RetentionTarget{Dir: cfg.Paths.LogDir, Pattern: "tether-*.log", Exclude: []string{logPath}, Keep: 1},
	)
	logDependencySnapshot(logger, cfg)

	pidPath := cfg.PIDPath()
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	host, err := shell.New(cfg, logger, shell.WithLogPath(logPath))
	if err != nil {
		return fmt.Errorf("create shell: %w", err)
	}
	if err := host.Start(signalCtx); err != nil {
		return fmt.Errorf("start shell: %w", err)
	}
	defer func() {
		if err := host.Close(); err != nil {
			logger.Warn("host shutdown incomplete", logging.Error(err))
		}
	}()

	ipcServer, err := ipc.NewServer(signalCtx, cfg.Paths.SocketPath, host, logger)
	if err != nil {
		return fmt.Errorf("start IPC server: %w", err)
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	logger.Info("tether host ready for commands",
		logging.String("socket", cfg.Paths.SocketPath),
		logging.String("api", host.APIAddr()),
		logging.String(logging.FieldEventType, "host_serving"))

	<-signalCtx.Done()
	logger.Info("tether host shutting down")
	return nil
}

// RunLogPath returns the per-run log file for runID.
func RunLogPath(cfg *config.Config, runID string) string {
	return filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("tether-%s.log", runID))
}

func ensureCurrentLogPointer(logDir, target string) error {
	if logDir == "" || target == "" {
		return nil
	}
	current := filepath.Join(logDir, "tether.log")
	if err := os.Remove(current); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing log pointer: %w", err)
	}
	if err := os.Symlink(target, current); err == nil {
		return nil
	}
	if err := os.Link(target, current); err != nil {
		return fmt.Errorf("link log pointer: %w", err)
	}
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}

func logDependencySnapshot(logger *slog.Logger, cfg *config.Config) {
	if logger == nil || cfg == nil {
		return
	}
	attrs := []logging.Attr{
		logging.String(logging.FieldEventType, "dependency_snapshot"),
		logging.String("backend_command", shell.BackendCommand(cfg).String()),
		logging.String("stop_signal", cfg.Backend.StopSignal),
		logging.Bool("kill_process_group", cfg.Backend.KillProcessGroup),
		logging.Bool("autostart", cfg.Readiness.Autostart),
	}
	for _, status := range deps.BackendPreflight(cfg) {
		key := strings.ReplaceAll(strings.ToLower(status.Name), " ", "_") + "_available"
		attrs = append(attrs, logging.Bool(key, status.Available))
		if !status.Available {
			logging.WarnWithContext(logger, "backend prerequisite unavailable", "dependency_missing",
				logging.String("dependency", status.Name),
				logging.String("detail", status.Detail),
				logging.String(logging.FieldErrorHint, "check the [backend] section of the config"),
				logging.String(logging.FieldImpact, "backend start will fail until resolved"))
		}
	}
	logger.Info("dependency snapshot", logging.Args(attrs...)...)
}
