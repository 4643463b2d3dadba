package config

const (
	defaultLogDir           = "~/.local/share/tether/logs"
	defaultLogRetentionDays = 30
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultAPIBind          = "127.0.0.1:7489"
	defaultBackendCommand   = "python"
	defaultBackendWorkDir   = "../profit"
	defaultStopSignal       = "SIGKILL"
	defaultReadyDelay       = 2
	defaultReadyEventName   = "ready"
)

var defaultBackendArgs = []string{"manage.py", "runserver", "127.0.0.1:8000"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	args := make([]string, len(defaultBackendArgs))
	copy(args, defaultBackendArgs)
	return Config{
		Paths: Paths{
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Backend: Backend{
			Command:       defaultBackendCommand,
			Args:          args,
			WorkingDir:    defaultBackendWorkDir,
			StopSignal:    defaultStopSignal,
			CaptureOutput: true,
			StopOnExit:    true,
		},
		Readiness: Readiness{
			DelaySeconds: defaultReadyDelay,
			Autostart:    true,
			EventName:    defaultReadyEventName,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
