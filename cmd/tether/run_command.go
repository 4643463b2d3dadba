package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"tether/internal/hostctl"
	"tether/internal/shellrun"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var (
		detach      bool
		logLevel    string
		development bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the tether host",
		Long: "Run the tether host in the foreground. The host schedules the ready event, " +
			"serves IPC and the HTTP API, and supervises the backend until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if !detach {
				return shellrun.Run(cmd.Context(), cfg, shellrun.Options{
					LogLevel:    logLevel,
					Development: development,
					Console:     true,
				})
			}

			out := cmd.OutOrStdout()
			if client, err := ctx.dialClient(); err == nil {
				_ = client.Close()
				fmt.Fprintln(out, "Host already running")
				return nil
			}
			exe, err := os.Executable()
			if err != nil {
				return fmt.Errorf("resolve executable: %w", err)
			}
			opts := hostctl.LaunchOptions{SocketPath: cfg.Paths.SocketPath, ConfigPath: ctx.configPath()}
			if err := hostctl.Launch(exe, opts); err != nil {
				return err
			}
			client, err := hostctl.WaitForClient(cfg.Paths.SocketPath, 10*time.Second)
			if err != nil {
				return err
			}
			defer client.Close()
			resp, err := client.Status()
			if err != nil {
				return fmt.Errorf("query status: %w", err)
			}
			fmt.Fprintf(out, "Host started (pid %d)\n", resp.Status.PID)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&detach, "detach", "d", false, "Launch the host in the background and return")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "Override the configured log level")
	cmd.Flags().BoolVar(&development, "development", false, "Include source locations in log output")
	return cmd
}

func newShutdownCommand(ctx *commandContext) *cobra.Command {
	var grace time.Duration
	cmd := &cobra.Command{
		Use:   "shutdown",
		Short: "Terminate a running host (and its backend when stop_on_exit is set)",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			result, err := hostctl.Shutdown(ctx.socketPath(), ctx.pidPath(), grace)
			if errors.Is(err, hostctl.ErrHostNotRunning) {
				fmt.Fprintln(out, "Host is not running")
				return nil
			}
			if err != nil {
				return err
			}
			if result.ForcedKill {
				fmt.Fprintf(out, "Host did not exit in %s; killed pid %d\n", grace, result.PID)
				return nil
			}
			fmt.Fprintf(out, "Host stopped (pid %d)\n", result.PID)
			return nil
		},
	}
	cmd.Flags().DurationVar(&grace, "grace", 5*time.Second, "Time to wait before force-killing the host")
	return cmd
}
