package hostctl

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"syscall"
	"time"

	"tether/internal/ipc"
)

// ErrHostNotRunning indicates host IPC is unavailable.
var ErrHostNotRunning = errors.New("tether host not running")

// LaunchOptions controls detached host launch behavior.
type LaunchOptions struct {
	SocketPath string
	ConfigPath string
}

// Launch starts a detached `tether run` process.
func Launch(executablePath string, opts LaunchOptions) error {
	if strings.TrimSpace(executablePath) == "" {
		return fmt.Errorf("resolve executable: executable path is empty")
	}

	args := []string{"run"}
	if socket := strings.TrimSpace(opts.SocketPath); socket != "" {
		args = append(args, "--socket", socket)
	}
	if cfg := strings.TrimSpace(opts.ConfigPath); cfg != "" {
		args = append(args, "--config", cfg)
	}

	proc := exec.Command(executablePath, args...)
	proc.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := proc.Start(); err != nil {
		return fmt.Errorf("launch host: %w", err)
	}
	return proc.Process.Release()
}

// WaitForClient waits for IPC socket availability and returns a connected client.
func WaitForClient(socketPath string, timeout time.Duration) (*ipc.Client, error) {
	deadline := time.Now().Add(timeout)
	var lastErr error
	for time.Now().Before(deadline) {
		client, err := ipc.Dial(socketPath)
		if err == nil {
			return client, nil
		}
		lastErr = err
		time.Sleep(100 * time.Millisecond)
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("timeout waiting for host")
	}
	return nil, fmt.Errorf("host failed to start: %w", lastErr)
}

// WaitForShutdown waits for host IPC to disappear.
func WaitForShutdown(socketPath string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		client, err := ipc.Dial(socketPath)
		if err != nil {
			if IsUnavailable(err) {
				return nil
			}
			time.Sleep(100 * time.Millisecond)
			continue
		}
		_ = client.Close()
		time.Sleep(100 * time.Millisecond)
	}
	return errors.New("host did not stop before timeout")
}

// ReadPID parses a pid file written by the host.
func ReadPID(pidPath string) (int, error) {
	data, err := os.ReadFile(pidPath)
	if err != nil {
		return 0, fmt.Errorf("read host pid file %q: %w", pidPath, err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("invalid pid in %q", pidPath)
	}
	return pid, nil
}

// ShutdownResult captures how the host was terminated.
type ShutdownResult struct {
	PID        int
	ForcedKill bool
}

// Shutdown sends SIGTERM to the host and escalates to SIGKILL when it is
// still serving after gracePeriod. The host stops its backend on the way out
// when stop_on_exit is enabled.
func Shutdown(socketPath, pidPath string, gracePeriod time.Duration) (ShutdownResult, error) {
	client, err := ipc.Dial(socketPath)
	if err != nil {
		if IsUnavailable(err) {
			return ShutdownResult{}, ErrHostNotRunning
		}
		return ShutdownResult{}, err
	}
	pid := 0
	if statusResp, statusErr := client.Status(); statusErr == nil {
		pid = statusResp.Status.PID
	}
	_ = client.Close()
	if pid <= 0 {
		if pid, err = ReadPID(pidPath); err != nil {
			return ShutdownResult{}, err
		}
	}
	if pid == os.Getpid() {
		return ShutdownResult{}, fmt.Errorf("refusing to signal current process (pid %d)", pid)
	}

	result := ShutdownResult{PID: pid}
	if err := syscall.Kill(pid, syscall.SIGTERM); err != nil {
		return result, fmt.Errorf("signal host process %d: %w", pid, err)
	}
	if err := WaitForShutdown(socketPath, gracePeriod); err == nil {
		return result, nil
	}

	if err := syscall.Kill(pid, syscall.SIGKILL); err != nil && !errors.Is(err, syscall.ESRCH) {
		return result, fmt.Errorf("kill host process %d: %w", pid, err)
	}
	result.ForcedKill = true
	_ = os.Remove(pidPath)
	_ = os.Remove(socketPath)
	return result, nil
}

// IsUnavailable reports whether a dial error means no host is listening.
func IsUnavailable(err error) bool {
	return errors.Is(err, os.ErrNotExist) || errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ENOENT)
}
