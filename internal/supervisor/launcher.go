package supervisor

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"syscall"

	"golang.org/x/sys/unix"
)

// Command is the fixed launch configuration of the backend.
type Command struct {
	Path string
	Args []string
	// Dir is the working directory; empty inherits the host's.
	Dir string
	// Env entries (KEY=VALUE) are appended to the inherited environment.
	Env []string
	// StopSignal is delivered by Stop. Zero means SIGKILL.
	StopSignal syscall.Signal
	// ProcessGroup starts the backend as the leader of a new process group
	// and delivers StopSignal to the whole group.
	ProcessGroup bool
	// OutputPath receives the backend's stdout and stderr (appended). Empty
	// discards output.
	OutputPath string
}

// String renders the command line for logs and status output.
func (c Command) String() string {
	parts := append([]string{c.Path}, c.Args...)
	return strings.Join(parts, " ")
}

// Process is a launched backend as seen by the supervisor.
type Process interface {
	PID() int
	// Signal delivers sig. It returns os.ErrProcessDone once the process has
	// been reaped.
	Signal(sig syscall.Signal) error
	// Done is closed after the process has exited and been reaped.
	Done() <-chan struct{}
	// ExitErr reports the wait error; only meaningful after Done is closed.
	ExitErr() error
}

// Launcher creates backend processes.
type Launcher interface {
	Launch(cmd Command) (Process, error)
}

// LauncherFunc adapts a function to the Launcher interface.
type LauncherFunc func(cmd Command) (Process, error)

func (f LauncherFunc) Launch(cmd Command) (Process, error) { return f(cmd) }

// ExecLauncher launches backends with os/exec and reaps them in a background
// goroutine so exited children never linger as zombies.
type ExecLauncher struct{}

func (ExecLauncher) Launch(c Command) (Process, error) {
	if strings.TrimSpace(c.Path) == "" {
		return nil, errors.New("command not configured")
	}

	cmd := exec.Command(c.Path, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}
	if c.ProcessGroup {
		cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	}

	var output *os.File
	if c.OutputPath != "" {
		f, err := os.OpenFile(c.OutputPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open backend output %s: %w", c.OutputPath, err)
		}
		output = f
		cmd.Stdout = f
		cmd.Stderr = f
	}

	err := cmd.Start()
	if output != nil {
		// The child holds its own descriptor.
		_ = output.Close()
	}
	if err != nil {
		return nil, err
	}

	proc := &execProcess{cmd: cmd, group: c.ProcessGroup, done: make(chan struct{})}
	go proc.wait()
	return proc, nil
}

type execProcess struct {
	cmd     *exec.Cmd
	group   bool
	done    chan struct{}
	exitErr error
}

func (p *execProcess) wait() {
	p.exitErr = p.cmd.Wait()
	close(p.done)
}

func (p *execProcess) PID() int { return p.cmd.Process.Pid }

func (p *execProcess) Signal(sig syscall.Signal) error {
	if !p.group {
		return p.cmd.Process.Signal(sig)
	}
	// The group can outlive its leader, so ESRCH is the only "gone" signal.
	if err := unix.Kill(-p.cmd.Process.Pid, sig); err != nil {
		if errors.Is(err, unix.ESRCH) {
			return os.ErrProcessDone
		}
		return err
	}
	return nil
}

func (p *execProcess) Done() <-chan struct{} { return p.done }

func (p *execProcess) ExitErr() error { return p.exitErr }
