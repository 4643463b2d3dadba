package supervisor_test

import (
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"tether/internal/supervisor"
)

type fakeProcess struct {
	pid       int
	signalErr error

	mu      sync.Mutex
	signals []syscall.Signal
	done    chan struct{}
	once    sync.Once
}

func newFakeProcess(pid int) *fakeProcess {
	return &fakeProcess{pid: pid, done: make(chan struct{})}
}

func (p *fakeProcess) PID() int { return p.pid }

func (p *fakeProcess) Signal(sig syscall.Signal) error {
	p.mu.Lock()
	p.signals = append(p.signals, sig)
	p.mu.Unlock()
	if p.signalErr != nil {
		return p.signalErr
	}
	p.exit()
	return nil
}

func (p *fakeProcess) Done() <-chan struct{} { return p.done }

func (p *fakeProcess) ExitErr() error { return nil }

func (p *fakeProcess) exit() { p.once.Do(func() { close(p.done) }) }

func (p *fakeProcess) receivedSignals() []syscall.Signal {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]syscall.Signal(nil), p.signals...)
}

type countingLauncher struct {
	launches atomic.Int32
	delay    time.Duration
	failures atomic.Int32
	mu       sync.Mutex
	procs    []*fakeProcess
	signal   error
}

func (l *countingLauncher) Launch(supervisor.Command) (supervisor.Process, error) {
	n := l.launches.Add(1)
	if l.delay > 0 {
		time.Sleep(l.delay)
	}
	if l.failures.Load() > 0 {
		l.failures.Add(-1)
		return nil, errors.New("exec: \"python\": executable file not found in $PATH")
	}
	proc := newFakeProcess(1000 + int(n))
	proc.signalErr = l.signal
	l.mu.Lock()
	l.procs = append(l.procs, proc)
	l.mu.Unlock()
	return proc, nil
}

func (l *countingLauncher) last() *fakeProcess {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.procs) == 0 {
		return nil
	}
	return l.procs[len(l.procs)-1]
}

func newFakeSupervisor(l *countingLauncher) *supervisor.Supervisor {
	return supervisor.New(supervisor.Command{Path: "python", Args: []string{"manage.py", "runserver"}},
		supervisor.WithLauncher(l))
}

func TestStartIsIdempotent(t *testing.T) {
	launcher := &countingLauncher{}
	sup := newFakeSupervisor(launcher)

	status, err := sup.Start()
	if err != nil {
		t.Fatalf("first Start: %v", err)
	}
	if status != supervisor.StatusStarted {
		t.Fatalf("expected started, got %q", status)
	}
	first := sup.Snapshot()
	if !first.Running || first.PID == 0 {
		t.Fatalf("expected running snapshot, got %+v", first)
	}

	status, err = sup.Start()
	if err != nil {
		t.Fatalf("second Start: %v", err)
	}
	if status != supervisor.StatusAlreadyRunning {
		t.Fatalf("expected already-running, got %q", status)
	}
	if got := launcher.launches.Load(); got != 1 {
		t.Fatalf("expected exactly one launch, got %d", got)
	}
	if second := sup.Snapshot(); second.PID != first.PID {
		t.Fatalf("handle changed: %d -> %d", first.PID, second.PID)
	}
}

func TestStopIsIdempotent(t *testing.T) {
	launcher := &countingLauncher{}
	sup := newFakeSupervisor(launcher)
	if _, err := sup.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	status, err := sup.Stop()
	if err != nil {
		t.Fatalf("first Stop: %v", err)
	}
	if status != supervisor.StatusStopped {
		t.Fatalf("expected stopped, got %q", status)
	}
	if sup.Snapshot().Running {
		t.Fatal("expected empty slot after stop")
	}

	status, err = sup.Stop()
	if err != nil {
		t.Fatalf("second Stop: %v", err)
	}
	if status != supervisor.StatusNotRunning {
		t.Fatalf("expected not-running, got %q", status)
	}
}

func TestConcurrentStartsLaunchOnce(t *testing.T) {
	const callers = 32
	launcher := &countingLauncher{delay: 5 * time.Millisecond}
	sup := newFakeSupervisor(launcher)

	var (
		wg      sync.WaitGroup
		ready   = make(chan struct{})
		started atomic.Int32
		already atomic.Int32
		failed  atomic.Int32
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-ready
			status, err := sup.Start()
			switch {
			case err != nil:
				failed.Add(1)
			case status == supervisor.StatusStarted:
				started.Add(1)
			case status == supervisor.StatusAlreadyRunning:
				already.Add(1)
			}
		}()
	}
	close(ready)
	wg.Wait()

	if failed.Load() != 0 {
		t.Fatalf("expected no failures, got %d", failed.Load())
	}
	if started.Load() != 1 || already.Load() != callers-1 {
		t.Fatalf("expected 1 started and %d already-running, got %d and %d", callers-1, started.Load(), already.Load())
	}
	if got := launcher.launches.Load(); got != 1 {
		t.Fatalf("expected one launch, got %d", got)
	}
}

func TestConcurrentStartStopLeavesConsistentSlot(t *testing.T) {
	launcher := &countingLauncher{}
	sup := newFakeSupervisor(launcher)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := sup.Start(); err != nil {
				t.Errorf("Start: %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			if _, err := sup.Stop(); err != nil {
				t.Errorf("Stop: %v", err)
			}
		}()
	}
	wg.Wait()

	if _, err := sup.Stop(); err != nil {
		t.Fatalf("final Stop: %v", err)
	}
	if sup.Snapshot().Running {
		t.Fatal("expected empty slot")
	}
	launcher.mu.Lock()
	defer launcher.mu.Unlock()
	for _, proc := range launcher.procs {
		if len(proc.receivedSignals()) != 1 {
			t.Fatalf("process %d signalled %d times, want exactly once", proc.pid, len(proc.receivedSignals()))
		}
	}
}

func TestStartStopRoundTrip(t *testing.T) {
	sup := newFakeSupervisor(&countingLauncher{})
	before := sup.Snapshot()

	if _, err := sup.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := sup.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	after := sup.Snapshot()
	if after != before {
		t.Fatalf("round trip changed observable state: before=%+v after=%+v", before, after)
	}
}

func TestLaunchFailureLeavesSlotEmpty(t *testing.T) {
	launcher := &countingLauncher{}
	launcher.failures.Store(1)
	sup := newFakeSupervisor(launcher)

	status, err := sup.Start()
	if err == nil {
		t.Fatal("expected launch error")
	}
	if status != "" {
		t.Fatalf("expected empty status on failure, got %q", status)
	}
	if !errors.Is(err, supervisor.ErrLaunch) {
		t.Fatalf("expected ErrLaunch, got %v", err)
	}
	var launchErr *supervisor.LaunchError
	if !errors.As(err, &launchErr) || launchErr.Command != "python manage.py runserver" {
		t.Fatalf("expected LaunchError with command, got %#v", err)
	}
	if sup.Snapshot().Running {
		t.Fatal("slot must stay empty after launch failure")
	}

	status, err = sup.Start()
	if err != nil {
		t.Fatalf("retry Start: %v", err)
	}
	if status != supervisor.StatusStarted {
		t.Fatalf("expected fresh launch to start, got %q", status)
	}
	if got := launcher.launches.Load(); got != 2 {
		t.Fatalf("expected two launch attempts, got %d", got)
	}
}

func TestStopClearsSlotWhenSignalFails(t *testing.T) {
	launcher := &countingLauncher{signal: os.ErrProcessDone}
	sup := newFakeSupervisor(launcher)
	if _, err := sup.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	pid := sup.Snapshot().PID

	_, err := sup.Stop()
	if !errors.Is(err, supervisor.ErrTerminate) || !errors.Is(err, os.ErrProcessDone) {
		t.Fatalf("expected termination failure wrapping ErrProcessDone, got %v", err)
	}
	var termErr *supervisor.TerminationError
	if !errors.As(err, &termErr) || termErr.PID != pid {
		t.Fatalf("expected TerminationError for pid %d, got %#v", pid, err)
	}
	if sup.Snapshot().Running {
		t.Fatal("slot must be cleared even when termination fails")
	}

	status, err := sup.Start()
	if err != nil || status != supervisor.StatusStarted {
		t.Fatalf("expected a fresh start after failed stop, got %q, %v", status, err)
	}
}

func TestStopDeliversConfiguredSignal(t *testing.T) {
	launcher := &countingLauncher{}
	sup := supervisor.New(supervisor.Command{Path: "python", StopSignal: syscall.SIGTERM}, supervisor.WithLauncher(launcher))
	if _, err := sup.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := sup.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	got := launcher.last().receivedSignals()
	if len(got) != 1 || got[0] != syscall.SIGTERM {
		t.Fatalf("expected SIGTERM, got %v", got)
	}
}

func TestDefaultStopSignalIsKill(t *testing.T) {
	sup := supervisor.New(supervisor.Command{Path: "python"})
	if sup.Command().StopSignal != syscall.SIGKILL {
		t.Fatalf("expected SIGKILL default, got %v", sup.Command().StopSignal)
	}
}

func TestSnapshotReportsExitWithoutClearingSlot(t *testing.T) {
	launcher := &countingLauncher{}
	fixed := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	sup := supervisor.New(supervisor.Command{Path: "python"},
		supervisor.WithLauncher(launcher),
		supervisor.WithClock(func() time.Time { return fixed }))
	if _, err := sup.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	launcher.last().exit()

	state := sup.Snapshot()
	if !state.Running || !state.Exited {
		t.Fatalf("expected stale running handle reporting exit, got %+v", state)
	}
	if !state.StartedAt.Equal(fixed) {
		t.Fatalf("unexpected start time %v", state.StartedAt)
	}
	status, err := sup.Start()
	if err != nil || status != supervisor.StatusAlreadyRunning {
		t.Fatalf("expected already-running for stale handle, got %q, %v", status, err)
	}
}

func TestStatusMessages(t *testing.T) {
	tests := map[supervisor.Status]string{
		supervisor.StatusStarted:        "Backend started",
		supervisor.StatusAlreadyRunning: "Backend already running",
		supervisor.StatusStopped:        "Backend stopped",
		supervisor.StatusNotRunning:     "Backend was not running",
	}
	for status, want := range tests {
		if got := status.Message(); got != want {
			t.Errorf("%s: got %q want %q", status, got, want)
		}
	}
}
