package readiness_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"tether/internal/readiness"
)

const testDelay = 2 * time.Second

func newScheduled(t *testing.T) (*readiness.Notifier, *clockwork.FakeClock, context.CancelFunc) {
	t.Helper()
	clock := clockwork.NewFakeClock()
	n := readiness.New(testDelay, readiness.WithClock(clock))
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := n.Schedule(ctx); err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	waitCtx, waitCancel := context.WithTimeout(context.Background(), time.Second)
	defer waitCancel()
	if err := clock.BlockUntilContext(waitCtx, 1); err != nil {
		t.Fatalf("timer not registered: %v", err)
	}
	return n, clock, cancel
}

func waitDone(t *testing.T, n *readiness.Notifier) {
	t.Helper()
	select {
	case <-n.Done():
	case <-time.After(time.Second):
		t.Fatal("ready event did not fire")
	}
}

func TestReadyFiresOnceAfterDelay(t *testing.T) {
	n, clock, _ := newScheduled(t)
	events, _ := n.Subscribe()

	clock.Advance(testDelay - time.Millisecond)
	select {
	case <-events:
		t.Fatal("event fired before the delay elapsed")
	case <-time.After(50 * time.Millisecond):
	}
	if _, fired := n.Fired(); fired {
		t.Fatal("expected notifier not fired yet")
	}

	clock.Advance(time.Millisecond)
	var event readiness.Event
	select {
	case event = <-events:
	case <-time.After(time.Second):
		t.Fatal("expected ready event")
	}
	if event.Name != readiness.DefaultEventName {
		t.Fatalf("unexpected event name %q", event.Name)
	}
	if _, ok := <-events; ok {
		t.Fatal("expected channel closed after the single event")
	}

	clock.Advance(10 * testDelay)
	recorded, fired := n.Fired()
	if !fired || !recorded.At.Equal(event.At) {
		t.Fatalf("expected recorded event %v, got %v (fired=%v)", event, recorded, fired)
	}
}

func TestEverySubscriberObservesExactlyOnce(t *testing.T) {
	n, clock, _ := newScheduled(t)

	const listeners = 8
	channels := make([]<-chan readiness.Event, 0, listeners+1)
	for i := 0; i < listeners; i++ {
		ch, _ := n.Subscribe()
		channels = append(channels, ch)
	}
	clock.Advance(testDelay)
	waitDone(t, n)

	late, _ := n.Subscribe()
	channels = append(channels, late)

	for i, ch := range channels {
		count := 0
		for range ch {
			count++
		}
		if count != 1 {
			t.Fatalf("listener %d observed %d events, want 1", i, count)
		}
	}
}

func TestScheduleTwiceIsRejected(t *testing.T) {
	n, _, _ := newScheduled(t)
	if err := n.Schedule(context.Background()); !errors.Is(err, readiness.ErrAlreadyScheduled) {
		t.Fatalf("expected ErrAlreadyScheduled, got %v", err)
	}
}

func TestCancelSuppressesEvent(t *testing.T) {
	n, clock, cancel := newScheduled(t)
	events, _ := n.Subscribe()

	cancel()
	clock.Advance(testDelay)

	select {
	case <-n.Done():
		t.Fatal("event fired after cancellation")
	case <-events:
		t.Fatal("listener notified after cancellation")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestUnsubscribeClosesWithoutEvent(t *testing.T) {
	n, clock, _ := newScheduled(t)
	events, unsubscribe := n.Subscribe()
	unsubscribe()
	unsubscribe()

	if _, ok := <-events; ok {
		t.Fatal("expected closed channel without event")
	}
	clock.Advance(testDelay)
	waitDone(t, n)
}

func TestOnReadyRunsCallbackOnce(t *testing.T) {
	n, clock, _ := newScheduled(t)
	var calls atomic.Int32
	called := make(chan struct{}, 2)
	n.OnReady(context.Background(), func(readiness.Event) {
		calls.Add(1)
		called <- struct{}{}
	})

	clock.Advance(testDelay)
	select {
	case <-called:
	case <-time.After(time.Second):
		t.Fatal("callback not invoked")
	}
	clock.Advance(testDelay)
	time.Sleep(20 * time.Millisecond)
	if calls.Load() != 1 {
		t.Fatalf("expected one callback, got %d", calls.Load())
	}
}

func TestOnReadySkippedWhenContextCancelled(t *testing.T) {
	n, clock, _ := newScheduled(t)
	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int32
	n.OnReady(ctx, func(readiness.Event) { calls.Add(1) })
	cancel()
	time.Sleep(20 * time.Millisecond)

	clock.Advance(testDelay)
	waitDone(t, n)
	time.Sleep(20 * time.Millisecond)
	if calls.Load() != 0 {
		t.Fatalf("expected no callback after cancel, got %d", calls.Load())
	}
}

func TestWaitHonoursContext(t *testing.T) {
	n, clock, _ := newScheduled(t)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := n.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}

	clock.Advance(testDelay)
	event, err := n.Wait(context.Background())
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if event.Name != readiness.DefaultEventName {
		t.Fatalf("unexpected event %+v", event)
	}
}

func TestRealClockFires(t *testing.T) {
	n := readiness.New(10*time.Millisecond, readiness.WithEventName("start-backend"))
	if err := n.Schedule(context.Background()); err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	event, err := n.Wait(ctx)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if event.Name != "start-backend" {
		t.Fatalf("unexpected event name %q", event.Name)
	}
}
