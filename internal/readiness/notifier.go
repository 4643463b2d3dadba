package readiness

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"tether/internal/logging"
)

// DefaultEventName is the application-wide name of the ready event.
const DefaultEventName = "ready"

// ErrAlreadyScheduled is returned when Schedule is called more than once.
var ErrAlreadyScheduled = errors.New("ready notification already scheduled")

// Event is the ready notification. It carries no payload beyond its name and
// the time it fired.
type Event struct {
	Name string    `json:"name"`
	At   time.Time `json:"at"`
}

// Notifier emits a single ready event after a fixed delay.
type Notifier struct {
	name   string
	delay  time.Duration
	clock  clockwork.Clock
	logger *slog.Logger

	scheduled atomic.Bool

	mu        sync.Mutex
	fired     bool
	event     Event
	listeners map[int]chan Event
	nextID    int
	done      chan struct{}
}

// Option customizes a Notifier.
type Option func(*Notifier)

// WithClock replaces the wall clock, typically with clockwork.NewFakeClock in tests.
func WithClock(clock clockwork.Clock) Option {
	return func(n *Notifier) {
		if clock != nil {
			n.clock = clock
		}
	}
}

// WithLogger sets the logger used for scheduling and emission events.
func WithLogger(logger *slog.Logger) Option {
	return func(n *Notifier) {
		n.logger = logger
	}
}

// WithEventName overrides DefaultEventName.
func WithEventName(name string) Option {
	return func(n *Notifier) {
		if name != "" {
			n.name = name
		}
	}
}

// New constructs an unscheduled Notifier.
func New(delay time.Duration, opts ...Option) *Notifier {
	if delay < 0 {
		delay = 0
	}
	n := &Notifier{
		name:      DefaultEventName,
		delay:     delay,
		clock:     clockwork.NewRealClock(),
		listeners: make(map[int]chan Event),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(n)
	}
	n.logger = logging.NewComponentLogger(n.logger, "readiness")
	return n
}

// Schedule starts the one-shot timer. Cancelling ctx before the delay
// elapses suppresses the event permanently. A Notifier can be scheduled once.
func (n *Notifier) Schedule(ctx context.Context) error {
	if !n.scheduled.CompareAndSwap(false, true) {
		return ErrAlreadyScheduled
	}
	timer := n.clock.NewTimer(n.delay)
	n.logger.Debug("ready notification scheduled",
		logging.Duration("delay", n.delay),
		logging.String("event", n.name),
		logging.String(logging.FieldEventType, "ready_scheduled"))

	go func() {
		defer timer.Stop()
		select {
		case <-ctx.Done():
			n.logger.Debug("ready notification cancelled",
				logging.String(logging.FieldEventType, "ready_cancelled"))
		case <-timer.Chan():
			if ctx.Err() != nil {
				return
			}
			n.fire()
		}
	}()
	return nil
}

func (n *Notifier) fire() {
	n.mu.Lock()
	if n.fired {
		n.mu.Unlock()
		return
	}
	n.fired = true
	n.event = Event{Name: n.name, At: n.clock.Now()}
	for id, ch := range n.listeners {
		ch <- n.event
		close(ch)
		delete(n.listeners, id)
	}
	close(n.done)
	event := n.event
	n.mu.Unlock()

	n.logger.Info("ready event emitted",
		logging.String("event", event.Name),
		logging.Duration("delay", n.delay),
		logging.String(logging.FieldEventType, "ready_emitted"))
}

// Subscribe registers a listener. The returned channel receives the event
// once and is then closed. The cancel func detaches the listener; its
// channel is closed without an event.
func (n *Notifier) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 1)

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fired {
		ch <- n.event
		close(ch)
		return ch, func() {}
	}
	id := n.nextID
	n.nextID++
	n.listeners[id] = ch
	return ch, func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		if c, ok := n.listeners[id]; ok {
			delete(n.listeners, id)
			close(c)
		}
	}
}

// OnReady runs fn in its own goroutine when the event fires, unless ctx is
// cancelled first.
func (n *Notifier) OnReady(ctx context.Context, fn func(Event)) {
	ch, cancel := n.Subscribe()
	go func() {
		defer cancel()
		select {
		case <-ctx.Done():
		case event, ok := <-ch:
			if ok {
				fn(event)
			}
		}
	}()
}

// Done is closed when the event fires.
func (n *Notifier) Done() <-chan struct{} {
	return n.done
}

// Fired returns the recorded event once it has fired.
func (n *Notifier) Fired() (Event, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.event, n.fired
}

// Wait blocks until the event fires or ctx is done.
func (n *Notifier) Wait(ctx context.Context) (Event, error) {
	select {
	case <-n.done:
		event, _ := n.Fired()
		return event, nil
	case <-ctx.Done():
		return Event{}, ctx.Err()
	}
}

// Name returns the configured event name.
func (n *Notifier) Name() string {
	return n.name
}

// Delay returns the configured delay.
func (n *Notifier) Delay() time.Duration {
	return n.delay
}
