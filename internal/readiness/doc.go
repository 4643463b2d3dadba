// Package readiness emits the host's one-shot ready event.
//
// A Notifier fires exactly once, a fixed delay after Schedule is called. The
// delay is a heuristic: the notifier never inspects the backend, so ready
// means "the host finished initializing and waited", not "the backend
// answers requests". Schedule takes a context owned by the host lifecycle;
// cancelling it before the deadline suppresses the event for good.
//
// Ready is latched. Listeners that subscribe after the event fired receive
// the recorded event immediately, so every listener observes it exactly once.
package readiness
