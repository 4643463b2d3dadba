// Package supervisor owns the lifecycle of the single backend process the
// desktop shell depends on.
//
// A Supervisor holds one slot guarded by one mutex. Start fills the slot by
// launching the configured command; Stop empties it and delivers the
// termination signal. Both are idempotent: starting while running and
// stopping while empty succeed without touching the OS. Every Start and Stop
// is linearized by the mutex, which is held across the launch and signal
// syscalls, so concurrent callers can never create a second process.
//
// Stop clears the slot even when the signal cannot be delivered. The
// supervisor never retries and never confirms that the process died, so a
// failed stop can leave a backend running that the supervisor no longer
// tracks. Callers see that case as a TerminationError.
package supervisor
