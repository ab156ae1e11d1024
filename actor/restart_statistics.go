package actor

import "time"

// RestartStatistics tracks how many times a child has failed within the
// current restart window, the way the teacher's RestartStatistics backs
// SupervisorStrategy decisions (ctx.ensureExtras().restartStats()).
// Supplemented from original_source/src/core/actor/children/child_state.rs,
// whose ChildRestartStats carries the same two fields spec.md §3 names
// (retries_count, window_start_ns) but the distilled spec.md never wires
// into a decision procedure — Fail/WithinLimit below do that.
type RestartStatistics struct {
	FailureCount int
	WindowStart  time.Time
}

// NewRestartStatistics returns a statistics value with no recorded failures.
func NewRestartStatistics() *RestartStatistics {
	return &RestartStatistics{}
}

// Fail records one failure, resetting the window if it has none yet or if
// the supplied window has elapsed since the last reset.
func (rs *RestartStatistics) Fail(now time.Time, window time.Duration) {
	if rs.WindowStart.IsZero() || (window > 0 && now.Sub(rs.WindowStart) > window) {
		rs.WindowStart = now
		rs.FailureCount = 0
	}
	rs.FailureCount++
}

// WithinLimit reports whether the recorded failure count is still within
// maxRetries for the configured window, i.e. whether another restart is
// permitted.
func (rs *RestartStatistics) WithinLimit(maxRetries int) bool {
	if maxRetries < 0 {
		return true
	}
	return rs.FailureCount <= maxRetries
}
