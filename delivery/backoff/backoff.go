// Package backoff computes retry delays for failed delivery attempts.
// The table strategy is deterministic (no jitter) so retry timing is
// reproducible in tests.
package backoff

import "time"

// DefaultTable is the escalating delay schedule used when none is
// configured: 10s, 30s, 1m, 5m, 15m.
var DefaultTable = []time.Duration{
	10 * time.Second,
	30 * time.Second,
	1 * time.Minute,
	5 * time.Minute,
	15 * time.Minute,
}

// Table indexes a fixed delay schedule by attempt number, holding at
// the last entry for attempts beyond the table length. Stateless and
// safe for concurrent use.
type Table struct {
	delays []time.Duration
}

// NewTable creates a table strategy. An empty schedule falls back to
// DefaultTable.
func NewTable(delays []time.Duration) *Table {
	if len(delays) == 0 {
		delays = DefaultTable
	}
	return &Table{delays: delays}
}

// Delay returns the wait before the retry that follows the given failed
// attempt (1-indexed).
func (t *Table) Delay(attempt int) time.Duration {
	idx := attempt - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(t.delays) {
		idx = len(t.delays) - 1
	}
	return t.delays[idx]
}

// Exhausted reports whether the attempt count has reached the retry
// ceiling.
func Exhausted(attempt, maxRetries int) bool {
	return attempt >= maxRetries
}
