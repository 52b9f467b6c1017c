package delivery

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a webhook id is unknown.
var ErrNotFound = errors.New("webhook not found")

// ErrUnknownSubscription is returned at ingestion time when the
// subscription id does not exist. Nothing is recorded in that case.
var ErrUnknownSubscription = errors.New("unknown subscription")

/* PersistenceError wraps a storage failure. A persistence failure while
 * appending an attempt record is fatal to that webhook's retry loop:
 * retrying without a durable record would corrupt the attempt-number
 * sequence, so the orchestrator halts and surfaces the error instead.
 */
type PersistenceError struct {
	WebhookID string
	Op        string
	Err       error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure (%s) for webhook %s: %v", e.Op, e.WebhookID, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
