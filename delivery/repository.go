package delivery

import "context"

/* Small, focused interfaces following "The Go Way"
 * Interfaces abstract behavior, not things
 */

// Reader provides read operations for deliveries and their attempt log
type Reader interface {
	Get(ctx context.Context, webhookID string) (Delivery, error)
	/* ListAttempts returns the attempt records for a webhook ordered by
	 * attempt number ascending. An unknown id yields an empty slice,
	 * not an error; Get distinguishes unknown from unattempted.
	 */
	ListAttempts(ctx context.Context, webhookID string) ([]Attempt, error)
	// ListUnfinished returns deliveries whose status is non-terminal,
	// used to re-arm the queue after a restart.
	ListUnfinished(ctx context.Context) ([]Delivery, error)
	// CountByStatus returns the number of deliveries per status name.
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

// Writer provides write operations for deliveries and their attempt log
type Writer interface {
	// Save persists a new delivery at ingestion time, before any
	// attempt is made. This is what makes a queued-but-unattempted
	// webhook distinguishable from an unknown one.
	Save(ctx context.Context, d Delivery) error
	UpdateStatus(ctx context.Context, webhookID string, status Status) error
	/* AppendAttempt appends one record to the webhook's attempt log.
	 * Attempt numbers per webhook must be contiguous starting at 1 and
	 * nothing is appended after a successful attempt; the orchestrator's
	 * single-driver property enforces this.
	 */
	AppendAttempt(ctx context.Context, a Attempt) error
}

type Repository interface {
	Reader
	Writer
	Close(ctx context.Context) error
}
