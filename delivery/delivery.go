package delivery

import "time"

/* Delivery represents one logical webhook destined for one subscription
 * Uses value semantics as it represents data, not behavior
 */
type Delivery struct {
	WebhookID      string
	SubscriptionID string
	// Payload is preserved byte-for-byte across retries; the same bytes
	// are signed and sent on every attempt.
	Payload   []byte
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

/* Attempt records a single delivery attempt for a webhook
 * Append-only: once written it is never mutated or deleted
 */
type Attempt struct {
	WebhookID      string
	SubscriptionID string
	// TargetURL is snapshotted at attempt time so the audit trail
	// survives subsequent subscription edits.
	TargetURL     string
	AttemptNumber int
	Success       bool
	// StatusCode is zero when no HTTP response was received.
	StatusCode int
	// Error holds the failure detail: a network error class or a
	// bounded prefix of a non-2xx response body. Empty on success.
	Error     string
	Timestamp time.Time
}
