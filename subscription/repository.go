package subscription

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a subscription id is unknown.
var ErrNotFound = errors.New("subscription not found")

/* Small, focused interfaces following "The Go Way"
 * Interfaces abstract behavior, not things
 */

// Reader provides read operations for subscriptions
type Reader interface {
	Get(ctx context.Context, id string) (Subscription, error)
	List(ctx context.Context) ([]Subscription, error)
}

// Writer provides write operations for subscriptions
type Writer interface {
	Store(ctx context.Context, sub Subscription) error
}

type Repository interface {
	Reader
	Writer
	Close(ctx context.Context) error
}
