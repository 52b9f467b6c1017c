package subscription

import (
	"fmt"
	"net/url"
	"time"
)

/* Subscription represents a registered webhook destination
 * Uses value semantics as it represents data, not behavior
 */
type Subscription struct {
	ID        string
	TargetURL string
	// Secret is used only for signing outbound payloads. It must never
	// appear in logs or API responses.
	Secret    string
	CreatedAt time.Time
}

// Validate checks the subscription's invariants: the target must be an
// absolute http(s) URL.
func (s Subscription) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("subscription id cannot be empty")
	}
	if s.TargetURL == "" {
		return fmt.Errorf("target_url cannot be empty")
	}
	u, err := url.Parse(s.TargetURL)
	if err != nil {
		return fmt.Errorf("parsing target_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("target_url must be an absolute http or https URL: %s", s.TargetURL)
	}
	if u.Host == "" {
		return fmt.Errorf("target_url must include a host: %s", s.TargetURL)
	}
	return nil
}
