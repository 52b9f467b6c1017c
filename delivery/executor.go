package delivery

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"time"
)

const (
	// maxErrorBytes bounds how much of a non-2xx response body is kept
	// as error detail in the attempt log.
	maxErrorBytes = 1024

	userAgent = "WebhookCourier/1.0"

	// DefaultTimeout bounds a single delivery attempt.
	DefaultTimeout = 10 * time.Second
)

// Outcome classifies the result of a single delivery attempt. All
// failure modes are represented as values; the executor never panics
// past its boundary.
type Outcome struct {
	Success bool
	// StatusCode is zero when the HTTP call itself failed and no
	// response was received.
	StatusCode int
	Error      string
}

/* Executor performs one HTTP delivery attempt and classifies the
 * outcome. It has no side effects beyond the network call; recording
 * is the orchestrator's job.
 */
type Executor struct {
	client *http.Client
}

// NewExecutor creates an executor whose attempts are bounded by the
// given timeout. A non-positive timeout falls back to DefaultTimeout.
func NewExecutor(timeout time.Duration) *Executor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Executor{
		client: &http.Client{Timeout: timeout},
	}
}

// Attempt issues a single HTTP POST with the payload as the body and
// classifies the result: 2xx is success, a non-2xx response keeps the
// status code and a bounded body prefix, a network-level failure keeps
// a short description of the failure class.
func (e *Executor) Attempt(ctx context.Context, targetURL string, payload []byte, headers map[string]string) Outcome {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, targetURL, bytes.NewReader(payload))
	if err != nil {
		return Outcome{Success: false, Error: "invalid request: " + err.Error()}
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return Outcome{Success: false, Error: classifyNetworkError(err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return Outcome{Success: true, StatusCode: resp.StatusCode}
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBytes))
	return Outcome{
		Success:    false,
		StatusCode: resp.StatusCode,
		Error:      string(body),
	}
}

func classifyNetworkError(err error) string {
	if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
		return "request timeout"
	}
	msg := "network error: " + err.Error()
	if len(msg) > maxErrorBytes {
		msg = msg[:maxErrorBytes]
	}
	return msg
}
