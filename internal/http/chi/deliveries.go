package chi

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/marcelsud/webhook-courier/delivery"
)

// ingestResponse is the acknowledgment returned when an event is queued
type ingestResponse struct {
	Status         string `json:"status"`
	WebhookID      string `json:"webhook_id"`
	SubscriptionID string `json:"subscription_id"`
}

// attemptResponse represents one attempt record in the status API
type attemptResponse struct {
	AttemptNumber int       `json:"attempt_number"`
	Timestamp     time.Time `json:"timestamp"`
	Success       bool      `json:"success"`
	StatusCode    *int      `json:"status_code,omitempty"`
	Error         string    `json:"error,omitempty"`
}

// statusResponse represents a webhook's delivery status
type statusResponse struct {
	WebhookID      string            `json:"webhook_id"`
	SubscriptionID string            `json:"subscription_id"`
	Status         string            `json:"status"`
	Attempts       []attemptResponse `json:"attempts"`
}

/* ingestWebhook handles POST /v1/subscriptions/{subscription_id}/events
 * The body is forwarded byte-for-byte to the target on every attempt;
 * it is validated as JSON but never re-serialized.
 */
func ingestWebhook(deliveryService delivery.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subscriptionID := chi.URLParam(r, "subscription_id")

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "failed to read request body", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		if !json.Valid(body) {
			http.Error(w, "invalid JSON payload", http.StatusBadRequest)
			return
		}

		webhookID, err := deliveryService.Ingest(r.Context(), subscriptionID, body)
		if err == delivery.ErrUnknownSubscription {
			http.Error(w, "subscription not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		// The acknowledgment says "queued", nothing more: delivery
		// outcome is only observable via status queries.
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		response := ingestResponse{
			Status:         "queued",
			WebhookID:      webhookID,
			SubscriptionID: subscriptionID,
		}
		if err := json.NewEncoder(w).Encode(response); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}

// getDeliveryStatus handles GET /v1/deliveries/{webhook_id}
func getDeliveryStatus(deliveryService delivery.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		webhookID := chi.URLParam(r, "webhook_id")

		report, err := deliveryService.Status(r.Context(), webhookID)
		if err == delivery.ErrNotFound {
			http.Error(w, "webhook not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		attempts := make([]attemptResponse, 0, len(report.Attempts))
		for _, a := range report.Attempts {
			ar := attemptResponse{
				AttemptNumber: a.AttemptNumber,
				Timestamp:     a.Timestamp,
				Success:       a.Success,
				Error:         a.Error,
			}
			if a.StatusCode != 0 {
				code := a.StatusCode
				ar.StatusCode = &code
			}
			attempts = append(attempts, ar)
		}

		w.Header().Set("Content-Type", "application/json")
		response := statusResponse{
			WebhookID:      report.WebhookID,
			SubscriptionID: report.SubscriptionID,
			Status:         report.Status,
			Attempts:       attempts,
		}
		if err := json.NewEncoder(w).Encode(response); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}
