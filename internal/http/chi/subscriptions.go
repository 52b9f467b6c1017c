package chi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/marcelsud/webhook-courier/subscription"
)

/* HTTP layer DTOs for the subscription API
 * Separate from domain entities to avoid leaking internal structure;
 * in particular the signing secret never appears in responses
 */

// subscriptionRequest represents the payload for registering a subscription
type subscriptionRequest struct {
	TargetURL string `json:"target_url"`
	Secret    string `json:"secret,omitempty"`
}

// subscriptionResponse represents a subscription in the API
type subscriptionResponse struct {
	ID        string    `json:"id"`
	TargetURL string    `json:"target_url"`
	CreatedAt time.Time `json:"created_at"`
}

func toSubscriptionResponse(sub subscription.Subscription) subscriptionResponse {
	return subscriptionResponse{
		ID:        sub.ID,
		TargetURL: sub.TargetURL,
		CreatedAt: sub.CreatedAt,
	}
}

// postSubscription handles POST /v1/subscriptions
func postSubscription(subService subscription.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req subscriptionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid JSON payload", http.StatusBadRequest)
			return
		}

		sub, err := subService.Create(r.Context(), req.TargetURL, req.Secret)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		if err := json.NewEncoder(w).Encode(toSubscriptionResponse(sub)); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}

// getSubscription handles GET /v1/subscriptions/{subscription_id}
func getSubscription(subService subscription.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "subscription_id")

		sub, err := subService.Get(r.Context(), id)
		if err == subscription.ErrNotFound {
			http.Error(w, "subscription not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(toSubscriptionResponse(sub)); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}

// listSubscriptions handles GET /v1/subscriptions
func listSubscriptions(subService subscription.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subs, err := subService.List(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		responses := make([]subscriptionResponse, 0, len(subs))
		for _, sub := range subs {
			responses = append(responses, toSubscriptionResponse(sub))
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(responses); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}
