package chi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog"
	"github.com/marcelsud/webhook-courier/delivery"
	"github.com/marcelsud/webhook-courier/subscription"
)

// Handlers sets up the webhook courier API routes
func Handlers(
	subService subscription.UseCase,
	deliveryService delivery.UseCase,
	metricsHandler http.Handler,
	apiKeys []string,
) *chi.Mux {
	logger := httplog.NewLogger("webhook-courier", httplog.Options{
		JSON: true,
	})

	r := chi.NewRouter()
	r.Use(httplog.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	// Health check (unauthenticated)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	// Webhook courier API routes
	r.Route("/v1", func(r chi.Router) {
		r.Use(APIKeyAuth(apiKeys))

		r.Post("/subscriptions", postSubscription(subService).ServeHTTP)
		r.Get("/subscriptions", listSubscriptions(subService).ServeHTTP)
		r.Get("/subscriptions/{subscription_id}", getSubscription(subService).ServeHTTP)

		// Ingest an event for a subscription
		r.Post("/subscriptions/{subscription_id}/events", ingestWebhook(deliveryService).ServeHTTP)

		// Delivery status queries
		r.Get("/deliveries/{webhook_id}", getDeliveryStatus(deliveryService).ServeHTTP)
	})

	return r
}
