package delivery_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/marcelsud/webhook-courier/delivery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutor_Attempt(t *testing.T) {
	ctx := context.Background()
	payload := []byte(`{"event":"user.created"}`)

	t.Run("success - 2xx response", func(t *testing.T) {
		var gotBody string
		var gotHeaders http.Header
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			gotBody = string(body)
			gotHeaders = r.Header.Clone()
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		e := delivery.NewExecutor(time.Second)
		outcome := e.Attempt(ctx, srv.URL, payload, map[string]string{
			"X-Webhook-ID":      "wh-1",
			"X-Webhook-Attempt": "1",
		})

		assert.True(t, outcome.Success)
		assert.Equal(t, http.StatusOK, outcome.StatusCode)
		assert.Empty(t, outcome.Error)
		assert.Equal(t, string(payload), gotBody)
		assert.Equal(t, "application/json", gotHeaders.Get("Content-Type"))
		assert.Equal(t, "wh-1", gotHeaders.Get("X-Webhook-ID"))
		assert.Equal(t, "1", gotHeaders.Get("X-Webhook-Attempt"))
		assert.Equal(t, "WebhookCourier/1.0", gotHeaders.Get("User-Agent"))
	})

	t.Run("success - 204 counts as delivered", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))
		defer srv.Close()

		e := delivery.NewExecutor(time.Second)
		outcome := e.Attempt(ctx, srv.URL, payload, nil)
		assert.True(t, outcome.Success)
		assert.Equal(t, http.StatusNoContent, outcome.StatusCode)
	})

	t.Run("failure - non-2xx keeps status code and body prefix", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("upstream exploded"))
		}))
		defer srv.Close()

		e := delivery.NewExecutor(time.Second)
		outcome := e.Attempt(ctx, srv.URL, payload, nil)

		assert.False(t, outcome.Success)
		assert.Equal(t, http.StatusInternalServerError, outcome.StatusCode)
		assert.Equal(t, "upstream exploded", outcome.Error)
	})

	t.Run("failure - response body is truncated", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte(strings.Repeat("x", 5000)))
		}))
		defer srv.Close()

		e := delivery.NewExecutor(time.Second)
		outcome := e.Attempt(ctx, srv.URL, payload, nil)

		assert.False(t, outcome.Success)
		assert.Len(t, outcome.Error, 1024)
	})

	t.Run("failure - connection refused has no status code", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := srv.URL
		srv.Close()

		e := delivery.NewExecutor(time.Second)
		outcome := e.Attempt(ctx, url, payload, nil)

		assert.False(t, outcome.Success)
		assert.Zero(t, outcome.StatusCode)
		assert.Contains(t, outcome.Error, "network error")
	})

	t.Run("failure - timeout is classified", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(300 * time.Millisecond)
		}))
		defer srv.Close()

		e := delivery.NewExecutor(50 * time.Millisecond)
		outcome := e.Attempt(ctx, srv.URL, payload, nil)

		require.False(t, outcome.Success)
		assert.Zero(t, outcome.StatusCode)
		assert.Equal(t, "request timeout", outcome.Error)
	})
}
