package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/marcelsud/webhook-courier/delivery"
	"github.com/marcelsud/webhook-courier/delivery/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedDelivery(t *testing.T, repo *memory.Repository, webhookID string, status delivery.Status) {
	t.Helper()
	require.NoError(t, repo.Save(context.Background(), delivery.Delivery{
		WebhookID:      webhookID,
		SubscriptionID: "sub-1",
		Payload:        []byte(`{}`),
		Status:         status,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}))
}

func TestRepository_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRepository()

	t.Run("unknown id returns ErrNotFound", func(t *testing.T) {
		_, err := repo.Get(ctx, "missing")
		require.ErrorIs(t, err, delivery.ErrNotFound)
	})

	t.Run("stored delivery round-trips", func(t *testing.T) {
		seedDelivery(t, repo, "wh-1", delivery.Pending)
		d, err := repo.Get(ctx, "wh-1")
		require.NoError(t, err)
		assert.Equal(t, "wh-1", d.WebhookID)
		assert.Equal(t, delivery.Pending, d.Status)
	})
}

func TestRepository_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRepository()
	seedDelivery(t, repo, "wh-1", delivery.Pending)

	require.NoError(t, repo.UpdateStatus(ctx, "wh-1", delivery.Delivered))
	d, err := repo.Get(ctx, "wh-1")
	require.NoError(t, err)
	assert.Equal(t, delivery.Delivered, d.Status)

	require.ErrorIs(t, repo.UpdateStatus(ctx, "missing", delivery.Delivered), delivery.ErrNotFound)
}

func TestRepository_AttemptLog(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRepository()
	seedDelivery(t, repo, "wh-1", delivery.Pending)

	t.Run("unknown webhook yields empty log, not an error", func(t *testing.T) {
		attempts, err := repo.ListAttempts(ctx, "missing")
		require.NoError(t, err)
		assert.Empty(t, attempts)
	})

	t.Run("appends preserve order", func(t *testing.T) {
		for i := 1; i <= 3; i++ {
			require.NoError(t, repo.AppendAttempt(ctx, delivery.Attempt{
				WebhookID:     "wh-1",
				AttemptNumber: i,
				Timestamp:     time.Now(),
			}))
		}
		attempts, err := repo.ListAttempts(ctx, "wh-1")
		require.NoError(t, err)
		require.Len(t, attempts, 3)
		for i, a := range attempts {
			assert.Equal(t, i+1, a.AttemptNumber)
		}
	})
}

func TestRepository_ListUnfinished(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRepository()
	seedDelivery(t, repo, "wh-pending", delivery.Pending)
	seedDelivery(t, repo, "wh-retrying", delivery.Retrying)
	seedDelivery(t, repo, "wh-done", delivery.Delivered)
	seedDelivery(t, repo, "wh-spent", delivery.Exhausted)

	unfinished, err := repo.ListUnfinished(ctx)
	require.NoError(t, err)

	ids := make([]string, 0, len(unfinished))
	for _, d := range unfinished {
		ids = append(ids, d.WebhookID)
	}
	assert.ElementsMatch(t, []string{"wh-pending", "wh-retrying"}, ids)
}

func TestRepository_CountByStatus(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRepository()
	seedDelivery(t, repo, "wh-1", delivery.Pending)
	seedDelivery(t, repo, "wh-2", delivery.Pending)
	seedDelivery(t, repo, "wh-3", delivery.Delivered)

	counts, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts["pending"])
	assert.Equal(t, int64(1), counts["delivered"])
}
