package analysis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/braindler/braindler-multimodal/internal/models"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("COPYDETECT_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("COPYDETECT_TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	require.NoError(t, client.Ping(context.Background()).Err())
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisStatusStore(t *testing.T) {
	client := newTestRedis(t)
	store := NewRedisStatusStore(client)
	ctx := context.Background()
	caseID := "test-" + uuid.New().String()
	t.Cleanup(func() { client.Del(ctx, statusKeyPrefix+caseID) })

	step, err := store.GetStatus(ctx, caseID)
	require.NoError(t, err)
	assert.Equal(t, models.StepIdle, step)

	require.NoError(t, store.SetStatus(ctx, caseID, models.StepMatching))
	step, err = store.GetStatus(ctx, caseID)
	require.NoError(t, err)
	assert.Equal(t, models.StepMatching, step)

	ttl, err := client.TTL(ctx, statusKeyPrefix+caseID).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, statusTTL-time.Minute)
}

func TestRedisStatusStoreRejectsUnknownStep(t *testing.T) {
	store := NewRedisStatusStore(nil)
	assert.Error(t, store.SetStatus(context.Background(), "case-1", models.Step("sleeping")))
}
