package dialog

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secrethouse/internal/modules/booking"
)

// TestRedisStateStore needs SECRETHOUSE_TEST_REDIS (host:port).
func TestRedisStateStore(t *testing.T) {
	addr := os.Getenv("SECRETHOUSE_TEST_REDIS")
	if addr == "" {
		t.Skip("SECRETHOUSE_TEST_REDIS not set; skipping Redis-backed tests")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	store := NewRedisStateStore(client, time.Minute)
	id := "test-" + time.Now().Format("150405.000000")
	t.Cleanup(func() { _ = store.Delete(ctx, id) })

	empty, err := store.Load(ctx, id)
	require.NoError(t, err)
	assert.True(t, empty.Booking.Context.IsEmpty())

	in := TurnState{
		Text:       "нет",
		ActiveFlow: FlowBooking,
		Booking: booking.Session{
			Stage:   booking.StageCollecting,
			Context: booking.Context{Tariff: "12 часов", Comment: booking.Comment{Provided: true}},
		},
	}
	require.NoError(t, store.Save(ctx, id, in))

	out, err := store.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "12 часов", out.Booking.Context.Tariff)
	assert.True(t, out.Booking.Context.Comment.Provided)

	ttl, err := client.TTL(ctx, statePrefix+id).Result()
	require.NoError(t, err)
	assert.True(t, ttl > 0 && ttl <= time.Minute, "ttl %s", ttl)

	require.NoError(t, store.Delete(ctx, id))
	out, err = store.Load(ctx, id)
	require.NoError(t, err)
	assert.True(t, out.Booking.Context.IsEmpty())
}
