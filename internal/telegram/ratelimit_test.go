package telegram

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secrethouse/internal/modules/dialog"
)

type fakeLimiter struct {
	allowed int
	err     error
	users   []string
}

func (f *fakeLimiter) Allow(ctx context.Context, userID string) (bool, error) {
	f.users = append(f.users, userID)
	if f.err != nil {
		return true, f.err
	}
	if f.allowed <= 0 {
		return false, nil
	}
	f.allowed--
	return true, nil
}

func TestRateLimitedUserGetsNotice(t *testing.T) {
	convs := &fakeConversations{reply: dialog.Reply{Text: "ok"}}
	b, tg := newTestBot(t, convs, nil)
	lim := &fakeLimiter{allowed: 1}
	b.SetLimiter(lim)

	b.handleUpdate(context.Background(), textUpdate(777, "привет"))
	b.handleUpdate(context.Background(), textUpdate(777, "ещё раз"))

	assert.Equal(t, []string{"42", "42"}, lim.users)
	assert.Equal(t, []string{"777|42|привет"}, convs.texts)
	msgs := tg.messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "ok", msgs[0].Text)
	assert.Equal(t, rateLimitedText, msgs[1].Text)
}

func TestRateLimiterErrorLetsMessageThrough(t *testing.T) {
	convs := &fakeConversations{reply: dialog.Reply{Text: "ok"}}
	b, tg := newTestBot(t, convs, nil)
	b.SetLimiter(&fakeLimiter{err: errors.New("redis down")})

	b.handleUpdate(context.Background(), textUpdate(777, "привет"))

	assert.Equal(t, []string{"777|42|привет"}, convs.texts)
	msgs := tg.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "ok", msgs[0].Text)
}

func TestRedisLimiterUnreachableFailsOpen(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })

	ok, err := NewRedisLimiter(client, 1, time.Minute).Allow(context.Background(), "42")
	assert.True(t, ok)
	assert.Error(t, err)
}

func TestRedisLimiterDisabled(t *testing.T) {
	ok, err := NewRedisLimiter(nil, 0, time.Minute).Allow(context.Background(), "42")
	require.NoError(t, err)
	assert.True(t, ok)
}

// TestRedisLimiter needs SECRETHOUSE_TEST_REDIS (host:port).
func TestRedisLimiter(t *testing.T) {
	addr := os.Getenv("SECRETHOUSE_TEST_REDIS")
	if addr == "" {
		t.Skip("SECRETHOUSE_TEST_REDIS not set; skipping Redis-backed tests")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	user := "test-" + time.Now().Format("150405.000000")
	t.Cleanup(func() { _ = client.Del(ctx, rateLimitPrefix+user).Err() })

	lim := NewRedisLimiter(client, 2, time.Minute)
	for i := 0; i < 2; i++ {
		ok, err := lim.Allow(ctx, user)
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := lim.Allow(ctx, user)
	require.NoError(t, err)
	assert.False(t, ok)

	ttl, err := client.TTL(ctx, rateLimitPrefix+user).Result()
	require.NoError(t, err)
	assert.True(t, ttl > 0, "ttl %v", ttl)
}
