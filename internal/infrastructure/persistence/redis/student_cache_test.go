package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classroll/attendance-tracker/internal/domain/student"
)

func TestKeys(t *testing.T) {
	c := NewCacheFromClient(redis.NewClient(&redis.Options{Addr: "localhost:0"}), "attendance:")
	defer c.Close()

	assert.Equal(t, "student:42", StudentKey(42))
	assert.Equal(t, "attendance:student:42", c.Key(StudentKey(42)))
	assert.Equal(t, "localhost:6379", DefaultConfig().Addr())
}

func TestCache_RejectsBadInput(t *testing.T) {
	c := NewCacheFromClient(redis.NewClient(&redis.Options{Addr: "localhost:0"}), "attendance:")
	defer c.Close()
	ctx := context.Background()

	assert.ErrorIs(t, c.Set(ctx, "", 1, time.Minute), ErrCacheKeyEmpty)
	assert.ErrorIs(t, c.Set(ctx, "k", nil, time.Minute), ErrCacheNilValue)
	assert.ErrorIs(t, c.Set(ctx, "k", 1, -time.Second), ErrCacheInvalidTTL)
	assert.ErrorIs(t, c.SetMany(ctx, time.Minute, Entry{Key: "a", Value: 1}, Entry{Key: "b"}), ErrCacheNilValue)
	assert.ErrorIs(t, c.SetMany(ctx, time.Minute, Entry{Key: "c", Value: make(chan int)}), ErrCacheEncoding)
	assert.ErrorIs(t, c.Get(ctx, "", new(int)), ErrCacheKeyEmpty)
	assert.ErrorIs(t, c.DeleteByPattern(ctx, ""), ErrCacheKeyEmpty)
}

// liveCache connects to TEST_REDIS_ADDR under a per-test prefix.
func liveCache(t *testing.T) *StudentCache {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}

	c := NewCacheFromClient(redis.NewClient(&redis.Options{Addr: addr}), "test:"+uuid.NewString()+":")
	require.NoError(t, c.Ping(context.Background()))
	t.Cleanup(func() {
		_ = c.DeleteByPattern(context.Background(), "*")
		_ = c.Close()
	})
	return NewStudentCache(c)
}

func TestStudentCache_RoundTrip(t *testing.T) {
	sc := liveCache(t)
	ctx := context.Background()

	miss, err := sc.Get(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, miss)

	alice := &student.Student{ID: 1, Name: "Alice"}
	require.NoError(t, sc.Set(ctx, alice, time.Minute))
	got, err := sc.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, alice, got)

	bob := &student.Student{ID: 2, Name: "Bob"}
	require.NoError(t, sc.SetList(ctx, []*student.Student{alice, bob}, time.Minute))
	got, err = sc.Get(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, bob, got)

	require.NoError(t, sc.SetList(ctx, nil, time.Minute))
	list, err := sc.GetList(ctx)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	require.NoError(t, sc.InvalidateAll(ctx))
	got, err = sc.Get(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, got)
	list, err = sc.GetList(ctx)
	require.NoError(t, err)
	assert.Nil(t, list)
}
