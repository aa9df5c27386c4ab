package cache

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *RedisCache) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return mr, NewRedisCache(client, NoExpiration)
}

func TestRedisCache_SetGet(t *testing.T) {
	_, c := newTestRedis(t)
	key := Key("ledger", "history")

	_, found, err := c.Get(key)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Set(key, []byte("[]"), 0))

	got, found, err := c.Get(key)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "[]", string(got))
}

func TestRedisCache_TTL(t *testing.T) {
	mr, c := newTestRedis(t)
	key := Key("verdict", "abc")

	require.NoError(t, c.Set(key, []byte("v"), time.Minute))
	mr.FastForward(2 * time.Minute)

	_, found, err := c.Get(key)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisCache_ClearLeavesForeignKeys(t *testing.T) {
	mr, c := newTestRedis(t)
	require.NoError(t, mr.Set("other:key", "keep"))
	require.NoError(t, c.Set(Key("a"), []byte("1"), 0))
	require.NoError(t, c.Set(Key("b"), []byte("2"), 0))

	require.NoError(t, c.Clear())

	assert.False(t, mr.Exists(Key("a")))
	assert.False(t, mr.Exists(Key("b")))
	assert.True(t, mr.Exists("other:key"))
}

func TestRedisCache_Unreachable(t *testing.T) {
	mr, c := newTestRedis(t)
	mr.Close()

	_, found, err := c.Get(Key("x"))
	assert.Error(t, err)
	assert.False(t, found)
}

func TestNewRedisCacheFromURL(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	c, err := NewRedisCacheFromURL("redis://"+mr.Addr(), NoExpiration)
	require.NoError(t, err)
	defer func() { _ = c.Close() }()

	bare, err := NewRedisCacheFromURL(mr.Addr(), NoExpiration)
	require.NoError(t, err)
	defer func() { _ = bare.Close() }()

	_, err = NewRedisCacheFromURL("", NoExpiration)
	assert.Error(t, err)
}
