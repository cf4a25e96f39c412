package dictionary

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRedis struct {
	data    map[string]string
	getErr  error
	setErr  error
	ttls    map[string]time.Duration
	closed  bool
	setCall int
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, ttl time.Duration) *redis.StatusCmd {
	f.setCall++
	if f.setErr != nil {
		return redis.NewStatusResult("", f.setErr)
	}
	f.data[key] = string(value.([]byte))
	f.ttls[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Close() error {
	f.closed = true
	return nil
}

type countingSource struct {
	Memory
	calls int
}

func (c *countingSource) Lookup(ctx context.Context, word string) ([]string, error) {
	c.calls++
	return c.Memory.Lookup(ctx, word)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRedisCache_ReadThrough(t *testing.T) {
	client := newFakeRedis()
	inner := &countingSource{Memory: *NewMemory(map[string][]string{"cat": {"K AE1 T"}})}
	rc := newRedisCache(client, inner, RedisOptions{TTL: time.Hour, Namespace: "abc", Logger: quietLogger()})

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		phones, err := rc.Lookup(ctx, "cat")
		require.NoError(t, err)
		assert.Equal(t, []string{"K AE1 T"}, phones)
	}

	assert.Equal(t, 1, inner.calls, "inner source hit once")
	assert.Equal(t, `["K AE1 T"]`, client.data["rhymer:abc:cat"])
	assert.Equal(t, time.Hour, client.ttls["rhymer:abc:cat"])
}

func TestRedisCache_CachesMisses(t *testing.T) {
	client := newFakeRedis()
	inner := &countingSource{Memory: *NewMemory(nil)}
	rc := newRedisCache(client, inner, RedisOptions{Logger: quietLogger()})

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		phones, err := rc.Lookup(ctx, "catt")
		require.NoError(t, err)
		assert.Empty(t, phones)
	}
	assert.Equal(t, 1, inner.calls)
	assert.Contains(t, client.data, "rhymer:default:catt")
}

func TestRedisCache_DegradesOnRedisFailure(t *testing.T) {
	client := newFakeRedis()
	client.getErr = errors.New("dial tcp: connection refused")
	client.setErr = errors.New("dial tcp: connection refused")
	inner := &countingSource{Memory: *NewMemory(map[string][]string{"hat": {"HH AE1 T"}})}
	rc := newRedisCache(client, inner, RedisOptions{Logger: quietLogger()})

	phones, err := rc.Lookup(context.Background(), "hat")
	require.NoError(t, err)
	assert.Equal(t, []string{"HH AE1 T"}, phones)
	assert.Equal(t, 1, client.setCall)
}

func TestRedisCache_UndecodableEntry(t *testing.T) {
	client := newFakeRedis()
	client.data["rhymer:default:mat"] = "{not json"
	inner := &countingSource{Memory: *NewMemory(map[string][]string{"mat": {"M AE1 T"}})}
	rc := newRedisCache(client, inner, RedisOptions{Logger: quietLogger()})

	phones, err := rc.Lookup(context.Background(), "mat")
	require.NoError(t, err)
	assert.Equal(t, []string{"M AE1 T"}, phones)
	assert.Equal(t, `["M AE1 T"]`, client.data["rhymer:default:mat"], "entry repaired")
}

func TestRedisCache_InnerErrorPropagates(t *testing.T) {
	boom := errors.New("db down")
	inner := Func(func(context.Context, string) ([]string, error) { return nil, boom })
	rc := newRedisCache(newFakeRedis(), inner, RedisOptions{Logger: quietLogger()})

	_, err := rc.Lookup(context.Background(), "cat")
	assert.ErrorIs(t, err, boom)
}

func TestRedisCache_Close(t *testing.T) {
	client := newFakeRedis()
	rc := newRedisCache(client, NewMemory(nil), RedisOptions{})
	require.NoError(t, rc.Close())
	assert.True(t, client.closed)
}
