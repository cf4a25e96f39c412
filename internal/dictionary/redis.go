package dictionary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"
)

// redisClient is the subset of *redis.Client used by RedisCache.
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Close() error
}

// RedisCache is a read-through cache in front of another Source, shared
// between editor processes. Empty results are cached as well. A Redis
// failure never fails a lookup: it is logged and the inner Source answers.
type RedisCache struct {
	client    redisClient
	inner     Source
	namespace string
	ttl       time.Duration
	logger    *slog.Logger
}

// RedisOptions configures NewRedisCache.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
	// Namespace separates cached entries of different dictionaries,
	// typically the dictionary fingerprint.
	Namespace string
	Logger    *slog.Logger
}

// NewRedisCache connects to Redis and wraps inner.
func NewRedisCache(inner Source, opts RedisOptions) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return newRedisCache(client, inner, opts), nil
}

func newRedisCache(client redisClient, inner Source, opts RedisOptions) *RedisCache {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ns := opts.Namespace
	if ns == "" {
		ns = "default"
	}
	return &RedisCache{
		client:    client,
		inner:     inner,
		namespace: ns,
		ttl:       opts.TTL,
		logger:    logger,
	}
}

func (r *RedisCache) key(word string) string {
	return fmt.Sprintf("rhymer:%s:%s", r.namespace, word)
}

func (r *RedisCache) Lookup(ctx context.Context, word string) ([]string, error) {
	key := r.key(word)

	data, err := r.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		var phones []string
		if jsonErr := json.Unmarshal([]byte(data), &phones); jsonErr == nil {
			return phones, nil
		}
		r.logger.Warn("discarding undecodable redis entry", "key", key)
	case errors.Is(err, redis.Nil):
	default:
		r.logger.Warn("redis GET failed, using inner dictionary", "key", key, "error", err)
	}

	phones, err := r.inner.Lookup(ctx, word)
	if err != nil {
		return nil, err
	}

	encoded, err := json.Marshal(phones)
	if err != nil {
		return phones, nil
	}
	if err := r.client.Set(ctx, key, encoded, r.ttl).Err(); err != nil {
		r.logger.Warn("redis SET failed", "key", key, "error", err)
	}

	return phones, nil
}

// Close closes the Redis client and the inner Source.
func (r *RedisCache) Close() error {
	return errors.Join(r.client.Close(), r.inner.Close())
}
