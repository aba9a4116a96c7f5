package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrNotFound     = errors.New("key not found")
	ErrEncodeFailed = errors.New("failed to encode value")
	ErrDecodeFailed = errors.New("failed to decode value")
)

// Encoder converts a value of type T to a byte slice for storage in Redis.
type Encoder[T any] func(value T) ([]byte, error)

// Decoder converts a byte slice from Redis back to a value of type T.
type Decoder[T any] func(data []byte) (T, error)

// Cache is a generic cache backed by Redis.
type Cache[T any] struct {
	client  redis.UniversalClient
	encoder Encoder[T]
	decoder Decoder[T]
	prefix  string
}

type Options[T any] struct {
	Client  redis.UniversalClient
	Encoder Encoder[T]
	Decoder Decoder[T]
	Prefix  string
}

func New[T any](opts Options[T]) *Cache[T] {
	if opts.Encoder == nil {
		opts.Encoder = encodeCompact[T]
	}
	if opts.Decoder == nil {
		opts.Decoder = decodeCompact[T]
	}
	return &Cache[T]{
		client:  opts.Client,
		encoder: opts.Encoder,
		decoder: opts.Decoder,
		prefix:  opts.Prefix,
	}
}

func (c *Cache[T]) key(k string) string {
	if c.prefix == "" {
		return k
	}
	return c.prefix + ":" + k
}

// Set stores a value with the given TTL. Use ttl=0 for no expiration.
func (c *Cache[T]) Set(ctx context.Context, key string, value T, ttl time.Duration) error {
	data, err := c.encoder(value)
	if err != nil {
		return errors.Join(ErrEncodeFailed, err)
	}
	return c.client.Set(ctx, c.key(key), data, ttl).Err()
}

// Get returns ErrNotFound if the key does not exist.
func (c *Cache[T]) Get(ctx context.Context, key string) (T, error) {
	return c.decode(c.client.Get(ctx, c.key(key)).Bytes())
}

// GetEx retrieves a value and extends its TTL.
func (c *Cache[T]) GetEx(ctx context.Context, key string, ttl time.Duration) (T, error) {
	return c.decode(c.client.GetEx(ctx, c.key(key), ttl).Bytes())
}

func (c *Cache[T]) decode(data []byte, err error) (T, error) {
	var zero T
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return zero, ErrNotFound
		}
		return zero, err
	}
	value, err := c.decoder(data)
	if err != nil {
		return zero, errors.Join(ErrDecodeFailed, err)
	}
	return value, nil
}

// MGet returns the values of the keys that exist. Entries that fail to decode
// are treated as missing.
func (c *Cache[T]) MGet(ctx context.Context, keys ...string) (map[string]T, error) {
	values := make(map[string]T)
	if len(keys) == 0 {
		return values, nil
	}

	fullKeys := make([]string, len(keys))
	for i, k := range keys {
		fullKeys[i] = c.key(k)
	}
	results, err := c.client.MGet(ctx, fullKeys...).Result()
	if err != nil {
		return nil, err
	}

	for i, result := range results {
		var data []byte
		switch v := result.(type) {
		case string:
			data = []byte(v)
		case []byte:
			data = v
		default:
			continue
		}
		value, err := c.decoder(data)
		if err != nil {
			continue
		}
		values[keys[i]] = value
	}
	return values, nil
}

// MSet stores several values in one pipeline.
func (c *Cache[T]) MSet(ctx context.Context, items map[string]T, ttl time.Duration) error {
	if len(items) == 0 {
		return nil
	}
	pipe := c.client.Pipeline()
	for k, v := range items {
		data, err := c.encoder(v)
		if err != nil {
			return errors.Join(ErrEncodeFailed, err)
		}
		pipe.Set(ctx, c.key(k), data, ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// WithCache returns the cached value of key, or calls load and stores its
// result when keep accepts it. A nil keep stores every result. Cache failures
// fall back to load.
func WithCache[T any](ctx context.Context, c *Cache[T], key string, ttl time.Duration,
	load func(ctx context.Context) (T, error), keep func(T) bool) (T, error) {
	if c == nil {
		return load(ctx)
	}
	if value, err := c.Get(ctx, key); err == nil {
		return value, nil
	}

	value, err := load(ctx)
	if err != nil {
		return value, err
	}
	if keep == nil || keep(value) {
		_ = c.Set(ctx, key, value, ttl)
	}
	return value, nil
}
