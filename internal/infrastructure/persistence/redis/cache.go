// Package redis implements the optional roster cache on Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds Redis connection settings.
type Config struct {
	Host     string
	Port     int
	Password string
	DB       int

	// KeyPrefix is prepended to every key this process reads or writes.
	KeyPrefix string

	PoolSize    int
	DialTimeout time.Duration
	IOTimeout   time.Duration
}

// DefaultConfig returns settings for a local Redis.
func DefaultConfig() Config {
	return Config{
		Host:        "localhost",
		Port:        6379,
		KeyPrefix:   "attendance:",
		PoolSize:    2,
		DialTimeout: 2 * time.Second,
		IOTimeout:   time.Second,
	}
}

// Addr returns host:port.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

var (
	// ErrCacheMiss means the key is absent or expired.
	ErrCacheMiss = errors.New("cache: miss")

	// ErrCacheConnection means Redis could not be reached at startup.
	ErrCacheConnection = errors.New("cache: connection failed")

	// ErrCacheEncoding means a value could not be encoded or decoded as JSON.
	ErrCacheEncoding = errors.New("cache: encoding failed")

	// ErrCacheKeyEmpty rejects empty keys and patterns.
	ErrCacheKeyEmpty = errors.New("cache: empty key")

	// ErrCacheNilValue rejects nil values.
	ErrCacheNilValue = errors.New("cache: nil value")

	// ErrCacheInvalidTTL rejects negative TTLs.
	ErrCacheInvalidTTL = errors.New("cache: negative ttl")
)

// Cache stores JSON documents under keys namespaced by a prefix.
type Cache struct {
	rdb    *redis.Client
	prefix string
}

// NewCache connects to Redis and pings it once.
func NewCache(ctx context.Context, cfg Config) (*Cache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.IOTimeout,
		WriteTimeout: cfg.IOTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("%w: %s: %v", ErrCacheConnection, cfg.Addr(), err)
	}
	return NewCacheFromClient(rdb, cfg.KeyPrefix), nil
}

// NewCacheFromClient wraps an existing client.
func NewCacheFromClient(rdb *redis.Client, prefix string) *Cache {
	return &Cache{rdb: rdb, prefix: prefix}
}

// Close releases the client.
func (c *Cache) Close() error {
	return c.rdb.Close()
}

// Ping checks that Redis answers.
func (c *Cache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Key returns the namespaced form of key.
func (c *Cache) Key(key string) string {
	return c.prefix + key
}

// Entry is one key and value written by SetMany.
type Entry struct {
	Key   string
	Value any
}

// Set stores value as JSON under key. A zero ttl means no expiry.
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	return c.SetMany(ctx, ttl, Entry{Key: key, Value: value})
}

// SetMany stores every entry in one MULTI/EXEC round trip.
func (c *Cache) SetMany(ctx context.Context, ttl time.Duration, entries ...Entry) error {
	if ttl < 0 {
		return ErrCacheInvalidTTL
	}

	payloads := make([][]byte, len(entries))
	for i, e := range entries {
		if e.Key == "" {
			return ErrCacheKeyEmpty
		}
		if e.Value == nil {
			return ErrCacheNilValue
		}
		data, err := json.Marshal(e.Value)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrCacheEncoding, e.Key, err)
		}
		payloads[i] = data
	}

	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, e := range entries {
			pipe.Set(ctx, c.Key(e.Key), payloads[i], ttl)
		}
		return nil
	})
	return err
}

// Get decodes the JSON stored under key into dest.
func (c *Cache) Get(ctx context.Context, key string, dest any) error {
	if key == "" {
		return ErrCacheKeyEmpty
	}

	data, err := c.rdb.Get(ctx, c.Key(key)).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return ErrCacheMiss
	case err != nil:
		return err
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCacheEncoding, key, err)
	}
	return nil
}

// scanBatch is the SCAN COUNT hint and the size of each DEL.
const scanBatch = 100

// DeleteByPattern removes every key under the prefix that matches pattern.
func (c *Cache) DeleteByPattern(ctx context.Context, pattern string) error {
	if pattern == "" {
		return ErrCacheKeyEmpty
	}

	batch := make([]string, 0, scanBatch)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		err := c.rdb.Del(ctx, batch...).Err()
		batch = batch[:0]
		return err
	}

	iter := c.rdb.Scan(ctx, 0, c.Key(pattern), scanBatch).Iterator()
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == scanBatch {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	return flush()
}
