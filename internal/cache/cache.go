// Package cache stores short string results (detected careers URLs) keyed by
// domain, in Redis when configured and in process memory otherwise.
package cache

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is a string cache with a fixed TTL.
type Store interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string) error
}

// Redis is a Redis-backed Store.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedis connects to Redis at the given URL and returns a Store.
// URL format: redis://localhost:6379
func NewRedis(redisURL, prefix string, ttl time.Duration) (*Redis, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("cache: invalid redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("cache: redis ping failed: %w", err)
	}

	return &Redis{client: client, ttl: ttl, prefix: prefix}, nil
}

// Get returns the cached value and true, or "" and false on a miss or error.
func (c *Redis) Get(ctx context.Context, key string) (string, bool) {
	val, err := c.client.Get(ctx, c.key(key)).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

// Set stores value with the configured TTL.
func (c *Redis) Set(ctx context.Context, key, value string) error {
	if err := c.client.Set(ctx, c.key(key), value, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache: set: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (c *Redis) Close() error {
	return c.client.Close()
}

func (c *Redis) key(key string) string {
	return buildKey(c.prefix, key)
}

func buildKey(prefix, key string) string {
	hash := sha256.Sum256([]byte(strings.ToLower(key)))
	return fmt.Sprintf("%s:%x", prefix, hash[:8])
}

type memoryEntry struct {
	value   string
	expires time.Time
}

// Memory is an in-process Store. Safe for concurrent use.
type Memory struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemory creates an empty in-memory Store. A ttl <= 0 never expires.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := strings.ToLower(key)
	e, ok := m.entries[k]
	if !ok {
		return "", false
	}
	if !e.expires.IsZero() && m.now().After(e.expires) {
		delete(m.entries, k)
		return "", false
	}
	return e.value, true
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	if key == "" {
		return errors.New("cache: empty key")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	e := memoryEntry{value: value}
	if m.ttl > 0 {
		e.expires = m.now().Add(m.ttl)
	}
	m.entries[strings.ToLower(key)] = e
	return nil
}
