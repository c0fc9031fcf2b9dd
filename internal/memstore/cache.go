package memstore

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"strconv"
	"strings"
	"sync"

	"wellness/shared/cache"
)

type memCache struct {
	mu     sync.Mutex
	values map[string]string
}

// NewCache returns a cache.RedisCache held in process memory.
func NewCache() cache.RedisCache {
	return &memCache{values: map[string]string{}}
}

func (c *memCache) Save(_ context.Context, key string, value any, _ int) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}

	c.mu.Lock()
	c.values[key] = string(raw)
	c.mu.Unlock()

	return nil
}

func (c *memCache) Get(_ context.Context, key string, value any) error {
	c.mu.Lock()
	raw, ok := c.values[key]
	c.mu.Unlock()

	if !ok {
		return fmt.Errorf("failed to get cache value: %w", cache.Nil)
	}

	if v, isString := value.(*string); isString {
		*v = raw

		return nil
	}

	if err := json.Unmarshal([]byte(raw), value); err != nil {
		return fmt.Errorf("failed to unmarshal cache value: %w", err)
	}

	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.values, key)
	c.mu.Unlock()

	return nil
}

// Incr counts without expiry; windows never roll over in process memory.
func (c *memCache) Incr(_ context.Context, key string, _ int) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	count, _ := strconv.ParseInt(c.values[key], 10, 64)
	count++
	c.values[key] = strconv.FormatInt(count, 10)

	return count, nil
}

// Clear drops keys matching a trailing-wildcard pattern such as "slot:*".
func (c *memCache) Clear(_ context.Context, prefix string) error {
	prefix = strings.TrimSuffix(prefix, "*")

	c.mu.Lock()
	maps.DeleteFunc(c.values, func(key, _ string) bool { return strings.HasPrefix(key, prefix) })
	c.mu.Unlock()

	return nil
}
