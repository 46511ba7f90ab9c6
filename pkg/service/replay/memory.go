// Package replay deduplicates inbound gateway message IDs. Gateways redeliver
// webhooks when an ack is slow or lost; processing the same message twice
// must not happen upstream of the booking flow.
package replay

import (
	"context"
	"sync"
	"time"

	"github.com/slotcast-dev/slotcast/pkg/domain/interfaces"
)

const (
	// DefaultTTL is how long a message ID is remembered.
	DefaultTTL = 15 * time.Minute
	// DefaultCleanupEvery is the janitor interval for the memory cache.
	DefaultCleanupEvery = 2 * time.Minute
)

// memoryCache is an in-process TTL map with periodic cleanup.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string]time.Time
	ttl     time.Duration
	done    chan struct{}
	once    sync.Once
}

var _ interfaces.ReplayCache = &memoryCache{}

// MemoryOption is a functional option for the memory cache
type MemoryOption func(*memoryCache)

// WithTTL overrides how long message IDs are remembered.
func WithTTL(ttl time.Duration) MemoryOption {
	return func(c *memoryCache) {
		c.ttl = ttl
	}
}

// NewMemory creates an in-process replay cache and starts its janitor.
func NewMemory(opts ...MemoryOption) interfaces.ReplayCache {
	c := &memoryCache{
		entries: make(map[string]time.Time),
		ttl:     DefaultTTL,
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	go c.janitor()
	return c
}

func (c *memoryCache) SeenBefore(ctx context.Context, messageID string) (bool, error) {
	if messageID == "" {
		return false, nil
	}

	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if expires, ok := c.entries[messageID]; ok && expires.After(now) {
		return true, nil
	}
	c.entries[messageID] = now.Add(c.ttl)
	return false, nil
}

func (c *memoryCache) Close() error {
	c.once.Do(func() { close(c.done) })
	return nil
}

func (c *memoryCache) janitor() {
	ticker := time.NewTicker(DefaultCleanupEvery)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			now := time.Now()
			c.mu.Lock()
			for id, expires := range c.entries {
				if expires.Before(now) {
					delete(c.entries, id)
				}
			}
			c.mu.Unlock()
		}
	}
}
