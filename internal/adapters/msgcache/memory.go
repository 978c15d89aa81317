// Package msgcache implements the recent-message window used by burst
// detection: a bounded, per-process ring buffer, or a Redis-backed list for
// multi-process deployments.
package msgcache

import (
	"context"
	"sync"

	"github.com/dotfriends/asca/internal/core"
)

// MemoryCache is a bounded in-memory ring buffer of recent messages.
type MemoryCache struct {
	entries  []*core.Message
	next     int
	filled   bool
	capacity int
	mu       sync.RWMutex
}

// NewMemoryCache creates a ring buffer holding at most capacity messages.
func NewMemoryCache(capacity int) *MemoryCache {
	if capacity <= 0 {
		capacity = 1000
	}
	return &MemoryCache{
		entries:  make([]*core.Message, capacity),
		capacity: capacity,
	}
}

// Add records a message, evicting the oldest when full.
func (c *MemoryCache) Add(ctx context.Context, msg *core.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[c.next] = msg
	c.next++
	if c.next == c.capacity {
		c.next = 0
		c.filled = true
	}
	return nil
}

// Recent returns a point-in-time snapshot of the cached messages for the
// (tenant, author) pair, newest first.
func (c *MemoryCache) Recent(ctx context.Context, tenantID, authorID string) ([]*core.Message, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	size := c.next
	if c.filled {
		size = c.capacity
	}

	var matched []*core.Message
	for i := 1; i <= size; i++ {
		// Walk backwards from the most recent entry.
		idx := (c.next - i + c.capacity) % c.capacity
		msg := c.entries[idx]
		if msg == nil {
			continue
		}
		if msg.TenantID == tenantID && msg.Author.ID == authorID {
			matched = append(matched, msg)
		}
	}
	return matched, nil
}
