// Package bulkdelete serializes deletion of burst messages behind a single
// process-wide lock, spacing successive deletions to stay under platform
// rate limits. The limit is platform-wide, so the lock is deliberately
// global rather than per tenant.
package bulkdelete

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dotfriends/asca/internal/core"
	"github.com/dotfriends/asca/internal/punish"
)

// Coordinator deletes message batches one at a time system-wide.
type Coordinator struct {
	mu       sync.Mutex
	platform core.ChatPlatform
	spacing  time.Duration
	logger   *zap.Logger
}

// NewCoordinator creates a new Coordinator with the given inter-deletion
// spacing.
func NewCoordinator(platform core.ChatPlatform, spacing time.Duration, logger *zap.Logger) *Coordinator {
	return &Coordinator{
		platform: platform,
		spacing:  spacing,
		logger:   logger,
	}
}

// DeleteAll deletes the messages serially under the global lock, waiting the
// configured spacing between deletions. Already-deleted messages count as
// success.
func (c *Coordinator) DeleteAll(ctx context.Context, msgs []*core.Message) {
	if len(msgs) == 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.logger.Info("Deleting message burst", zap.Int("count", len(msgs)))

	for i, msg := range msgs {
		if i > 0 {
			select {
			case <-time.After(c.spacing):
			case <-ctx.Done():
				c.logger.Warn("Burst deletion interrupted",
					zap.Int("deleted", i), zap.Int("total", len(msgs)))
				return
			}
		}
		c.deleteOne(ctx, msg)
	}
}

func (c *Coordinator) deleteOne(ctx context.Context, msg *core.Message) {
	err := c.platform.DeleteMessage(ctx, msg)
	switch core.KindOf(err) {
	case core.ErrKindNotFound:
		// Already gone, treated as success.
	case core.ErrKindForbidden:
		reply := fmt.Sprintf("Scam detected, but I need the `%s` permission or to be placed higher on the `Roles` list", punish.DeletePermission)
		if rerr := c.platform.Reply(ctx, msg, reply); rerr != nil {
			c.logger.Debug("Failed to send reply", zap.Error(rerr))
		}
	default:
		if err != nil {
			c.logger.Warn("Failed to delete burst message",
				zap.String("message", msg.ID), zap.Error(err))
		}
	}
}
