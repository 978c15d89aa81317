// Package platform provides ChatPlatform implementations. The log platform
// records every moderation action instead of calling a real chat API, which
// makes the full pipeline runnable against replayed traffic.
package platform

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/dotfriends/asca/internal/core"
)

// LogPlatform is a ChatPlatform that logs intended actions and reports them
// all as successful. Every author is treated as a plain member.
type LogPlatform struct {
	logger *zap.Logger
}

// NewLogPlatform creates a log-only chat platform
func NewLogPlatform(logger *zap.Logger) *LogPlatform {
	return &LogPlatform{logger: logger}
}

func (p *LogPlatform) Reply(ctx context.Context, msg *core.Message, text string) error {
	p.logger.Info("Would reply",
		zap.String("channel", msg.ChannelID),
		zap.String("message", msg.ID),
		zap.String("text", text))
	return nil
}

func (p *LogPlatform) DeleteMessage(ctx context.Context, msg *core.Message) error {
	p.logger.Info("Would delete message",
		zap.String("channel", msg.ChannelID),
		zap.String("message", msg.ID))
	return nil
}

func (p *LogPlatform) TimeoutAuthor(ctx context.Context, msg *core.Message, duration time.Duration, reason string) error {
	p.logger.Info("Would time out author",
		zap.String("author", msg.Author.Tag),
		zap.Duration("duration", duration),
		zap.String("reason", reason))
	return nil
}

func (p *LogPlatform) BanAuthor(ctx context.Context, msg *core.Message, reason string) error {
	p.logger.Info("Would ban author",
		zap.String("author", msg.Author.Tag),
		zap.String("reason", reason))
	return nil
}

func (p *LogPlatform) ChannelExists(ctx context.Context, tenantID, channelID string) bool {
	return true
}

func (p *LogPlatform) SendLog(ctx context.Context, tenantID, channelID string, entry *core.LogEntry) error {
	p.logger.Info("Would send audit entry",
		zap.String("tenant", tenantID),
		zap.String("channel", channelID),
		zap.String("action", entry.Action),
		zap.String("author", entry.AuthorTag))
	return nil
}

func (p *LogPlatform) HasModerationPrivilege(ctx context.Context, msg *core.Message) bool {
	return false
}

var _ core.ChatPlatform = (*LogPlatform)(nil)
