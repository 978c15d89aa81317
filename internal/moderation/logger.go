// Package moderation records applied punishments: the per-tenant counter and
// the optional rich audit entry sent to a configured logging channel.
package moderation

import (
	"context"

	"go.uber.org/zap"

	"github.com/dotfriends/asca/internal/core"
	"github.com/dotfriends/asca/internal/utils"
)

// Logger records punishment actions. The logging-channel configuration is
// self-healing: a vanished or inaccessible channel clears the entry instead
// of failing forever.
type Logger struct {
	platform core.ChatPlatform
	tenants  core.TenantStore
	text     *utils.TextProcessor
	logger   *zap.Logger
}

// NewLogger creates a new moderation logger.
func NewLogger(platform core.ChatPlatform, tenants core.TenantStore, text *utils.TextProcessor, logger *zap.Logger) *Logger {
	return &Logger{
		platform: platform,
		tenants:  tenants,
		text:     text,
		logger:   logger,
	}
}

// Record counts an applied punishment and, when a logging channel is
// configured, sends the audit entry. Non-applied outcomes record nothing.
func (l *Logger) Record(ctx context.Context, msg *core.Message, outcome core.PunishmentOutcome) {
	if outcome.Status != core.PunishmentApplied {
		return
	}

	if err := l.tenants.IncrementPunishmentCount(ctx, msg.TenantID); err != nil {
		l.logger.Error("Failed to increment punishment count",
			zap.String("tenant", msg.TenantID), zap.Error(err))
	}

	channelID, err := l.tenants.GetLoggingChannel(ctx, msg.TenantID)
	if err != nil {
		l.logger.Error("Failed to read logging channel",
			zap.String("tenant", msg.TenantID), zap.Error(err))
		return
	}
	if channelID == "" {
		return
	}

	if !l.platform.ChannelExists(ctx, msg.TenantID, channelID) {
		l.clearChannel(ctx, msg.TenantID, channelID, "channel no longer exists")
		return
	}

	// The quoted content must be valid UTF-8 and free of backticks before
	// it is embedded in the entry's own formatting.
	entry := &core.LogEntry{
		Action:    outcome.Action.Label(),
		AuthorTag: msg.Author.Tag,
		AuthorID:  msg.Author.ID,
		Mention:   msg.Author.Mention,
		Content:   l.text.StripCodeFences(l.text.SanitizeUTF8(msg.Content)),
	}

	err = l.platform.SendLog(ctx, msg.TenantID, channelID, entry)
	switch core.KindOf(err) {
	case core.ErrKindForbidden:
		l.clearChannel(ctx, msg.TenantID, channelID, "send forbidden")
	case core.ErrKindNotFound:
		l.clearChannel(ctx, msg.TenantID, channelID, "channel vanished mid-send")
	default:
		if err != nil {
			l.logger.Warn("Failed to send audit entry",
				zap.String("tenant", msg.TenantID),
				zap.String("channel", channelID),
				zap.Error(err))
		}
	}
}

func (l *Logger) clearChannel(ctx context.Context, tenantID, channelID, cause string) {
	l.logger.Info("Clearing logging channel",
		zap.String("tenant", tenantID),
		zap.String("channel", channelID),
		zap.String("cause", cause))
	if err := l.tenants.ClearLoggingChannel(ctx, tenantID); err != nil {
		l.logger.Error("Failed to clear logging channel",
			zap.String("tenant", tenantID), zap.Error(err))
	}
}
