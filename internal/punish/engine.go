// Package punish applies the configured punishment to the author of a scam
// message: Idle → Evaluating → {Skipped | Applying → {Applied | Failed}}.
package punish

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dotfriends/asca/internal/core"
	"github.com/dotfriends/asca/internal/metrics"
	"github.com/dotfriends/asca/internal/utils"
)

// Mode-specific permission names surfaced in the user-visible failure reply.
const (
	TimeoutPermission = "Moderate Members"
	BanPermission     = "Ban Members"
	DeletePermission  = "Manage Messages"

	permissionErrorTemplate = "Scam detected, but I need the `%s` permission or to be placed higher on the `Roles` list"
	platformErrorReply      = "Scam detected, but I failed to punish this member due to a server error"

	maxReasonContentBytes = 400
)

// Engine decides and attempts punishments. Punishment failures are surfaced
// once and never retried: a second attempt on the same message would recur
// and only add latency and duplicate error replies.
type Engine struct {
	platform core.ChatPlatform
	tenants  core.TenantStore
	text     *utils.TextProcessor
	logger   *zap.Logger
}

// NewEngine creates a new punishment engine.
func NewEngine(platform core.ChatPlatform, tenants core.TenantStore, text *utils.TextProcessor, logger *zap.Logger) *Engine {
	return &Engine{
		platform: platform,
		tenants:  tenants,
		text:     text,
		logger:   logger,
	}
}

// Punish evaluates the author of msg and attempts the tenant's configured
// punishment. An Applied outcome deletes the message as a side effect.
func (e *Engine) Punish(ctx context.Context, msg *core.Message) core.PunishmentOutcome {
	// Departed users and webhook identities cannot be punished; the message
	// itself is still removed.
	if !msg.Author.Member {
		e.deleteMessage(ctx, msg)
		return e.skipped(msg, core.SkipAuthorNotPunishable)
	}

	// Privileged members are never punished: moderators trip false
	// positives while testing.
	if e.platform.HasModerationPrivilege(ctx, msg) {
		return e.skipped(msg, core.SkipAuthorPrivileged)
	}

	mode, err := e.tenants.GetMode(ctx, msg.TenantID)
	if err != nil {
		e.logger.Error("Failed to read tenant mode, defaulting to timeout",
			zap.String("tenant", msg.TenantID), zap.Error(err))
		mode = core.ModeTimeout
	}

	reason := fmt.Sprintf("They sent %q", e.text.TruncateText(msg.Content, maxReasonContentBytes))

	switch mode {
	case core.ModeBan:
		return e.ban(ctx, msg, reason)
	default:
		return e.timeout(ctx, msg, reason)
	}
}

func (e *Engine) timeout(ctx context.Context, msg *core.Message, reason string) core.PunishmentOutcome {
	days, err := e.tenants.GetTimeoutDays(ctx, msg.TenantID)
	if err != nil {
		e.logger.Error("Failed to read timeout period, using default",
			zap.String("tenant", msg.TenantID), zap.Error(err))
		days = core.DefaultTimeoutDays
	}

	err = e.platform.TimeoutAuthor(ctx, msg, time.Duration(days)*24*time.Hour, reason)
	switch core.KindOf(err) {
	case core.ErrKindForbidden:
		e.reply(ctx, msg, fmt.Sprintf(permissionErrorTemplate, TimeoutPermission))
		return e.failed(msg, core.ModeTimeout, TimeoutPermission)
	case core.ErrKindTransient, core.ErrKindOther:
		if err != nil {
			e.logger.Warn("Timeout attempt failed", zap.String("message", msg.ID), zap.Error(err))
			e.reply(ctx, msg, platformErrorReply)
			return e.failed(msg, core.ModeTimeout, "")
		}
	}

	return e.applied(ctx, msg, core.ModeTimeout)
}

func (e *Engine) ban(ctx context.Context, msg *core.Message, reason string) core.PunishmentOutcome {
	err := e.platform.BanAuthor(ctx, msg, reason)
	switch core.KindOf(err) {
	case core.ErrKindForbidden:
		e.reply(ctx, msg, fmt.Sprintf(permissionErrorTemplate, BanPermission))
		return e.failed(msg, core.ModeBan, BanPermission)
	case core.ErrKindTransient, core.ErrKindOther:
		if err != nil {
			e.logger.Warn("Ban attempt failed", zap.String("message", msg.ID), zap.Error(err))
			return e.failed(msg, core.ModeBan, "")
		}
	}

	return e.applied(ctx, msg, core.ModeBan)
}

func (e *Engine) applied(ctx context.Context, msg *core.Message, action core.Mode) core.PunishmentOutcome {
	e.deleteMessage(ctx, msg)
	metrics.Punishments.WithLabelValues(action.String(), "applied").Inc()
	e.logger.Info("Punishment applied",
		zap.String("tenant", msg.TenantID),
		zap.String("author", msg.Author.ID),
		zap.String("action", action.String()))
	return core.PunishmentOutcome{Status: core.PunishmentApplied, Action: action}
}

func (e *Engine) skipped(msg *core.Message, reason core.SkipReason) core.PunishmentOutcome {
	metrics.Punishments.WithLabelValues("none", "skipped").Inc()
	e.logger.Debug("Punishment skipped",
		zap.String("tenant", msg.TenantID),
		zap.String("author", msg.Author.ID),
		zap.String("reason", string(reason)))
	return core.PunishmentOutcome{Status: core.PunishmentSkipped, SkipReason: reason}
}

func (e *Engine) failed(msg *core.Message, action core.Mode, missingPermission string) core.PunishmentOutcome {
	metrics.Punishments.WithLabelValues(action.String(), "failed").Inc()
	return core.PunishmentOutcome{
		Status:            core.PunishmentFailed,
		Action:            action,
		MissingPermission: missingPermission,
	}
}

// deleteMessage removes the offending message. A missing message counts as
// success; a permission failure is surfaced once in the channel.
func (e *Engine) deleteMessage(ctx context.Context, msg *core.Message) {
	err := e.platform.DeleteMessage(ctx, msg)
	switch core.KindOf(err) {
	case core.ErrKindForbidden:
		e.reply(ctx, msg, fmt.Sprintf(permissionErrorTemplate, DeletePermission))
	case core.ErrKindNotFound:
		// Already gone.
	default:
		if err != nil {
			e.logger.Warn("Failed to delete message", zap.String("message", msg.ID), zap.Error(err))
		}
	}
}

// reply sends a user-visible explanation, swallowing any failure.
func (e *Engine) reply(ctx context.Context, msg *core.Message, text string) {
	if err := e.platform.Reply(ctx, msg, text); err != nil {
		e.logger.Debug("Failed to send reply", zap.String("message", msg.ID), zap.Error(err))
	}
}
