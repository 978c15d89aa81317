package punish

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/dotfriends/asca/internal/adapters/tenantstore"
	"github.com/dotfriends/asca/internal/core"
	"github.com/dotfriends/asca/internal/utils"
)

// fakePlatform records calls and returns scripted errors.
type fakePlatform struct {
	timeoutErr error
	banErr     error
	deleteErr  error
	privileged bool

	timeouts  int
	bans      int
	deletes   int
	replies   []string
	durations []time.Duration
	reasons   []string
}

func (p *fakePlatform) Reply(ctx context.Context, msg *core.Message, text string) error {
	p.replies = append(p.replies, text)
	return nil
}

func (p *fakePlatform) DeleteMessage(ctx context.Context, msg *core.Message) error {
	p.deletes++
	return p.deleteErr
}

func (p *fakePlatform) TimeoutAuthor(ctx context.Context, msg *core.Message, duration time.Duration, reason string) error {
	p.timeouts++
	p.durations = append(p.durations, duration)
	p.reasons = append(p.reasons, reason)
	return p.timeoutErr
}

func (p *fakePlatform) BanAuthor(ctx context.Context, msg *core.Message, reason string) error {
	p.bans++
	p.reasons = append(p.reasons, reason)
	return p.banErr
}

func (p *fakePlatform) ChannelExists(ctx context.Context, tenantID, channelID string) bool {
	return true
}

func (p *fakePlatform) SendLog(ctx context.Context, tenantID, channelID string, entry *core.LogEntry) error {
	return nil
}

func (p *fakePlatform) HasModerationPrivilege(ctx context.Context, msg *core.Message) bool {
	return p.privileged
}

func newTestEngine(p *fakePlatform) (*Engine, core.TenantStore) {
	logger := zap.NewNop()
	tenants := tenantstore.NewMemoryStore(logger)
	return NewEngine(p, tenants, utils.NewTextProcessor(logger), logger), tenants
}

func member(content string) *core.Message {
	return &core.Message{
		ID:       "m1",
		TenantID: "t1",
		Author:   core.Author{ID: "a1", Tag: "scammer#1234", Member: true},
		Content:  content,
	}
}

func TestPunish_NonMemberSkippedButMessageDeleted(t *testing.T) {
	p := &fakePlatform{}
	e, _ := newTestEngine(p)

	msg := member("free nitro")
	msg.Author.Member = false

	outcome := e.Punish(context.Background(), msg)
	assert.Equal(t, core.PunishmentSkipped, outcome.Status)
	assert.Equal(t, core.SkipAuthorNotPunishable, outcome.SkipReason)
	assert.Equal(t, 1, p.deletes)
	assert.Zero(t, p.timeouts)
}

func TestPunish_PrivilegedAuthorSkipped(t *testing.T) {
	p := &fakePlatform{privileged: true}
	e, _ := newTestEngine(p)

	outcome := e.Punish(context.Background(), member("free nitro"))
	assert.Equal(t, core.PunishmentSkipped, outcome.Status)
	assert.Equal(t, core.SkipAuthorPrivileged, outcome.SkipReason)
	assert.Zero(t, p.deletes, "privileged authors keep their messages")
	assert.Zero(t, p.timeouts)
}

func TestPunish_TimeoutApplied(t *testing.T) {
	p := &fakePlatform{}
	e, _ := newTestEngine(p)

	outcome := e.Punish(context.Background(), member("free nitro"))
	assert.Equal(t, core.PunishmentApplied, outcome.Status)
	assert.Equal(t, core.ModeTimeout, outcome.Action)
	assert.Equal(t, 1, p.timeouts)
	assert.Equal(t, 1, p.deletes)
	assert.Equal(t, []time.Duration{7 * 24 * time.Hour}, p.durations)
	assert.Equal(t, `They sent "free nitro"`, p.reasons[0])
}

func TestPunish_TimeoutUsesConfiguredDays(t *testing.T) {
	p := &fakePlatform{}
	e, tenants := newTestEngine(p)
	assert.NoError(t, tenants.SetTimeoutDays(context.Background(), "t1", 3))

	e.Punish(context.Background(), member("free nitro"))
	assert.Equal(t, []time.Duration{3 * 24 * time.Hour}, p.durations)
}

func TestPunish_BanApplied(t *testing.T) {
	p := &fakePlatform{}
	e, tenants := newTestEngine(p)
	assert.NoError(t, tenants.SetMode(context.Background(), "t1", core.ModeBan))

	outcome := e.Punish(context.Background(), member("free nitro"))
	assert.Equal(t, core.PunishmentApplied, outcome.Status)
	assert.Equal(t, core.ModeBan, outcome.Action)
	assert.Equal(t, 1, p.bans)
	assert.Zero(t, p.timeouts)
	assert.Equal(t, 1, p.deletes)
}

func TestPunish_ForbiddenTimeoutFails(t *testing.T) {
	p := &fakePlatform{
		timeoutErr: core.NewPlatformError(core.ErrKindForbidden, "timeout", errors.New("missing permission")),
	}
	e, _ := newTestEngine(p)

	outcome := e.Punish(context.Background(), member("free nitro"))
	assert.Equal(t, core.PunishmentFailed, outcome.Status)
	assert.Equal(t, core.ModeTimeout, outcome.Action)
	assert.Equal(t, TimeoutPermission, outcome.MissingPermission)
	assert.Zero(t, p.deletes, "failed punishments leave the message for review")

	if assert.Len(t, p.replies, 1) {
		assert.Equal(t, fmt.Sprintf(permissionErrorTemplate, TimeoutPermission), p.replies[0])
	}
}

func TestPunish_ForbiddenBanFails(t *testing.T) {
	p := &fakePlatform{
		banErr: core.NewPlatformError(core.ErrKindForbidden, "ban", errors.New("missing permission")),
	}
	e, tenants := newTestEngine(p)
	assert.NoError(t, tenants.SetMode(context.Background(), "t1", core.ModeBan))

	outcome := e.Punish(context.Background(), member("free nitro"))
	assert.Equal(t, core.PunishmentFailed, outcome.Status)
	assert.Equal(t, BanPermission, outcome.MissingPermission)
	if assert.Len(t, p.replies, 1) {
		assert.Contains(t, p.replies[0], BanPermission)
	}
}

func TestPunish_TransientTimeoutFailureRepliesServerError(t *testing.T) {
	p := &fakePlatform{
		timeoutErr: core.NewPlatformError(core.ErrKindTransient, "timeout", errors.New("gateway timeout")),
	}
	e, _ := newTestEngine(p)

	outcome := e.Punish(context.Background(), member("free nitro"))
	assert.Equal(t, core.PunishmentFailed, outcome.Status)
	assert.Empty(t, outcome.MissingPermission)
	if assert.Len(t, p.replies, 1) {
		assert.Equal(t, platformErrorReply, p.replies[0])
	}
}

func TestPunish_ForbiddenDeleteRepliesOnce(t *testing.T) {
	p := &fakePlatform{
		deleteErr: core.NewPlatformError(core.ErrKindForbidden, "delete", errors.New("missing permission")),
	}
	e, _ := newTestEngine(p)

	outcome := e.Punish(context.Background(), member("free nitro"))
	assert.Equal(t, core.PunishmentApplied, outcome.Status)
	if assert.Len(t, p.replies, 1) {
		assert.Contains(t, p.replies[0], DeletePermission)
	}
}

func TestPunish_ReasonTruncatesLongContent(t *testing.T) {
	p := &fakePlatform{}
	e, _ := newTestEngine(p)

	e.Punish(context.Background(), member(strings.Repeat("x", 1000)))
	assert.Equal(t, fmt.Sprintf("They sent %q", strings.Repeat("x", maxReasonContentBytes)), p.reasons[0])
}
