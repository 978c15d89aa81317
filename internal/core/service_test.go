package core_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dotfriends/asca/internal/adapters/msgcache"
	"github.com/dotfriends/asca/internal/adapters/tenantstore"
	"github.com/dotfriends/asca/internal/core"
)

type stubNormalizer struct{}

func (stubNormalizer) Normalize(text string) string { return text }

type stubExtractor struct {
	urls          []string
	seenWhitelist []string
}

func (e *stubExtractor) Extract(text string, whitelist []string) []string {
	e.seenWhitelist = whitelist
	return e.urls
}

type stubResolver struct{}

func (stubResolver) Resolve(ctx context.Context, urls []string) []string { return urls }

type stubClassifier struct {
	verdict   core.Verdict
	calls     int
	lastInput *core.ClassifyInput
}

func (c *stubClassifier) Classify(ctx context.Context, in *core.ClassifyInput) core.Verdict {
	c.calls++
	c.lastInput = in
	return c.verdict
}

type stubPunisher struct {
	outcome core.PunishmentOutcome
	calls   int
}

func (p *stubPunisher) Punish(ctx context.Context, msg *core.Message) core.PunishmentOutcome {
	p.calls++
	return p.outcome
}

type stubAudit struct {
	records []core.PunishmentOutcome
}

func (a *stubAudit) Record(ctx context.Context, msg *core.Message, outcome core.PunishmentOutcome) {
	a.records = append(a.records, outcome)
}

// stubDeleter is safe for concurrent use; burst cleanup runs off the
// handler's goroutine.
type stubDeleter struct {
	mu      sync.Mutex
	batches [][]*core.Message
	ctxs    []context.Context
}

func (d *stubDeleter) DeleteAll(ctx context.Context, msgs []*core.Message) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.batches = append(d.batches, msgs)
	d.ctxs = append(d.ctxs, ctx)
}

func (d *stubDeleter) batchCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.batches)
}

func (d *stubDeleter) batch(i int) ([]*core.Message, context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.batches[i], d.ctxs[i]
}

type pipeline struct {
	service    *core.ModerationService
	extractor  *stubExtractor
	classifier *stubClassifier
	punisher   *stubPunisher
	audit      *stubAudit
	deleter    *stubDeleter
	tenants    core.TenantStore
	cache      core.MessageCache
}

func newPipeline(verdict core.Verdict, outcome core.PunishmentOutcome) *pipeline {
	logger := zap.NewNop()
	p := &pipeline{
		extractor:  &stubExtractor{},
		classifier: &stubClassifier{verdict: verdict},
		punisher:   &stubPunisher{outcome: outcome},
		audit:      &stubAudit{},
		deleter:    &stubDeleter{},
		tenants:    tenantstore.NewMemoryStore(logger),
		cache:      msgcache.NewMemoryCache(100),
	}
	p.service = core.NewModerationService(
		stubNormalizer{},
		p.extractor,
		stubResolver{},
		p.classifier,
		p.punisher,
		p.audit,
		p.deleter,
		p.tenants,
		p.cache,
		logger,
	)
	return p
}

func inbound(content string) *core.Message {
	return &core.Message{
		ID:        "m1",
		TenantID:  "t1",
		ChannelID: "c1",
		Author:    core.Author{ID: "a1", Tag: "user#1", Member: true},
		Content:   content,
		CreatedAt: time.Now(),
	}
}

func applied(action core.Mode) core.PunishmentOutcome {
	return core.PunishmentOutcome{Status: core.PunishmentApplied, Action: action}
}

func TestHandleMessage_IgnoresBots(t *testing.T) {
	p := newPipeline(core.Verdict{Scam: true, Reason: core.ReasonBlocklist}, applied(core.ModeTimeout))

	msg := inbound("anything")
	msg.Author.Bot = true

	require.NoError(t, p.service.HandleMessage(context.Background(), msg))
	assert.Zero(t, p.classifier.calls)
	assert.Zero(t, p.punisher.calls)

	recent, err := p.cache.Recent(context.Background(), "t1", "a1")
	require.NoError(t, err)
	assert.Empty(t, recent, "ignored messages are not cached")
}

func TestHandleMessage_IgnoresDirectMessages(t *testing.T) {
	p := newPipeline(core.Verdict{Scam: true, Reason: core.ReasonBlocklist}, applied(core.ModeTimeout))

	msg := inbound("anything")
	msg.DirectMessage = true

	require.NoError(t, p.service.HandleMessage(context.Background(), msg))
	assert.Zero(t, p.classifier.calls)
}

func TestHandleMessage_CleanMessage(t *testing.T) {
	p := newPipeline(core.NotScam, applied(core.ModeTimeout))

	require.NoError(t, p.service.HandleMessage(context.Background(), inbound("hello")))
	assert.Equal(t, 1, p.classifier.calls)
	assert.Zero(t, p.punisher.calls)
	assert.Empty(t, p.audit.records)
}

func TestHandleMessage_ScamPunishedAndAudited(t *testing.T) {
	p := newPipeline(core.Verdict{Scam: true, Reason: core.ReasonBlocklist}, applied(core.ModeTimeout))

	require.NoError(t, p.service.HandleMessage(context.Background(), inbound("https://scam.example")))
	assert.Equal(t, 1, p.punisher.calls)
	require.Len(t, p.audit.records, 1)
	assert.Equal(t, core.ModeTimeout, p.audit.records[0].Action)
	assert.Zero(t, p.deleter.batchCount(), "non-burst verdicts trigger no bulk deletion")
}

func TestHandleMessage_SkippedPunishmentIsNotAudited(t *testing.T) {
	p := newPipeline(
		core.Verdict{Scam: true, Reason: core.ReasonBlocklist},
		core.PunishmentOutcome{Status: core.PunishmentSkipped, SkipReason: core.SkipAuthorPrivileged},
	)

	require.NoError(t, p.service.HandleMessage(context.Background(), inbound("https://scam.example")))
	assert.Equal(t, 1, p.punisher.calls)
	assert.Empty(t, p.audit.records)
}

func TestHandleMessage_FailedPunishmentIsNotAudited(t *testing.T) {
	p := newPipeline(
		core.Verdict{Scam: true, Reason: core.ReasonBlocklist},
		core.PunishmentOutcome{Status: core.PunishmentFailed, Action: core.ModeTimeout},
	)

	require.NoError(t, p.service.HandleMessage(context.Background(), inbound("https://scam.example")))
	assert.Empty(t, p.audit.records)
	assert.Zero(t, p.deleter.batchCount())
}

func TestHandleMessage_BurstTriggersBulkDeletion(t *testing.T) {
	p := newPipeline(core.Verdict{Scam: true, Reason: core.ReasonBurst}, applied(core.ModeTimeout))
	ctx := context.Background()

	// Seed the cache with earlier copies of the burst.
	for i := 0; i < 5; i++ {
		m := inbound("join my server")
		m.ID = "old"
		require.NoError(t, p.cache.Add(ctx, m))
	}

	require.NoError(t, p.service.HandleMessage(ctx, inbound("join my server")))

	require.Eventually(t, func() bool { return p.deleter.batchCount() == 1 },
		time.Second, 10*time.Millisecond)
	msgs, _ := p.deleter.batch(0)
	assert.Len(t, msgs, 6, "the triggering message and all cached copies")
}

func TestHandleMessage_BurstCleanupOutlivesEventDeadline(t *testing.T) {
	p := newPipeline(core.Verdict{Scam: true, Reason: core.ReasonBurst}, applied(core.ModeTimeout))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	for i := 0; i < 7; i++ {
		require.NoError(t, p.cache.Add(ctx, inbound("join my server")))
	}
	require.NoError(t, p.service.HandleMessage(ctx, inbound("join my server")))

	require.Eventually(t, func() bool { return p.deleter.batchCount() == 1 },
		time.Second, 10*time.Millisecond)
	msgs, deleteCtx := p.deleter.batch(0)
	assert.Len(t, msgs, 8)

	// With 5s spacing an eight-message burst takes far longer than any
	// per-event deadline; the cleanup context must not inherit it.
	<-ctx.Done()
	assert.NoError(t, deleteCtx.Err())
}

func TestHandleMessage_PassesWhitelistToExtractor(t *testing.T) {
	p := newPipeline(core.NotScam, applied(core.ModeTimeout))
	ctx := context.Background()

	whitelist := []string{"discord.gg/myserver"}
	require.NoError(t, p.tenants.SetWhitelist(ctx, "t1", whitelist))

	require.NoError(t, p.service.HandleMessage(ctx, inbound("visit discord.gg/myserver")))
	assert.Equal(t, whitelist, p.extractor.seenWhitelist)
}

func TestHandleMessage_RecentWindowReachesClassifier(t *testing.T) {
	p := newPipeline(core.NotScam, applied(core.ModeTimeout))
	ctx := context.Background()

	require.NoError(t, p.cache.Add(ctx, inbound("earlier")))
	require.NoError(t, p.service.HandleMessage(ctx, inbound("later")))

	require.NotNil(t, p.classifier.lastInput)
	// The window carries the current message plus the earlier one.
	assert.Len(t, p.classifier.lastInput.Recent, 2)
}
