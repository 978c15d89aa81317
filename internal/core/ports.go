package core

import (
	"context"
	"time"
)

// ChatPlatform defines the chat-platform primitives the pipeline consumes.
// Implementations must return *PlatformError so callers can match on the
// failure kind.
type ChatPlatform interface {
	// Reply sends a reply to the given message without pinging its author.
	Reply(ctx context.Context, msg *Message, text string) error

	// DeleteMessage removes the message. An ErrKindNotFound failure means
	// the message was already gone.
	DeleteMessage(ctx context.Context, msg *Message) error

	// TimeoutAuthor times out the author of the message.
	TimeoutAuthor(ctx context.Context, msg *Message, duration time.Duration, reason string) error

	// BanAuthor bans the author of the message without purging their
	// message history.
	BanAuthor(ctx context.Context, msg *Message, reason string) error

	// ChannelExists reports whether the channel can still be resolved
	// within the tenant.
	ChannelExists(ctx context.Context, tenantID, channelID string) bool

	// SendLog delivers an audit entry to the given channel.
	SendLog(ctx context.Context, tenantID, channelID string, entry *LogEntry) error

	// HasModerationPrivilege reports whether the author can themselves
	// moderate or ban other members.
	HasModerationPrivilege(ctx context.Context, msg *Message) bool
}

// TenantStore persists per-tenant moderation settings. Tenants are created
// implicitly on first write and only removed by PruneTenantsNotIn.
type TenantStore interface {
	GetMode(ctx context.Context, tenantID string) (Mode, error)
	SetMode(ctx context.Context, tenantID string, mode Mode) error

	GetTimeoutDays(ctx context.Context, tenantID string) (int, error)
	// SetTimeoutDays rejects values outside [MinTimeoutDays, MaxTimeoutDays]
	// with ErrInvalidTimeoutDays before touching storage.
	SetTimeoutDays(ctx context.Context, tenantID string, days int) error

	GetWhitelist(ctx context.Context, tenantID string) ([]string, error)
	SetWhitelist(ctx context.Context, tenantID string, entries []string) error

	// GetLoggingChannel returns "" when no logging channel is configured.
	GetLoggingChannel(ctx context.Context, tenantID string) (string, error)
	SetLoggingChannel(ctx context.Context, tenantID, channelID string) error
	ClearLoggingChannel(ctx context.Context, tenantID string) error

	IncrementPunishmentCount(ctx context.Context, tenantID string) error
	GetPunishmentCount(ctx context.Context, tenantID string) (uint64, error)

	// PruneTenantsNotIn removes every tenant whose ID is not in active.
	PruneTenantsNotIn(ctx context.Context, active []string) error

	Close() error
}

// MessageCache is the recent-message window used for burst detection. The
// pipeline only reads point-in-time snapshots from it.
type MessageCache interface {
	Add(ctx context.Context, msg *Message) error

	// Recent returns the cached messages for the (tenant, author) pair,
	// newest first.
	Recent(ctx context.Context, tenantID, authorID string) ([]*Message, error)
}

// ReputationService looks up URLs against an external threat intelligence
// feed. The check is a bonus signal: callers treat lookup errors and an
// unavailable service as "not malicious".
type ReputationService interface {
	// Available reports whether a credential is configured.
	Available() bool

	// Lookup returns, for each URL, whether the service flags it malicious.
	Lookup(ctx context.Context, urls []string) (map[string]bool, error)
}

// BlocklistFeed fetches the remote blocklist as plaintext, one domain per
// line.
type BlocklistFeed interface {
	Fetch(ctx context.Context) (string, error)
}

// ReportSink collects evidence reports for later review. Records are
// deduplicated by exact text and drained in FIFO order.
type ReportSink interface {
	// Record appends evidence. Empty and already-pending texts are ignored.
	Record(text string)

	// NextReport pops the oldest pending report.
	NextReport() (string, bool)
}

// MessageHandler consumes inbound message events from a gateway and runs
// them through the moderation pipeline.
type MessageHandler interface {
	HandleMessage(ctx context.Context, msg *Message) error
}

// Pipeline stage contracts. The concrete implementations live in their own
// packages and are wired into the ModerationService by the DI container.

// Normalizer repairs adversarially mangled text into a form safe for URL
// extraction.
type Normalizer interface {
	Normalize(text string) string
}

// LinkExtractor finds candidate URLs in normalized text, dropping those
// matching a whitelist prefix.
type LinkExtractor interface {
	Extract(text string, whitelist []string) []string
}

// LinkResolver replaces shortener URLs with their final destination. It
// never fails: unresolvable URLs pass through unchanged.
type LinkResolver interface {
	Resolve(ctx context.Context, urls []string) []string
}

// Classifier evaluates a message against the ordered scam checks.
type Classifier interface {
	Classify(ctx context.Context, in *ClassifyInput) Verdict
}

// Punisher applies the configured punishment to a message's author.
type Punisher interface {
	Punish(ctx context.Context, msg *Message) PunishmentOutcome
}

// AuditLogger records applied punishments.
type AuditLogger interface {
	Record(ctx context.Context, msg *Message, outcome PunishmentOutcome)
}

// BulkDeleter serially deletes a burst of related messages under a global
// lock.
type BulkDeleter interface {
	DeleteAll(ctx context.Context, msgs []*Message)
}
