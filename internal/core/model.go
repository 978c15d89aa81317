package core

import (
	"time"
)

// Mode is the punishment a tenant applies to scam authors.
type Mode int

const (
	ModeTimeout Mode = iota
	ModeBan
)

// String returns the configuration name of the mode.
func (m Mode) String() string {
	if m == ModeBan {
		return "ban"
	}
	return "timeout"
}

// Label returns the past-tense action name used in audit log entries.
func (m Mode) Label() string {
	if m == ModeBan {
		return "Banned"
	}
	return "Timed out"
}

// Timeout period bounds, in days. Values outside the range are rejected
// before they reach storage.
const (
	DefaultTimeoutDays = 7
	MinTimeoutDays     = 1
	MaxTimeoutDays     = 28
)

// Author identifies the sender of a message.
type Author struct {
	ID      string
	Tag     string // human-readable identity, e.g. "scammer#1234"
	Mention string
	Member  bool // false for departed users and webhook identities
	Bot     bool
}

// Embed is a rich preview attached to a message.
type Embed struct {
	Provider string
	URL      string
}

// Message is one inbound chat message event.
type Message struct {
	ID            string
	TenantID      string
	ChannelID     string
	Author        Author
	Content       string
	Stickers      []string
	Embeds        []Embed
	CreatedAt     time.Time
	DirectMessage bool
}

// VerdictReason names the check that flagged a message.
type VerdictReason string

const (
	ReasonBlocklist     VerdictReason = "blocklist"
	ReasonTyposquat     VerdictReason = "typosquat"
	ReasonFileExtension VerdictReason = "file_extension"
	ReasonReputation    VerdictReason = "reputation"
	ReasonMaliciousTerm VerdictReason = "malicious_term"
	ReasonSpoofedEmbed  VerdictReason = "spoofed_embed"
	ReasonPhoneNumber   VerdictReason = "phone_number"
	ReasonBurst         VerdictReason = "burst"
)

// Verdict is the outcome of one classification.
type Verdict struct {
	Scam     bool
	Reason   VerdictReason
	Evidence string // newline-joined implicated domains, may be empty
}

// NotScam is the negative verdict.
var NotScam = Verdict{}

// ClassifyInput carries everything the classifier needs for one message.
// It exists only for the duration of a single classification call.
type ClassifyInput struct {
	Message        *Message
	NormalizedText string
	URLs           []string // resolved, scheme-qualified candidate URLs
	Recent         []*Message
}

// PunishmentStatus is the terminal state of one punishment attempt.
type PunishmentStatus int

const (
	PunishmentSkipped PunishmentStatus = iota
	PunishmentApplied
	PunishmentFailed
)

// SkipReason explains why no punishment was attempted.
type SkipReason string

const (
	SkipAuthorNotPunishable SkipReason = "author-not-punishable"
	SkipAuthorPrivileged    SkipReason = "author-privileged"
)

// PunishmentOutcome reports what the punishment engine did.
type PunishmentOutcome struct {
	Status            PunishmentStatus
	SkipReason        SkipReason
	Action            Mode   // valid when Status == PunishmentApplied
	MissingPermission string // set when Status == PunishmentFailed due to permissions
}

// LogEntry is one rich audit record sent to a tenant's logging channel.
type LogEntry struct {
	Action    string
	AuthorTag string
	AuthorID  string
	Mention   string
	Content   string // offending text, code fences already stripped
}
