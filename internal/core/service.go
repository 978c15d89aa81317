package core

import (
	"context"

	"go.uber.org/zap"

	"github.com/dotfriends/asca/internal/metrics"
)

// ModerationService runs each inbound message through the moderation
// pipeline: normalize, extract links, resolve shorteners, classify, punish,
// audit, and clean up bursts.
type ModerationService struct {
	normalizer Normalizer
	extractor  LinkExtractor
	resolver   LinkResolver
	classifier Classifier
	punisher   Punisher
	audit      AuditLogger
	deleter    BulkDeleter
	tenants    TenantStore
	cache      MessageCache
	logger     *zap.Logger
}

// NewModerationService creates a new moderation service
func NewModerationService(
	normalizer Normalizer,
	extractor LinkExtractor,
	resolver LinkResolver,
	classifier Classifier,
	punisher Punisher,
	audit AuditLogger,
	deleter BulkDeleter,
	tenants TenantStore,
	cache MessageCache,
	logger *zap.Logger,
) *ModerationService {
	return &ModerationService{
		normalizer: normalizer,
		extractor:  extractor,
		resolver:   resolver,
		classifier: classifier,
		punisher:   punisher,
		audit:      audit,
		deleter:    deleter,
		tenants:    tenants,
		cache:      cache,
		logger:     logger,
	}
}

// HandleMessage processes one inbound message. Messages from bots and direct
// messages are ignored.
func (s *ModerationService) HandleMessage(ctx context.Context, msg *Message) error {
	if msg.Author.Bot || msg.DirectMessage {
		return nil
	}

	metrics.MessagesScanned.Inc()

	// Cache before reading so the burst window includes this message.
	if err := s.cache.Add(ctx, msg); err != nil {
		s.logger.Warn("Failed to cache message",
			zap.String("message", msg.ID), zap.Error(err))
	}

	whitelist, err := s.tenants.GetWhitelist(ctx, msg.TenantID)
	if err != nil {
		s.logger.Warn("Failed to load whitelist, proceeding without",
			zap.String("tenant", msg.TenantID), zap.Error(err))
		whitelist = nil
	}

	normalized := s.normalizer.Normalize(msg.Content)
	urls := s.extractor.Extract(normalized, whitelist)
	urls = s.resolver.Resolve(ctx, urls)

	recent, err := s.cache.Recent(ctx, msg.TenantID, msg.Author.ID)
	if err != nil {
		s.logger.Warn("Failed to read recent messages",
			zap.String("tenant", msg.TenantID), zap.Error(err))
		recent = nil
	}

	verdict := s.classifier.Classify(ctx, &ClassifyInput{
		Message:        msg,
		NormalizedText: normalized,
		URLs:           urls,
		Recent:         recent,
	})
	if !verdict.Scam {
		return nil
	}

	s.logger.Info("Scam detected",
		zap.String("tenant", msg.TenantID),
		zap.String("message", msg.ID),
		zap.String("author", msg.Author.Tag),
		zap.String("reason", string(verdict.Reason)))
	metrics.ScamsDetected.WithLabelValues(string(verdict.Reason)).Inc()

	outcome := s.punisher.Punish(ctx, msg)
	if outcome.Status != PunishmentApplied {
		return nil
	}

	s.audit.Record(ctx, msg, outcome)

	if verdict.Reason == ReasonBurst {
		// Remove the whole burst, not just the triggering message. The
		// cleanup looks back through the entire cached window and runs
		// detached from the event context: its spaced deletions must
		// finish even after the per-event deadline has passed.
		go s.deleter.DeleteAll(context.WithoutCancel(ctx), RelatedMessages(msg, recent, 0))
	}
	return nil
}

var _ MessageHandler = (*ModerationService)(nil)
