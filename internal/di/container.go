package di

import (
	"context"
	"fmt"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/dotfriends/asca/internal/adapters/feed"
	"github.com/dotfriends/asca/internal/adapters/platform"
	"github.com/dotfriends/asca/internal/adapters/reportsink"
	"github.com/dotfriends/asca/internal/adapters/reputation"
	"github.com/dotfriends/asca/internal/blocklist"
	"github.com/dotfriends/asca/internal/bulkdelete"
	"github.com/dotfriends/asca/internal/config"
	"github.com/dotfriends/asca/internal/core"
	"github.com/dotfriends/asca/internal/detector"
	"github.com/dotfriends/asca/internal/factory"
	"github.com/dotfriends/asca/internal/links"
	"github.com/dotfriends/asca/internal/logging"
	"github.com/dotfriends/asca/internal/moderation"
	"github.com/dotfriends/asca/internal/ports"
	"github.com/dotfriends/asca/internal/punish"
	"github.com/dotfriends/asca/internal/textnorm"
	"github.com/dotfriends/asca/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewTenantStoreFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewMessageCacheFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewGatewayFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewTextProcessorFactory); err != nil {
		return nil, err
	}

	// Register text processor
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return nil, err
	}

	// Register tenant store
	if err := container.Provide(func(f *factory.TenantStoreFactory) (core.TenantStore, error) {
		return f.CreateTenantStore()
	}); err != nil {
		return nil, err
	}

	// Register message cache
	if err := container.Provide(func(f *factory.MessageCacheFactory) (core.MessageCache, error) {
		return f.CreateMessageCache()
	}); err != nil {
		return nil, err
	}

	// Register chat platform
	if err := container.Provide(func(logger *zap.Logger) core.ChatPlatform {
		return platform.NewLogPlatform(logger)
	}); err != nil {
		return nil, err
	}

	// Register blocklist feed and store
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) (core.BlocklistFeed, error) {
		fetchTimeout, err := cfg.GetDuration("blocklist.fetch_timeout")
		if err != nil {
			return nil, fmt.Errorf("invalid blocklist fetch timeout: %w", err)
		}
		return feed.NewHTTPFeed(cfg.GetBlocklist().URL, fetchTimeout, logger), nil
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(cfg *config.Config, f core.BlocklistFeed, logger *zap.Logger) (*blocklist.Store, error) {
		interval, err := cfg.GetDuration("blocklist.refresh_interval")
		if err != nil {
			return nil, fmt.Errorf("invalid blocklist refresh interval: %w", err)
		}
		return blocklist.NewStore(f, cfg.GetBlocklist().Pending, interval, logger), nil
	}); err != nil {
		return nil, err
	}

	// Register reputation service
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) (core.ReputationService, error) {
		return reputation.NewSafeBrowsingService(context.Background(), cfg.GetReputation().APIKey, logger)
	}); err != nil {
		return nil, err
	}

	// Register report sink
	if err := container.Provide(func(logger *zap.Logger) core.ReportSink {
		return reportsink.NewMemorySink(logger)
	}); err != nil {
		return nil, err
	}

	// Register pipeline stages
	if err := container.Provide(func(logger *zap.Logger) *links.Extractor {
		return links.NewExtractor(logger)
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(ex *links.Extractor) core.LinkExtractor {
		return ex
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func() core.Normalizer {
		return textnorm.New(links.TLDs())
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) (core.LinkResolver, error) {
		timeout, err := cfg.GetDuration("resolver.timeout")
		if err != nil {
			return nil, fmt.Errorf("invalid resolver timeout: %w", err)
		}
		return links.NewResolver(cfg.GetResolver().Shorteners, timeout, logger), nil
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(
		cfg *config.Config,
		store *blocklist.Store,
		rep core.ReputationService,
		reports core.ReportSink,
		logger *zap.Logger,
	) (core.Classifier, error) {
		burstWindow, err := cfg.GetDuration("detector.burst_window")
		if err != nil {
			return nil, fmt.Errorf("invalid burst window: %w", err)
		}
		det := cfg.GetDetector()
		return detector.NewClassifier(
			det.Brand,
			det.SimilarityThreshold,
			det.BurstThreshold,
			burstWindow,
			store,
			rep,
			reports,
			logger,
		), nil
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(
		p core.ChatPlatform,
		tenants core.TenantStore,
		text *utils.TextProcessor,
		logger *zap.Logger,
	) core.Punisher {
		return punish.NewEngine(p, tenants, text, logger)
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(
		p core.ChatPlatform,
		tenants core.TenantStore,
		text *utils.TextProcessor,
		logger *zap.Logger,
	) core.AuditLogger {
		return moderation.NewLogger(p, tenants, text, logger)
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(cfg *config.Config, p core.ChatPlatform, logger *zap.Logger) (core.BulkDeleter, error) {
		spacing, err := cfg.GetDuration("punish.delete_spacing")
		if err != nil {
			return nil, fmt.Errorf("invalid delete spacing: %w", err)
		}
		return bulkdelete.NewCoordinator(p, spacing, logger), nil
	}); err != nil {
		return nil, err
	}

	// Register moderation service
	if err := container.Provide(core.NewModerationService); err != nil {
		return nil, err
	}
	if err := container.Provide(func(s *core.ModerationService) core.MessageHandler {
		return s
	}); err != nil {
		return nil, err
	}

	// Register message gateway
	if err := container.Provide(func(f *factory.GatewayFactory) (ports.MessageGateway, error) {
		return f.CreateMessageGateway()
	}); err != nil {
		return nil, err
	}

	return container, nil
}
