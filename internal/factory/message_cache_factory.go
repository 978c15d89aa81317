package factory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/dotfriends/asca/internal/adapters/msgcache"
	"github.com/dotfriends/asca/internal/config"
	"github.com/dotfriends/asca/internal/core"
)

// MessageCacheFactory creates message caches based on configuration
type MessageCacheFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewMessageCacheFactory creates a new message cache factory
func NewMessageCacheFactory(cfg *config.Config, logger *zap.Logger) *MessageCacheFactory {
	return &MessageCacheFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateMessageCache creates a message cache based on the configuration
func (f *MessageCacheFactory) CreateMessageCache() (core.MessageCache, error) {
	cacheType := f.cfg.GetString("msgcache.type")
	capacity := f.cfg.GetInt("msgcache.capacity")

	switch cacheType {
	case "memory":
		return msgcache.NewMemoryCache(capacity), nil
	case "redis":
		ttl, err := f.cfg.GetDuration("msgcache.ttl")
		if err != nil {
			return nil, fmt.Errorf("invalid message cache TTL: %w", err)
		}
		return msgcache.NewRedisCache(
			f.cfg.GetString("msgcache.redis_addr"),
			f.cfg.GetString("msgcache.redis_password"),
			f.cfg.GetInt("msgcache.redis_db"),
			capacity,
			ttl,
			f.logger,
		)
	default:
		return nil, fmt.Errorf("unsupported message cache type: %s", cacheType)
	}
}
