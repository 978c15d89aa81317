package factory

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/dotfriends/asca/internal/adapters/tenantstore"
	"github.com/dotfriends/asca/internal/config"
	"github.com/dotfriends/asca/internal/core"
)

// TenantStoreFactory creates tenant stores based on configuration
type TenantStoreFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewTenantStoreFactory creates a new tenant store factory
func NewTenantStoreFactory(cfg *config.Config, logger *zap.Logger) *TenantStoreFactory {
	return &TenantStoreFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateTenantStore creates a tenant store based on the configuration
func (f *TenantStoreFactory) CreateTenantStore() (core.TenantStore, error) {
	storeType := f.cfg.GetString("tenants.type")

	switch storeType {
	case "memory":
		return tenantstore.NewMemoryStore(f.logger), nil
	case "sqlite":
		sqlitePath := f.cfg.GetString("tenants.sqlite_path")
		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(sqlitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		return tenantstore.NewSQLiteStore(sqlitePath, f.logger)
	case "mysql":
		mysqlDSN := f.cfg.GetString("tenants.mysql_dsn")
		return tenantstore.NewMySQLStore(mysqlDSN, f.logger)
	default:
		return nil, fmt.Errorf("unsupported tenant store type: %s", storeType)
	}
}
