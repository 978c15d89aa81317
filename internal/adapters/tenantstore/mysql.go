package tenantstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/dotfriends/asca/internal/core"
)

// MySQLStore is a MySQL implementation of the TenantStore interface
type MySQLStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewMySQLStore creates a new MySQL tenant store
func NewMySQLStore(dsn string, logger *zap.Logger) (*MySQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	// Create table if it doesn't exist
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS tenants (
			tenant VARCHAR(64) PRIMARY KEY,
			mode TINYINT NOT NULL DEFAULT 0,
			timeout_days INT NOT NULL DEFAULT 7,
			logging_channel VARCHAR(64) NOT NULL DEFAULT '',
			whitelist TEXT,
			punishment_count BIGINT UNSIGNED NOT NULL DEFAULT 0
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &MySQLStore{
		db:     db,
		logger: logger,
	}, nil
}

// GetMode returns the tenant's punishment mode
func (s *MySQLStore) GetMode(ctx context.Context, tenantID string) (core.Mode, error) {
	var mode int
	err := s.db.QueryRowContext(ctx, `
		SELECT mode FROM tenants WHERE tenant = ?
	`, tenantID).Scan(&mode)

	if err != nil {
		if err == sql.ErrNoRows {
			return core.ModeTimeout, nil
		}
		return core.ModeTimeout, fmt.Errorf("failed to query mode: %w", err)
	}
	return core.Mode(mode), nil
}

// SetMode sets the tenant's punishment mode
func (s *MySQLStore) SetMode(ctx context.Context, tenantID string, mode core.Mode) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tenants (tenant, mode) VALUES (?, ?)
		ON DUPLICATE KEY UPDATE mode = VALUES(mode)
	`, tenantID, int(mode))
	if err != nil {
		return fmt.Errorf("failed to set mode: %w", err)
	}
	return nil
}

// GetTimeoutDays returns the tenant's timeout period
func (s *MySQLStore) GetTimeoutDays(ctx context.Context, tenantID string) (int, error) {
	var days int
	err := s.db.QueryRowContext(ctx, `
		SELECT timeout_days FROM tenants WHERE tenant = ?
	`, tenantID).Scan(&days)

	if err != nil {
		if err == sql.ErrNoRows {
			return core.DefaultTimeoutDays, nil
		}
		return core.DefaultTimeoutDays, fmt.Errorf("failed to query timeout period: %w", err)
	}
	return days, nil
}

// SetTimeoutDays sets the tenant's timeout period, rejecting out-of-range
// values before storage
func (s *MySQLStore) SetTimeoutDays(ctx context.Context, tenantID string, days int) error {
	if err := core.ValidateTimeoutDays(days); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tenants (tenant, timeout_days) VALUES (?, ?)
		ON DUPLICATE KEY UPDATE timeout_days = VALUES(timeout_days)
	`, tenantID, days)
	if err != nil {
		return fmt.Errorf("failed to set timeout period: %w", err)
	}
	return nil
}

// GetWhitelist returns the tenant's URL-prefix whitelist
func (s *MySQLStore) GetWhitelist(ctx context.Context, tenantID string) ([]string, error) {
	var joined sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT whitelist FROM tenants WHERE tenant = ?
	`, tenantID).Scan(&joined)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query whitelist: %w", err)
	}
	return splitWhitelist(joined.String), nil
}

// SetWhitelist replaces the tenant's URL-prefix whitelist
func (s *MySQLStore) SetWhitelist(ctx context.Context, tenantID string, entries []string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tenants (tenant, whitelist) VALUES (?, ?)
		ON DUPLICATE KEY UPDATE whitelist = VALUES(whitelist)
	`, tenantID, joinWhitelist(entries))
	if err != nil {
		return fmt.Errorf("failed to set whitelist: %w", err)
	}
	return nil
}

// GetLoggingChannel returns the tenant's logging channel, or "" if unset
func (s *MySQLStore) GetLoggingChannel(ctx context.Context, tenantID string) (string, error) {
	var channel string
	err := s.db.QueryRowContext(ctx, `
		SELECT logging_channel FROM tenants WHERE tenant = ?
	`, tenantID).Scan(&channel)

	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("failed to query logging channel: %w", err)
	}
	return channel, nil
}

// SetLoggingChannel sets the tenant's logging channel
func (s *MySQLStore) SetLoggingChannel(ctx context.Context, tenantID, channelID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tenants (tenant, logging_channel) VALUES (?, ?)
		ON DUPLICATE KEY UPDATE logging_channel = VALUES(logging_channel)
	`, tenantID, channelID)
	if err != nil {
		return fmt.Errorf("failed to set logging channel: %w", err)
	}
	return nil
}

// ClearLoggingChannel removes the tenant's logging channel
func (s *MySQLStore) ClearLoggingChannel(ctx context.Context, tenantID string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE tenants SET logging_channel = '' WHERE tenant = ?
	`, tenantID)
	if err != nil {
		return fmt.Errorf("failed to clear logging channel: %w", err)
	}
	return nil
}

// IncrementPunishmentCount adds one to the tenant's punishment counter
func (s *MySQLStore) IncrementPunishmentCount(ctx context.Context, tenantID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tenants (tenant, punishment_count) VALUES (?, 1)
		ON DUPLICATE KEY UPDATE punishment_count = punishment_count + 1
	`, tenantID)
	if err != nil {
		return fmt.Errorf("failed to increment punishment count: %w", err)
	}
	return nil
}

// GetPunishmentCount returns the tenant's punishment counter
func (s *MySQLStore) GetPunishmentCount(ctx context.Context, tenantID string) (uint64, error) {
	var count uint64
	err := s.db.QueryRowContext(ctx, `
		SELECT punishment_count FROM tenants WHERE tenant = ?
	`, tenantID).Scan(&count)

	if err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to query punishment count: %w", err)
	}
	return count, nil
}

// PruneTenantsNotIn removes every tenant not present in the active set
func (s *MySQLStore) PruneTenantsNotIn(ctx context.Context, active []string) error {
	if len(active) == 0 {
		_, err := s.db.ExecContext(ctx, `DELETE FROM tenants`)
		if err != nil {
			return fmt.Errorf("failed to prune tenants: %w", err)
		}
		return nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(active)), ", ")
	args := make([]interface{}, len(active))
	for i, id := range active {
		args[i] = id
	}

	result, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM tenants WHERE tenant NOT IN (%s)`, placeholders), args...)
	if err != nil {
		return fmt.Errorf("failed to prune tenants: %w", err)
	}

	if pruned, err := result.RowsAffected(); err == nil && pruned > 0 {
		s.logger.Info("Pruned departed tenants", zap.Int64("pruned", pruned))
	}
	return nil
}

// Close closes the database connection
func (s *MySQLStore) Close() error {
	return s.db.Close()
}
