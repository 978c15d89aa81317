// Package tenantstore provides TenantStore implementations: an in-memory
// store for tests and single-node runs, and SQLite/MySQL stores for
// persistent deployments.
package tenantstore

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/dotfriends/asca/internal/core"
)

// tenantRecord holds one tenant's settings. Tenants are created implicitly
// on first write.
type tenantRecord struct {
	mode           core.Mode
	timeoutDays    int
	loggingChannel string
	whitelist      []string
	count          uint64
}

func newTenantRecord() *tenantRecord {
	return &tenantRecord{
		mode:        core.ModeTimeout,
		timeoutDays: core.DefaultTimeoutDays,
	}
}

// MemoryStore is an in-memory implementation of the TenantStore interface
type MemoryStore struct {
	tenants map[string]*tenantRecord
	mu      sync.RWMutex
	logger  *zap.Logger
}

// NewMemoryStore creates a new in-memory tenant store
func NewMemoryStore(logger *zap.Logger) *MemoryStore {
	return &MemoryStore{
		tenants: make(map[string]*tenantRecord),
		logger:  logger,
	}
}

func (s *MemoryStore) get(tenantID string) *tenantRecord {
	if rec, ok := s.tenants[tenantID]; ok {
		return rec
	}
	return newTenantRecord()
}

func (s *MemoryStore) ensure(tenantID string) *tenantRecord {
	rec, ok := s.tenants[tenantID]
	if !ok {
		rec = newTenantRecord()
		s.tenants[tenantID] = rec
	}
	return rec
}

// GetMode returns the tenant's punishment mode
func (s *MemoryStore) GetMode(ctx context.Context, tenantID string) (core.Mode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.get(tenantID).mode, nil
}

// SetMode sets the tenant's punishment mode
func (s *MemoryStore) SetMode(ctx context.Context, tenantID string, mode core.Mode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensure(tenantID).mode = mode
	return nil
}

// GetTimeoutDays returns the tenant's timeout period
func (s *MemoryStore) GetTimeoutDays(ctx context.Context, tenantID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.get(tenantID).timeoutDays, nil
}

// SetTimeoutDays sets the tenant's timeout period, rejecting out-of-range
// values before storage
func (s *MemoryStore) SetTimeoutDays(ctx context.Context, tenantID string, days int) error {
	if err := core.ValidateTimeoutDays(days); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensure(tenantID).timeoutDays = days
	return nil
}

// GetWhitelist returns the tenant's URL-prefix whitelist
func (s *MemoryStore) GetWhitelist(ctx context.Context, tenantID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec := s.get(tenantID)
	entries := make([]string, len(rec.whitelist))
	copy(entries, rec.whitelist)
	return entries, nil
}

// SetWhitelist replaces the tenant's URL-prefix whitelist
func (s *MemoryStore) SetWhitelist(ctx context.Context, tenantID string, entries []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.ensure(tenantID)
	rec.whitelist = make([]string, len(entries))
	copy(rec.whitelist, entries)
	return nil
}

// GetLoggingChannel returns the tenant's logging channel, or "" if unset
func (s *MemoryStore) GetLoggingChannel(ctx context.Context, tenantID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.get(tenantID).loggingChannel, nil
}

// SetLoggingChannel sets the tenant's logging channel
func (s *MemoryStore) SetLoggingChannel(ctx context.Context, tenantID, channelID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensure(tenantID).loggingChannel = channelID
	return nil
}

// ClearLoggingChannel removes the tenant's logging channel
func (s *MemoryStore) ClearLoggingChannel(ctx context.Context, tenantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.tenants[tenantID]; ok {
		rec.loggingChannel = ""
	}
	return nil
}

// IncrementPunishmentCount adds one to the tenant's punishment counter
func (s *MemoryStore) IncrementPunishmentCount(ctx context.Context, tenantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensure(tenantID).count++
	return nil
}

// GetPunishmentCount returns the tenant's punishment counter
func (s *MemoryStore) GetPunishmentCount(ctx context.Context, tenantID string) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.get(tenantID).count, nil
}

// PruneTenantsNotIn removes every tenant not present in the active set
func (s *MemoryStore) PruneTenantsNotIn(ctx context.Context, active []string) error {
	keep := make(map[string]struct{}, len(active))
	for _, id := range active {
		keep[id] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pruned := 0
	for id := range s.tenants {
		if _, ok := keep[id]; !ok {
			delete(s.tenants, id)
			pruned++
		}
	}
	if pruned > 0 {
		s.logger.Info("Pruned departed tenants", zap.Int("pruned", pruned))
	}
	return nil
}

// Close releases resources (a no-op for the memory store)
func (s *MemoryStore) Close() error {
	return nil
}
