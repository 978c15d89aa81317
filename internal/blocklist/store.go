// Package blocklist holds the process-wide set of known-malicious domains.
// The current set is an immutable snapshot swapped atomically by a
// background refresher, so classifier reads never block on a refresh.
package blocklist

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/dotfriends/asca/internal/core"
	"github.com/dotfriends/asca/internal/metrics"
)

// Snapshot is an immutable point-in-time copy of the blocklist.
type Snapshot struct {
	domains   map[string]struct{}
	FetchedAt time.Time
}

// Contains reports whether the domain is in the snapshot.
func (s *Snapshot) Contains(domain string) bool {
	_, ok := s.domains[domain]
	return ok
}

// Len returns the number of domains in the snapshot.
func (s *Snapshot) Len() int {
	return len(s.domains)
}

// Store publishes the current Snapshot and refreshes it on a timer from a
// remote feed.
type Store struct {
	current  atomic.Pointer[Snapshot]
	feed     core.BlocklistFeed
	pending  []string
	interval time.Duration
	logger   *zap.Logger
	started  bool
	stopCh   chan struct{}
	done     chan struct{}
}

// NewStore creates a Store seeded with the manually curated pending set.
// Call Start to begin periodic refreshes.
func NewStore(feed core.BlocklistFeed, pending []string, interval time.Duration, logger *zap.Logger) *Store {
	s := &Store{
		feed:     feed,
		pending:  pending,
		interval: interval,
		logger:   logger,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
	s.publish(buildSnapshot("", pending))
	return s
}

// Contains reports whether the domain is in the current snapshot. It never
// blocks, even while a refresh is in progress.
func (s *Store) Contains(domain string) bool {
	return s.current.Load().Contains(domain)
}

// Current returns the current snapshot.
func (s *Store) Current() *Snapshot {
	return s.current.Load()
}

// Refresh fetches the remote list and atomically swaps in a new snapshot.
// On failure the previous snapshot is retained unchanged.
func (s *Store) Refresh(ctx context.Context) error {
	text, err := s.feed.Fetch(ctx)
	if err != nil {
		metrics.BlocklistRefreshes.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to fetch blocklist: %w", err)
	}

	snap := buildSnapshot(text, s.pending)
	s.publish(snap)
	metrics.BlocklistRefreshes.WithLabelValues("ok").Inc()
	s.logger.Info("Refreshed blocklist", zap.Int("domains", snap.Len()))
	return nil
}

// Start launches the background refresher: one refresh immediately, then one
// per interval. Refresh failures are non-fatal and keep the old snapshot.
func (s *Store) Start() {
	s.started = true
	go func() {
		defer close(s.done)

		if err := s.Refresh(context.Background()); err != nil {
			s.logger.Warn("Initial blocklist refresh failed", zap.Error(err))
		}

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := s.Refresh(context.Background()); err != nil {
					s.logger.Warn("Blocklist refresh failed", zap.Error(err))
				}
			case <-s.stopCh:
				return
			}
		}
	}()
}

// Stop stops the background refresher. Stopping a store that was never
// started is a no-op.
func (s *Store) Stop() {
	if !s.started {
		return
	}
	close(s.stopCh)
	<-s.done
}

func (s *Store) publish(snap *Snapshot) {
	s.current.Store(snap)
	metrics.BlocklistDomains.Set(float64(snap.Len()))
}

// buildSnapshot parses the plaintext feed (one domain per line) and merges
// in the pending set.
func buildSnapshot(text string, pending []string) *Snapshot {
	domains := make(map[string]struct{})
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		domains[line] = struct{}{}
	}
	for _, domain := range pending {
		domains[domain] = struct{}{}
	}
	return &Snapshot{domains: domains, FetchedAt: time.Now()}
}
