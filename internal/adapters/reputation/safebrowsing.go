// Package reputation implements the URL threat-intelligence lookup backed by
// the Google Safe Browsing v4 API.
package reputation

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/api/safebrowsing/v4"

	"github.com/dotfriends/asca/internal/core"
)

// SafeBrowsingService checks URLs against Google Safe Browsing. A service
// constructed without an API key reports itself unavailable and the
// classifier skips the check.
type SafeBrowsingService struct {
	service *safebrowsing.Service
	logger  *zap.Logger
}

// NewSafeBrowsingService creates a Safe Browsing reputation service. An empty
// apiKey yields a permanently unavailable service rather than an error.
func NewSafeBrowsingService(ctx context.Context, apiKey string, logger *zap.Logger) (*SafeBrowsingService, error) {
	if apiKey == "" {
		logger.Info("Reputation lookups disabled, no API key configured")
		return &SafeBrowsingService{logger: logger}, nil
	}

	service, err := safebrowsing.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create safebrowsing service: %w", err)
	}
	return &SafeBrowsingService{
		service: service,
		logger:  logger,
	}, nil
}

// Available reports whether an API key is configured.
func (s *SafeBrowsingService) Available() bool {
	return s.service != nil
}

// Lookup returns, for each URL, whether Safe Browsing flags it as a threat.
func (s *SafeBrowsingService) Lookup(ctx context.Context, urls []string) (map[string]bool, error) {
	if s.service == nil {
		return nil, fmt.Errorf("reputation service not configured")
	}

	entries := make([]*safebrowsing.GoogleSecuritySafebrowsingV4ThreatEntry, len(urls))
	for i, u := range urls {
		entries[i] = &safebrowsing.GoogleSecuritySafebrowsingV4ThreatEntry{Url: u}
	}

	req := &safebrowsing.GoogleSecuritySafebrowsingV4FindThreatMatchesRequest{
		Client: &safebrowsing.GoogleSecuritySafebrowsingV4ClientInfo{
			ClientId:      "asca",
			ClientVersion: "1.0",
		},
		ThreatInfo: &safebrowsing.GoogleSecuritySafebrowsingV4ThreatInfo{
			ThreatTypes:      []string{"MALWARE", "SOCIAL_ENGINEERING", "UNWANTED_SOFTWARE"},
			PlatformTypes:    []string{"ANY_PLATFORM"},
			ThreatEntryTypes: []string{"URL"},
			ThreatEntries:    entries,
		},
	}

	resp, err := s.service.ThreatMatches.Find(req).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("threat match lookup failed: %w", err)
	}

	flagged := make(map[string]bool, len(urls))
	for _, u := range urls {
		flagged[u] = false
	}
	for _, match := range resp.Matches {
		if match.Threat != nil {
			flagged[match.Threat.Url] = true
		}
	}
	return flagged, nil
}

var _ core.ReputationService = (*SafeBrowsingService)(nil)
