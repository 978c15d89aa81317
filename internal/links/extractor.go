package links

import (
	"regexp"
	"strings"

	"go.uber.org/zap"
	"mvdan.cc/xurls/v2"
)

// Extractor finds candidate URLs in normalized text using a TLD-aware
// scanner.
type Extractor struct {
	rx     *regexp.Regexp
	logger *zap.Logger
}

// NewExtractor creates a new Extractor.
func NewExtractor(logger *zap.Logger) *Extractor {
	return &Extractor{
		rx:     xurls.Relaxed(),
		logger: logger,
	}
}

// TLDs returns the TLD table the scanner is seeded from.
func TLDs() []string {
	return xurls.TLDs
}

// Extract returns the deduplicated candidate URLs found in text, with an
// https scheme prepended where missing. URLs whose literal extracted value
// starts with a tenant whitelist entry are dropped before the scheme guess.
func (e *Extractor) Extract(text string, whitelist []string) []string {
	checker := NewWhitelistChecker(whitelist, e.logger)

	seen := make(map[string]struct{})
	var urls []string
	for _, raw := range e.rx.FindAllString(text, -1) {
		if checker.IsWhitelisted(raw) {
			continue
		}
		u := guessScheme(raw)
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		urls = append(urls, u)
	}

	if len(urls) > 0 && e.logger != nil {
		e.logger.Debug("Extracted candidate URLs", zap.Strings("urls", urls))
	}
	return urls
}

// guessScheme prepends https:// to a URL that carries no scheme.
func guessScheme(raw string) string {
	if strings.HasPrefix(raw, "http") {
		return raw
	}
	return "https://" + raw
}
