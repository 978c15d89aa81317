package links

import (
	"context"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dotfriends/asca/internal/metrics"
)

// Resolver replaces known URL-shortener links with their final destination.
// Anything that is not a shortener, or that cannot be resolved within the
// timeout, passes through unchanged — a missed resolution is a missed
// classification opportunity, never a pipeline error.
type Resolver struct {
	client     *http.Client
	shorteners map[string]struct{}
	logger     *zap.Logger
}

// NewResolver creates a Resolver for the given shortener host set.
func NewResolver(shorteners []string, timeout time.Duration, logger *zap.Logger) *Resolver {
	set := make(map[string]struct{}, len(shorteners))
	for _, s := range shorteners {
		set[s] = struct{}{}
	}
	return &Resolver{
		client:     &http.Client{Timeout: timeout},
		shorteners: set,
		logger:     logger,
	}
}

// Resolve resolves all shortener URLs concurrently and returns the settled
// set, same size and order as the input.
func (r *Resolver) Resolve(ctx context.Context, urls []string) []string {
	resolved := make([]string, len(urls))
	var wg sync.WaitGroup
	for i, u := range urls {
		wg.Add(1)
		go func(i int, u string) {
			defer wg.Done()
			resolved[i] = r.resolveOne(ctx, u)
		}(i, u)
	}
	wg.Wait()
	return resolved
}

// resolveOne issues a redirect-following HEAD request for shortener URLs and
// returns the final URL as reported by the transport. On any failure the
// original URL is returned.
func (r *Resolver) resolveOne(ctx context.Context, rawURL string) string {
	if _, ok := r.shorteners[Host(rawURL)]; !ok {
		return rawURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return rawURL
	}

	resp, err := r.client.Do(req)
	if err != nil {
		metrics.LinkResolutions.WithLabelValues("error").Inc()
		r.logger.Debug("Failed to resolve shortener", zap.String("url", rawURL), zap.Error(err))
		return rawURL
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		metrics.LinkResolutions.WithLabelValues("error").Inc()
		return rawURL
	}

	metrics.LinkResolutions.WithLabelValues("resolved").Inc()
	final := resp.Request.URL.String()
	if final != rawURL {
		r.logger.Debug("Resolved shortener",
			zap.String("url", rawURL),
			zap.String("destination", final))
	}
	return final
}
