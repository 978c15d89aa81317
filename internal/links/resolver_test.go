package links

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestResolve_Shortener(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/short", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/destination", http.StatusFound)
	})
	mux.HandleFunc("/destination", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	// The test server listens on a loopback address, which stands in for a
	// shortener host.
	r := NewResolver([]string{Host(srv.URL)}, 5*time.Second, zap.NewNop())

	resolved := r.Resolve(context.Background(), []string{srv.URL + "/short"})
	require.Len(t, resolved, 1)
	assert.Equal(t, srv.URL+"/destination", resolved[0])
}

func TestResolve_NonShortenerPassesThrough(t *testing.T) {
	r := NewResolver([]string{"bit.ly"}, 5*time.Second, zap.NewNop())

	urls := []string{"https://evil.invalid/page", "https://example.invalid"}
	resolved := r.Resolve(context.Background(), urls)
	assert.Equal(t, urls, resolved)
}

func TestResolve_ErrorFallsBackToOriginal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	shortURL := srv.URL + "/short"
	host := Host(srv.URL)
	srv.Close() // connection refused from here on

	r := NewResolver([]string{host}, time.Second, zap.NewNop())
	resolved := r.Resolve(context.Background(), []string{shortURL})
	assert.Equal(t, []string{shortURL}, resolved)
}

func TestResolve_ErrorStatusFallsBackToOriginal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	r := NewResolver([]string{Host(srv.URL)}, 5*time.Second, zap.NewNop())
	resolved := r.Resolve(context.Background(), []string{srv.URL + "/gone"})
	assert.Equal(t, []string{srv.URL + "/gone"}, resolved)
}

func TestResolve_PreservesOrder(t *testing.T) {
	r := NewResolver(nil, time.Second, zap.NewNop())

	urls := []string{"https://a.invalid", "https://b.invalid", "https://c.invalid"}
	assert.Equal(t, urls, r.Resolve(context.Background(), urls))
}
