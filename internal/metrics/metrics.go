// Package metrics provides Prometheus instrumentation for the moderation
// pipeline: message throughput, verdicts by reason, punishment outcomes, and
// blocklist refresh health.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// MessagesScanned counts the messages that entered the pipeline.
	MessagesScanned = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "asca_messages_scanned_total",
		Help: "Total number of messages that entered the moderation pipeline",
	})

	// ScamsDetected counts positive verdicts, labeled by the check that
	// fired.
	ScamsDetected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "asca_scams_detected_total",
		Help: "Total number of scam verdicts",
	}, []string{"reason"})

	// Punishments counts punishment attempts by action and terminal status.
	Punishments = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "asca_punishments_total",
		Help: "Total number of punishment attempts",
	}, []string{"action", "status"}) // status = "applied", "skipped", "failed"

	// LinkResolutions counts shortener resolution outcomes.
	LinkResolutions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "asca_link_resolutions_total",
		Help: "Total number of shortener resolution attempts",
	}, []string{"status"}) // status = "resolved", "error"

	// BlocklistDomains tracks the size of the current blocklist snapshot.
	BlocklistDomains = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "asca_blocklist_domains",
		Help: "Number of domains in the current blocklist snapshot",
	})

	// BlocklistRefreshes counts blocklist refresh attempts by outcome.
	BlocklistRefreshes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "asca_blocklist_refreshes_total",
		Help: "Total number of blocklist refresh attempts",
	}, []string{"status"}) // status = "ok", "error"
)

func init() {
	prometheus.MustRegister(
		MessagesScanned,
		ScamsDetected,
		Punishments,
		LinkResolutions,
		BlocklistDomains,
		BlocklistRefreshes,
	)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
