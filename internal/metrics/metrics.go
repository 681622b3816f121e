package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// Metrics holds the pipeline and retrieval instruments. Every name carries
// the "ledger_" prefix.
type Metrics struct {
	MessagesIngested  *prometheus.CounterVec
	DetectionOutcomes *prometheus.CounterVec
	DecisionsCreated  *prometheus.CounterVec
	Resolutions       *prometheus.CounterVec
	Expired           prometheus.Counter
	LinksAttached     *prometheus.CounterVec
	EmbeddingsStored  prometheus.Counter
	JobsHandled       *prometheus.CounterVec
	QueryDuration     prometheus.Histogram
	QueryResults      prometheus.Histogram
}

// New registers the collectors once per process.
func New() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = &Metrics{
			MessagesIngested: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "ledger_messages_ingested_total",
					Help: "Chat messages stored for processing",
				},
				[]string{"source"},
			),
			DetectionOutcomes: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "ledger_detection_outcomes_total",
					Help: "Detection results by outcome",
				},
				[]string{"outcome"}, // "accepted", "below_threshold", "daily_cap"
			),
			DecisionsCreated: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "ledger_decisions_created_total",
					Help: "Decisions persisted",
				},
				[]string{"source_type"},
			),
			Resolutions: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "ledger_confirmations_resolved_total",
					Help: "Confirmation prompts resolved by a person",
				},
				[]string{"action", "applied"},
			),
			Expired: promauto.NewCounter(prometheus.CounterOpts{
				Name: "ledger_confirmations_expired_total",
				Help: "Pending confirmations expired by the sweep",
			}),
			LinksAttached: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "ledger_links_attached_total",
					Help: "Tracker links attached during enrichment",
				},
				[]string{"type"},
			),
			EmbeddingsStored: promauto.NewCounter(prometheus.CounterOpts{
				Name: "ledger_embeddings_stored_total",
				Help: "Decision embeddings written",
			}),
			JobsHandled: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "ledger_jobs_handled_total",
					Help: "Background jobs handled",
				},
				[]string{"job", "result"},
			),
			QueryDuration: promauto.NewHistogram(prometheus.HistogramOpts{
				Name:    "ledger_query_duration_seconds",
				Help:    "End-to-end decision query latency",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			}),
			QueryResults: promauto.NewHistogram(prometheus.HistogramOpts{
				Name:    "ledger_query_results",
				Help:    "Decisions returned per query",
				Buckets: []float64{0, 1, 2, 3, 4, 5},
			}),
		}
	})
	return globalMetrics
}
