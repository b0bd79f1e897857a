package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Session metrics
	SessionsStarted   prometheus.Counter
	SessionsCompleted prometheus.Counter
	SessionsFailed    prometheus.Counter
	SessionsCancelled prometheus.Counter
	SessionDuration   prometheus.Histogram
	LinesProcessed    prometheus.Counter

	// Matching metrics
	MatchesCreated  *prometheus.CounterVec
	UnmatchedLines  prometheus.Counter
	MatchScore      prometheus.Histogram
	ClaimConflicts  prometheus.Counter
	RuleEvaluations *prometheus.CounterVec

	// Discrepancy metrics
	DiscrepanciesDetected *prometheus.CounterVec
	AdjustmentsApplied    prometheus.Counter

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Outbox metrics
	EventsPublished prometheus.Counter
	PublishErrors   prometheus.Counter
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		// Session metrics
		SessionsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "reconcile_sessions_started_total",
			Help: "Total number of reconciliation sessions started",
		}),
		SessionsCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "reconcile_sessions_completed_total",
			Help: "Total number of reconciliation sessions completed",
		}),
		SessionsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "reconcile_sessions_failed_total",
			Help: "Total number of reconciliation sessions failed",
		}),
		SessionsCancelled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "reconcile_sessions_cancelled_total",
			Help: "Total number of reconciliation sessions cancelled",
		}),
		SessionDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "reconcile_session_duration_seconds",
			Help:    "Duration of reconciliation runs",
			Buckets: prometheus.DefBuckets,
		}),
		LinesProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "reconcile_lines_processed_total",
			Help: "Total number of statement lines processed",
		}),

		// Matching metrics
		MatchesCreated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reconcile_matches_created_total",
				Help: "Total matches created by confidence level",
			},
			[]string{"confidence"},
		),
		UnmatchedLines: promauto.NewCounter(prometheus.CounterOpts{
			Name: "reconcile_unmatched_lines_total",
			Help: "Total statement lines left without a match",
		}),
		MatchScore: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "reconcile_match_score",
			Help:    "Distribution of accepted match scores",
			Buckets: []float64{50, 60, 70, 80, 85, 90, 95, 100},
		}),
		ClaimConflicts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "reconcile_claim_conflicts_total",
			Help: "Total transaction claims lost to a concurrent session",
		}),
		RuleEvaluations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reconcile_rule_evaluations_total",
				Help: "Total rule evaluations by outcome",
			},
			[]string{"rule_id", "outcome"},
		),

		// Discrepancy metrics
		DiscrepanciesDetected: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reconcile_discrepancies_detected_total",
				Help: "Total discrepancies detected by type and severity",
			},
			[]string{"type", "severity"},
		),
		AdjustmentsApplied: promauto.NewCounter(prometheus.CounterOpts{
			Name: "reconcile_adjustments_applied_total",
			Help: "Total manual adjustments applied to matches",
		}),

		// API metrics
		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reconcile_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "reconcile_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		// Outbox metrics
		EventsPublished: promauto.NewCounter(prometheus.CounterOpts{
			Name: "reconcile_events_published_total",
			Help: "Total outbox events published",
		}),
		PublishErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "reconcile_publish_errors_total",
			Help: "Total outbox publish errors",
		}),
	}
}
