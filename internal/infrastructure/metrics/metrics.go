package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics.
type Metrics struct {
	// Journal metrics
	EntriesPosted  prometheus.Counter
	EntriesSystem  prometheus.Counter
	EntryLineCount prometheus.Histogram
	EntryErrors    *prometheus.CounterVec

	// Chart metrics
	AccountsCreated     prometheus.Counter
	AccountsDeactivated prometheus.Counter

	// Period metrics
	PeriodsCreated prometheus.Counter
	PeriodsClosed  prometheus.Counter
	ClosingLatency prometheus.Histogram

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Database metrics
	DBConnections prometheus.Gauge
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		EntriesPosted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gobooks_entries_posted_total",
			Help: "Total number of journal entries posted",
		}),
		EntriesSystem: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gobooks_entries_system_total",
			Help: "Total number of system-generated entries (closing and opening)",
		}),
		EntryLineCount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "gobooks_entry_line_count",
			Help:    "Number of line items per posted entry",
			Buckets: []float64{2, 4, 8, 16, 32, 64},
		}),
		EntryErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gobooks_entry_errors_total",
				Help: "Total number of rejected entries by reason",
			},
			[]string{"reason"},
		),

		AccountsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gobooks_accounts_created_total",
			Help: "Total number of accounts created",
		}),
		AccountsDeactivated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gobooks_accounts_deactivated_total",
			Help: "Total number of accounts deactivated",
		}),

		PeriodsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gobooks_periods_created_total",
			Help: "Total number of accounting periods created",
		}),
		PeriodsClosed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gobooks_periods_closed_total",
			Help: "Total number of accounting periods closed",
		}),
		ClosingLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "gobooks_closing_duration_seconds",
			Help:    "Duration of period close operations",
			Buckets: prometheus.DefBuckets,
		}),

		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gobooks_http_requests_total",
				Help: "Total HTTP requests by method, path and status",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gobooks_http_request_duration_seconds",
				Help:    "HTTP request duration by method and path",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		DBConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "gobooks_db_connections",
			Help: "Current number of database connections",
		}),
	}
}
