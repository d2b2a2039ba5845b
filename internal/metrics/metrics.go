package metrics

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"marketmind/internal/models"
)

var (
	recomputeRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "marketmind_trending_recompute_total",
		Help: "Trending recompute passes by outcome",
	}, []string{"outcome"})

	recomputeDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "marketmind_trending_recompute_duration_seconds",
		Help:    "Duration of successful trending recompute passes",
		Buckets: prometheus.DefBuckets,
	})

	recomputeFailedRows = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "marketmind_trending_recompute_failed_rows_total",
		Help: "Tool rows skipped during trending recompute passes",
	})

	toolViews = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "marketmind_tool_views_total",
		Help: "Tool views recorded",
	})

	accessTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "marketmind_access_requests_transitions_total",
		Help: "Access request transitions by resulting status",
	}, []string{"status"})

	accessRequestsDesc = prometheus.NewDesc(
		"marketmind_access_requests",
		"Current number of access requests by status",
		[]string{"status"},
		nil,
	)
)

// StatusCounter reports the number of access requests per status.
type StatusCounter interface {
	CountAccessRequestsByStatus(ctx context.Context) (map[string]int64, error)
}

// AccessRequestCollector is a custom Prometheus collector that reads access
// request counts from the database on each scrape.
type AccessRequestCollector struct {
	store   StatusCounter
	timeout time.Duration
}

// NewAccessRequestCollector creates a collector backed by store.
func NewAccessRequestCollector(store StatusCounter) *AccessRequestCollector {
	return &AccessRequestCollector{store: store, timeout: 5 * time.Second}
}

// Describe sends the metric descriptor to the channel.
func (c *AccessRequestCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- accessRequestsDesc
}

// Collect queries the database and emits one gauge per status.
func (c *AccessRequestCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	counts, err := c.store.CountAccessRequestsByStatus(ctx)
	if err != nil {
		slog.Error("failed to collect access request metrics", "error", err)
		return
	}
	for status, count := range counts {
		ch <- prometheus.MustNewConstMetric(accessRequestsDesc, prometheus.GaugeValue, float64(count), status)
	}
}

var initOnce sync.Once

// Init registers all collectors with the default registry.
// Must be called once at startup.
func Init(store StatusCounter) {
	initOnce.Do(func() {
		prometheus.MustRegister(
			recomputeRuns,
			recomputeDuration,
			recomputeFailedRows,
			toolViews,
			accessTransitions,
			NewAccessRequestCollector(store),
		)
	})
}

// ObserveRecompute records the outcome of a recompute pass.
func ObserveRecompute(summary *models.RecomputeSummary, err error) {
	if err != nil {
		recomputeRuns.WithLabelValues("error").Inc()
		return
	}
	recomputeRuns.WithLabelValues("success").Inc()
	recomputeDuration.Observe(summary.Duration.Seconds())
	recomputeFailedRows.Add(float64(len(summary.Failed)))
}

// RecordToolView counts one tool view.
func RecordToolView() {
	toolViews.Inc()
}

// RecordAccessTransition counts an access request entering status.
func RecordAccessTransition(status string) {
	accessTransitions.WithLabelValues(status).Inc()
}
