package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for region queries and events.
type Metrics struct {
	// Region queries by kind: "at", "of", "check"
	Queries *prometheus.CounterVec

	// Membership checks by mode and result
	MembershipChecks *prometheus.CounterVec

	// Region events by kind
	RegionEvents *prometheus.CounterVec

	// Queries rejected because the region directory is not ready
	DirectoryUnavailable prometheus.Counter

	// Query latency
	QueryLatency prometheus.Histogram

	// Actors currently online
	OnlineActors prometheus.Gauge
}

// New creates a Metrics instance registered with the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a Metrics instance registered with reg.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Queries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "wgevents_region_queries_total",
			Help: "Total region queries by kind",
		}, []string{"kind"}),

		MembershipChecks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "wgevents_membership_checks_total",
			Help: "Total membership checks by mode and result",
		}, []string{"mode", "result"}),

		RegionEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "wgevents_region_events_total",
			Help: "Total region events published by kind",
		}, []string{"kind"}),

		DirectoryUnavailable: factory.NewCounter(prometheus.CounterOpts{
			Name: "wgevents_directory_unavailable_total",
			Help: "Total queries rejected because the region directory was not ready",
		}),

		QueryLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "wgevents_region_query_duration_seconds",
			Help:    "Duration of region queries",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),

		OnlineActors: factory.NewGauge(prometheus.GaugeOpts{
			Name: "wgevents_online_actors",
			Help: "Number of actors currently online",
		}),
	}
}

// IncrementQuery records a region query of the given kind.
func (m *Metrics) IncrementQuery(kind string) {
	if m != nil {
		m.Queries.WithLabelValues(kind).Inc()
	}
}

// IncrementMembershipCheck records a membership check outcome.
func (m *Metrics) IncrementMembershipCheck(mode string, result bool) {
	if m != nil {
		outcome := "false"
		if result {
			outcome = "true"
		}
		m.MembershipChecks.WithLabelValues(mode, outcome).Inc()
	}
}

// IncrementRegionEvent records a published region event.
func (m *Metrics) IncrementRegionEvent(kind string) {
	if m != nil {
		m.RegionEvents.WithLabelValues(kind).Inc()
	}
}

// IncrementDirectoryUnavailable records a query made before the directory was ready.
func (m *Metrics) IncrementDirectoryUnavailable() {
	if m != nil {
		m.DirectoryUnavailable.Inc()
	}
}

// ObserveQueryLatency records the duration of a region query.
func (m *Metrics) ObserveQueryLatency(d time.Duration) {
	if m != nil {
		m.QueryLatency.Observe(d.Seconds())
	}
}

// SetOnlineActors records the number of online actors.
func (m *Metrics) SetOnlineActors(n int) {
	if m != nil {
		m.OnlineActors.Set(float64(n))
	}
}
