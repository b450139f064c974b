package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search kinds used as the "kind" label.
const (
	KindSearch      = "search"
	KindAggregation = "aggregation"
	KindStar        = "star"
)

// Search Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docsearch",
			Name:      "search_requests_total",
			Help:      "Total number of backend search requests",
		},
		[]string{"kind", "status"},
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docsearch",
			Name:      "search_duration_seconds",
			Help:      "Backend search duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"kind"},
	)

	StaleResponsesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "docsearch",
			Name:      "stale_responses_total",
			Help:      "Search responses discarded because a newer search started",
		},
	)

	QueryParseFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "docsearch",
			Name:      "query_parse_failures_total",
			Help:      "Query strings that could not be parsed into terms",
		},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(StaleResponsesTotal)
	prometheus.MustRegister(QueryParseFailuresTotal)
	searchMetricsRegistered = true
}

// Status maps an error to the "status" label.
func Status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
