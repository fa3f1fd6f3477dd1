package metrics

import "github.com/prometheus/client_golang/prometheus"

// Location discovery Prometheus metrics.
var (
	TaxonomyErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jobscout",
			Name:      "taxonomy_errors_total",
			Help:      "Location catalog failures degraded to empty results",
		},
		[]string{"level"},
	)

	SlugResolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jobscout",
			Name:      "slug_resolutions_total",
			Help:      "Location slug resolutions by confidence",
		},
		[]string{"confidence"},
	)

	StaleResponsesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jobscout",
			Name:      "stale_responses_total",
			Help:      "Dependent fetch responses discarded because a newer fetch superseded them",
		},
		[]string{"edge"},
	)

	LocationCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jobscout",
			Name:      "location_cache_total",
			Help:      "Location catalog cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	SearchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jobscout",
			Name:      "searches_total",
			Help:      "Listing searches by ranking strategy and total source",
		},
		[]string{"sort", "total_source"},
	)

	GeolocationRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jobscout",
			Name:      "geolocation_requests_total",
			Help:      "Position acquisitions by provider and status",
		},
		[]string{"provider", "status"},
	)

	GeolocationRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "jobscout",
			Name:      "geolocation_request_duration_seconds",
			Help:      "Geolocation provider latency in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"provider"},
	)
)

var discoveryMetricsRegistered bool

// RegisterDiscoveryMetrics registers the discovery metrics. Must be called once from main.
func RegisterDiscoveryMetrics() {
	if discoveryMetricsRegistered {
		return
	}
	prometheus.MustRegister(TaxonomyErrorsTotal)
	prometheus.MustRegister(SlugResolutionsTotal)
	prometheus.MustRegister(StaleResponsesTotal)
	prometheus.MustRegister(LocationCacheTotal)
	prometheus.MustRegister(SearchesTotal)
	prometheus.MustRegister(GeolocationRequestsTotal)
	prometheus.MustRegister(GeolocationRequestDuration)
	discoveryMetricsRegistered = true
}
