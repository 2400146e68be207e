package optimizer

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// operationDuration tracks the time taken per optimizer operation.
	operationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "shopping_optimizer_operation_duration_seconds",
		Help:    "Time taken per optimizer operation",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
	}, []string{"operation"}) // operation: optimize, cheapest, route

	// operationErrors tracks invalid-input rejections per operation.
	operationErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shopping_optimizer_operation_errors_total",
		Help: "Total number of operation errors by operation",
	}, []string{"operation"})

	// basketSize tracks the distribution of shopping list sizes.
	basketSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "shopping_optimizer_basket_items_count",
		Help:    "Number of items in optimization requests",
		Buckets: []float64{1, 5, 10, 20, 50, 100},
	})

	// candidateStores tracks the catalog size per operation.
	candidateStores = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "shopping_optimizer_candidate_stores_count",
		Help:    "Number of candidate stores per operation",
		Buckets: []float64{1, 2, 3, 5, 10, 20},
	}, []string{"operation"})

	// subsetsEvaluated tracks combination search effort.
	subsetsEvaluated = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "shopping_optimizer_subsets_evaluated_count",
		Help:    "Number of store subsets evaluated by the combination search",
		Buckets: []float64{1, 5, 20, 50, 150, 400, 1350},
	})

	// coverageRatio tracks the fraction of the list a plan fulfils.
	coverageRatio = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "shopping_optimizer_plan_coverage_ratio",
		Help:    "Fraction of requested items fulfilled by the returned plan",
		Buckets: []float64{0.5, 0.7, 0.8, 0.9, 0.95, 1.0},
	})

	// travelLookups tracks location collaborator calls.
	travelLookups = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shopping_optimizer_travel_lookups_total",
		Help: "Total number of travel estimate lookups attempted",
	})

	// travelLookupFailures tracks collaborator failures (always recovered).
	travelLookupFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shopping_optimizer_travel_lookup_failures_total",
		Help: "Total number of failed travel lookups recovered via fallback",
	})

	// travelFallbacks tracks legs served from the static tables.
	travelFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shopping_optimizer_travel_fallbacks_total",
		Help: "Total number of travel legs served from static fallback data",
	})

	// routeStops tracks route lengths.
	routeStops = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "shopping_optimizer_route_stops_count",
		Help:    "Number of stops in computed routes",
		Buckets: []float64{1, 2, 3, 4, 5, 8, 12},
	})
)

// MetricsRecorder provides methods to record optimizer metrics.
type MetricsRecorder struct{}

// NewMetricsRecorder creates a new metrics recorder.
func NewMetricsRecorder() *MetricsRecorder {
	return &MetricsRecorder{}
}

// RecordOperation records the duration and outcome of an operation.
func (m *MetricsRecorder) RecordOperation(operation string, duration time.Duration, err error) {
	operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		operationErrors.WithLabelValues(operation).Inc()
	}
}

// RecordBasketSize records the size of a shopping list.
func (m *MetricsRecorder) RecordBasketSize(size int) {
	basketSize.Observe(float64(size))
}

// RecordCandidateStores records the catalog size for an operation.
func (m *MetricsRecorder) RecordCandidateStores(operation string, count int) {
	candidateStores.WithLabelValues(operation).Observe(float64(count))
}

// RecordSubsetsEvaluated records combination search effort.
func (m *MetricsRecorder) RecordSubsetsEvaluated(count int) {
	subsetsEvaluated.Observe(float64(count))
}

// RecordCoverageRatio records the fulfilled fraction of a plan.
func (m *MetricsRecorder) RecordCoverageRatio(ratio float64) {
	coverageRatio.Observe(ratio)
}

// RecordTravelLookup records one collaborator lookup attempt.
func (m *MetricsRecorder) RecordTravelLookup(failed bool) {
	travelLookups.Inc()
	if failed {
		travelLookupFailures.Inc()
	}
}

// RecordTravelFallback records a leg served from static fallback data.
func (m *MetricsRecorder) RecordTravelFallback() {
	travelFallbacks.Inc()
}

// RecordRouteStops records the length of a computed route.
func (m *MetricsRecorder) RecordRouteStops(count int) {
	routeStops.Observe(float64(count))
}
