package metrics

import (
	"context"
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the planner's metric instruments. Fields are public
// so handlers and services can record directly when they need an
// attribute set the helpers below don't cover.
type AppMetrics struct {
	TripsPlannedTotal      metric.Int64Counter
	TripPlanDurationSecs   metric.Float64Histogram
	SlotsFilledTotal       metric.Int64Counter
	SlotsUnfilledTotal     metric.Int64Counter
	RadiusEscalationsTotal metric.Int64Counter
	RegionExpansionsTotal  metric.Int64Counter
	ProviderCallsTotal     metric.Int64Counter
	CacheHitsTotal         metric.Int64Counter
	CacheMissesTotal       metric.Int64Counter
}

var (
	// Global instance of AppMetrics (initialized once)
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global metrics instruments ONLY ONCE.
// It gets the Meter from the globally configured MeterProvider.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("go-trip-planner")
		var err error
		m := &AppMetrics{}

		m.TripsPlannedTotal, err = meter.Int64Counter(
			"trips_planned_total",
			metric.WithDescription("Total number of trip planning runs completed"),
			metric.WithUnit("{trip}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create trips_planned_total: %v", err)
		}

		m.TripPlanDurationSecs, err = meter.Float64Histogram(
			"trip_plan_duration_seconds",
			metric.WithDescription("Duration of trip planning runs in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create trip_plan_duration_seconds: %v", err)
		}

		m.SlotsFilledTotal, err = meter.Int64Counter(
			"slots_filled_total",
			metric.WithDescription("Total number of frame slots filled with a place"),
			metric.WithUnit("{slot}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create slots_filled_total: %v", err)
		}

		m.SlotsUnfilledTotal, err = meter.Int64Counter(
			"slots_unfilled_total",
			metric.WithDescription("Total number of frame slots left unfilled"),
			metric.WithUnit("{slot}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create slots_unfilled_total: %v", err)
		}

		m.RadiusEscalationsTotal, err = meter.Int64Counter(
			"radius_escalations_total",
			metric.WithDescription("Total number of search radius doublings"),
			metric.WithUnit("{escalation}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create radius_escalations_total: %v", err)
		}

		m.RegionExpansionsTotal, err = meter.Int64Counter(
			"region_expansions_total",
			metric.WithDescription("Total number of adopted nearby-region expansions"),
			metric.WithUnit("{expansion}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create region_expansions_total: %v", err)
		}

		m.ProviderCallsTotal, err = meter.Int64Counter(
			"provider_calls_total",
			metric.WithDescription("Total number of place search provider calls"),
			metric.WithUnit("{call}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create provider_calls_total: %v", err)
		}

		m.CacheHitsTotal, err = meter.Int64Counter(
			"cache_hits_total",
			metric.WithDescription("Total number of place cache hits"),
			metric.WithUnit("{hit}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create cache_hits_total: %v", err)
		}

		m.CacheMissesTotal, err = meter.Int64Counter(
			"cache_misses_total",
			metric.WithDescription("Total number of place cache misses"),
			metric.WithUnit("{miss}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create cache_misses_total: %v", err)
		}

		log.Println("Application metrics instruments initialized.")
		appMetrics = m
	})
}

// Get returns the globally initialized AppMetrics instance, or nil when
// InitAppMetrics has not run. The record helpers tolerate a nil
// receiver so code under test can record unconditionally.
func Get() *AppMetrics {
	return appMetrics
}

// Add increments counter by n. Safe on a nil receiver or instrument.
func (m *AppMetrics) Add(ctx context.Context, counter metric.Int64Counter, n int64, attrs ...attribute.KeyValue) {
	if m == nil || counter == nil {
		return
	}
	counter.Add(ctx, n, metric.WithAttributes(attrs...))
}

// Observe records value into histogram. Safe on a nil receiver.
func (m *AppMetrics) Observe(ctx context.Context, histogram metric.Float64Histogram, value float64, attrs ...attribute.KeyValue) {
	if m == nil || histogram == nil {
		return
	}
	histogram.Record(ctx, value, metric.WithAttributes(attrs...))
}
