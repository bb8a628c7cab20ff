package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	MarkerInsertsTotal           metric.Int64Counter
	GeocodeLookupDurationSeconds metric.Float64Histogram
	GeocodeNotFoundTotal         metric.Int64Counter
	ImageUploadErrorsTotal       metric.Int64Counter
	DbQueryDurationSeconds       metric.Float64Histogram
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// Get returns the process-wide AppMetrics instance, creating the
// instruments on first use. Before a MeterProvider is configured the
// instruments come from the no-op global provider, which keeps tests cheap.
func Get() *AppMetrics {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("geomapa")
		var err error
		m := &AppMetrics{}

		m.MarkerInsertsTotal, err = meter.Int64Counter(
			"marker_inserts_total",
			metric.WithDescription("Total number of markers inserted"),
			metric.WithUnit("{marker}"),
		)
		if err != nil {
			log.Fatalf("Metrics: failed to create marker_inserts_total: %v", err)
		}

		m.GeocodeLookupDurationSeconds, err = meter.Float64Histogram(
			"geocode_lookup_duration_seconds",
			metric.WithDescription("Duration of geocoding lookups in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: failed to create geocode_lookup_duration_seconds: %v", err)
		}

		m.GeocodeNotFoundTotal, err = meter.Int64Counter(
			"geocode_not_found_total",
			metric.WithDescription("Total number of geocoding lookups with zero results"),
			metric.WithUnit("{lookup}"),
		)
		if err != nil {
			log.Fatalf("Metrics: failed to create geocode_not_found_total: %v", err)
		}

		m.ImageUploadErrorsTotal, err = meter.Int64Counter(
			"image_upload_errors_total",
			metric.WithDescription("Total number of failed image uploads"),
			metric.WithUnit("{error}"),
		)
		if err != nil {
			log.Fatalf("Metrics: failed to create image_upload_errors_total: %v", err)
		}

		m.DbQueryDurationSeconds, err = meter.Float64Histogram(
			"db_query_duration_seconds",
			metric.WithDescription("Duration of database queries in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: failed to create db_query_duration_seconds: %v", err)
		}

		appMetrics = m
	})
	return appMetrics
}
