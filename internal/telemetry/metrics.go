package telemetry

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName = "github.com/wolfeidau/notifyroute"
)

// Metrics holds all the OpenTelemetry metric instruments
type Metrics struct {
	// Behavior group metrics
	BehaviorGroupOperationsTotal metric.Int64Counter
	BehaviorGroupErrorsTotal     metric.Int64Counter
	NameConflictsTotal           metric.Int64Counter
	IntegrityViolationsTotal     metric.Int64Counter

	// Link reconciliation metrics
	LinksInsertedTotal metric.Int64Counter
	LinksDeletedTotal  metric.Int64Counter
	LinksMovedTotal    metric.Int64Counter
	ReconcileDuration  metric.Float64Histogram
}

var (
	once    sync.Once
	metrics *Metrics
)

// GetMetrics returns the singleton Metrics instance, initializing it if necessary
func GetMetrics() *Metrics {
	once.Do(func() {
		metrics = initMetrics()
	})
	return metrics
}

// initMetrics creates and registers all metric instruments
func initMetrics() *Metrics {
	meter := otel.GetMeterProvider().Meter(meterName)

	m := &Metrics{}

	// Behavior group metrics
	m.BehaviorGroupOperationsTotal, _ = meter.Int64Counter(
		"notifyroute.behavior_groups.operations.total",
		metric.WithDescription("Total number of behavior group repository operations"),
		metric.WithUnit("{operation}"),
	)

	m.BehaviorGroupErrorsTotal, _ = meter.Int64Counter(
		"notifyroute.behavior_groups.errors.total",
		metric.WithDescription("Total number of failed behavior group repository operations"),
		metric.WithUnit("{error}"),
	)

	m.NameConflictsTotal, _ = meter.Int64Counter(
		"notifyroute.behavior_groups.name_conflicts.total",
		metric.WithDescription("Total number of display name conflicts within a naming scope"),
		metric.WithUnit("{conflict}"),
	)

	m.IntegrityViolationsTotal, _ = meter.Int64Counter(
		"notifyroute.behavior_groups.integrity_violations.total",
		metric.WithDescription("Total number of rejected cross-bundle event type links"),
		metric.WithUnit("{violation}"),
	)

	// Link reconciliation metrics
	m.LinksInsertedTotal, _ = meter.Int64Counter(
		"notifyroute.links.inserted.total",
		metric.WithDescription("Total number of link rows inserted by reconciliation"),
		metric.WithUnit("{link}"),
	)

	m.LinksDeletedTotal, _ = meter.Int64Counter(
		"notifyroute.links.deleted.total",
		metric.WithDescription("Total number of link rows deleted by reconciliation"),
		metric.WithUnit("{link}"),
	)

	m.LinksMovedTotal, _ = meter.Int64Counter(
		"notifyroute.links.moved.total",
		metric.WithDescription("Total number of link rows repositioned by reconciliation"),
		metric.WithUnit("{link}"),
	)

	m.ReconcileDuration, _ = meter.Float64Histogram(
		"notifyroute.links.reconcile.duration",
		metric.WithDescription("Duration of link reconciliation transactions"),
		metric.WithUnit("ms"),
	)

	return m
}
