package observability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricFilesTotal     = "autoimport.files.total"
	metricImportsAdded   = "autoimport.imports.added"
	metricImportsRemoved = "autoimport.imports.removed"
	metricImportsMoved   = "autoimport.imports.moved"
	metricUnresolved     = "autoimport.names.unresolved"
	metricFixDuration    = "autoimport.fix.duration.seconds"

	attrStatus = "status"
)

// File outcomes recorded under the status attribute.
const (
	StatusChanged   = "changed"
	StatusUnchanged = "unchanged"
	StatusSkipped   = "skipped"
	StatusError     = "error"
)

// durationBuckets covers sub-millisecond fixes up to pathological files.
var durationBuckets = []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 5}

// FileOutcome is what one processed file contributes to the metrics.
type FileOutcome struct {
	Status     string
	Added      int
	Removed    int
	Moved      int
	Unresolved int
	Duration   time.Duration
}

// FixMetrics holds the per-file fix instruments.
type FixMetrics struct {
	files      metric.Int64Counter
	added      metric.Int64Counter
	removed    metric.Int64Counter
	moved      metric.Int64Counter
	unresolved metric.Int64Counter
	duration   metric.Float64Histogram
}

// NewFixMetrics creates the fix instruments from mt.
func NewFixMetrics(mt metric.Meter) (*FixMetrics, error) {
	var (
		fm   FixMetrics
		errs []error
	)

	fm.files, errs = counter(mt, errs, metricFilesTotal, "Processed files by outcome", "{file}")
	fm.added, errs = counter(mt, errs, metricImportsAdded, "Import statements added", "{import}")
	fm.removed, errs = counter(mt, errs, metricImportsRemoved, "Unused import bindings removed", "{binding}")
	fm.moved, errs = counter(mt, errs, metricImportsMoved, "Import statements moved to the top", "{import}")
	fm.unresolved, errs = counter(mt, errs, metricUnresolved, "Undefined names no strategy could resolve", "{name}")

	duration, err := mt.Float64Histogram(metricFixDuration,
		metric.WithDescription("Time spent fixing one file"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	)
	if err != nil {
		errs = append(errs, fmt.Errorf("create %s: %w", metricFixDuration, err))
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	fm.duration = duration

	return &fm, nil
}

func counter(mt metric.Meter, errs []error, name, desc, unit string) (metric.Int64Counter, []error) {
	c, err := mt.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit(unit))
	if err != nil {
		errs = append(errs, fmt.Errorf("create %s: %w", name, err))
	}

	return c, errs
}

// RecordFile records the outcome of one file.
func (fm *FixMetrics) RecordFile(ctx context.Context, outcome FileOutcome) {
	fm.files.Add(ctx, 1, metric.WithAttributes(attribute.String(attrStatus, outcome.Status)))

	if outcome.Status == StatusSkipped {
		return
	}

	fm.added.Add(ctx, int64(outcome.Added))
	fm.removed.Add(ctx, int64(outcome.Removed))
	fm.moved.Add(ctx, int64(outcome.Moved))
	fm.unresolved.Add(ctx, int64(outcome.Unresolved))
	fm.duration.Record(ctx, outcome.Duration.Seconds())
}
