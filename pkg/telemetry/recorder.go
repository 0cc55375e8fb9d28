package telemetry

import (
	"context"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/mpapenbr/tankrace/pkg/model"
)

const scope = "github.com/mpapenbr/tankrace"

// Recorder turns race events into otel metrics
type Recorder struct {
	laps           metric.Int64Counter
	checkpoints    metric.Int64Counter
	bounces        metric.Int64Counter
	lapDuration    metric.Float64Histogram
	sectorDuration metric.Float64Histogram
	common         attribute.Set
}

//nolint:whitespace // can't make both editor and linter happy
func NewRecorder(mp metric.MeterProvider, sessionID string) (
	*Recorder, error,
) {
	meter := mp.Meter(scope)
	r := &Recorder{common: attribute.NewSet(attribute.String("session", sessionID))}
	var err error
	if r.laps, err = meter.Int64Counter("tankrace.laps",
		metric.WithDescription("Number of completed laps"),
		metric.WithUnit("{lap}")); err != nil {
		return nil, err
	}
	if r.checkpoints, err = meter.Int64Counter("tankrace.checkpoints",
		metric.WithDescription("Number of cleared checkpoints"),
		metric.WithUnit("{checkpoint}")); err != nil {
		return nil, err
	}
	if r.bounces, err = meter.Int64Counter("tankrace.bounces",
		metric.WithDescription("Number of bounces by cause"),
		metric.WithUnit("{bounce}")); err != nil {
		return nil, err
	}
	if r.lapDuration, err = meter.Float64Histogram("tankrace.lap.duration",
		metric.WithDescription("Lap durations"),
		metric.WithUnit("s")); err != nil {
		return nil, err
	}
	if r.sectorDuration, err = meter.Float64Histogram("tankrace.sector.duration",
		metric.WithDescription("Sector durations"),
		metric.WithUnit("s")); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Recorder) Handle(ctx context.Context, e model.RaceEvent) {
	common := metric.WithAttributeSet(r.common)
	switch e.Type {
	case model.EventLap:
		r.laps.Add(ctx, 1, common)
		r.lapDuration.Record(ctx, e.Duration.Seconds(), common,
			metric.WithAttributes(attribute.Bool("improved", e.Improved)))
	case model.EventCheckpoint:
		r.checkpoints.Add(ctx, 1, common)
		r.sectorDuration.Record(ctx, e.Duration.Seconds(), common,
			metric.WithAttributes(attribute.String("sector", strconv.Itoa(e.Checkpoint))))
	case model.EventBounce:
		r.bounces.Add(ctx, 1, common,
			metric.WithAttributes(attribute.String("cause", e.Cause.String())))
	case model.EventAttempt:
	}
}
