package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/mpapenbr/tankrace/pkg/model"
)

// LapTracer records one span per lap. Checkpoints and bounces are added as
// span events. A lap that is abandoned by a restart ends with completed=false.
type LapTracer struct {
	tracer    trace.Tracer
	sessionID string
	span      trace.Span
	lap       int
}

func NewLapTracer(tp trace.TracerProvider, sessionID string) *LapTracer {
	return &LapTracer{tracer: tp.Tracer(scope), sessionID: sessionID}
}

func (l *LapTracer) Handle(ctx context.Context, e model.RaceEvent) {
	switch e.Type {
	case model.EventAttempt:
		l.abandon(e)
		l.lap = 0
		l.start(ctx, e)
	case model.EventCheckpoint:
		if l.span == nil {
			return
		}
		l.span.AddEvent("checkpoint", trace.WithTimestamp(e.Time),
			trace.WithAttributes(
				attribute.Int("checkpoint", e.Checkpoint),
				attribute.Int64("duration_ms", e.Duration.Milliseconds()),
				attribute.Bool("improved", e.Improved)))
	case model.EventBounce:
		if l.span == nil {
			return
		}
		l.span.AddEvent("bounce", trace.WithTimestamp(e.Time),
			trace.WithAttributes(attribute.String("cause", e.Cause.String())))
	case model.EventLap:
		if l.span == nil {
			return
		}
		l.span.SetAttributes(
			attribute.Bool("completed", true),
			attribute.Int64("duration_ms", e.Duration.Milliseconds()),
			attribute.Bool("improved", e.Improved))
		l.span.End(trace.WithTimestamp(e.Time))
		l.lap = e.Lap
		l.start(ctx, e)
	}
}

// Close ends a running lap span
func (l *LapTracer) Close() {
	if l.span != nil {
		l.span.SetAttributes(attribute.Bool("completed", false))
		l.span.End()
		l.span = nil
	}
}

func (l *LapTracer) start(ctx context.Context, e model.RaceEvent) {
	_, l.span = l.tracer.Start(ctx, "lap",
		trace.WithTimestamp(e.Time),
		trace.WithAttributes(
			attribute.String("session", l.sessionID),
			attribute.Int("lap", l.lap+1)))
}

func (l *LapTracer) abandon(e model.RaceEvent) {
	if l.span != nil {
		l.span.SetAttributes(attribute.Bool("completed", false))
		l.span.End(trace.WithTimestamp(e.Time))
		l.span = nil
	}
}
