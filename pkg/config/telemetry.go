package config

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"

	"github.com/mpapenbr/tankrace/log"
	"github.com/mpapenbr/tankrace/version"
)

type Telemetry struct {
	metrics *metric.MeterProvider
	traces  *trace.TracerProvider
	out     io.Closer
}

// Shutdown flushes pending telemetry data
func (t *Telemetry) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if t.metrics != nil {
		if err := t.metrics.Shutdown(ctx); err != nil {
			log.Warn("could not shutdown meter provider", log.ErrorField(err))
		}
	}
	if t.traces != nil {
		if err := t.traces.Shutdown(ctx); err != nil {
			log.Warn("could not shutdown tracer provider", log.ErrorField(err))
		}
	}
	if t.out != nil {
		t.out.Close()
	}
}

// SetupTelemetry installs global meter and tracer providers.
// Data is sent via OTLP/gRPC if TelemetryEndpoint is set. Otherwise the stdout
// exporters write to TelemetryOutput (the terminal is owned by the game).
func SetupTelemetry(ctx context.Context) (*Telemetry, error) {
	res := resource.NewSchemaless(
		attribute.String("service.name", "tankrace"),
		attribute.String("service.version", version.Version),
	)
	t := &Telemetry{}
	var metricExporter metric.Exporter
	var traceExporter trace.SpanExporter
	var err error
	if TelemetryEndpoint != "" {
		if metricExporter, err = otlpmetricgrpc.New(ctx,
			otlpmetricgrpc.WithEndpoint(TelemetryEndpoint),
			otlpmetricgrpc.WithInsecure()); err != nil {
			return nil, err
		}
		if traceExporter, err = otlptracegrpc.New(ctx,
			otlptracegrpc.WithEndpoint(TelemetryEndpoint),
			otlptracegrpc.WithInsecure()); err != nil {
			return nil, err
		}
	} else {
		if TelemetryOutput == "" {
			return nil, errors.New("telemetry needs an endpoint or an output file")
		}
		f, fErr := os.Create(TelemetryOutput)
		if fErr != nil {
			return nil, fErr
		}
		t.out = f
		if metricExporter, err = stdoutmetric.New(stdoutmetric.WithWriter(f)); err != nil {
			return nil, err
		}
		if traceExporter, err = stdouttrace.New(stdouttrace.WithWriter(f)); err != nil {
			return nil, err
		}
	}
	t.metrics = metric.NewMeterProvider(
		metric.WithResource(res),
		metric.WithReader(metric.NewPeriodicReader(metricExporter,
			metric.WithInterval(10*time.Second))),
	)
	t.traces = trace.NewTracerProvider(
		trace.WithResource(res),
		trace.WithBatcher(traceExporter),
	)
	otel.SetMeterProvider(t.metrics)
	otel.SetTracerProvider(t.traces)
	return t, nil
}
