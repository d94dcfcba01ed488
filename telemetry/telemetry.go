// Package telemetry instruments PackStream Pack/Unpack operations and
// transport connection lifecycle events with OpenTelemetry tracing and
// metrics. It is adapted from the host driver's query-observability
// layer, retargeted from query execution onto the codec's own
// operations: an encode or decode of one top-level value, a connection
// open/close, and a handshake/auth attempt.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	instrumentationName    = "github.com/seuros/gopher-packstream/telemetry"
	instrumentationVersion = "0.1.0"
)

// Config controls telemetry collection.
type Config struct {
	// EnableTracing enables OpenTelemetry distributed tracing.
	EnableTracing bool

	// EnableMetrics enables OpenTelemetry metrics collection.
	EnableMetrics bool

	// TracingAttributes are additional attributes added to every span.
	TracingAttributes []attribute.KeyValue

	// MetricAttributes are additional attributes added to every metric.
	MetricAttributes []attribute.KeyValue
}

// DefaultConfig returns default observability configuration.
func DefaultConfig() *Config {
	return &Config{
		EnableTracing: true,
		EnableMetrics: true,
		TracingAttributes: []attribute.KeyValue{
			attribute.String("codec.system", "packstream"),
			attribute.String("codec.version", "v1"),
		},
		MetricAttributes: []attribute.KeyValue{
			attribute.String("codec.system", "packstream"),
		},
	}
}

// Instruments holds the OpenTelemetry tracer, meter, and instruments
// used across a connection's lifetime.
type Instruments struct {
	tracer trace.Tracer
	meter  metric.Meter

	packDuration     metric.Float64Histogram
	packCount        metric.Int64Counter
	packErrors       metric.Int64Counter
	unpackDuration   metric.Float64Histogram
	unpackCount      metric.Int64Counter
	unpackErrors     metric.Int64Counter
	connectionCount  metric.Int64UpDownCounter
	connectionErrors metric.Int64Counter
	handshakeCount   metric.Int64Counter
}

// New initializes OpenTelemetry instruments against the global otel
// providers.
func New() *Instruments {
	tracer := otel.Tracer(instrumentationName, trace.WithInstrumentationVersion(instrumentationVersion))
	meter := otel.Meter(instrumentationName, metric.WithInstrumentationVersion(instrumentationVersion))

	in := &Instruments{tracer: tracer, meter: meter}

	var err error
	in.packDuration, err = meter.Float64Histogram("packstream.pack.duration",
		metric.WithDescription("Duration of Pack operations"), metric.WithUnit("s"))
	if err != nil {
		otel.Handle(err)
	}
	in.packCount, err = meter.Int64Counter("packstream.pack.count",
		metric.WithDescription("Number of values packed"))
	if err != nil {
		otel.Handle(err)
	}
	in.packErrors, err = meter.Int64Counter("packstream.pack.errors",
		metric.WithDescription("Number of Pack errors"))
	if err != nil {
		otel.Handle(err)
	}
	in.unpackDuration, err = meter.Float64Histogram("packstream.unpack.duration",
		metric.WithDescription("Duration of Unpack operations"), metric.WithUnit("s"))
	if err != nil {
		otel.Handle(err)
	}
	in.unpackCount, err = meter.Int64Counter("packstream.unpack.count",
		metric.WithDescription("Number of values unpacked"))
	if err != nil {
		otel.Handle(err)
	}
	in.unpackErrors, err = meter.Int64Counter("packstream.unpack.errors",
		metric.WithDescription("Number of Unpack errors"))
	if err != nil {
		otel.Handle(err)
	}
	in.connectionCount, err = meter.Int64UpDownCounter("packstream.connection.count",
		metric.WithDescription("Number of active transport connections"))
	if err != nil {
		otel.Handle(err)
	}
	in.connectionErrors, err = meter.Int64Counter("packstream.connection.errors",
		metric.WithDescription("Number of connection errors"))
	if err != nil {
		otel.Handle(err)
	}
	in.handshakeCount, err = meter.Int64Counter("packstream.handshake.count",
		metric.WithDescription("Number of handshake attempts"))
	if err != nil {
		otel.Handle(err)
	}

	return in
}

// Span wraps an in-flight trace span and its start time.
type Span struct {
	span      trace.Span
	startTime time.Time
	operation string
}

// StartPack begins a span for a Pack operation.
func (in *Instruments) StartPack(ctx context.Context, cfg *Config) (context.Context, *Span) {
	return in.start(ctx, cfg, "packstream.pack")
}

// StartUnpack begins a span for an Unpack operation.
func (in *Instruments) StartUnpack(ctx context.Context, cfg *Config) (context.Context, *Span) {
	return in.start(ctx, cfg, "packstream.unpack")
}

func (in *Instruments) start(ctx context.Context, cfg *Config, operation string) (context.Context, *Span) {
	if cfg == nil || !cfg.EnableTracing {
		return ctx, &Span{startTime: time.Now(), operation: operation}
	}
	ctx, span := in.tracer.Start(ctx, operation,
		trace.WithAttributes(cfg.TracingAttributes...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
	return ctx, &Span{span: span, startTime: time.Now(), operation: operation}
}

// Finish completes a Pack/Unpack span, recording duration, success
// count, and error count.
func (in *Instruments) Finish(s *Span, cfg *Config, err error) {
	duration := time.Since(s.startTime)
	if cfg == nil {
		return
	}

	if cfg.EnableMetrics {
		attrs := metric.WithAttributes(cfg.MetricAttributes...)
		switch s.operation {
		case "packstream.pack":
			in.packDuration.Record(context.Background(), duration.Seconds(), attrs)
			if err != nil {
				in.packErrors.Add(context.Background(), 1, attrs)
			} else {
				in.packCount.Add(context.Background(), 1, attrs)
			}
		case "packstream.unpack":
			in.unpackDuration.Record(context.Background(), duration.Seconds(), attrs)
			if err != nil {
				in.unpackErrors.Add(context.Background(), 1, attrs)
			} else {
				in.unpackCount.Add(context.Background(), 1, attrs)
			}
		}
	}

	if cfg.EnableTracing && s.span != nil {
		s.span.SetAttributes(attribute.Float64("duration_ms", float64(duration.Nanoseconds())/1e6))
		if err != nil {
			s.span.RecordError(err)
			s.span.SetStatus(codes.Error, err.Error())
		} else {
			s.span.SetStatus(codes.Ok, "")
		}
		s.span.End()
	}
}

// RecordConnectionEvent records connection lifecycle metrics:
// "connect", "disconnect", or "handshake".
func (in *Instruments) RecordConnectionEvent(eventType string, cfg *Config, err error) {
	if cfg == nil || !cfg.EnableMetrics {
		return
	}
	attrs := metric.WithAttributes(cfg.MetricAttributes...)
	switch eventType {
	case "connect":
		if err != nil {
			in.connectionErrors.Add(context.Background(), 1, attrs)
		} else {
			in.connectionCount.Add(context.Background(), 1, attrs)
		}
	case "disconnect":
		in.connectionCount.Add(context.Background(), -1, attrs)
	case "handshake":
		statusAttr := attribute.String("handshake.status", "success")
		if err != nil {
			statusAttr = attribute.String("handshake.status", "failure")
		}
		in.handshakeCount.Add(context.Background(), 1, metric.WithAttributes(append(cfg.MetricAttributes, statusAttr)...))
	}
}
