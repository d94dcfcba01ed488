package telemetry

import (
	"context"
	"errors"
	"testing"
)

func TestStartFinishPack(t *testing.T) {
	in := New()
	cfg := DefaultConfig()
	ctx, span := in.StartPack(context.Background(), cfg)
	if ctx == nil {
		t.Fatal("expected non-nil context")
	}
	in.Finish(span, cfg, nil)
}

func TestFinishRecordsError(t *testing.T) {
	in := New()
	cfg := DefaultConfig()
	_, span := in.StartUnpack(context.Background(), cfg)
	in.Finish(span, cfg, errors.New("boom"))
}

func TestRecordConnectionEvent(t *testing.T) {
	in := New()
	cfg := DefaultConfig()
	in.RecordConnectionEvent("connect", cfg, nil)
	in.RecordConnectionEvent("disconnect", cfg, nil)
	in.RecordConnectionEvent("handshake", cfg, errors.New("auth failed"))
}

func TestDisabledConfigSkipsInstrumentation(t *testing.T) {
	in := New()
	cfg := &Config{EnableTracing: false, EnableMetrics: false}
	ctx, span := in.StartPack(context.Background(), cfg)
	if ctx == nil {
		t.Fatal("expected non-nil context even with tracing disabled")
	}
	in.Finish(span, cfg, nil)
}
