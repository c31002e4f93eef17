package usecase

import (
	"context"
	"testing"

	"TickPulse/internal/engine"
	applogger "TickPulse/pkg/logger"
)

type nopMetrics struct{}

func (nopMetrics) RecordTickIngested(string)        {}
func (nopMetrics) RecordTickDropped(string, string) {}
func (nopMetrics) RecordSignal(string, string)      {}
func (nopMetrics) RecordLastPrice(string, float64)  {}
func (nopMetrics) RecordError(string)               {}
func (nopMetrics) RecordLatency(string, float64)    {}

func testLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

func TestTickReplayHandle(t *testing.T) {
	reg := engine.NewRegistry(testLogger(t), nopMetrics{})
	h := NewTickReplayHandler("ticks.replay", reg, nopMetrics{}, testLogger(t))

	if h.Topic() != "ticks.replay" {
		t.Fatalf("topic = %q", h.Topic())
	}

	msg := []byte(`{"symbol":"MNQ","close":123.45,"volume":10,"datetime":1756200000000}`)
	if err := h.Handle(context.Background(), msg); err != nil {
		t.Fatalf("handle: %v", err)
	}

	eng, ok := reg.Lookup("MNQ")
	if !ok {
		t.Fatalf("engine not created for replayed symbol")
	}
	if eng.WindowSize() != 1 {
		t.Fatalf("window size = %d, want 1", eng.WindowSize())
	}
}

func TestTickReplayPoisonMessages(t *testing.T) {
	reg := engine.NewRegistry(testLogger(t), nopMetrics{})
	h := NewTickReplayHandler("ticks.replay", reg, nopMetrics{}, testLogger(t))

	// unparseable and symbol-less payloads must be swallowed, not retried
	if err := h.Handle(context.Background(), []byte(`not json`)); err != nil {
		t.Fatalf("unparseable payload returned error: %v", err)
	}
	if err := h.Handle(context.Background(), []byte(`{"close":1.0,"volume":1}`)); err != nil {
		t.Fatalf("symbol-less payload returned error: %v", err)
	}
	if len(reg.Symbols()) != 0 {
		t.Fatalf("engines created for poison messages: %v", reg.Symbols())
	}
}
