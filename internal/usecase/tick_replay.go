package usecase

import (
	"context"
	"encoding/json"

	"TickPulse/internal/domain/models"
	drepo "TickPulse/internal/domain/repository"
	"TickPulse/internal/engine"
	applogger "TickPulse/pkg/logger"
)

// TickReplayHandler replays recorded ticks from a Kafka topic into the
// engines. Replayed prints flow through the same ingest boundary as live
// ones, so warmup and dedup-by-drop behave identically.
type TickReplayHandler struct {
	topic    string
	registry *engine.Registry
	metrics  drepo.Metrics
	log      *applogger.Logger
}

func NewTickReplayHandler(topic string, registry *engine.Registry, metrics drepo.Metrics, log *applogger.Logger) *TickReplayHandler {
	return &TickReplayHandler{
		topic:    topic,
		registry: registry,
		metrics:  metrics,
		log:      log,
	}
}

func (h *TickReplayHandler) Topic() string { return h.topic }

func (h *TickReplayHandler) Handle(_ context.Context, data []byte) error {
	var raw models.RawTick
	if err := json.Unmarshal(data, &raw); err != nil {
		// poison message, retrying cannot help
		h.metrics.RecordTickDropped("unknown", "replay_unparseable")
		h.log.Warn("unparseable replay tick", applogger.Error(err))
		return nil
	}
	if raw.Symbol == "" {
		h.metrics.RecordTickDropped("unknown", "malformed")
		return nil
	}
	h.registry.Get(raw.Symbol).OnTick("replay", &raw)
	return nil
}
