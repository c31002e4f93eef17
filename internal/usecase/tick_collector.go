package usecase

import (
	"context"
	"time"

	"TickPulse/internal/engine"

	drepo "TickPulse/internal/domain/repository"
	applogger "TickPulse/pkg/logger"
)

// TickCollector bridges the brokerage stream into per-symbol engines. It owns
// the reconnect loop; a dead read channel triggers Reconnect and a fresh Read.
type TickCollector struct {
	stream   drepo.MarketStream
	registry *engine.Registry
	metrics  drepo.Metrics
	log      *applogger.Logger
}

func NewTickCollector(stream drepo.MarketStream, registry *engine.Registry, metrics drepo.Metrics, log *applogger.Logger) *TickCollector {
	return &TickCollector{
		stream:   stream,
		registry: registry,
		metrics:  metrics,
		log:      log,
	}
}

// Run consumes the stream until ctx is cancelled. Connect and Subscribe must
// have succeeded once before Run starts; later failures are retried here.
func (c *TickCollector) Run(ctx context.Context) error {
	books := c.stream.Books()
	for {
		ticks, errs := c.stream.Read(ctx)

	consume:
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case book := <-books:
				if book != nil && book.Symbol != "" {
					c.registry.Get(book.Symbol).UpdateBook(book)
				}
			case raw, ok := <-ticks:
				if !ok {
					break consume
				}
				if raw == nil || raw.Symbol == "" {
					c.metrics.RecordTickDropped("unknown", "malformed")
					continue
				}
				c.registry.Get(raw.Symbol).OnTick("broker", raw)
			case err, ok := <-errs:
				if !ok {
					break consume
				}
				if err != nil {
					c.log.Warn("stream error", applogger.Error(err))
					c.metrics.RecordError("stream_read")
				}
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		c.log.Info("reconnecting broker stream")
		if err := c.stream.Reconnect(ctx); err != nil {
			c.log.Error("reconnect failed", applogger.Error(err))
			c.metrics.RecordError("stream_reconnect")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(5 * time.Second):
			}
		}
	}
}
