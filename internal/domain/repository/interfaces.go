package repository

import (
	"context"
	"time"

	"TickPulse/internal/domain/models"
)

// MarketStream is the brokerage tick stream boundary. Reconnect timing is the
// stream's own concern; the signal core only consumes ticks.
type MarketStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.RawTick, <-chan error)
	Books() <-chan *models.OrderBook
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// SignalSink publishes emitted signals to downstream consumers.
type SignalSink interface {
	Publish(ctx context.Context, s *models.Signal) error
	Close() error
}

// SignalStore persists emitted signals and serves recent history.
type SignalStore interface {
	Store(ctx context.Context, s *models.Signal) error
	Recent(ctx context.Context, symbol string, from, to time.Time, limit int) ([]*models.Signal, error)
	Health(ctx context.Context) error
	Close() error
}

// OrderPlacer is the brokerage order placement boundary. Only exit orders
// flow through it here; a fill arms the engine cooldown.
type OrderPlacer interface {
	Place(ctx context.Context, req *models.OrderRequest) (*models.OrderResult, error)
}

// Metrics records operational counters for the bridge.
type Metrics interface {
	RecordTickIngested(symbol string)
	RecordTickDropped(symbol, reason string)
	RecordSignal(symbol, direction string)
	RecordLastPrice(symbol string, price float64)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
