package usecase

import (
	"context"
	"encoding/json"
	"time"

	"TickPulse/internal/domain/models"
	drepo "TickPulse/internal/domain/repository"
	dservice "TickPulse/internal/domain/service"
	"TickPulse/internal/engine"
	"TickPulse/internal/service/cache"
	applogger "TickPulse/pkg/logger"
)

// actionableConfidence is the floor below which a gated signal is published
// but never forwarded to the risk oracle.
const actionableConfidence = 0.70

// SignalPoller drives signal generation on a fixed cadence. Each cycle it
// generates a fresh signal per live engine, fans it out to the sink and the
// store, mirrors the latest snapshot into the cache, and routes actionable
// outcomes through risk assessment and exit handling.
type SignalPoller struct {
	registry     *engine.Registry
	sink         drepo.SignalSink
	store        drepo.SignalStore
	oracle       dservice.RiskOracle
	orders       drepo.OrderPlacer
	latestCache  cache.BytesCache
	metrics      drepo.Metrics
	log          *applogger.Logger
	interval     time.Duration
	exitQuantity int
}

type SignalPollerParams struct {
	Registry     *engine.Registry
	Sink         drepo.SignalSink
	Store        drepo.SignalStore
	Oracle       dservice.RiskOracle
	Orders       drepo.OrderPlacer
	LatestCache  cache.BytesCache
	Metrics      drepo.Metrics
	Log          *applogger.Logger
	Interval     time.Duration
	ExitQuantity int
}

func NewSignalPoller(p SignalPollerParams) *SignalPoller {
	if p.Interval <= 0 {
		p.Interval = 30 * time.Second
	}
	if p.ExitQuantity <= 0 {
		p.ExitQuantity = 1
	}
	return &SignalPoller{
		registry:     p.Registry,
		sink:         p.Sink,
		store:        p.Store,
		oracle:       p.Oracle,
		orders:       p.Orders,
		latestCache:  p.LatestCache,
		metrics:      p.Metrics,
		log:          p.Log,
		interval:     p.Interval,
		exitQuantity: p.ExitQuantity,
	}
}

// Run polls until ctx is cancelled. One slow symbol never blocks the next
// cycle for the others; each engine is processed independently.
func (p *SignalPoller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.pollOnce(ctx)
		}
	}
}

func (p *SignalPoller) pollOnce(ctx context.Context) {
	start := time.Now()
	for _, eng := range p.registry.All() {
		p.process(ctx, eng)
	}
	p.metrics.RecordLatency("poll_cycle", time.Since(start).Seconds())
}

func (p *SignalPoller) process(ctx context.Context, eng *engine.Engine) {
	sig := eng.Generate()

	if err := p.sink.Publish(ctx, sig); err != nil {
		p.log.Error("signal publish failed", applogger.String("symbol", sig.Symbol), applogger.Error(err))
		p.metrics.RecordError("sink_publish")
	}
	if err := p.store.Store(ctx, sig); err != nil {
		p.log.Error("signal store failed", applogger.String("symbol", sig.Symbol), applogger.Error(err))
		p.metrics.RecordError("store_write")
	}
	p.mirrorLatest(sig)

	if sig.ExitSignal {
		p.handleExit(ctx, eng, sig)
	}

	if sig.Actionable() && sig.Confidence >= actionableConfidence {
		p.assess(ctx, sig)
	}
}

func (p *SignalPoller) mirrorLatest(sig *models.Signal) {
	b, err := json.Marshal(sig)
	if err != nil {
		return
	}
	if err := p.latestCache.SetBytes("signal:latest:"+sig.Symbol, b, 2*p.interval); err != nil {
		p.log.Warn("latest mirror failed", applogger.String("symbol", sig.Symbol), applogger.Error(err))
	}
}

// handleExit closes the remembered position and arms the cooldown only after
// the order actually fills.
func (p *SignalPoller) handleExit(ctx context.Context, eng *engine.Engine, sig *models.Signal) {
	action := "SELL"
	if sig.Momentum3Min > 0 {
		// exit on upward reversal means a short is being covered
		action = "BUY"
	}

	res, err := p.orders.Place(ctx, &models.OrderRequest{
		Action:   action,
		Quantity: p.exitQuantity,
		Price:    sig.CurrentPrice,
	})
	if err != nil {
		p.log.Error("exit order failed", applogger.String("symbol", sig.Symbol), applogger.Error(err))
		p.metrics.RecordError("exit_order")
		return
	}
	if res.Status != "filled" {
		p.log.Warn("exit order not filled",
			applogger.String("symbol", sig.Symbol),
			applogger.String("status", res.Status))
		return
	}

	eng.SetExitCooldown()
	p.log.Info("exit filled, cooldown armed",
		applogger.String("symbol", sig.Symbol),
		applogger.String("order_id", res.OrderID),
		applogger.String("mode", res.Mode))
}

func (p *SignalPoller) assess(ctx context.Context, sig *models.Signal) {
	verdict, err := p.oracle.Assess(ctx, &models.TradeProposal{
		Symbol:     sig.Symbol,
		Direction:  sig.Direction,
		Price:      sig.CurrentPrice,
		Confidence: sig.Confidence,
		Momentum:   sig.Momentum3Min,
		RSI:        sig.RSI,
		Timestamp:  sig.Timestamp,
	})
	if err != nil {
		p.log.Warn("risk assessment failed", applogger.String("symbol", sig.Symbol), applogger.Error(err))
		p.metrics.RecordError("risk_assess")
		return
	}
	if verdict.Veto {
		p.log.Info("signal vetoed",
			applogger.String("symbol", sig.Symbol),
			applogger.String("direction", string(sig.Direction)),
			applogger.String("reason", verdict.Reason),
			applogger.Float64("score", verdict.Score))
		return
	}
	p.log.Info("signal cleared risk",
		applogger.String("symbol", sig.Symbol),
		applogger.String("direction", string(sig.Direction)),
		applogger.Float64("confidence", sig.Confidence),
		applogger.Float64("score", verdict.Score))
}
