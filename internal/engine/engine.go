package engine

import (
	"math"
	"sync"
	"time"

	"TickPulse/internal/domain/models"
	drepo "TickPulse/internal/domain/repository"
	applogger "TickPulse/pkg/logger"
)

// Fixed strategy parameters. One tick is assumed to be ~1 second of wall
// time, so lookbacks are expressed directly in sample counts.
const (
	windowCapacity = 600
	quoteCapacity  = 100
	bookDepth      = 5

	warmupSamples = 120

	momentum3MinLookback  = 180
	momentum5MinLookback  = 300
	momentum10MinLookback = 600

	rsiPeriod         = 60
	volumeShortWindow = 30
	volumeLongWindow  = 60

	entryThreshold = 0.05 // percent momentum to open
	exitThreshold  = 0.06 // percent momentum to flag an exit

	confirmationsRequired  = 3
	confirmationHistoryCap = 6
	volumeSurgeGate        = 1.5

	cooldownPeriod = 180 * time.Second

	watchingConfidence  = 0.3
	baseConfidence      = 0.4
	maxConfidence       = 0.95
	positionConfidence  = 0.70 // floor for remembering a confirmed direction
	strongMomentumLevel = 0.08
)

// Engine is a per-symbol momentum signal engine. Tick ingest, signal
// generation and snapshot reads may all run on different goroutines; each
// shared structure carries its own lock and the confirmation state machine is
// serialized by mu.
type Engine struct {
	symbol  string
	log     *applogger.Logger
	metrics drepo.Metrics

	window *window
	quotes *quoteBuffer
	book   *bookState

	mu               sync.Mutex // confirmation state + cooldown
	consecutiveCount int
	lastSignalDir    models.Direction
	lastTradeTime    time.Time
	confirmHistory   *ring[models.Direction]
	lastDirection    models.Direction // last direction confirmed at >= positionConfidence

	latestMu sync.RWMutex
	latest   *models.Signal

	nowFn func() time.Time
}

// New creates an engine for one symbol. Multi-symbol deployments run one
// engine per symbol; no state is shared between instances.
func New(symbol string, log *applogger.Logger, metrics drepo.Metrics) *Engine {
	return &Engine{
		symbol:         symbol,
		log:            log,
		metrics:        metrics,
		window:         newWindow(windowCapacity),
		quotes:         newQuoteBuffer(quoteCapacity),
		book:           &bookState{},
		lastSignalDir:  models.Neutral,
		lastDirection:  models.Neutral,
		confirmHistory: newRing[models.Direction](confirmationHistoryCap),
		nowFn:          time.Now,
	}
}

func (e *Engine) Symbol() string { return e.symbol }

// OnTick ingests one streaming callback payload. Malformed or non-positive
// prints are dropped without touching rolling state, and no failure ever
// propagates back to the stream.
func (e *Engine) OnTick(exchangeID string, raw *models.RawTick) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("tick handler panic",
				applogger.String("symbol", e.symbol),
				applogger.String("exchange", exchangeID),
				applogger.Any("panic", r),
			)
			e.metrics.RecordError("tick_panic")
		}
	}()

	if raw == nil || raw.Close == nil || raw.Volume == nil {
		e.metrics.RecordTickDropped(e.symbol, "malformed")
		return
	}
	price := *raw.Close
	if price <= 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		e.metrics.RecordTickDropped(e.symbol, "nonpositive_price")
		return
	}
	volume := *raw.Volume
	if volume < 0 {
		volume = 0
	}
	ts := e.nowFn()
	if raw.Datetime != nil && *raw.Datetime > 0 {
		ts = time.UnixMilli(*raw.Datetime)
	}

	e.window.Append(price, volume, ts)
	e.quotes.Append(models.Quote{Symbol: e.symbol, Price: price, Volume: volume, Timestamp: ts})
	e.metrics.RecordTickIngested(e.symbol)
	e.metrics.RecordLastPrice(e.symbol, price)
}

// Generate runs the full indicator + confirmation pipeline and retains the
// output as the latest snapshot. It is the only mutation point of the
// confirmation state and is safe to call from concurrent pollers.
func (e *Engine) Generate() *models.Signal {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.nowFn()
	prices, volumes, high, low := e.window.snapshot()

	if len(prices) < warmupSamples {
		s := &models.Signal{
			Symbol:       e.symbol,
			Direction:    models.Neutral,
			RawDirection: models.Neutral,
			Reason:       "insufficient data",
			RSI:          50.0,
			VolumeRatio:  1.0,
			SessionHigh:  high,
			SessionLow:   low,
			Timestamp:    now,
		}
		if len(prices) > 0 {
			s.CurrentPrice = prices[len(prices)-1]
		}
		e.publish(s)
		return s
	}

	m3 := momentum(prices, momentum3MinLookback)
	m5 := momentum(prices, momentum5MinLookback)
	m10 := momentum(prices, momentum10MinLookback)
	rsiV := rsi(prices)
	volRatio := volumeRatio(volumes)

	rawDir := determineDirection(m3, m5, m10, rsiV)

	// Confirmation accumulation: a direction change always restarts the
	// count, never decrements it.
	e.confirmHistory.Push(rawDir)
	if rawDir == e.lastSignalDir && rawDir != models.Neutral {
		e.consecutiveCount++
	} else {
		if rawDir != models.Neutral {
			e.consecutiveCount = 1
		} else {
			e.consecutiveCount = 0
		}
		e.lastSignalDir = rawDir
	}

	inCooldown := false
	cooldownRemaining := 0
	if !e.lastTradeTime.IsZero() {
		elapsed := now.Sub(e.lastTradeTime)
		if elapsed < cooldownPeriod {
			inCooldown = true
			cooldownRemaining = int((cooldownPeriod - elapsed).Seconds())
		}
	}

	direction := rawDir
	confidence := 0.0
	gatePassed := rawDir != models.Neutral &&
		e.consecutiveCount >= confirmationsRequired &&
		!inCooldown &&
		volRatio > volumeSurgeGate

	if gatePassed {
		confidence = baseConfidence + math.Abs(m3)*8 + math.Abs(m5)*4
		if volRatio > volumeSurgeGate {
			confidence += 0.2
		}
		if math.Abs(m3) > strongMomentumLevel {
			confidence += 0.1
		}
		if confidence > maxConfidence {
			confidence = maxConfidence
		}
	} else {
		direction = models.Neutral
		if inCooldown {
			confidence = 0.0
		} else {
			confidence = watchingConfidence
		}
	}

	exit := e.checkExitSignal(m3, m5)

	e.rememberPosition(direction, confidence)

	s := &models.Signal{
		Symbol:             e.symbol,
		CurrentPrice:       prices[len(prices)-1],
		Direction:          direction,
		RawDirection:       rawDir,
		Confidence:         confidence,
		ExitSignal:         exit,
		Momentum3Min:       m3,
		Momentum5Min:       m5,
		Momentum10Min:      m10,
		VolumeRatio:        volRatio,
		RSI:                rsiV,
		ConsecutiveSignals: e.consecutiveCount,
		InCooldown:         inCooldown,
		CooldownRemaining:  cooldownRemaining,
		SessionHigh:        high,
		SessionLow:         low,
		Timestamp:          now,
	}
	e.publish(s)
	e.metrics.RecordSignal(e.symbol, string(direction))
	return s
}

// determineDirection is the raw, unconfirmed indicator read.
func determineDirection(m3, m5, m10, rsiV float64) models.Direction {
	if m3 > entryThreshold && m5 > 0.8*entryThreshold && m10 > 0 && rsiV < 70 {
		return models.Long
	}
	if m3 < -entryThreshold && m5 < -0.8*entryThreshold && m10 < 0 && rsiV > 30 {
		return models.Short
	}
	return models.Neutral
}

// rememberPosition records the direction the exit check later compares
// against. The floor here is positionConfidence, not the emission gate: an
// emitted direction that never clears the floor leaves lastDirection stale,
// and the exit check keeps watching the previously remembered position.
// Caller holds mu.
func (e *Engine) rememberPosition(direction models.Direction, confidence float64) {
	if direction == models.Neutral || confidence < positionConfidence {
		return
	}
	e.lastDirection = direction
}

// checkExitSignal is advisory only: momentum reversing against the last
// confirmed direction flags an exit but mutates nothing.
func (e *Engine) checkExitSignal(m3, m5 float64) bool {
	switch e.lastDirection {
	case models.Long:
		return m3 < -exitThreshold && m5 < -0.5*exitThreshold
	case models.Short:
		return m3 > exitThreshold && m5 > 0.5*exitThreshold
	}
	return false
}

// SetExitCooldown arms the post-trade quiet period. Called after an exit
// order actually fills; guarantees no re-entry signal on the next tick.
func (e *Engine) SetExitCooldown() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastTradeTime = e.nowFn()
	e.consecutiveCount = 0
	e.lastSignalDir = models.Neutral
}

// Latest returns the most recently generated signal, or nil before the first
// generation. The snapshot is complete; readers never observe a partially
// built output.
func (e *Engine) Latest() *models.Signal {
	e.latestMu.RLock()
	defer e.latestMu.RUnlock()
	return e.latest
}

func (e *Engine) publish(s *models.Signal) {
	e.latestMu.Lock()
	e.latest = s
	e.latestMu.Unlock()
}

// WindowSize reports how many valid samples the rolling window holds.
func (e *Engine) WindowSize() int { return e.window.Len() }

// Quotes returns up to n of the most recent streaming quotes.
func (e *Engine) Quotes(n int) []models.Quote { return e.quotes.Tail(n) }

// UpdateBook replaces the order book snapshot wholesale.
func (e *Engine) UpdateBook(b *models.OrderBook) { e.book.Set(b, bookDepth) }

// Book returns the current order book snapshot, or nil if none received yet.
func (e *Engine) Book() *models.OrderBook { return e.book.Snapshot() }
