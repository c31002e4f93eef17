package engine

import (
	"testing"
	"time"

	"TickPulse/internal/domain/models"
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

func newTestEngine(t *testing.T, now time.Time) *Engine {
	t.Helper()
	e := New("MNQ", testLogger(t), nopMetrics{})
	e.nowFn = func() time.Time { return now }
	return e
}

func feed(e *Engine, price float64, volume int64, ts time.Time) {
	p, v, ms := price, volume, ts.UnixMilli()
	e.OnTick("test", &models.RawTick{Symbol: "MNQ", Close: &p, Volume: &v, Datetime: &ms})
}

// risingSeries feeds count ticks that alternate +0.2/-0.15 so the trend is up
// while RSI stays well below the overbought cutoff. The final 30 ticks carry
// a volume surge.
func risingSeries(e *Engine, count int, base time.Time) float64 {
	price := 100.0
	for i := 0; i < count; i++ {
		if i > 0 {
			if i%2 == 1 {
				price += 0.2
			} else {
				price -= 0.15
			}
		}
		vol := int64(100)
		if i >= count-30 {
			vol = 1000
		}
		feed(e, price, vol, base.Add(time.Duration(i)*time.Second))
	}
	return price
}

func TestWarmupSignal(t *testing.T) {
	now := time.Date(2026, 8, 1, 14, 0, 0, 0, time.UTC)
	e := newTestEngine(t, now)

	base := now.Add(-5 * time.Minute)
	for i := 0; i < warmupSamples-1; i++ {
		feed(e, 100.0+float64(i)*0.01, 100, base.Add(time.Duration(i)*time.Second))
	}

	s := e.Generate()
	if s.Direction != models.Neutral || s.RawDirection != models.Neutral {
		t.Fatalf("warmup direction = %s/%s, want NEUTRAL", s.Direction, s.RawDirection)
	}
	if s.Reason != "insufficient data" {
		t.Fatalf("warmup reason = %q", s.Reason)
	}
	if s.Confidence != 0 {
		t.Fatalf("warmup confidence = %v, want 0", s.Confidence)
	}
	if s.RSI != 50.0 || s.VolumeRatio != 1.0 {
		t.Fatalf("warmup rsi=%v volRatio=%v, want 50/1", s.RSI, s.VolumeRatio)
	}
	if s.CurrentPrice == 0 {
		t.Fatalf("warmup should still report last price")
	}

	// one more tick crosses the warmup boundary
	feed(e, 101.2, 100, base.Add(time.Duration(warmupSamples)*time.Second))
	s = e.Generate()
	if s.Reason == "insufficient data" {
		t.Fatalf("engine still warming up at %d samples", e.WindowSize())
	}
}

func TestMalformedTicksDropped(t *testing.T) {
	now := time.Date(2026, 8, 1, 14, 0, 0, 0, time.UTC)
	e := newTestEngine(t, now)

	e.OnTick("test", nil)
	price := 100.0
	e.OnTick("test", &models.RawTick{Symbol: "MNQ", Close: &price}) // nil volume
	vol := int64(10)
	e.OnTick("test", &models.RawTick{Symbol: "MNQ", Volume: &vol}) // nil price
	bad := -1.0
	e.OnTick("test", &models.RawTick{Symbol: "MNQ", Close: &bad, Volume: &vol})
	zero := 0.0
	e.OnTick("test", &models.RawTick{Symbol: "MNQ", Close: &zero, Volume: &vol})

	if e.WindowSize() != 0 {
		t.Fatalf("window size = %d after invalid ticks, want 0", e.WindowSize())
	}

	// negative volume is clamped, not dropped
	negVol := int64(-5)
	e.OnTick("test", &models.RawTick{Symbol: "MNQ", Close: &price, Volume: &negVol})
	if e.WindowSize() != 1 {
		t.Fatalf("window size = %d, want 1", e.WindowSize())
	}
	q := e.Quotes(1)
	if len(q) != 1 || q[0].Volume != 0 {
		t.Fatalf("negative volume not clamped: %+v", q)
	}
}

func TestConfirmationGateAndConfidence(t *testing.T) {
	now := time.Date(2026, 8, 1, 14, 0, 0, 0, time.UTC)
	e := newTestEngine(t, now)
	risingSeries(e, 150, now.Add(-3*time.Minute))

	s1 := e.Generate()
	if s1.RawDirection != models.Long {
		t.Fatalf("raw direction = %s, want LONG (m3=%v m5=%v m10=%v rsi=%v)",
			s1.RawDirection, s1.Momentum3Min, s1.Momentum5Min, s1.Momentum10Min, s1.RSI)
	}
	if s1.Direction != models.Neutral {
		t.Fatalf("first read emitted %s before confirmation", s1.Direction)
	}
	if s1.Confidence != watchingConfidence {
		t.Fatalf("unconfirmed confidence = %v, want %v", s1.Confidence, watchingConfidence)
	}
	if s1.ConsecutiveSignals != 1 {
		t.Fatalf("consecutive = %d, want 1", s1.ConsecutiveSignals)
	}

	s2 := e.Generate()
	if s2.ConsecutiveSignals != 2 || s2.Direction != models.Neutral {
		t.Fatalf("second read: consecutive=%d direction=%s", s2.ConsecutiveSignals, s2.Direction)
	}

	s3 := e.Generate()
	if s3.ConsecutiveSignals != 3 {
		t.Fatalf("third read consecutive = %d, want 3", s3.ConsecutiveSignals)
	}
	if s3.Direction != models.Long {
		t.Fatalf("gate did not open: direction=%s volRatio=%v", s3.Direction, s3.VolumeRatio)
	}
	if s3.Confidence <= baseConfidence || s3.Confidence > maxConfidence {
		t.Fatalf("gated confidence = %v, want (%v, %v]", s3.Confidence, baseConfidence, maxConfidence)
	}
	if s3.VolumeRatio <= volumeSurgeGate {
		t.Fatalf("volume ratio = %v, expected surge above %v", s3.VolumeRatio, volumeSurgeGate)
	}
}

func TestConfirmationResetOnDirectionChange(t *testing.T) {
	now := time.Date(2026, 8, 1, 14, 0, 0, 0, time.UTC)
	e := newTestEngine(t, now)
	last := risingSeries(e, 150, now.Add(-3*time.Minute))

	e.Generate()
	s := e.Generate()
	if s.ConsecutiveSignals != 2 {
		t.Fatalf("consecutive = %d, want 2", s.ConsecutiveSignals)
	}

	// flatten momentum so the raw read goes neutral
	base := now
	for i := 0; i < 200; i++ {
		feed(e, last, 100, base.Add(time.Duration(i)*time.Second))
	}
	s = e.Generate()
	if s.RawDirection != models.Neutral {
		t.Fatalf("raw direction = %s after flat tape, want NEUTRAL", s.RawDirection)
	}
	if s.ConsecutiveSignals != 0 {
		t.Fatalf("consecutive = %d after neutral read, want 0", s.ConsecutiveSignals)
	}
}

func TestCooldownBlocksEmission(t *testing.T) {
	now := time.Date(2026, 8, 1, 14, 0, 0, 0, time.UTC)
	current := now
	e := New("MNQ", testLogger(t), nopMetrics{})
	e.nowFn = func() time.Time { return current }

	risingSeries(e, 150, now.Add(-3*time.Minute))
	e.Generate()
	e.Generate()
	s := e.Generate()
	if s.Direction != models.Long {
		t.Fatalf("setup failed: direction=%s", s.Direction)
	}

	e.SetExitCooldown()
	s = e.Generate()
	if !s.InCooldown {
		t.Fatalf("not in cooldown immediately after exit")
	}
	if s.Direction != models.Neutral || s.Confidence != 0 {
		t.Fatalf("cooldown emission: direction=%s confidence=%v, want NEUTRAL/0", s.Direction, s.Confidence)
	}
	firstRemaining := s.CooldownRemaining
	if firstRemaining <= 0 || firstRemaining > int(cooldownPeriod.Seconds()) {
		t.Fatalf("cooldown remaining = %d", firstRemaining)
	}

	current = current.Add(60 * time.Second)
	s = e.Generate()
	if !s.InCooldown || s.CooldownRemaining >= firstRemaining {
		t.Fatalf("cooldown remaining did not decrease: %d -> %d", firstRemaining, s.CooldownRemaining)
	}

	current = current.Add(cooldownPeriod)
	s = e.Generate()
	if s.InCooldown || s.CooldownRemaining != 0 {
		t.Fatalf("cooldown did not expire: %+v", s)
	}
}

func TestExitSignalAfterConfirmedLong(t *testing.T) {
	now := time.Date(2026, 8, 1, 14, 0, 0, 0, time.UTC)
	e := newTestEngine(t, now)
	last := risingSeries(e, 150, now.Add(-3*time.Minute))

	e.Generate()
	e.Generate()
	s := e.Generate()
	if s.Direction != models.Long || s.Confidence < positionConfidence {
		t.Fatalf("setup failed: direction=%s confidence=%v", s.Direction, s.Confidence)
	}

	// sharp reversal
	base := now
	price := last
	for i := 0; i < 150; i++ {
		price -= 0.06
		feed(e, price, 100, base.Add(time.Duration(i)*time.Second))
	}
	s = e.Generate()
	if !s.ExitSignal {
		t.Fatalf("no exit flagged on reversal (m3=%v m5=%v)", s.Momentum3Min, s.Momentum5Min)
	}
}

func TestNoExitWithoutConfirmedPosition(t *testing.T) {
	now := time.Date(2026, 8, 1, 14, 0, 0, 0, time.UTC)
	e := newTestEngine(t, now)

	// straight decline, never a confirmed entry
	price := 100.0
	base := now.Add(-3 * time.Minute)
	for i := 0; i < 150; i++ {
		price -= 0.06
		feed(e, price, 100, base.Add(time.Duration(i)*time.Second))
	}
	s := e.Generate()
	if s.ExitSignal {
		t.Fatalf("exit flagged with no remembered position")
	}
}

// The position memory updates only at confidence >= 0.70 while the emission
// gate has no confidence floor of its own; the two thresholds are deliberately
// decoupled. An emission that never clears the floor leaves the remembered
// position stale, so a later reversal raises no exit.
func TestPositionMemoryConfidenceFloor(t *testing.T) {
	now := time.Date(2026, 8, 1, 14, 0, 0, 0, time.UTC)
	e := newTestEngine(t, now)

	// sharp decline: a reversal against any remembered LONG
	price := 100.0
	base := now.Add(-3 * time.Minute)
	for i := 0; i < 150; i++ {
		price -= 0.06
		feed(e, price, 100, base.Add(time.Duration(i)*time.Second))
	}

	e.rememberPosition(models.Long, positionConfidence-0.04)
	if e.lastDirection != models.Neutral {
		t.Fatalf("lastDirection = %s below the floor, want NEUTRAL", e.lastDirection)
	}
	s := e.Generate()
	if s.Momentum3Min >= -exitThreshold {
		t.Fatalf("setup: m3 = %v, want below -%v", s.Momentum3Min, exitThreshold)
	}
	if s.ExitSignal {
		t.Fatalf("exit flagged though the position memory never cleared the floor")
	}

	// at the floor the direction sticks and the same tape flags the exit
	e.rememberPosition(models.Long, positionConfidence)
	if e.lastDirection != models.Long {
		t.Fatalf("lastDirection = %s at the floor, want LONG", e.lastDirection)
	}
	s = e.Generate()
	if !s.ExitSignal {
		t.Fatalf("no exit after position remembered (m3=%v m5=%v)", s.Momentum3Min, s.Momentum5Min)
	}

	// neutral never becomes a position regardless of confidence
	e.lastDirection = models.Neutral
	e.rememberPosition(models.Neutral, maxConfidence)
	if e.lastDirection != models.Neutral {
		t.Fatalf("neutral emission remembered as a position")
	}
}

func TestGenerationIsDeterministic(t *testing.T) {
	now := time.Date(2026, 8, 1, 14, 0, 0, 0, time.UTC)
	a := newTestEngine(t, now)
	b := newTestEngine(t, now)

	risingSeries(a, 150, now.Add(-3*time.Minute))
	risingSeries(b, 150, now.Add(-3*time.Minute))

	for i := 0; i < 3; i++ {
		sa := a.Generate()
		sb := b.Generate()
		if *sa != *sb {
			t.Fatalf("divergent signals at read %d:\n%+v\n%+v", i, sa, sb)
		}
	}
}

func TestLatestSnapshot(t *testing.T) {
	now := time.Date(2026, 8, 1, 14, 0, 0, 0, time.UTC)
	e := newTestEngine(t, now)

	if e.Latest() != nil {
		t.Fatalf("latest non-nil before first generation")
	}
	s := e.Generate()
	if e.Latest() != s {
		t.Fatalf("latest does not match generated signal")
	}
}

func TestSessionHighLow(t *testing.T) {
	now := time.Date(2026, 8, 1, 14, 0, 0, 0, time.UTC)
	e := newTestEngine(t, now)

	feed(e, 100, 10, now)
	feed(e, 105, 10, now.Add(time.Second))
	feed(e, 98, 10, now.Add(2*time.Second))
	feed(e, 101, 10, now.Add(3*time.Second))

	s := e.Generate()
	if s.SessionHigh != 105 || s.SessionLow != 98 {
		t.Fatalf("session high/low = %v/%v, want 105/98", s.SessionHigh, s.SessionLow)
	}
}

func TestWindowEviction(t *testing.T) {
	now := time.Date(2026, 8, 1, 14, 0, 0, 0, time.UTC)
	e := newTestEngine(t, now)

	for i := 0; i < windowCapacity+50; i++ {
		feed(e, 100.0+float64(i)*0.001, 10, now.Add(time.Duration(i)*time.Second))
	}
	if e.WindowSize() != windowCapacity {
		t.Fatalf("window size = %d, want %d", e.WindowSize(), windowCapacity)
	}
}

func TestBookSnapshot(t *testing.T) {
	now := time.Date(2026, 8, 1, 14, 0, 0, 0, time.UTC)
	e := newTestEngine(t, now)

	if e.Book() != nil {
		t.Fatalf("book non-nil before first update")
	}

	levels := make([]models.BookLevel, 8)
	for i := range levels {
		levels[i] = models.BookLevel{Price: 100 - float64(i), Size: 10}
	}
	e.UpdateBook(&models.OrderBook{Symbol: "MNQ", Bids: levels, Asks: levels, Timestamp: now})

	b := e.Book()
	if b == nil {
		t.Fatalf("book nil after update")
	}
	if len(b.Bids) != bookDepth || len(b.Asks) != bookDepth {
		t.Fatalf("book not trimmed to depth: bids=%d asks=%d", len(b.Bids), len(b.Asks))
	}
}
