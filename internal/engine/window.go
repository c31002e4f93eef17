package engine

import (
	"sync"
	"time"
)

// pricePoint is one valid tick sample in the rolling price window.
type pricePoint struct {
	Price  float64
	Volume int64
	Ts     time.Time
}

// window holds the bounded rolling price/volume history plus session stats.
// Writers are the tick ingest path; readers are the indicator snapshot taken
// during signal generation. A single mutex covers both rings and the session
// scalars since every critical section is O(1).
type window struct {
	mu      sync.Mutex
	prices  *ring[pricePoint]
	volumes *ring[int64]

	sessionOpen float64
	sessionHigh float64
	sessionLow  float64
	sessionSet  bool
}

func newWindow(capacity int) *window {
	return &window{
		prices:  newRing[pricePoint](capacity),
		volumes: newRing[int64](capacity),
	}
}

// Append records a valid (price > 0) tick and extends session stats.
func (w *window) Append(price float64, volume int64, ts time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.prices.Push(pricePoint{Price: price, Volume: volume, Ts: ts})
	w.volumes.Push(volume)

	if !w.sessionSet {
		w.sessionOpen = price
		w.sessionHigh = price
		w.sessionLow = price
		w.sessionSet = true
		return
	}
	if price > w.sessionHigh {
		w.sessionHigh = price
	}
	if price < w.sessionLow {
		w.sessionLow = price
	}
}

func (w *window) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.prices.Len()
}

// snapshot copies out the full price and volume history plus session stats so
// indicators can run without holding the window lock.
func (w *window) snapshot() (prices []float64, volumes []int64, high, low float64) {
	w.mu.Lock()
	defer w.mu.Unlock()

	pts := w.prices.Tail(w.prices.Len())
	prices = make([]float64, len(pts))
	for i, p := range pts {
		prices[i] = p.Price
	}
	volumes = w.volumes.Tail(w.volumes.Len())
	return prices, volumes, w.sessionHigh, w.sessionLow
}
