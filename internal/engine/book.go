package engine

import (
	"sync"

	"TickPulse/internal/domain/models"
)

// quoteBuffer is the bounded streaming-quote history read by HTTP pollers.
type quoteBuffer struct {
	mu   sync.Mutex
	ring *ring[models.Quote]
}

func newQuoteBuffer(capacity int) *quoteBuffer {
	return &quoteBuffer{ring: newRing[models.Quote](capacity)}
}

func (q *quoteBuffer) Append(quote models.Quote) {
	q.mu.Lock()
	q.ring.Push(quote)
	q.mu.Unlock()
}

func (q *quoteBuffer) Tail(n int) []models.Quote {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.ring.Tail(n)
}

// bookState holds the latest depth snapshot. Each update replaces the whole
// book; levels are never merged.
type bookState struct {
	mu   sync.RWMutex
	book *models.OrderBook
}

func (b *bookState) Set(book *models.OrderBook, depth int) {
	if book == nil {
		return
	}
	trimmed := *book
	if len(trimmed.Bids) > depth {
		trimmed.Bids = trimmed.Bids[:depth]
	}
	if len(trimmed.Asks) > depth {
		trimmed.Asks = trimmed.Asks[:depth]
	}
	b.mu.Lock()
	b.book = &trimmed
	b.mu.Unlock()
}

func (b *bookState) Snapshot() *models.OrderBook {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.book
}
