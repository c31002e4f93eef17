package engine

import (
	"sync"

	drepo "TickPulse/internal/domain/repository"
	applogger "TickPulse/pkg/logger"
)

// Registry maps symbols to their engines, creating them lazily. Engines never
// share state; each symbol gets its own windows and confirmation machine.
type Registry struct {
	mu      sync.RWMutex
	engines map[string]*Engine
	log     *applogger.Logger
	metrics drepo.Metrics
}

func NewRegistry(log *applogger.Logger, metrics drepo.Metrics) *Registry {
	return &Registry{
		engines: make(map[string]*Engine),
		log:     log,
		metrics: metrics,
	}
}

// Get returns the engine for symbol, creating it on first use.
func (r *Registry) Get(symbol string) *Engine {
	r.mu.RLock()
	e, ok := r.engines[symbol]
	r.mu.RUnlock()
	if ok {
		return e
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok = r.engines[symbol]; ok {
		return e
	}
	e = New(symbol, r.log, r.metrics)
	r.engines[symbol] = e
	return e
}

// Lookup returns the engine for symbol without creating one.
func (r *Registry) Lookup(symbol string) (*Engine, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.engines[symbol]
	return e, ok
}

// Symbols lists the symbols with live engines.
func (r *Registry) Symbols() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.engines))
	for s := range r.engines {
		out = append(out, s)
	}
	return out
}

// All returns every live engine.
func (r *Registry) All() []*Engine {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Engine, 0, len(r.engines))
	for _, e := range r.engines {
		out = append(out, e)
	}
	return out
}
