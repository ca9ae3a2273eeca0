package cart

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/medimartid/medimart-gateway/pkg/logger"
)

const (
	// DefaultEngineTTL bounds how long an idle user's engine stays resident.
	DefaultEngineTTL = 30 * time.Minute

	sweepInterval = time.Minute
)

// Registry holds one engine per active user and evicts idle ones. Selection
// state is session-scoped, so eviction loses nothing the marketplace does not
// already hold.
type Registry struct {
	remote   RemoteCart
	notifier Notifier
	logg     *logger.Logger
	debounce time.Duration
	ttl      time.Duration

	mu      sync.Mutex
	engines map[uuid.UUID]*Engine
}

// NewRegistry builds an empty registry.
func NewRegistry(remote RemoteCart, notifier Notifier, logg *logger.Logger, debounce, ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = DefaultEngineTTL
	}
	return &Registry{
		remote:   remote,
		notifier: notifier,
		logg:     logg,
		debounce: debounce,
		ttl:      ttl,
		engines:  make(map[uuid.UUID]*Engine),
	}
}

// Engine returns the user's engine, creating it on first use.
func (r *Registry) Engine(userID uuid.UUID) *Engine {
	r.mu.Lock()
	defer r.mu.Unlock()

	engine, ok := r.engines[userID]
	if !ok {
		engine = NewEngine(userID, r.remote, r.notifier, r.logg, r.debounce)
		r.engines[userID] = engine
	}
	return engine
}

// Drop evicts one user's engine, cancelling its pending writes.
func (r *Registry) Drop(userID uuid.UUID) {
	r.mu.Lock()
	engine, ok := r.engines[userID]
	delete(r.engines, userID)
	r.mu.Unlock()

	if ok {
		engine.Close()
	}
}

// Len reports how many engines are resident.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.engines)
}

// Run sweeps idle engines until the context is cancelled. Meant to be run in
// its own goroutine alongside the HTTP server.
func (r *Registry) Run(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.closeAll()
			return
		case <-ticker.C:
			r.sweep(ctx)
		}
	}
}

func (r *Registry) sweep(ctx context.Context) {
	cutoff := time.Now().Add(-r.ttl)

	r.mu.Lock()
	var evicted []*Engine
	for userID, engine := range r.engines {
		if engine.LastUsed().Before(cutoff) {
			delete(r.engines, userID)
			evicted = append(evicted, engine)
		}
	}
	remaining := len(r.engines)
	r.mu.Unlock()

	for _, engine := range evicted {
		engine.Close()
	}
	if len(evicted) > 0 && r.logg != nil {
		fields := map[string]any{"evicted": len(evicted), "resident": remaining}
		r.logg.Info(r.logg.WithFields(ctx, fields), "cart.engines_swept")
	}
}

func (r *Registry) closeAll() {
	r.mu.Lock()
	engines := make([]*Engine, 0, len(r.engines))
	for userID, engine := range r.engines {
		engines = append(engines, engine)
		delete(r.engines, userID)
	}
	r.mu.Unlock()

	for _, engine := range engines {
		engine.Close()
	}
}
