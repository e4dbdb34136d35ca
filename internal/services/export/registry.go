package export

import (
	"sync"

	"github.com/phambaophuc/image-export/internal/services/schema"
	"go.uber.org/zap"
)

// Registry hands out one Orchestrator per editing session so the in-flight
// guard is scoped to the session.
type Registry struct {
	mu       sync.Mutex
	byID     map[string]*Orchestrator
	engine   Engine
	schema   *schema.Schema
	revealer Revealer
	logger   *zap.Logger
}

func NewRegistry(engine Engine, sch *schema.Schema, revealer Revealer, logger *zap.Logger) *Registry {
	return &Registry{
		byID:     make(map[string]*Orchestrator),
		engine:   engine,
		schema:   sch,
		revealer: revealer,
		logger:   logger,
	}
}

func (r *Registry) For(sessionID string) *Orchestrator {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.byID[sessionID]
	if !ok {
		o = NewOrchestrator(r.engine, r.schema, r.revealer, r.logger.With(zap.String("session_id", sessionID)))
		r.byID[sessionID] = o
	}
	return o
}

// Lookup returns the orchestrator of a session that is still registered.
// Unlike For it never creates one.
func (r *Registry) Lookup(sessionID string) (*Orchestrator, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.byID[sessionID]
	return o, ok
}

// Forget drops the session's orchestrator once the session is closed.
func (r *Registry) Forget(sessionID string) {
	r.mu.Lock()
	delete(r.byID, sessionID)
	r.mu.Unlock()
}
