// Package rpc is a small named-procedure dispatcher. Procedures are addressed
// by a Path, guarded by JSON Schema contracts and can be called in process
// through a Registry or remotely through the gRPC Server and Client.
package rpc

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	obs "logbridge/internal/observability"
)

// ErrUnknownPath is returned when no procedure is registered at a path.
var ErrUnknownPath = errors.New("unknown procedure path")

const (
	codeOK       = "ok"
	codeInvalid  = "invalid"
	codeNotFound = "not_found"
	codeError    = "error"
	pathUnknown  = "unknown"
)

// Caller dispatches a payload to the procedure at path.
type Caller interface {
	Call(ctx context.Context, path Path, payload any) (any, error)
}

// Registry maps paths to procedures. Registering a path again replaces the
// previous procedure.
type Registry struct {
	mu    sync.RWMutex
	procs map[string]Procedure
	order []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{procs: make(map[string]Procedure)}
}

// Default is the process-wide registry.
var Default = NewRegistry()

// Register binds each procedure to its path in one step.
func (r *Registry) Register(procs ...Procedure) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range procs {
		key := p.Path.String()
		if _, ok := r.procs[key]; !ok {
			r.order = append(r.order, key)
		}
		r.procs[key] = p
	}
}

// Lookup returns the procedure registered at path.
func (r *Registry) Lookup(path Path) (Procedure, bool) {
	r.mu.RLock()
	p, ok := r.procs[path.String()]
	r.mu.RUnlock()
	return p, ok
}

// Procedures returns the registered procedures in first-registration order.
func (r *Registry) Procedures() []Procedure {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Procedure, 0, len(r.order))
	for _, k := range r.order {
		out = append(out, r.procs[k])
	}
	return out
}

// Call invokes the procedure at path. Handler errors are returned unchanged.
func (r *Registry) Call(ctx context.Context, path Path, payload any) (any, error) {
	p, ok := r.Lookup(path)
	if !ok {
		obs.CallCounter.WithLabelValues(pathUnknown, codeNotFound).Inc()
		return nil, errors.Wrapf(ErrUnknownPath, "%q", path.String())
	}
	start := time.Now()
	out, err := p.Invoke(ctx, payload)
	key := path.String()
	obs.CallDuration.WithLabelValues(key).Observe(time.Since(start).Seconds())
	obs.CallCounter.WithLabelValues(key, resultCode(err)).Inc()
	return out, err
}

func resultCode(err error) string {
	var ve *ValidationError
	switch {
	case err == nil:
		return codeOK
	case errors.As(err, &ve):
		return codeInvalid
	default:
		return codeError
	}
}
