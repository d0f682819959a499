// Package bridge exposes a logger as path-addressed procedures ("log.info",
// "log.setLevel", ...) on an rpc registry.
package bridge

import (
	"sync"

	"logbridge/internal/level"
	"logbridge/internal/logger"
)

// DefaultContext labels entries logged through the default logger when a
// call carries no context of its own.
const DefaultContext = "logbridge"

// NewDefaultLogger returns the logger a fresh handle starts with.
func NewDefaultLogger() *logger.BaseLogger {
	return logger.New(logger.Config{Level: level.Info, Context: DefaultContext})
}

// Handle holds the current logger. Handlers read it once per call, so a
// replacement only affects calls that start afterwards.
type Handle struct {
	mu sync.RWMutex
	lg logger.Logger
}

// NewHandle returns a handle holding l.
func NewHandle(l logger.Logger) *Handle {
	return &Handle{lg: l}
}

// Logger returns the current logger.
func (h *Handle) Logger() logger.Logger {
	h.mu.RLock()
	l := h.lg
	h.mu.RUnlock()
	return l
}

// SetLogger replaces the current logger. The previous one is not closed.
func (h *Handle) SetLogger(l logger.Logger) {
	h.mu.Lock()
	h.lg = l
	h.mu.Unlock()
}
