// Package logbridge makes structured logging callable as named procedures
// ("log.trace" … "log.error", "log.setLevel", "log.getLevel") on the
// process-wide rpc registry. Importing the package registers them.
package logbridge

import (
	"context"

	"logbridge/internal/bridge"
	"logbridge/internal/level"
	"logbridge/internal/logger"
	"logbridge/internal/rpc"
)

// Re-exported level surface.
type Level = level.Level

const (
	TRACE = level.Trace
	DEBUG = level.Debug
	INFO  = level.Info
	WARN  = level.Warn
	ERROR = level.Error
)

// LevelNames maps each level to its display name.
var LevelNames = level.Names

// ParseLevel resolves a level name.
func ParseLevel(s string) (Level, error) { return level.Parse(s) }

// Re-exported logger surface.
type (
	Logger            = logger.Logger
	Options           = logger.Options
	LoggerConfig      = logger.Config
	Entry             = logger.Entry
	Transport         = logger.Transport
	Format            = logger.Format
	MemoryTransport   = logger.MemoryTransport
	CallbackTransport = logger.CallbackTransport
)

const (
	FormatJSON        = logger.FormatJSON
	FormatSimple      = logger.FormatSimple
	FormatTimestamped = logger.FormatTimestamped
)

// NewLogger creates a logger.
func NewLogger(cfg LoggerConfig) Logger { return logger.New(cfg) }

// ConsoleTransport writes entries to stdout in format f.
func ConsoleTransport(f Format) Transport { return logger.Console(f) }

// NewMemoryTransport returns a transport that keeps every entry.
func NewMemoryTransport() *MemoryTransport { return logger.NewMemory() }

var (
	handle = bridge.NewHandle(bridge.NewDefaultLogger())
	br     = bridge.New(handle)
)

func init() {
	RegisterAll()
}

// GetLogger returns the logger the procedures currently forward to.
func GetLogger() Logger { return handle.Logger() }

// SetLogger replaces the logger the procedures forward to.
func SetLogger(l Logger) { handle.SetLogger(l) }

// RegisterAll (re)registers the log procedures on rpc.Default. Calling it
// again replaces the previous entries.
func RegisterAll() { br.Register(rpc.Default) }

// Call dispatches payload to the procedure at path on rpc.Default.
func Call(ctx context.Context, path []string, payload any) (any, error) {
	return rpc.Default.Call(ctx, rpc.Path(path), payload)
}
