// Package logger is the leveled logger the dispatch bridge forwards to. It
// filters by severity, fills in a default context and fans each entry out to
// its transports.
package logger

import (
	"sync/atomic"
	"time"

	"go.uber.org/multierr"

	"logbridge/internal/level"
)

// Options carries the optional parts of a log call. A nil field means the
// caller did not supply it; an empty but non-nil Data map is still supplied.
type Options struct {
	Context *string
	Data    map[string]any
	Err     error
}

// Logger is the contract the bridge calls into.
type Logger interface {
	Trace(msg string, opts Options) error
	Debug(msg string, opts Options) error
	Info(msg string, opts Options) error
	Warn(msg string, opts Options) error
	Error(msg string, opts Options) error

	SetLevel(l level.Level)
	GetLevel() level.Level
}

// Entry is one accepted log record as seen by transports.
type Entry struct {
	Time    time.Time
	Level   level.Level
	Message string
	Context string
	Data    map[string]any
	Err     error
}

// Config configures New.
type Config struct {
	Level      level.Level
	Context    string
	Transports []Transport
}

// BaseLogger implements Logger.
type BaseLogger struct {
	level      atomic.Int32
	context    string
	transports []Transport
	now        func() time.Time
}

// New creates a logger. Without transports it writes JSON lines to stdout.
func New(cfg Config) *BaseLogger {
	l := &BaseLogger{
		context:    cfg.Context,
		transports: cfg.Transports,
		now:        time.Now,
	}
	if len(l.transports) == 0 {
		l.transports = []Transport{Console(FormatJSON)}
	}
	l.level.Store(int32(cfg.Level))
	return l
}

func (l *BaseLogger) Trace(msg string, opts Options) error { return l.log(level.Trace, msg, opts) }
func (l *BaseLogger) Debug(msg string, opts Options) error { return l.log(level.Debug, msg, opts) }
func (l *BaseLogger) Info(msg string, opts Options) error  { return l.log(level.Info, msg, opts) }
func (l *BaseLogger) Warn(msg string, opts Options) error  { return l.log(level.Warn, msg, opts) }
func (l *BaseLogger) Error(msg string, opts Options) error { return l.log(level.Error, msg, opts) }

// SetLevel sets the minimum severity that reaches the transports.
func (l *BaseLogger) SetLevel(lv level.Level) { l.level.Store(int32(lv)) }

// GetLevel returns the minimum severity.
func (l *BaseLogger) GetLevel() level.Level { return level.Level(l.level.Load()) }

// Context returns the label used when a call carries none.
func (l *BaseLogger) Context() string { return l.context }

func (l *BaseLogger) log(lv level.Level, msg string, opts Options) error {
	if lv < l.GetLevel() {
		return nil
	}
	e := &Entry{
		Time:    l.now(),
		Level:   lv,
		Message: msg,
		Context: l.context,
		Data:    opts.Data,
		Err:     opts.Err,
	}
	if opts.Context != nil {
		e.Context = *opts.Context
	}
	var err error
	for _, t := range l.transports {
		err = multierr.Append(err, t.Write(e))
	}
	return err
}

// Log calls the method of lg matching lv.
func Log(lg Logger, lv level.Level, msg string, opts Options) error {
	switch lv {
	case level.Trace:
		return lg.Trace(msg, opts)
	case level.Debug:
		return lg.Debug(msg, opts)
	case level.Info:
		return lg.Info(msg, opts)
	case level.Warn:
		return lg.Warn(msg, opts)
	default:
		return lg.Error(msg, opts)
	}
}
