package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"logbridge/internal/errdesc"
	"logbridge/internal/level"
)

// Field names used by the zerolog renderings.
const (
	FieldContext   = "context"
	FieldData      = "data"
	FieldErrorName = "error_name"
	FieldStack     = "stack"
	FieldExtra     = "error_extra"
)

// Transport receives every entry that passes the level filter.
type Transport interface {
	Write(e *Entry) error
}

// Format selects how a WriterTransport renders entries.
type Format int

const (
	// FormatJSON writes one zerolog JSON object per line.
	FormatJSON Format = iota
	// FormatSimple writes "LVL message key=value" without a timestamp.
	FormatSimple
	// FormatTimestamped is FormatSimple prefixed with an RFC3339 timestamp.
	FormatTimestamped
)

var formatNames = map[string]Format{
	"json":        FormatJSON,
	"simple":      FormatSimple,
	"console":     FormatTimestamped,
	"timestamped": FormatTimestamped,
}

// ParseFormat resolves a format name.
func ParseFormat(s string) (Format, error) {
	f, ok := formatNames[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return FormatJSON, errors.Errorf("unknown log format %q", s)
	}
	return f, nil
}

// WriterTransport renders entries with zerolog onto an io.Writer. Write
// errors from the underlying writer are returned to the caller.
type WriterTransport struct {
	mu     sync.Mutex
	out    captureWriter
	zl     zerolog.Logger
	format Format
}

// NewWriter returns a transport writing to w in format f.
func NewWriter(w io.Writer, f Format) *WriterTransport {
	t := &WriterTransport{out: captureWriter{w: w}, format: f}
	var sink io.Writer = &t.out
	switch f {
	case FormatSimple:
		sink = zerolog.ConsoleWriter{Out: &t.out, NoColor: true, PartsExclude: []string{zerolog.TimestampFieldName}}
	case FormatTimestamped:
		sink = zerolog.ConsoleWriter{Out: &t.out, NoColor: true, TimeFormat: time.RFC3339}
	}
	t.zl = zerolog.New(sink)
	return t
}

// Console writes to stdout.
func Console(f Format) *WriterTransport { return NewWriter(os.Stdout, f) }

// Write renders e.
func (t *WriterTransport) Write(e *Entry) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.out.err = nil

	// Filtering already happened in BaseLogger; Log() bypasses zerolog's own
	// level gate and the level field is written explicitly.
	ev := t.zl.Log().Str(zerolog.LevelFieldName, zerologLevel(e.Level).String())
	if t.format != FormatSimple {
		ev = ev.Time(zerolog.TimestampFieldName, e.Time)
	}
	ev = ev.Str(FieldContext, e.Context)
	if e.Data != nil {
		ev = ev.Interface(FieldData, e.Data)
	}
	if e.Err != nil {
		ev = ev.Err(e.Err)
		var re *errdesc.Error
		if errors.As(e.Err, &re) {
			ev = ev.Str(FieldErrorName, re.Name).Str(FieldStack, re.Stack)
			if len(re.Extra) > 0 {
				ev = ev.Interface(FieldExtra, re.Extra)
			}
		}
	}
	ev.Msg(e.Message)
	return errors.Wrap(t.out.err, "write log entry")
}

// captureWriter remembers the last write error, which zerolog itself only
// reports to its global ErrorHandler.
type captureWriter struct {
	w   io.Writer
	err error
}

func (c *captureWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	if err != nil {
		c.err = err
	}
	return n, err
}

// MemoryTransport keeps copies of every entry it receives.
type MemoryTransport struct {
	mu      sync.Mutex
	entries []Entry
}

// NewMemory returns an empty MemoryTransport.
func NewMemory() *MemoryTransport { return &MemoryTransport{} }

func (m *MemoryTransport) Write(e *Entry) error {
	m.mu.Lock()
	m.entries = append(m.entries, *e)
	m.mu.Unlock()
	return nil
}

// Entries returns a snapshot of the captured entries.
func (m *MemoryTransport) Entries() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// Reset drops all captured entries.
func (m *MemoryTransport) Reset() {
	m.mu.Lock()
	m.entries = nil
	m.mu.Unlock()
}

// CallbackTransport adapts a function to Transport.
type CallbackTransport func(e *Entry) error

func (f CallbackTransport) Write(e *Entry) error { return f(e) }

func zerologLevel(l level.Level) zerolog.Level {
	switch l {
	case level.Trace:
		return zerolog.TraceLevel
	case level.Debug:
		return zerolog.DebugLevel
	case level.Info:
		return zerolog.InfoLevel
	case level.Warn:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}
