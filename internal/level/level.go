// Package level defines the ordered severity levels shared by the logger and
// the dispatch bridge.
package level

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Level is a log severity. Lower values are less severe.
type Level int

const (
	Trace Level = iota
	Debug
	Info
	Warn
	Error
)

// All lists every level from least to most severe.
var All = []Level{Trace, Debug, Info, Warn, Error}

// Names maps each level to its canonical display name.
var Names = map[Level]string{
	Trace: "TRACE",
	Debug: "DEBUG",
	Info:  "INFO",
	Warn:  "WARN",
	Error: "ERROR",
}

// ErrUnknown is returned by Parse for names outside Names.
var ErrUnknown = errors.New("unknown log level")

// String returns the canonical name of l.
func (l Level) String() string {
	if n, ok := Names[l]; ok {
		return n
	}
	return "Level(" + strconv.Itoa(int(l)) + ")"
}

// Valid reports whether l is one of the five defined levels.
func (l Level) Valid() bool {
	return l >= Trace && l <= Error
}

// Parse resolves a level name, ignoring case and surrounding space.
func Parse(s string) (Level, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for _, l := range All {
		if Names[l] == name {
			return l, nil
		}
	}
	return Info, errors.Wrapf(ErrUnknown, "%q", s)
}
