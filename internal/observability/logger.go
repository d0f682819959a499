package observability

import (
	"os"

	"github.com/rs/zerolog"
)

// Logger is the process logger for the server itself. Bridged log calls go to
// the logger held by the bridge handle instead.
var Logger = zerolog.New(os.Stdout).With().Timestamp().Str(FieldComponent, "logbridge").Logger()

// Common field names for structured logs.
const (
	FieldAddress   = "addr"
	FieldPath      = "path"
	FieldError     = "err"
	FieldHeader    = "header_err"
	FieldRequest   = "request_id"
	FieldMethod    = "method"
	FieldDuration  = "duration"
	FieldLevel     = "level_name"
	FieldComponent = "component"
)
