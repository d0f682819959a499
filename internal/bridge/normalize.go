package bridge

import (
	json "github.com/goccy/go-json"

	"logbridge/internal/errdesc"
	"logbridge/internal/logger"
)

// LogInput is the payload of the severity procedures. Nil pointer and map
// fields were absent from the payload.
type LogInput struct {
	Message string              `mapstructure:"message"`
	Context *string             `mapstructure:"context"`
	Data    map[string]any      `mapstructure:"data"`
	Error   *errdesc.Descriptor `mapstructure:"error"`
}

// MarshalJSON emits only the fields that are present, so an empty Data map
// survives the trip while a nil one is left out.
func (in LogInput) MarshalJSON() ([]byte, error) {
	m := map[string]any{"message": in.Message}
	if in.Context != nil {
		m["context"] = *in.Context
	}
	if in.Data != nil {
		m["data"] = in.Data
	}
	if in.Error != nil {
		m["error"] = in.Error
	}
	return json.Marshal(m)
}

// Normalize maps a payload onto logger options. Each optional field is
// copied only when present; absent fields stay unset so the logger can apply
// its own defaults.
func Normalize(in LogInput) logger.Options {
	var opts logger.Options
	if in.Context != nil {
		c := *in.Context
		opts.Context = &c
	}
	if in.Data != nil {
		opts.Data = in.Data
	}
	if in.Error != nil {
		opts.Err = errdesc.Reconstruct(*in.Error)
	}
	return opts
}
