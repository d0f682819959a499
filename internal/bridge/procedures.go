package bridge

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"logbridge/internal/level"
	"logbridge/internal/logger"
	"logbridge/internal/rpc"
)

// Namespace is the first path segment of every bridge procedure.
const Namespace = "log"

// Procedure paths.
var (
	PathTrace    = rpc.Path{Namespace, "trace"}
	PathDebug    = rpc.Path{Namespace, "debug"}
	PathInfo     = rpc.Path{Namespace, "info"}
	PathWarn     = rpc.Path{Namespace, "warn"}
	PathError    = rpc.Path{Namespace, "error"}
	PathSetLevel = rpc.Path{Namespace, "setLevel"}
	PathGetLevel = rpc.Path{Namespace, "getLevel"}
)

// severityOrder is the registration order of the severity procedures.
var severityOrder = []level.Level{level.Debug, level.Info, level.Warn, level.Error, level.Trace}

// LogOutput is returned by the severity procedures and setLevel.
type LogOutput struct {
	Logged bool `json:"logged" mapstructure:"logged"`
}

// SetLevelInput is the payload of log.setLevel.
type SetLevelInput struct {
	Level level.Level `json:"level" mapstructure:"level"`
}

// GetLevelOutput is the result of log.getLevel.
type GetLevelOutput struct {
	Level     level.Level `json:"level" mapstructure:"level"`
	LevelName string      `json:"levelName" mapstructure:"levelName"`
}

// Void is the input of procedures that take no payload.
type Void struct{}

var (
	logInputContract = rpc.MustCompile("log.input", `{
		"type": "object",
		"required": ["message"],
		"properties": {
			"message": {"type": "string"},
			"context": {"type": "string"},
			"data": {"type": "object"},
			"error": {
				"type": "object",
				"required": ["name", "message"],
				"properties": {
					"name": {"type": "string"},
					"message": {"type": "string"},
					"stack": {"type": "string"}
				}
			}
		},
		"additionalProperties": false
	}`)
	logOutputContract = rpc.MustCompile("log.output", `{
		"type": "object",
		"required": ["logged"],
		"properties": {"logged": {"const": true}},
		"additionalProperties": false
	}`)
	setLevelContract = rpc.MustCompile("log.setLevel.input", fmt.Sprintf(`{
		"type": "object",
		"required": ["level"],
		"properties": {"level": {"type": "integer", "minimum": %d, "maximum": %d}},
		"additionalProperties": false
	}`, int(level.Trace), int(level.Error)))
	voidContract = rpc.MustCompile("void", `{
		"type": ["null", "object"],
		"maxProperties": 0
	}`)
	getLevelContract = rpc.MustCompile("log.getLevel.output", `{
		"type": "object",
		"required": ["level", "levelName"],
		"properties": {
			"level": {"type": "integer"},
			"levelName": {"type": "string"}
		},
		"additionalProperties": false
	}`)
)

// Registrar accepts procedures in bulk. *rpc.Registry implements it.
type Registrar interface {
	Register(procs ...rpc.Procedure)
}

// Bridge owns the procedure table for one handle.
type Bridge struct {
	handle *Handle

	once  sync.Once
	procs []rpc.Procedure
}

// New returns a bridge forwarding to the logger held by h.
func New(h *Handle) *Bridge {
	return &Bridge{handle: h}
}

// Handle returns the handle the procedures read from.
func (b *Bridge) Handle() *Handle { return b.handle }

// Procedures returns the seven declarations, building them on first use.
func (b *Bridge) Procedures() []rpc.Procedure {
	b.once.Do(func() {
		for _, lv := range severityOrder {
			b.procs = append(b.procs, b.severity(lv))
		}
		b.procs = append(b.procs, b.setLevel(), b.getLevel())
	})
	return append([]rpc.Procedure(nil), b.procs...)
}

// Register hands every declaration to r in one call. Registering again
// replaces the earlier entries at the same paths.
func (b *Bridge) Register(r Registrar) {
	r.Register(b.Procedures()...)
}

func (b *Bridge) severity(lv level.Level) rpc.Procedure {
	return rpc.NewProcedure[LogInput, LogOutput]().
		Path(Namespace, strings.ToLower(lv.String())).
		Input(logInputContract).
		Output(logOutputContract).
		Meta(rpc.Meta{Description: "Log at " + lv.String() + " level"}).
		Handler(func(_ context.Context, in LogInput) (LogOutput, error) {
			if err := logger.Log(b.handle.Logger(), lv, in.Message, Normalize(in)); err != nil {
				return LogOutput{}, err
			}
			return LogOutput{Logged: true}, nil
		}).
		Build()
}

func (b *Bridge) setLevel() rpc.Procedure {
	return rpc.NewProcedure[SetLevelInput, LogOutput]().
		Path(PathSetLevel...).
		Input(setLevelContract).
		Output(logOutputContract).
		Meta(rpc.Meta{Description: "Set the log level"}).
		Handler(func(_ context.Context, in SetLevelInput) (LogOutput, error) {
			b.handle.Logger().SetLevel(in.Level)
			return LogOutput{Logged: true}, nil
		}).
		Build()
}

func (b *Bridge) getLevel() rpc.Procedure {
	return rpc.NewProcedure[Void, GetLevelOutput]().
		Path(PathGetLevel...).
		Input(voidContract).
		Output(getLevelContract).
		Meta(rpc.Meta{Description: "Get the current log level"}).
		Handler(func(context.Context, Void) (GetLevelOutput, error) {
			lv := b.handle.Logger().GetLevel()
			return GetLevelOutput{Level: lv, LevelName: lv.String()}, nil
		}).
		Build()
}
