package rpc

import (
	"bytes"
	"context"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	json "github.com/goccy/go-json"
	"github.com/pkg/errors"
)

const pathSep = "."

// Path addresses a procedure, e.g. {"log", "info"}.
type Path []string

// ParsePath splits a dotted path such as "log.info".
func ParsePath(s string) Path {
	if s == "" {
		return nil
	}
	return Path(strings.Split(s, pathSep))
}

func (p Path) String() string { return strings.Join(p, pathSep) }

// Meta is descriptive information used for introspection only.
type Meta struct {
	Description string
}

// Procedure is one invokable operation. Values are built with NewProcedure
// and are immutable afterwards.
type Procedure struct {
	Path   Path
	Input  *Contract
	Output *Contract
	Meta   Meta

	handle func(ctx context.Context, input any) (any, error)
}

// Invoke validates payload against the input contract and runs the handler.
// Handler errors are returned unchanged.
func (p Procedure) Invoke(ctx context.Context, payload any) (any, error) {
	in, err := plainExact(payload)
	if err != nil {
		return nil, err
	}
	if err := p.Input.Validate(in); err != nil {
		return nil, err
	}
	return p.handle(ctx, in)
}

// Builder assembles a Procedure with typed input I and output O.
type Builder[I, O any] struct {
	p       Procedure
	handler func(context.Context, I) (O, error)
}

// NewProcedure starts a procedure declaration.
func NewProcedure[I, O any]() *Builder[I, O] {
	return &Builder[I, O]{}
}

func (b *Builder[I, O]) Path(segments ...string) *Builder[I, O] {
	b.p.Path = append(Path(nil), segments...)
	return b
}

func (b *Builder[I, O]) Input(c *Contract) *Builder[I, O] {
	b.p.Input = c
	return b
}

func (b *Builder[I, O]) Output(c *Contract) *Builder[I, O] {
	b.p.Output = c
	return b
}

func (b *Builder[I, O]) Meta(m Meta) *Builder[I, O] {
	b.p.Meta = m
	return b
}

func (b *Builder[I, O]) Handler(h func(context.Context, I) (O, error)) *Builder[I, O] {
	b.handler = h
	return b
}

// Build finalizes the declaration. It panics when the path or handler is
// missing, which is a programming error in a static table.
func (b *Builder[I, O]) Build() Procedure {
	if len(b.p.Path) == 0 {
		panic("rpc: procedure without path")
	}
	if b.handler == nil {
		panic("rpc: procedure " + b.p.Path.String() + " without handler")
	}
	p := b.p
	h := b.handler
	p.handle = func(ctx context.Context, input any) (any, error) {
		var in I
		if err := Decode(input, &in); err != nil {
			return nil, errors.Wrapf(err, "decode %s input", p.Path)
		}
		out, err := h(ctx, in)
		if err != nil {
			return nil, err
		}
		if p.Output != nil {
			plain, err := Plain(out)
			if err != nil {
				return nil, err
			}
			if err := p.Output.Validate(plain); err != nil {
				return nil, errors.Wrapf(err, "%s output", p.Path)
			}
		}
		return out, nil
	}
	return p
}

// Plain converts v into its JSON data model: map[string]any, []any,
// float64, string, bool or nil.
func Plain(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "encode payload")
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, errors.Wrap(err, "decode payload")
	}
	return out, nil
}

// plainExact is Plain with numbers kept as json.Number, so integers outside
// the float64 range survive the round trip.
func plainExact(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "encode payload")
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, errors.Wrap(err, "decode payload")
	}
	return out, nil
}

// Decode copies a plain value (or a struct) into out using mapstructure tags.
// Keys must match tags exactly; keys differing only in case go to a ",remain"
// field when the target has one.
func Decode(v any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:    out,
		MatchName: func(key, field string) bool { return key == field },
	})
	if err != nil {
		return err
	}
	return dec.Decode(v)
}
