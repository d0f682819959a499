package rpc

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Contract is a compiled JSON Schema describing a procedure input or output.
type Contract struct {
	name   string
	source string
	schema *jsonschema.Schema
}

// Compile compiles a JSON Schema document into a Contract.
func Compile(name, source string) (*Contract, error) {
	s, err := jsonschema.CompileString(name+".json", source)
	if err != nil {
		return nil, errors.Wrapf(err, "compile contract %s", name)
	}
	return &Contract{name: name, source: source, schema: s}, nil
}

// MustCompile is Compile that panics on error. It is meant for package-level
// contract tables.
func MustCompile(name, source string) *Contract {
	c, err := Compile(name, source)
	if err != nil {
		panic(err)
	}
	return c
}

// Name returns the contract name.
func (c *Contract) Name() string { return c.name }

// Source returns the JSON Schema text.
func (c *Contract) Source() string { return c.source }
// Validate checks a plain JSON value (maps, slices, float64 or json.Number,
// string, bool, nil) against the contract. A nil Contract accepts anything.
// nil) against the contract. A nil Contract accepts anything.
func (c *Contract) Validate(v any) error {
	if c == nil {
		return nil
	}
	err := c.schema.Validate(v)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return errors.Wrapf(err, "validate %s", c.name)
	}
	out := &ValidationError{Contract: c.name}
	collectViolations(ve, &out.Violations)
	sort.SliceStable(out.Violations, func(i, j int) bool {
		return out.Violations[i].Field < out.Violations[j].Field
	})
	return out
}

func collectViolations(ve *jsonschema.ValidationError, out *[]FieldViolation) {
	if len(ve.Causes) == 0 {
		field := ve.InstanceLocation
		if field == "" {
			field = "/"
		}
		*out = append(*out, FieldViolation{Field: field, Description: ve.Message})
		return
	}
	for _, c := range ve.Causes {
		collectViolations(c, out)
	}
}

// FieldViolation describes one rejected part of a payload. Field is a JSON
// pointer into the payload.
type FieldViolation struct {
	Field       string
	Description string
}

// ValidationError is returned when a payload does not satisfy a contract.
type ValidationError struct {
	Contract   string
	Violations []FieldViolation
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("invalid payload")
	if e.Contract != "" {
		b.WriteString(" for ")
		b.WriteString(e.Contract)
	}
	for i, v := range e.Violations {
		if i == 0 {
			b.WriteString(": ")
		} else {
			b.WriteString("; ")
		}
		b.WriteString(v.Field)
		b.WriteString(": ")
		b.WriteString(v.Description)
	}
	return b.String()
}
