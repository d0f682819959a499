// Package errdesc converts between live errors and their transport-safe
// descriptors ({name, message, stack?, ...extra}).
package errdesc

import (
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// DefaultName is the name carried by an error built from a message alone.
const DefaultName = "Error"

const (
	keyName    = "name"
	keyMessage = "message"
	keyStack   = "stack"
)

// Descriptor is the data-only projection of an error. Keys other than name,
// message and stack are kept in Extra.
type Descriptor struct {
	Name    string         `json:"name" mapstructure:"name"`
	Message string         `json:"message" mapstructure:"message"`
	Stack   *string        `json:"stack,omitempty" mapstructure:"stack"`
	Extra   map[string]any `json:"-" mapstructure:",remain"`
}

// MarshalJSON flattens Extra next to the named fields.
func (d Descriptor) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(d.Extra)+3)
	for k, v := range d.Extra {
		m[k] = v
	}
	m[keyName] = d.Name
	m[keyMessage] = d.Message
	if d.Stack != nil {
		m[keyStack] = *d.Stack
	}
	return json.Marshal(m)
}

// Error is a live error rebuilt from a Descriptor.
type Error struct {
	Name    string
	Message string
	Stack   string
	Extra   map[string]any

	cause error
}

func (e *Error) Error() string { return e.Message }

// Unwrap returns the locally constructed error the value was built from.
func (e *Error) Unwrap() error { return e.cause }

// Format prints "name: message" for %v and adds the stack for %+v.
func (e *Error) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			fmt.Fprintf(s, "%s: %s\n%s", e.Name, e.Message, e.Stack)
			return
		}
		fmt.Fprintf(s, "%s: %s", e.Name, e.Message)
	case 's':
		fmt.Fprint(s, e.Message)
	case 'q':
		fmt.Fprintf(s, "%q", e.Message)
	}
}

// Reconstruct builds an error from d's message, then copies name, stack and
// any extra properties onto it, overriding the defaults.
func Reconstruct(d Descriptor) *Error {
	cause := errors.New(d.Message)
	e := &Error{
		Name:    DefaultName,
		Message: d.Message,
		Stack:   localStack(cause),
		cause:   cause,
	}
	// Descriptor fields replace the defaults of a message-only error.
	e.Name = d.Name
	if d.Stack != nil {
		e.Stack = *d.Stack
	}
	if d.Extra != nil {
		e.Extra = make(map[string]any, len(d.Extra))
		for k, v := range d.Extra {
			e.Extra[k] = v
		}
	}
	return e
}

// Describe projects err into a Descriptor. A nil err yields nil.
func Describe(err error) *Descriptor {
	if err == nil {
		return nil
	}
	if re, ok := err.(*Error); ok {
		stack := re.Stack
		d := &Descriptor{Name: re.Name, Message: re.Message, Stack: &stack}
		if re.Extra != nil {
			d.Extra = make(map[string]any, len(re.Extra))
			for k, v := range re.Extra {
				d.Extra[k] = v
			}
		}
		return d
	}
	d := &Descriptor{Name: DefaultName, Message: err.Error()}
	if st, ok := err.(stackTracer); ok {
		stack := fmt.Sprintf("%s: %s%+v", DefaultName, err.Error(), st.StackTrace())
		d.Stack = &stack
	}
	return d
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

func localStack(err error) string {
	st, ok := err.(stackTracer)
	if !ok {
		return ""
	}
	// Drop the Reconstruct frame itself.
	frames := st.StackTrace()
	if len(frames) > 1 {
		frames = frames[1:]
	}
	return fmt.Sprintf("%s: %s%+v", DefaultName, err.Error(), frames)
}
