package bridge

import (
	"context"

	"github.com/pkg/errors"

	"logbridge/internal/errdesc"
	"logbridge/internal/level"
	"logbridge/internal/rpc"
)

// LogOption sets an optional field of a LogInput.
type LogOption func(*LogInput)

// WithContext sets the context label.
func WithContext(c string) LogOption {
	return func(in *LogInput) { in.Context = &c }
}

// WithData attaches structured data.
func WithData(d map[string]any) LogOption {
	return func(in *LogInput) { in.Data = d }
}

// WithError attaches the descriptor of err. A nil err leaves the field unset.
func WithError(err error) LogOption {
	return func(in *LogInput) { in.Error = errdesc.Describe(err) }
}

// WithDescriptor attaches an already serialized error.
func WithDescriptor(d errdesc.Descriptor) LogOption {
	return func(in *LogInput) { in.Error = &d }
}

// Client issues bridge calls through any rpc.Caller: a local registry or a
// remote rpc.Client.
type Client struct {
	c rpc.Caller
}

// NewClient returns a Client dispatching through c.
func NewClient(c rpc.Caller) *Client { return &Client{c: c} }

var severityPaths = map[level.Level]rpc.Path{
	level.Trace: PathTrace,
	level.Debug: PathDebug,
	level.Info:  PathInfo,
	level.Warn:  PathWarn,
	level.Error: PathError,
}

// Log sends msg at severity lv.
func (c *Client) Log(ctx context.Context, lv level.Level, msg string, opts ...LogOption) error {
	path, ok := severityPaths[lv]
	if !ok {
		return errors.Errorf("no procedure for level %v", lv)
	}
	in := LogInput{Message: msg}
	for _, o := range opts {
		o(&in)
	}
	_, err := c.call(ctx, path, in)
	return err
}

func (c *Client) Trace(ctx context.Context, msg string, opts ...LogOption) error {
	return c.Log(ctx, level.Trace, msg, opts...)
}

func (c *Client) Debug(ctx context.Context, msg string, opts ...LogOption) error {
	return c.Log(ctx, level.Debug, msg, opts...)
}

func (c *Client) Info(ctx context.Context, msg string, opts ...LogOption) error {
	return c.Log(ctx, level.Info, msg, opts...)
}

func (c *Client) Warn(ctx context.Context, msg string, opts ...LogOption) error {
	return c.Log(ctx, level.Warn, msg, opts...)
}

func (c *Client) Error(ctx context.Context, msg string, opts ...LogOption) error {
	return c.Log(ctx, level.Error, msg, opts...)
}

// SetLevel changes the remote logger's minimum severity.
func (c *Client) SetLevel(ctx context.Context, lv level.Level) error {
	_, err := c.call(ctx, PathSetLevel, SetLevelInput{Level: lv})
	return err
}

// GetLevel reads the remote logger's minimum severity.
func (c *Client) GetLevel(ctx context.Context) (GetLevelOutput, error) {
	var out GetLevelOutput
	res, err := c.c.Call(ctx, PathGetLevel, nil)
	if err != nil {
		return out, err
	}
	if err := rpc.Decode(res, &out); err != nil {
		return out, errors.Wrap(err, "decode getLevel result")
	}
	return out, nil
}

func (c *Client) call(ctx context.Context, path rpc.Path, payload any) (LogOutput, error) {
	var out LogOutput
	res, err := c.c.Call(ctx, path, payload)
	if err != nil {
		return out, err
	}
	if err := rpc.Decode(res, &out); err != nil {
		return out, errors.Wrapf(err, "decode %s result", path)
	}
	return out, nil
}
