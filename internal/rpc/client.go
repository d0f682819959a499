package rpc

import (
	"context"

	"github.com/pkg/errors"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client calls procedures on a remote Server. It satisfies Caller.
type Client struct {
	conn grpc.ClientConnInterface
}

// NewClient wraps an established connection.
func NewClient(conn grpc.ClientConnInterface) *Client { return &Client{conn: conn} }

// Call sends payload to the procedure at path and returns the plain result.
func (c *Client) Call(ctx context.Context, path Path, payload any) (any, error) {
	plain, err := Plain(payload)
	if err != nil {
		return nil, err
	}
	segs := make([]any, len(path))
	for i, s := range path {
		segs[i] = s
	}
	req, err := structpb.NewStruct(map[string]any{
		fieldPath:    segs,
		fieldPayload: plain,
	})
	if err != nil {
		return nil, errors.Wrap(err, "encode request")
	}
	resp := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, fullCall, req, resp); err != nil {
		return nil, fromStatus(err)
	}
	return resp.GetFields()[fieldResult].AsInterface(), nil
}
