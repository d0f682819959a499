package rpc

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	obs "logbridge/internal/observability"
)

const (
	serviceName = "logbridge.v1.Dispatch"
	methodCall  = "Call"
	fullCall    = "/" + serviceName + "/" + methodCall

	fieldPath    = "path"
	fieldPayload = "payload"
	fieldResult  = "result"

	// HeaderRequestID carries the id assigned to each call by UnaryLogger.
	HeaderRequestID = "x-request-id"
)

// dispatchServer is the handler type of the Dispatch service. Requests are
// {"path": [...], "payload": any}; responses are {"result": any}.
type dispatchServer interface {
	Call(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*dispatchServer)(nil),
	Methods: []grpc.MethodDesc{{
		MethodName: methodCall,
		Handler:    callHandler,
	}},
	Streams:  []grpc.StreamDesc{},
	Metadata: "logbridge/v1/dispatch.proto",
}

func callHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(dispatchServer).Call(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullCall}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(dispatchServer).Call(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// Server exposes a Registry over gRPC.
type Server struct {
	reg *Registry
}

// NewServer returns a Server dispatching into reg.
func NewServer(reg *Registry) *Server { return &Server{reg: reg} }

// Register attaches the Dispatch service to gs.
func (s *Server) Register(gs grpc.ServiceRegistrar) {
	gs.RegisterService(&serviceDesc, s)
}

// Call implements the Dispatch service.
func (s *Server) Call(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()
	var path Path
	for _, v := range fields[fieldPath].GetListValue().GetValues() {
		path = append(path, v.GetStringValue())
	}
	if len(path) == 0 {
		return nil, status.Error(codes.InvalidArgument, "missing procedure path")
	}
	var payload any
	if v, ok := fields[fieldPayload]; ok && v != nil {
		payload = v.AsInterface()
	}
	out, err := s.reg.Call(ctx, path, payload)
	if err != nil {
		return nil, toStatus(err)
	}
	plain, err := Plain(out)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	result, err := structpb.NewValue(plain)
	if err != nil {
		return nil, status.Error(codes.Internal, errors.Wrap(err, "encode result").Error())
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{fieldResult: result}}, nil
}

// UnaryLogger assigns a request id to every call, returns it in the
// response header and logs the outcome.
func UnaryLogger(l zerolog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		id := uuid.NewString()
		headerErr := grpc.SetHeader(ctx, metadata.Pairs(HeaderRequestID, id))
		start := time.Now()
		resp, err := handler(ctx, req)
		ev := l.Debug()
		if err != nil || headerErr != nil {
			ev = l.Warn().Err(err)
		}
		if headerErr != nil {
			ev = ev.AnErr(obs.FieldHeader, headerErr)
		}
		if s, ok := req.(*structpb.Struct); ok {
			ev = ev.Interface(obs.FieldPath, s.GetFields()[fieldPath].AsInterface())
		}
		ev.Str(obs.FieldRequest, id).
			Str(obs.FieldMethod, info.FullMethod).
			Dur(obs.FieldDuration, time.Since(start)).
			Msg("call")
		return resp, err
	}
}
