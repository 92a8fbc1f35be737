package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// The AlertService speaks only protobuf well-known types, so the service
// descriptor is declared here rather than generated.
const (
	AlertServiceName = "safetrack.v1.AlertService"

	AlertService_ListActive_FullMethodName    = "/safetrack.v1.AlertService/ListActive"
	AlertService_ListArchived_FullMethodName  = "/safetrack.v1.AlertService/ListArchived"
	AlertService_MarkEmailSent_FullMethodName = "/safetrack.v1.AlertService/MarkEmailSent"
	AlertService_Cleanup_FullMethodName       = "/safetrack.v1.AlertService/Cleanup"
	AlertService_Stats_FullMethodName         = "/safetrack.v1.AlertService/Stats"
	AlertService_Export_FullMethodName        = "/safetrack.v1.AlertService/Export"
	AlertService_Import_FullMethodName        = "/safetrack.v1.AlertService/Import"
)

var AllMethods = []string{
	AlertService_ListActive_FullMethodName,
	AlertService_ListArchived_FullMethodName,
	AlertService_MarkEmailSent_FullMethodName,
	AlertService_Cleanup_FullMethodName,
	AlertService_Stats_FullMethodName,
	AlertService_Export_FullMethodName,
	AlertService_Import_FullMethodName,
}

type AlertServiceServer interface {
	ListActive(context.Context, *emptypb.Empty) (*structpb.ListValue, error)
	ListArchived(context.Context, *emptypb.Empty) (*structpb.ListValue, error)
	MarkEmailSent(context.Context, *wrapperspb.StringValue) (*wrapperspb.BoolValue, error)
	Cleanup(context.Context, *wrapperspb.Int32Value) (*structpb.Struct, error)
	Stats(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	Export(context.Context, *wrapperspb.BoolValue) (*wrapperspb.StringValue, error)
	Import(context.Context, *wrapperspb.StringValue) (*wrapperspb.BoolValue, error)
}

func unaryHandler[Req, Resp proto.Message](
	fullMethod string,
	newReq func() Req,
	call func(AlertServiceServer, context.Context, Req) (Resp, error),
) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := newReq()
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(AlertServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(AlertServiceServer), ctx, req.(Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func newEmpty() *emptypb.Empty { return new(emptypb.Empty) }
func newString() *wrapperspb.StringValue { return new(wrapperspb.StringValue) }
func newBool() *wrapperspb.BoolValue { return new(wrapperspb.BoolValue) }
func newInt32() *wrapperspb.Int32Value { return new(wrapperspb.Int32Value) }

var AlertService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: AlertServiceName,
	HandlerType: (*AlertServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "ListActive",
			Handler:    unaryHandler(AlertService_ListActive_FullMethodName, newEmpty, AlertServiceServer.ListActive),
		},
		{
			MethodName: "ListArchived",
			Handler:    unaryHandler(AlertService_ListArchived_FullMethodName, newEmpty, AlertServiceServer.ListArchived),
		},
		{
			MethodName: "MarkEmailSent",
			Handler:    unaryHandler(AlertService_MarkEmailSent_FullMethodName, newString, AlertServiceServer.MarkEmailSent),
		},
		{
			MethodName: "Cleanup",
			Handler:    unaryHandler(AlertService_Cleanup_FullMethodName, newInt32, AlertServiceServer.Cleanup),
		},
		{
			MethodName: "Stats",
			Handler:    unaryHandler(AlertService_Stats_FullMethodName, newEmpty, AlertServiceServer.Stats),
		},
		{
			MethodName: "Export",
			Handler:    unaryHandler(AlertService_Export_FullMethodName, newBool, AlertServiceServer.Export),
		},
		{
			MethodName: "Import",
			Handler:    unaryHandler(AlertService_Import_FullMethodName, newString, AlertServiceServer.Import),
		},
	},
	Streams: []grpc.StreamDesc{},
}

func RegisterAlertServiceServer(s grpc.ServiceRegistrar, srv AlertServiceServer) {
	s.RegisterService(&AlertService_ServiceDesc, srv)
}
