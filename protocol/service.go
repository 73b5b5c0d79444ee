// Package protocol describes the mcphost.WorkerHost gRPC service. Messages
// are protobuf well-known types so no generated code is required.
package protocol

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const ServiceName = "mcphost.WorkerHost"

const (
	WorkerHost_Spawn_FullMethodName           = "/mcphost.WorkerHost/Spawn"
	WorkerHost_Write_FullMethodName           = "/mcphost.WorkerHost/Write"
	WorkerHost_Kill_FullMethodName            = "/mcphost.WorkerHost/Kill"
	WorkerHost_IsRunning_FullMethodName       = "/mcphost.WorkerHost/IsRunning"
	WorkerHost_List_FullMethodName            = "/mcphost.WorkerHost/List"
	WorkerHost_Watch_FullMethodName           = "/mcphost.WorkerHost/Watch"
	WorkerHost_LoadPreferences_FullMethodName = "/mcphost.WorkerHost/LoadPreferences"
	WorkerHost_SavePreferences_FullMethodName = "/mcphost.WorkerHost/SavePreferences"
	WorkerHost_SaveRecovery_FullMethodName    = "/mcphost.WorkerHost/SaveRecovery"
	WorkerHost_LoadRecovery_FullMethodName    = "/mcphost.WorkerHost/LoadRecovery"
	WorkerHost_CleanupRecovery_FullMethodName = "/mcphost.WorkerHost/CleanupRecovery"
)

type WorkerHostClient interface {
	Spawn(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.Int64Value, error)
	Write(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error)
	Kill(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*emptypb.Empty, error)
	IsRunning(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BoolValue, error)
	List(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	Watch(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (WorkerHost_WatchClient, error)
	LoadPreferences(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	SavePreferences(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error)
	SaveRecovery(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error)
	LoadRecovery(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Value, error)
	CleanupRecovery(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*wrapperspb.Int64Value, error)
}

type workerHostClient struct {
	cc grpc.ClientConnInterface
}

func NewWorkerHostClient(cc grpc.ClientConnInterface) WorkerHostClient {
	return &workerHostClient{cc}
}

func (c *workerHostClient) Spawn(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.Int64Value, error) {
	out := new(wrapperspb.Int64Value)
	if err := c.cc.Invoke(ctx, WorkerHost_Spawn_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *workerHostClient) Write(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, WorkerHost_Write_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *workerHostClient) Kill(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, WorkerHost_Kill_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *workerHostClient) IsRunning(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BoolValue, error) {
	out := new(wrapperspb.BoolValue)
	if err := c.cc.Invoke(ctx, WorkerHost_IsRunning_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *workerHostClient) List(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, WorkerHost_List_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *workerHostClient) Watch(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (WorkerHost_WatchClient, error) {
	stream, err := c.cc.NewStream(ctx, &WorkerHost_ServiceDesc.Streams[0], WorkerHost_Watch_FullMethodName, opts...)
	if err != nil {
		return nil, err
	}
	x := &workerHostWatchClient{stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

type WorkerHost_WatchClient interface {
	Recv() (*structpb.Struct, error)
	grpc.ClientStream
}

type workerHostWatchClient struct {
	grpc.ClientStream
}

func (x *workerHostWatchClient) Recv() (*structpb.Struct, error) {
	m := new(structpb.Struct)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (c *workerHostClient) LoadPreferences(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, WorkerHost_LoadPreferences_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *workerHostClient) SavePreferences(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, WorkerHost_SavePreferences_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *workerHostClient) SaveRecovery(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, WorkerHost_SaveRecovery_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *workerHostClient) LoadRecovery(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Value, error) {
	out := new(structpb.Value)
	if err := c.cc.Invoke(ctx, WorkerHost_LoadRecovery_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *workerHostClient) CleanupRecovery(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*wrapperspb.Int64Value, error) {
	out := new(wrapperspb.Int64Value)
	if err := c.cc.Invoke(ctx, WorkerHost_CleanupRecovery_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// WorkerHostServer is the server API for the WorkerHost service.
// All implementations must embed UnimplementedWorkerHostServer.
type WorkerHostServer interface {
	Spawn(context.Context, *structpb.Struct) (*wrapperspb.Int64Value, error)
	Write(context.Context, *structpb.Struct) (*emptypb.Empty, error)
	Kill(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error)
	IsRunning(context.Context, *wrapperspb.StringValue) (*wrapperspb.BoolValue, error)
	List(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	Watch(*structpb.Struct, WorkerHost_WatchServer) error
	LoadPreferences(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	SavePreferences(context.Context, *structpb.Struct) (*emptypb.Empty, error)
	SaveRecovery(context.Context, *structpb.Struct) (*emptypb.Empty, error)
	LoadRecovery(context.Context, *wrapperspb.StringValue) (*structpb.Value, error)
	CleanupRecovery(context.Context, *emptypb.Empty) (*wrapperspb.Int64Value, error)
	mustEmbedUnimplementedWorkerHostServer()
}

type UnimplementedWorkerHostServer struct{}

func (UnimplementedWorkerHostServer) Spawn(context.Context, *structpb.Struct) (*wrapperspb.Int64Value, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Spawn not implemented")
}
func (UnimplementedWorkerHostServer) Write(context.Context, *structpb.Struct) (*emptypb.Empty, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Write not implemented")
}
func (UnimplementedWorkerHostServer) Kill(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Kill not implemented")
}
func (UnimplementedWorkerHostServer) IsRunning(context.Context, *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
	return nil, status.Errorf(codes.Unimplemented, "method IsRunning not implemented")
}
func (UnimplementedWorkerHostServer) List(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method List not implemented")
}
func (UnimplementedWorkerHostServer) Watch(*structpb.Struct, WorkerHost_WatchServer) error {
	return status.Errorf(codes.Unimplemented, "method Watch not implemented")
}
func (UnimplementedWorkerHostServer) LoadPreferences(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method LoadPreferences not implemented")
}
func (UnimplementedWorkerHostServer) SavePreferences(context.Context, *structpb.Struct) (*emptypb.Empty, error) {
	return nil, status.Errorf(codes.Unimplemented, "method SavePreferences not implemented")
}
func (UnimplementedWorkerHostServer) SaveRecovery(context.Context, *structpb.Struct) (*emptypb.Empty, error) {
	return nil, status.Errorf(codes.Unimplemented, "method SaveRecovery not implemented")
}
func (UnimplementedWorkerHostServer) LoadRecovery(context.Context, *wrapperspb.StringValue) (*structpb.Value, error) {
	return nil, status.Errorf(codes.Unimplemented, "method LoadRecovery not implemented")
}
func (UnimplementedWorkerHostServer) CleanupRecovery(context.Context, *emptypb.Empty) (*wrapperspb.Int64Value, error) {
	return nil, status.Errorf(codes.Unimplemented, "method CleanupRecovery not implemented")
}
func (UnimplementedWorkerHostServer) mustEmbedUnimplementedWorkerHostServer() {}

func RegisterWorkerHostServer(s grpc.ServiceRegistrar, srv WorkerHostServer) {
	s.RegisterService(&WorkerHost_ServiceDesc, srv)
}

func _WorkerHost_Spawn_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(WorkerHostServer).Spawn(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: WorkerHost_Spawn_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(WorkerHostServer).Spawn(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func _WorkerHost_Write_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(WorkerHostServer).Write(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: WorkerHost_Write_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(WorkerHostServer).Write(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func _WorkerHost_Kill_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(WorkerHostServer).Kill(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: WorkerHost_Kill_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(WorkerHostServer).Kill(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _WorkerHost_IsRunning_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(WorkerHostServer).IsRunning(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: WorkerHost_IsRunning_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(WorkerHostServer).IsRunning(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _WorkerHost_List_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(WorkerHostServer).List(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: WorkerHost_List_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(WorkerHostServer).List(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func _WorkerHost_Watch_Handler(srv interface{}, stream grpc.ServerStream) error {
	m := new(structpb.Struct)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(WorkerHostServer).Watch(m, &workerHostWatchServer{stream})
}

type WorkerHost_WatchServer interface {
	Send(*structpb.Struct) error
	grpc.ServerStream
}

type workerHostWatchServer struct {
	grpc.ServerStream
}

func (x *workerHostWatchServer) Send(m *structpb.Struct) error {
	return x.ServerStream.SendMsg(m)
}

func _WorkerHost_LoadPreferences_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(WorkerHostServer).LoadPreferences(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: WorkerHost_LoadPreferences_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(WorkerHostServer).LoadPreferences(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func _WorkerHost_SavePreferences_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(WorkerHostServer).SavePreferences(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: WorkerHost_SavePreferences_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(WorkerHostServer).SavePreferences(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func _WorkerHost_SaveRecovery_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(WorkerHostServer).SaveRecovery(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: WorkerHost_SaveRecovery_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(WorkerHostServer).SaveRecovery(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func _WorkerHost_LoadRecovery_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(WorkerHostServer).LoadRecovery(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: WorkerHost_LoadRecovery_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(WorkerHostServer).LoadRecovery(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _WorkerHost_CleanupRecovery_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(WorkerHostServer).CleanupRecovery(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: WorkerHost_CleanupRecovery_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(WorkerHostServer).CleanupRecovery(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

var WorkerHost_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*WorkerHostServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Spawn", Handler: _WorkerHost_Spawn_Handler},
		{MethodName: "Write", Handler: _WorkerHost_Write_Handler},
		{MethodName: "Kill", Handler: _WorkerHost_Kill_Handler},
		{MethodName: "IsRunning", Handler: _WorkerHost_IsRunning_Handler},
		{MethodName: "List", Handler: _WorkerHost_List_Handler},
		{MethodName: "LoadPreferences", Handler: _WorkerHost_LoadPreferences_Handler},
		{MethodName: "SavePreferences", Handler: _WorkerHost_SavePreferences_Handler},
		{MethodName: "SaveRecovery", Handler: _WorkerHost_SaveRecovery_Handler},
		{MethodName: "LoadRecovery", Handler: _WorkerHost_LoadRecovery_Handler},
		{MethodName: "CleanupRecovery", Handler: _WorkerHost_CleanupRecovery_Handler},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Watch",
			Handler:       _WorkerHost_Watch_Handler,
			ServerStreams: true,
		},
	},
	Metadata: "mcphost/worker_host.proto",
}
