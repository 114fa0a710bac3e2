package v1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName полное имя gRPC-сервиса алиасов.
const ServiceName = "shortr.v1.AliasService"

// AliasServiceServer серверная сторона shortr.v1.AliasService.
// Сообщения описаны стандартными типами protobuf: запись алиаса передаётся
// как Struct с полями alias, url, count, createdAt.
type AliasServiceServer interface {
	Create(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Get(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	List(context.Context, *emptypb.Empty) (*structpb.ListValue, error)
	Resolve(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error)
	Update(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Delete(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error)
	BulkCreate(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterAliasServiceServer регистрирует реализацию на gRPC-сервере.
func RegisterAliasServiceServer(s grpc.ServiceRegistrar, srv AliasServiceServer) {
	s.RegisterService(&AliasServiceDesc, srv)
}

// AliasServiceDesc описание сервиса для grpc.ServiceRegistrar.
var AliasServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AliasServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod("Create", newStruct, AliasServiceServer.Create),
		unaryMethod("Get", newString, AliasServiceServer.Get),
		unaryMethod("List", newEmpty, AliasServiceServer.List),
		unaryMethod("Resolve", newString, AliasServiceServer.Resolve),
		unaryMethod("Update", newStruct, AliasServiceServer.Update),
		unaryMethod("Delete", newString, AliasServiceServer.Delete),
		unaryMethod("BulkCreate", newStruct, AliasServiceServer.BulkCreate),
	},
	Streams: []grpc.StreamDesc{},
}

func newStruct() *structpb.Struct        { return new(structpb.Struct) }
func newString() *wrapperspb.StringValue { return new(wrapperspb.StringValue) }
func newEmpty() *emptypb.Empty           { return new(emptypb.Empty) }
func fullMethod(method string) string    { return "/" + ServiceName + "/" + method }

func unaryMethod[Req, Resp any](
	method string,
	newReq func() Req,
	call func(AliasServiceServer, context.Context, Req) (Resp, error),
) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := newReq()
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(AliasServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: fullMethod(method),
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(AliasServiceServer), ctx, req.(Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// Client клиент shortr.v1.AliasService.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient создаёт клиента поверх соединения.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) Create(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod("Create"), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Get(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod("Get"), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) List(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, fullMethod("List"), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Resolve(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, fullMethod("Resolve"), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Update(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod("Update"), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Delete(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, fullMethod("Delete"), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) BulkCreate(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod("BulkCreate"), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
