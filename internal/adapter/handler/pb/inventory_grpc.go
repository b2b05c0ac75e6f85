package pb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "stockroom.v1.InventoryService"

const (
	InventoryService_AddItem_FullMethodName        = "/stockroom.v1.InventoryService/AddItem"
	InventoryService_RemoveItem_FullMethodName     = "/stockroom.v1.InventoryService/RemoveItem"
	InventoryService_UpdateQuantity_FullMethodName = "/stockroom.v1.InventoryService/UpdateQuantity"
	InventoryService_GetInventory_FullMethodName   = "/stockroom.v1.InventoryService/GetInventory"
	InventoryService_PurchaseItem_FullMethodName   = "/stockroom.v1.InventoryService/PurchaseItem"
	InventoryService_ReturnItem_FullMethodName     = "/stockroom.v1.InventoryService/ReturnItem"
)

type InventoryServiceClient interface {
	AddItem(ctx context.Context, in *AddItemRequest, opts ...grpc.CallOption) (*MessageResponse, error)
	RemoveItem(ctx context.Context, in *RemoveItemRequest, opts ...grpc.CallOption) (*MessageResponse, error)
	UpdateQuantity(ctx context.Context, in *UpdateQuantityRequest, opts ...grpc.CallOption) (*MessageResponse, error)
	GetInventory(ctx context.Context, in *GetInventoryRequest, opts ...grpc.CallOption) (*GetInventoryResponse, error)
	PurchaseItem(ctx context.Context, in *StockRequest, opts ...grpc.CallOption) (*StockResponse, error)
	ReturnItem(ctx context.Context, in *StockRequest, opts ...grpc.CallOption) (*StockResponse, error)
}

type inventoryServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewInventoryServiceClient(cc grpc.ClientConnInterface) InventoryServiceClient {
	return &inventoryServiceClient{cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{CallOption()}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *inventoryServiceClient) AddItem(ctx context.Context, in *AddItemRequest, opts ...grpc.CallOption) (*MessageResponse, error) {
	return invoke[MessageResponse](ctx, c.cc, InventoryService_AddItem_FullMethodName, in, opts)
}

func (c *inventoryServiceClient) RemoveItem(ctx context.Context, in *RemoveItemRequest, opts ...grpc.CallOption) (*MessageResponse, error) {
	return invoke[MessageResponse](ctx, c.cc, InventoryService_RemoveItem_FullMethodName, in, opts)
}

func (c *inventoryServiceClient) UpdateQuantity(ctx context.Context, in *UpdateQuantityRequest, opts ...grpc.CallOption) (*MessageResponse, error) {
	return invoke[MessageResponse](ctx, c.cc, InventoryService_UpdateQuantity_FullMethodName, in, opts)
}

func (c *inventoryServiceClient) GetInventory(ctx context.Context, in *GetInventoryRequest, opts ...grpc.CallOption) (*GetInventoryResponse, error) {
	return invoke[GetInventoryResponse](ctx, c.cc, InventoryService_GetInventory_FullMethodName, in, opts)
}

func (c *inventoryServiceClient) PurchaseItem(ctx context.Context, in *StockRequest, opts ...grpc.CallOption) (*StockResponse, error) {
	return invoke[StockResponse](ctx, c.cc, InventoryService_PurchaseItem_FullMethodName, in, opts)
}

func (c *inventoryServiceClient) ReturnItem(ctx context.Context, in *StockRequest, opts ...grpc.CallOption) (*StockResponse, error) {
	return invoke[StockResponse](ctx, c.cc, InventoryService_ReturnItem_FullMethodName, in, opts)
}

// InventoryServiceServer is the server API for InventoryService.
// Implementations must embed UnimplementedInventoryServiceServer.
type InventoryServiceServer interface {
	AddItem(context.Context, *AddItemRequest) (*MessageResponse, error)
	RemoveItem(context.Context, *RemoveItemRequest) (*MessageResponse, error)
	UpdateQuantity(context.Context, *UpdateQuantityRequest) (*MessageResponse, error)
	GetInventory(context.Context, *GetInventoryRequest) (*GetInventoryResponse, error)
	PurchaseItem(context.Context, *StockRequest) (*StockResponse, error)
	ReturnItem(context.Context, *StockRequest) (*StockResponse, error)
	mustEmbedUnimplementedInventoryServiceServer()
}

type UnimplementedInventoryServiceServer struct{}

func (UnimplementedInventoryServiceServer) AddItem(context.Context, *AddItemRequest) (*MessageResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method AddItem not implemented")
}
func (UnimplementedInventoryServiceServer) RemoveItem(context.Context, *RemoveItemRequest) (*MessageResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method RemoveItem not implemented")
}
func (UnimplementedInventoryServiceServer) UpdateQuantity(context.Context, *UpdateQuantityRequest) (*MessageResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method UpdateQuantity not implemented")
}
func (UnimplementedInventoryServiceServer) GetInventory(context.Context, *GetInventoryRequest) (*GetInventoryResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetInventory not implemented")
}
func (UnimplementedInventoryServiceServer) PurchaseItem(context.Context, *StockRequest) (*StockResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method PurchaseItem not implemented")
}
func (UnimplementedInventoryServiceServer) ReturnItem(context.Context, *StockRequest) (*StockResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ReturnItem not implemented")
}
func (UnimplementedInventoryServiceServer) mustEmbedUnimplementedInventoryServiceServer() {}

func RegisterInventoryServiceServer(s grpc.ServiceRegistrar, srv InventoryServiceServer) {
	s.RegisterService(&InventoryService_ServiceDesc, srv)
}

// unary adapts a typed server method to grpc.MethodHandler.
func unary[Req any, Resp any](fullMethod string, call func(InventoryServiceServer, context.Context, *Req) (*Resp, error)) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(InventoryServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(InventoryServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var InventoryService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*InventoryServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "AddItem",
			Handler:    unary(InventoryService_AddItem_FullMethodName, InventoryServiceServer.AddItem),
		},
		{
			MethodName: "RemoveItem",
			Handler:    unary(InventoryService_RemoveItem_FullMethodName, InventoryServiceServer.RemoveItem),
		},
		{
			MethodName: "UpdateQuantity",
			Handler:    unary(InventoryService_UpdateQuantity_FullMethodName, InventoryServiceServer.UpdateQuantity),
		},
		{
			MethodName: "GetInventory",
			Handler:    unary(InventoryService_GetInventory_FullMethodName, InventoryServiceServer.GetInventory),
		},
		{
			MethodName: "PurchaseItem",
			Handler:    unary(InventoryService_PurchaseItem_FullMethodName, InventoryServiceServer.PurchaseItem),
		},
		{
			MethodName: "ReturnItem",
			Handler:    unary(InventoryService_ReturnItem_FullMethodName, InventoryServiceServer.ReturnItem),
		},
	},
	Streams: []grpc.StreamDesc{},
}
