package handler

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/rl1809/stockroom/internal/adapter/handler/pb"
	"github.com/rl1809/stockroom/internal/core/domain"
	"github.com/rl1809/stockroom/internal/core/service"
	"github.com/rl1809/stockroom/internal/logging"
)

type GRPCHandler struct {
	pb.UnimplementedInventoryServiceServer
	inventory *service.InventoryService
	logger    *logging.Logger
}

func NewGRPCHandler(inventory *service.InventoryService, logger *logging.Logger) *GRPCHandler {
	if logger == nil {
		logger = logging.Nop()
	}
	return &GRPCHandler{inventory: inventory, logger: logger.WithComponent("grpc")}
}

func (h *GRPCHandler) AddItem(ctx context.Context, req *pb.AddItemRequest) (*pb.MessageResponse, error) {
	if req.GetName() == "" {
		return nil, status.Error(codes.InvalidArgument, "name is required")
	}
	if err := h.inventory.AddItem(ctx, req.GetName(), int(req.GetQuantity())); err != nil {
		return nil, h.toStatus(err)
	}
	return &pb.MessageResponse{Message: "Item added successfully"}, nil
}

func (h *GRPCHandler) RemoveItem(ctx context.Context, req *pb.RemoveItemRequest) (*pb.MessageResponse, error) {
	if req.GetName() == "" {
		return nil, status.Error(codes.InvalidArgument, "name is required")
	}
	if err := h.inventory.RemoveItem(ctx, req.GetName()); err != nil {
		return nil, h.toStatus(err)
	}
	return &pb.MessageResponse{Message: "Item removed successfully"}, nil
}

func (h *GRPCHandler) UpdateQuantity(ctx context.Context, req *pb.UpdateQuantityRequest) (*pb.MessageResponse, error) {
	if req.GetName() == "" {
		return nil, status.Error(codes.InvalidArgument, "name is required")
	}
	if err := h.inventory.UpdateQuantity(ctx, req.GetName(), int(req.GetNewQuantity())); err != nil {
		return nil, h.toStatus(err)
	}
	return &pb.MessageResponse{Message: "Quantity updated successfully"}, nil
}

func (h *GRPCHandler) GetInventory(ctx context.Context, _ *pb.GetInventoryRequest) (*pb.GetInventoryResponse, error) {
	items, err := h.inventory.ListItems(ctx)
	if err != nil {
		return nil, h.toStatus(err)
	}

	resp := &pb.GetInventoryResponse{Inventory: make([]*pb.Item, 0, len(items))}
	for _, item := range items {
		// Stored quantities never exceed domain.MaxQuantity
		resp.Inventory = append(resp.Inventory, &pb.Item{Name: item.Name, Quantity: int32(item.Quantity)})
	}
	return resp, nil
}

func (h *GRPCHandler) PurchaseItem(ctx context.Context, req *pb.StockRequest) (*pb.StockResponse, error) {
	if req.GetName() == "" {
		return nil, status.Error(codes.InvalidArgument, "name is required")
	}
	quantity, err := h.inventory.Purchase(ctx, req.GetName())
	if err != nil {
		return nil, h.toStatus(err)
	}
	return &pb.StockResponse{Message: "Item purchased successfully", Quantity: int32(quantity)}, nil
}

func (h *GRPCHandler) ReturnItem(ctx context.Context, req *pb.StockRequest) (*pb.StockResponse, error) {
	if req.GetName() == "" {
		return nil, status.Error(codes.InvalidArgument, "name is required")
	}
	quantity, err := h.inventory.Return(ctx, req.GetName())
	if err != nil {
		return nil, h.toStatus(err)
	}
	return &pb.StockResponse{Message: "Item returned successfully", Quantity: int32(quantity)}, nil
}

func (h *GRPCHandler) toStatus(err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrAlreadyExists):
		return status.Error(codes.AlreadyExists, "Item already exists")
	case errors.Is(err, domain.ErrNotFound):
		return status.Error(codes.NotFound, "Item not found")
	case errors.Is(err, domain.ErrOutOfStock):
		return status.Error(codes.FailedPrecondition, "Item is out of stock")
	case errors.Is(err, domain.ErrQuantityLimit):
		return status.Error(codes.OutOfRange, quantityLimitMessage)
	default:
		h.logger.WithError(err).Error("Request failed")
		return status.Error(codes.Internal, "internal error")
	}
}
