package service

import (
	"context"
	"errors"
	"time"

	"github.com/rl1809/stockroom/internal/core/domain"
	"github.com/rl1809/stockroom/internal/logging"
	"github.com/rl1809/stockroom/internal/port"
)

// OperationRecorder counts inventory operations by outcome.
type OperationRecorder interface {
	RecordOperation(operation, result string)
}

type nopRecorder struct{}

func (nopRecorder) RecordOperation(string, string) {}

// InventoryService is the single entry point both front ends use to reach
// the store.
type InventoryService struct {
	repo     port.InventoryRepository
	logger   *logging.Logger
	recorder OperationRecorder
}

func NewInventoryService(repo port.InventoryRepository, logger *logging.Logger, recorder OperationRecorder) *InventoryService {
	if logger == nil {
		logger = logging.Nop()
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &InventoryService{
		repo:     repo,
		logger:   logger.WithComponent("inventory"),
		recorder: recorder,
	}
}

func (s *InventoryService) AddItem(ctx context.Context, name string, quantity int) error {
	start := time.Now()
	err := s.repo.Create(ctx, name, quantity)
	s.observe(ctx, "add", name, start, err)
	return err
}

func (s *InventoryService) RemoveItem(ctx context.Context, name string) error {
	start := time.Now()
	err := s.repo.Delete(ctx, name)
	s.observe(ctx, "remove", name, start, err)
	return err
}

func (s *InventoryService) UpdateQuantity(ctx context.Context, name string, quantity int) error {
	start := time.Now()
	err := s.repo.SetQuantity(ctx, name, quantity)
	s.observe(ctx, "update", name, start, err)
	return err
}

// Purchase takes one unit of stock and returns the remaining quantity.
func (s *InventoryService) Purchase(ctx context.Context, name string) (int, error) {
	start := time.Now()
	quantity, err := s.repo.Adjust(ctx, name, -1)
	s.observe(ctx, "purchase", name, start, err)
	return quantity, err
}

// Return puts one unit back. There is no upper bound.
func (s *InventoryService) Return(ctx context.Context, name string) (int, error) {
	start := time.Now()
	quantity, err := s.repo.Adjust(ctx, name, 1)
	s.observe(ctx, "return", name, start, err)
	return quantity, err
}

// ListItems never returns a nil slice, so an empty store encodes as [].
func (s *InventoryService) ListItems(ctx context.Context) ([]domain.Item, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		s.recorder.RecordOperation("list", ResultLabel(err))
		s.logger.WithContext(ctx).WithError(err).Error("List inventory failed")
		return nil, err
	}
	s.recorder.RecordOperation("list", ResultLabel(nil))
	if items == nil {
		items = []domain.Item{}
	}
	return items, nil
}

func (s *InventoryService) observe(ctx context.Context, operation, name string, start time.Time, err error) {
	result := ResultLabel(err)
	s.recorder.RecordOperation(operation, result)

	if result == "error" {
		s.logger.WithContext(ctx).WithError(err).Error("Inventory operation failed",
			"operation", operation,
			"item", name,
		)
		return
	}
	s.logger.StoreOperation(ctx, operation, name, time.Since(start), err)
}

// ResultLabel names the outcome of an operation for metrics and logs.
// Anything that is not a domain error is reported as "error".
func ResultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, domain.ErrAlreadyExists):
		return "already_exists"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrOutOfStock):
		return "out_of_stock"
	case errors.Is(err, domain.ErrQuantityLimit):
		return "quantity_limit"
	default:
		return "error"
	}
}
