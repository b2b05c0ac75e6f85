package port

import (
	"context"

	"github.com/rl1809/stockroom/internal/core/domain"
)

// InventoryRepository is the only component allowed to mutate stock.
// Mutations of a single item are linearizable; mutations of different items
// never wait on each other.
type InventoryRepository interface {
	// EnsureSchema creates the backing table/key space if it does not exist yet
	EnsureSchema(ctx context.Context) error

	// Create inserts a new item, failing with domain.ErrAlreadyExists on a duplicate name
	Create(ctx context.Context, name string, quantity int) error

	// Delete removes an item, failing with domain.ErrNotFound if it is absent
	Delete(ctx context.Context, name string) error

	// SetQuantity overwrites the quantity of an existing item
	SetQuantity(ctx context.Context, name string, quantity int) error

	// Adjust atomically applies delta and returns the new quantity.
	// It fails with domain.ErrOutOfStock if the result would be negative
	// and with domain.ErrQuantityLimit if it would exceed domain.MaxQuantity.
	Adjust(ctx context.Context, name string, delta int) (int, error)

	// List returns a snapshot of all items in no particular order
	List(ctx context.Context) ([]domain.Item, error)

	// Close releases the underlying resources
	Close() error
}
