package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrStockBelowZero is returned when a relative adjustment would drive the
// quantity negative; the whole update rolls back.
var ErrStockBelowZero = errors.New("stock adjustment would drive quantity below zero")

// Repository defines data access for inventory items.
type Repository interface {
	Create(ctx context.Context, item *InventoryItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*InventoryItem, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*InventoryItem, error)
	List(ctx context.Context) ([]*InventoryItem, error)
	// Update overwrites every non-quantity field of the item and applies the
	// optional quantity change in a single transaction, returning the
	// resulting quantity. Delta is a relative increment, quantity an
	// absolute overwrite; at most one is set. Any failure, including
	// ErrStockBelowZero, rolls the whole update back.
	Update(ctx context.Context, item *InventoryItem, delta, quantity *int) (int, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
