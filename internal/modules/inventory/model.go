package inventory

import (
	"time"

	"github.com/google/uuid"

	"github.com/danmwale/shopledger-backend/internal/modules/user"
)

// ItemStatus represents the physical condition of an inventory item.
type ItemStatus string

const (
	StatusAvailable          ItemStatus = "Available"
	StatusAwaitingInspection ItemStatus = "Awaiting Inspection"
	StatusDamaged            ItemStatus = "Damaged"
	StatusForRepair          ItemStatus = "For Repair"
)

// ValidStatus reports whether s is a known item status.
func ValidStatus(s ItemStatus) bool {
	switch s {
	case StatusAvailable, StatusAwaitingInspection, StatusDamaged, StatusForRepair:
		return true
	}
	return false
}

// InventoryItem is a stocked product. Quantity is only mutated through
// ledger operations so that low-stock crossings are always evaluated.
type InventoryItem struct {
	ID             uuid.UUID  `json:"id"`
	Name           string     `json:"name"`
	Category       string     `json:"category,omitempty"`
	Brand          string     `json:"brand,omitempty"`
	Quantity       int        `json:"quantity"`
	SellingPrice   float64    `json:"selling_price"`
	CostPrice      float64    `json:"cost_price"`
	ReorderPoint   int        `json:"reorder_point"`
	Status         ItemStatus `json:"status"`
	WarrantyPeriod string     `json:"warranty_period,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// Redacted returns a copy projected for the actor's role. Cost price is
// zeroed for non-admins at the read boundary; the stored document is never
// mutated.
func (i *InventoryItem) Redacted(actor user.Actor) *InventoryItem {
	out := *i
	if !actor.IsAdmin() {
		out.CostPrice = 0
	}
	return &out
}

// CrossesReorderPoint reports whether a quantity change moved from above
// the reorder point to at-or-below it. Repeated decrements while already
// low, and any increment, never count as a crossing.
func CrossesReorderPoint(prev, next, reorderPoint int) bool {
	return prev > reorderPoint && next <= reorderPoint
}

// AddItemRequest is the payload for creating an inventory item.
type AddItemRequest struct {
	Name           string  `json:"name"`
	Category       string  `json:"category,omitempty"`
	Brand          string  `json:"brand,omitempty"`
	Quantity       int     `json:"quantity"`
	SellingPrice   float64 `json:"selling_price"`
	CostPrice      float64 `json:"cost_price"`
	ReorderPoint   int     `json:"reorder_point"`
	Status         string  `json:"status,omitempty"`
	WarrantyPeriod string  `json:"warranty_period,omitempty"`
}

// UpdateItemRequest is the payload for patching an item. StockDelta is a
// relative adjustment applied as an atomic increment; Quantity is an
// absolute overwrite. Supplying both is rejected.
type UpdateItemRequest struct {
	Name           *string  `json:"name,omitempty"`
	Category       *string  `json:"category,omitempty"`
	Brand          *string  `json:"brand,omitempty"`
	Quantity       *int     `json:"quantity,omitempty"`
	StockDelta     *int     `json:"stock_delta,omitempty"`
	SellingPrice   *float64 `json:"selling_price,omitempty"`
	CostPrice      *float64 `json:"cost_price,omitempty"`
	ReorderPoint   *int     `json:"reorder_point,omitempty"`
	Status         *string  `json:"status,omitempty"`
	WarrantyPeriod *string  `json:"warranty_period,omitempty"`
}
