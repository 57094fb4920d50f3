package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/danmwale/shopledger-backend/internal/apperr"
	"github.com/danmwale/shopledger-backend/internal/modules/notification"
	"github.com/danmwale/shopledger-backend/internal/modules/user"
)

// Service defines inventory business logic.
type Service interface {
	AddItem(ctx context.Context, actor user.Actor, req AddItemRequest) (*InventoryItem, error)
	GetItem(ctx context.Context, actor user.Actor, id string) (*InventoryItem, error)
	ListItems(ctx context.Context, actor user.Actor) ([]*InventoryItem, error)
	UpdateItem(ctx context.Context, actor user.Actor, id string, req UpdateItemRequest) (*InventoryItem, error)
	DeleteItem(ctx context.Context, actor user.Actor, id string) error
}

// Notifier is the slice of the notification service the ledger needs.
type Notifier interface {
	NotifyAdmins(ctx context.Context, excludeID, senderName, message, link string, typ notification.Type) error
}

type service struct {
	repo     Repository
	notifier Notifier
	log      *zap.Logger
}

// NewService creates a new inventory service.
func NewService(repo Repository, notifier Notifier, log *zap.Logger) Service {
	return &service{repo: repo, notifier: notifier, log: log}
}

func (s *service) AddItem(ctx context.Context, actor user.Actor, req AddItemRequest) (*InventoryItem, error) {
	if !actor.IsAdmin() {
		return nil, apperr.Permissionf("you do not have permission to add items")
	}
	if req.Name == "" {
		return nil, apperr.Validationf("name is required")
	}
	if req.Quantity < 0 {
		return nil, apperr.Validationf("quantity must not be negative")
	}
	if req.ReorderPoint < 0 {
		return nil, apperr.Validationf("reorder_point must not be negative")
	}
	status := StatusAvailable
	if req.Status != "" {
		status = ItemStatus(req.Status)
		if !ValidStatus(status) {
			return nil, apperr.Validationf("invalid status: %s", req.Status)
		}
	}

	item := &InventoryItem{
		ID:             uuid.New(),
		Name:           req.Name,
		Category:       req.Category,
		Brand:          req.Brand,
		Quantity:       req.Quantity,
		SellingPrice:   req.SellingPrice,
		CostPrice:      req.CostPrice,
		ReorderPoint:   req.ReorderPoint,
		Status:         status,
		WarrantyPeriod: req.WarrantyPeriod,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, apperr.Store("failed to add inventory item", err)
	}

	s.fanOut(ctx, actor.ID, actor.Username,
		fmt.Sprintf("%s added %s to inventory", actor.Username, item.Name),
		"/inventory/"+item.ID.String(), notification.TypeInventory)

	return item, nil
}

func (s *service) GetItem(ctx context.Context, actor user.Actor, id string) (*InventoryItem, error) {
	item, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return item.Redacted(actor), nil
}

func (s *service) ListItems(ctx context.Context, actor user.Actor) ([]*InventoryItem, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperr.Store("failed to list inventory", err)
	}
	out := make([]*InventoryItem, len(items))
	for i, item := range items {
		out[i] = item.Redacted(actor)
	}
	return out, nil
}

func (s *service) UpdateItem(ctx context.Context, actor user.Actor, id string, req UpdateItemRequest) (*InventoryItem, error) {
	if !actor.IsAdmin() {
		return nil, apperr.Permissionf("you do not have permission to update items")
	}
	if req.Quantity != nil && req.StockDelta != nil {
		return nil, apperr.Validationf("quantity and stock_delta are mutually exclusive")
	}

	item, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, apperr.Validationf("name must not be empty")
		}
		item.Name = *req.Name
	}
	if req.Category != nil {
		item.Category = *req.Category
	}
	if req.Brand != nil {
		item.Brand = *req.Brand
	}
	if req.SellingPrice != nil {
		item.SellingPrice = *req.SellingPrice
	}
	if req.CostPrice != nil {
		item.CostPrice = *req.CostPrice
	}
	if req.ReorderPoint != nil {
		if *req.ReorderPoint < 0 {
			return nil, apperr.Validationf("reorder_point must not be negative")
		}
		item.ReorderPoint = *req.ReorderPoint
	}
	if req.Status != nil {
		status := ItemStatus(*req.Status)
		if !ValidStatus(status) {
			return nil, apperr.Validationf("invalid status: %s", *req.Status)
		}
		item.Status = status
	}
	if req.WarrantyPeriod != nil {
		item.WarrantyPeriod = *req.WarrantyPeriod
	}

	// All validation happens before any write so a rejected request leaves
	// the item untouched.
	delta := req.StockDelta
	if delta != nil {
		if *delta == 0 {
			delta = nil
		} else if item.Quantity+*delta < 0 {
			return nil, apperr.Validationf("stock_delta would make quantity negative")
		}
	}
	if req.Quantity != nil && *req.Quantity < 0 {
		return nil, apperr.Validationf("quantity must not be negative")
	}

	prev := item.Quantity
	newQty, err := s.repo.Update(ctx, item, delta, req.Quantity)
	if err != nil {
		if errors.Is(err, ErrStockBelowZero) {
			return nil, apperr.Validationf("stock_delta would make quantity negative")
		}
		return nil, apperr.Store("failed to update inventory item", err)
	}
	item.Quantity = newQty

	switch {
	case delta != nil:
		// prev is derived from the persisted quantity, not the cached copy.
		prev = newQty - *delta
		if *delta < 0 && CrossesReorderPoint(prev, newQty, item.ReorderPoint) {
			s.lowStockAlert(ctx, item)
		}
	case req.Quantity != nil:
		if newQty < prev && CrossesReorderPoint(prev, newQty, item.ReorderPoint) {
			s.lowStockAlert(ctx, item)
		}
	}

	return item, nil
}

func (s *service) DeleteItem(ctx context.Context, actor user.Actor, id string) error {
	if !actor.IsAdmin() {
		return apperr.Permissionf("you do not have permission to delete items")
	}
	itemID, err := uuid.Parse(id)
	if err != nil {
		return apperr.Validationf("invalid item id: %s", id)
	}
	// Deletes are unconditional: invoices referencing the item keep their
	// line-item snapshots and are not checked here.
	if err := s.repo.Delete(ctx, itemID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFoundf("inventory item %s not found", id)
		}
		return apperr.Store("failed to delete inventory item", err)
	}
	return nil
}

func (s *service) load(ctx context.Context, id string) (*InventoryItem, error) {
	itemID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.Validationf("invalid item id: %s", id)
	}
	item, err := s.repo.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFoundf("inventory item %s not found", id)
		}
		return nil, apperr.Store("failed to load inventory item", err)
	}
	return item, nil
}

func (s *service) lowStockAlert(ctx context.Context, item *InventoryItem) {
	msg := fmt.Sprintf("%s is low on stock (%d left, reorder point %d)",
		item.Name, item.Quantity, item.ReorderPoint)
	s.fanOut(ctx, "", notification.SystemSender, msg,
		"/inventory/"+item.ID.String(), notification.TypeLowStock)
}

// fanOut writes notifications as a fire-and-forget side effect; a failed
// fan-out never fails the primary mutation.
func (s *service) fanOut(ctx context.Context, excludeID, sender, message, link string, typ notification.Type) {
	if err := s.notifier.NotifyAdmins(ctx, excludeID, sender, message, link, typ); err != nil {
		s.log.Warn("notification fan-out failed", zap.Error(err), zap.String("message", message))
	}
}
