package returns

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/danmwale/shopledger-backend/internal/apperr"
	"github.com/danmwale/shopledger-backend/internal/modules/inventory"
	"github.com/danmwale/shopledger-backend/internal/modules/user"
)

// NumberPrefix is the sequence prefix for return numbers. The counter is
// independent of the invoice one even though both share the sequences table.
const NumberPrefix = "RTN"

// Service defines operations on the returns ledger.
type Service interface {
	AddReturn(ctx context.Context, actor user.Actor, req AddReturnRequest) (*ReturnCase, error)
	GetReturn(ctx context.Context, actor user.Actor, id uuid.UUID) (*ReturnCase, error)
	ListReturns(ctx context.Context, actor user.Actor) ([]*ReturnCase, error)
	UpdateReturn(ctx context.Context, actor user.Actor, id uuid.UUID, req UpdateReturnRequest) (*ReturnCase, error)
}

// ItemGetter is the slice of the inventory repository used to snapshot the
// returned item's name.
type ItemGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*inventory.InventoryItem, error)
}

type service struct {
	repo  Repository
	items ItemGetter
	log   *zap.Logger
}

// NewService creates a new returns service.
func NewService(repo Repository, items ItemGetter, log *zap.Logger) Service {
	return &service{repo: repo, items: items, log: log}
}

func (s *service) AddReturn(ctx context.Context, actor user.Actor, req AddReturnRequest) (*ReturnCase, error) {
	typ := Type(req.Type)
	if !ValidType(typ) {
		return nil, apperr.Validationf("invalid return type: %s", req.Type)
	}
	if strings.TrimSpace(req.CustomerName) == "" {
		return nil, apperr.Validationf("customer_name is required")
	}
	if req.Quantity < 1 {
		return nil, apperr.Validationf("quantity must be at least 1")
	}
	if strings.TrimSpace(req.Reason) == "" {
		return nil, apperr.Validationf("reason is required")
	}
	itemID, err := uuid.Parse(req.InventoryItemID)
	if err != nil {
		return nil, apperr.Validationf("invalid inventory_item_id")
	}

	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFoundf("inventory item %s not found", itemID)
		}
		return nil, apperr.Store("failed to load inventory item", err)
	}

	year := time.Now().Year()
	seq, err := s.repo.NextSequence(ctx, NumberPrefix, year)
	if err != nil {
		return nil, apperr.Store("failed to allocate return number", err)
	}

	rc := &ReturnCase{
		ID:                uuid.New(),
		ReturnID:          fmt.Sprintf("%s-%d-%04d", NumberPrefix, year, seq),
		Type:              typ,
		Status:            StatusAwaitingInspection,
		CustomerName:      strings.TrimSpace(req.CustomerName),
		CustomerPhone:     strings.TrimSpace(req.CustomerPhone),
		InventoryItemID:   itemID,
		InventoryItemName: item.Name,
		OriginalInvoiceID: strings.TrimSpace(req.OriginalInvoiceID),
		Quantity:          req.Quantity,
		Reason:            strings.TrimSpace(req.Reason),
		Notes:             req.Notes,
		CreatedAt:         time.Now(),
		CreatedBy:         actor.ID,
		CreatedByName:     actor.Username,
	}
	if err := s.repo.Create(ctx, rc); err != nil {
		return nil, apperr.Store("failed to create return", err)
	}

	s.log.Info("return logged",
		zap.String("return_id", rc.ReturnID),
		zap.String("type", string(rc.Type)),
		zap.String("item", rc.InventoryItemName))
	return rc, nil
}

func (s *service) GetReturn(ctx context.Context, actor user.Actor, id uuid.UUID) (*ReturnCase, error) {
	rc, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && rc.CreatedBy != actor.ID {
		return nil, apperr.Permissionf("you are not authorized to view this return")
	}
	return rc, nil
}

func (s *service) ListReturns(ctx context.Context, actor user.Actor) ([]*ReturnCase, error) {
	var (
		cases []*ReturnCase
		err   error
	)
	if actor.IsAdmin() {
		cases, err = s.repo.List(ctx)
	} else {
		cases, err = s.repo.ListByCreator(ctx, actor.ID)
	}
	if err != nil {
		return nil, apperr.Store("failed to list returns", err)
	}
	return cases, nil
}

func (s *service) UpdateReturn(ctx context.Context, actor user.Actor, id uuid.UUID, req UpdateReturnRequest) (*ReturnCase, error) {
	if !actor.IsAdmin() {
		return nil, apperr.Permissionf("you are not authorized to update returns")
	}

	rc, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Status != nil {
		status := Status(*req.Status)
		if !ValidStatus(status) {
			return nil, apperr.Validationf("invalid return status: %s", *req.Status)
		}
		// The resolution date is stamped on the first transition into the
		// terminal state and never reset, even if the case re-enters it.
		if status == StatusCompleted && rc.ResolutionDate == nil {
			now := time.Now()
			rc.ResolutionDate = &now
		}
		rc.Status = status
	}
	if req.Notes != nil {
		rc.Notes = *req.Notes
	}

	if err := s.repo.Update(ctx, rc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFoundf("return %s not found", id)
		}
		return nil, apperr.Store("failed to update return", err)
	}

	s.log.Info("return updated",
		zap.String("return_id", rc.ReturnID),
		zap.String("status", string(rc.Status)))
	return rc, nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*ReturnCase, error) {
	rc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFoundf("return %s not found", id)
		}
		return nil, apperr.Store("failed to load return", err)
	}
	return rc, nil
}
