package invoice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/danmwale/shopledger-backend/internal/apperr"
	"github.com/danmwale/shopledger-backend/internal/modules/inventory"
	"github.com/danmwale/shopledger-backend/internal/modules/notification"
	"github.com/danmwale/shopledger-backend/internal/modules/user"
)

// NumberPrefix is the sequence prefix for invoice numbers.
const NumberPrefix = "INV"

// Service defines the invoice ledger: the rules keeping stock quantities,
// invoice status, and payment totals mutually consistent.
type Service interface {
	NextNumber(ctx context.Context) (string, error)
	Create(ctx context.Context, actor user.Actor, req CreateInvoiceRequest) (*Invoice, error)
	Get(ctx context.Context, actor user.Actor, number string) (*Invoice, error)
	List(ctx context.Context, actor user.Actor) ([]*Invoice, error)
	Update(ctx context.Context, actor user.Actor, number string, req UpdateInvoiceRequest) (*Invoice, error)
	Cancel(ctx context.Context, actor user.Actor, number string) (*Invoice, error)
	AddPayment(ctx context.Context, actor user.Actor, number string, req PaymentInput) (*Invoice, error)
	ListCustomers(ctx context.Context, actor user.Actor) ([]*Customer, error)
}

// ItemStore is the slice of the inventory repository the ledger needs.
type ItemStore interface {
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*inventory.InventoryItem, error)
}

// AdminLister is the slice of the user repository the fan-out needs.
type AdminLister interface {
	ListAdmins(ctx context.Context) ([]*user.User, error)
}

type service struct {
	repo  Repository
	items ItemStore
	users AdminLister
	log   *zap.Logger
}

// NewService creates a new invoice service.
func NewService(repo Repository, items ItemStore, users AdminLister, log *zap.Logger) Service {
	return &service{repo: repo, items: items, users: users, log: log}
}

func (s *service) NextNumber(ctx context.Context) (string, error) {
	year := time.Now().Year()
	seq, err := s.repo.NextSequence(ctx, NumberPrefix, year)
	if err != nil {
		return "", apperr.Store("failed to allocate invoice number", err)
	}
	return fmt.Sprintf("%s-%d-%04d", NumberPrefix, year, seq), nil
}

func (s *service) Create(ctx context.Context, actor user.Actor, req CreateInvoiceRequest) (*Invoice, error) {
	if strings.TrimSpace(req.CustomerName) == "" {
		return nil, apperr.Validationf("customer_name is required")
	}
	if req.Discount < 0 || req.Discount > 100 {
		return nil, apperr.Validationf("discount must be between 0 and 100")
	}
	if len(req.LineItems) == 0 {
		return nil, apperr.Validationf("at least one line item is required")
	}

	requested := StatusUnpaid
	if req.Status != "" {
		requested = Status(req.Status)
		switch requested {
		case StatusUnpaid, StatusPartiallyPaid, StatusPaid:
		default:
			return nil, apperr.Validationf("invalid status for a new invoice: %s", req.Status)
		}
	}

	lines, err := buildLineItems(req.LineItems)
	if err != nil {
		return nil, err
	}

	number, err := s.NextNumber(ctx)
	if err != nil {
		return nil, err
	}

	inv := &Invoice{
		Number:        number,
		CustomerName:  strings.TrimSpace(req.CustomerName),
		CustomerPhone: strings.TrimSpace(req.CustomerPhone),
		Status:        StatusUnpaid,
		LineItems:     lines,
		Discount:      req.Discount,
		Payments:      []Payment{},
		CreatedBy:     actor.ID,
		CreatedByName: actor.Username,
		CreatedAt:     time.Now(),
	}

	// Initial payment synthesis: a Paid invoice gets one payment for the
	// full total; Partially Paid takes the supplied initial amount. A
	// zero-total invoice has nothing owed, so no payment is recorded and
	// the derived status stands.
	switch requested {
	case StatusPaid:
		if total := inv.Total(); total > 0 {
			inv.Payments = append(inv.Payments, s.synthesizePayment(actor, total, req.InitialPayment))
		}
	case StatusPartiallyPaid:
		if req.InitialPayment == nil || req.InitialPayment.Amount <= 0 {
			return nil, apperr.Validationf("a positive initial_payment amount is required for a partially paid invoice")
		}
		inv.Payments = append(inv.Payments, s.synthesizePayment(actor, req.InitialPayment.Amount, req.InitialPayment))
	}
	inv.Status = DeriveStatus(inv.AmountPaid(), inv.Total())

	deltas := stockDeltas(nil, inv.LineItems)
	adjustments, notes, err := s.prepareStockBatch(ctx, deltas)
	if err != nil {
		return nil, err
	}

	admins, err := s.users.ListAdmins(ctx)
	if err != nil {
		return nil, apperr.Store("failed to list notification recipients", err)
	}
	notes = append(notes, notification.FanOut(admins, actor.ID, actor.Username,
		fmt.Sprintf("%s created invoice %s for %s", actor.Username, inv.Number, inv.CustomerName),
		"/invoice/"+inv.Number, notification.TypeInvoice)...)

	if err := s.repo.Create(ctx, inv, adjustments, notes); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFoundf("an inventory item referenced by the invoice no longer exists")
		}
		return nil, apperr.Store("failed to create invoice", err)
	}

	s.log.Info("invoice created",
		zap.String("number", inv.Number),
		zap.String("status", string(inv.Status)),
		zap.Int("line_items", len(inv.LineItems)))
	return inv, nil
}

func (s *service) Get(ctx context.Context, actor user.Actor, number string) (*Invoice, error) {
	inv, err := s.load(ctx, number)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && inv.CreatedBy != actor.ID {
		return nil, apperr.Permissionf("you are not authorized to view this invoice")
	}
	return inv, nil
}

func (s *service) List(ctx context.Context, actor user.Actor) ([]*Invoice, error) {
	var (
		invs []*Invoice
		err  error
	)
	if actor.IsAdmin() {
		invs, err = s.repo.List(ctx)
	} else {
		invs, err = s.repo.ListByCreator(ctx, actor.ID)
	}
	if err != nil {
		return nil, apperr.Store("failed to list invoices", err)
	}
	return invs, nil
}

func (s *service) Update(ctx context.Context, actor user.Actor, number string, req UpdateInvoiceRequest) (*Invoice, error) {
	if !actor.IsAdmin() {
		return nil, apperr.Permissionf("you are not authorized to edit invoices")
	}

	inv, err := s.load(ctx, number)
	if err != nil {
		return nil, err
	}
	if inv.Status == StatusCancelled {
		return nil, apperr.Conflictf("invoice %s is cancelled and cannot be edited", number)
	}

	if req.CustomerName != nil {
		if strings.TrimSpace(*req.CustomerName) == "" {
			return nil, apperr.Validationf("customer_name must not be empty")
		}
		inv.CustomerName = strings.TrimSpace(*req.CustomerName)
	}
	if req.CustomerPhone != nil {
		inv.CustomerPhone = strings.TrimSpace(*req.CustomerPhone)
	}
	if req.Discount != nil {
		if *req.Discount < 0 || *req.Discount > 100 {
			return nil, apperr.Validationf("discount must be between 0 and 100")
		}
		inv.Discount = *req.Discount
	}

	var adjustments []StockAdjustment
	var notes []*notification.Notification
	if req.LineItems != nil {
		newLines, err := buildLineItems(req.LineItems)
		if err != nil {
			return nil, err
		}
		// Net delta per item: original lines added back, new lines
		// subtracted. An item unchanged between both nets to zero and is
		// untouched.
		deltas := stockDeltas(inv.LineItems, newLines)
		adjustments, notes, err = s.prepareStockBatch(ctx, deltas)
		if err != nil {
			return nil, err
		}
		inv.LineItems = newLines
	}

	// Re-derive status from the cumulative paid amount against the new
	// total; a price or discount change can silently flip Paid back to
	// Partially Paid.
	inv.Status = DeriveStatus(inv.AmountPaid(), inv.Total())

	if err := s.repo.Update(ctx, inv, adjustments, notes); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFoundf("invoice %s or a referenced inventory item no longer exists", number)
		}
		return nil, apperr.Store("failed to update invoice", err)
	}

	s.log.Info("invoice updated", zap.String("number", inv.Number), zap.String("status", string(inv.Status)))
	return inv, nil
}

func (s *service) Cancel(ctx context.Context, actor user.Actor, number string) (*Invoice, error) {
	if !actor.IsAdmin() {
		return nil, apperr.Permissionf("you are not authorized to cancel invoices")
	}

	inv, err := s.load(ctx, number)
	if err != nil {
		return nil, err
	}
	if inv.Status == StatusCancelled {
		return inv, nil
	}

	// Full reversal of the current line items, not the creation-time ones.
	// Payments stay untouched for audit.
	var adjustments []StockAdjustment
	for id, qty := range lineQuantities(inv.LineItems) {
		adjustments = append(adjustments, StockAdjustment{ItemID: id, Delta: qty})
	}
	sortAdjustments(adjustments)

	inv.Status = StatusCancelled
	if err := s.repo.Update(ctx, inv, adjustments, nil); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFoundf("invoice %s or a referenced inventory item no longer exists", number)
		}
		return nil, apperr.Store("failed to cancel invoice", err)
	}

	s.log.Info("invoice cancelled", zap.String("number", inv.Number))
	return inv, nil
}

func (s *service) AddPayment(ctx context.Context, actor user.Actor, number string, req PaymentInput) (*Invoice, error) {
	// Validated before any document write.
	if req.Amount <= 0 {
		return nil, apperr.Validationf("payment amount must be greater than zero")
	}
	method := MethodOther
	if req.Method != "" {
		method = Method(req.Method)
		if !ValidMethod(method) {
			return nil, apperr.Validationf("invalid payment method: %s", req.Method)
		}
	}

	inv, err := s.load(ctx, number)
	if err != nil {
		return nil, err
	}
	if inv.Status == StatusCancelled {
		return nil, apperr.Conflictf("invoice %s is cancelled; payments can no longer be recorded", number)
	}

	inv.Payments = append(inv.Payments, Payment{
		ID:            uuid.New(),
		Amount:        req.Amount,
		Date:          time.Now(),
		Method:        method,
		Notes:         req.Notes,
		CreatedBy:     actor.ID,
		CreatedByName: actor.Username,
	})
	inv.Status = DeriveStatus(inv.AmountPaid(), inv.Total())

	if err := s.repo.Save(ctx, inv); err != nil {
		return nil, apperr.Store("failed to record payment", err)
	}

	s.log.Info("payment recorded",
		zap.String("number", inv.Number),
		zap.Float64("amount", req.Amount),
		zap.String("status", string(inv.Status)))
	return inv, nil
}

func (s *service) ListCustomers(ctx context.Context, actor user.Actor) ([]*Customer, error) {
	invs, err := s.List(ctx, actor)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]*Customer)
	for _, inv := range invs {
		if inv.Status == StatusCancelled {
			continue
		}
		c, ok := byName[inv.CustomerName]
		if !ok {
			c = &Customer{Name: inv.CustomerName}
			byName[inv.CustomerName] = c
		}
		if c.Phone == "" {
			c.Phone = inv.CustomerPhone
		}
		c.InvoiceCount++
		c.TotalBilled += inv.Total()
	}
	customers := make([]*Customer, 0, len(byName))
	for _, c := range byName {
		customers = append(customers, c)
	}
	sort.Slice(customers, func(i, j int) bool { return customers[i].Name < customers[j].Name })
	return customers, nil
}

func (s *service) load(ctx context.Context, number string) (*Invoice, error) {
	inv, err := s.repo.GetByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFoundf("invoice %s not found", number)
		}
		return nil, apperr.Store("failed to load invoice", err)
	}
	return inv, nil
}

func (s *service) synthesizePayment(actor user.Actor, amount float64, input *PaymentInput) Payment {
	method := MethodCash
	notes := ""
	if input != nil {
		if m := Method(input.Method); ValidMethod(m) {
			method = m
		}
		notes = input.Notes
	}
	return Payment{
		ID:            uuid.New(),
		Amount:        amount,
		Date:          time.Now(),
		Method:        method,
		Notes:         notes,
		CreatedBy:     actor.ID,
		CreatedByName: actor.Username,
	}
}

// prepareStockBatch re-reads the referenced items, validates they exist, and
// converts the deltas into batch adjustments plus low-stock notifications.
// The crossing rule is evaluated against the pre-adjustment quantity and
// only for net-negative deltas.
func (s *service) prepareStockBatch(ctx context.Context, deltas map[uuid.UUID]int) ([]StockAdjustment, []*notification.Notification, error) {
	if len(deltas) == 0 {
		return nil, nil, nil
	}
	ids := make([]uuid.UUID, 0, len(deltas))
	for id := range deltas {
		ids = append(ids, id)
	}
	items, err := s.items.GetByIDs(ctx, ids)
	if err != nil {
		return nil, nil, apperr.Store("failed to load inventory items", err)
	}

	var admins []*user.User
	var adjustments []StockAdjustment
	var notes []*notification.Notification
	for id, delta := range deltas {
		item, ok := items[id]
		if !ok {
			return nil, nil, apperr.NotFoundf("inventory item %s not found", id)
		}
		if delta == 0 {
			continue
		}
		adjustments = append(adjustments, StockAdjustment{ItemID: id, Delta: delta})

		next := item.Quantity + delta
		if delta < 0 && inventory.CrossesReorderPoint(item.Quantity, next, item.ReorderPoint) {
			if admins == nil {
				admins, err = s.users.ListAdmins(ctx)
				if err != nil {
					return nil, nil, apperr.Store("failed to list notification recipients", err)
				}
			}
			msg := fmt.Sprintf("%s is low on stock (%d left, reorder point %d)",
				item.Name, next, item.ReorderPoint)
			notes = append(notes, notification.FanOut(admins, "", notification.SystemSender,
				msg, "/inventory/"+item.ID.String(), notification.TypeLowStock)...)
		}
	}
	sortAdjustments(adjustments)
	return adjustments, notes, nil
}

func buildLineItems(inputs []LineItemInput) ([]LineItem, error) {
	lines := make([]LineItem, 0, len(inputs))
	for i, in := range inputs {
		if in.Quantity < 1 {
			return nil, apperr.Validationf("line item %d: quantity must be at least 1", i+1)
		}
		if in.UnitPrice < 0 {
			return nil, apperr.Validationf("line item %d: unit_price must not be negative", i+1)
		}
		if strings.TrimSpace(in.Description) == "" {
			return nil, apperr.Validationf("line item %d: description is required", i+1)
		}
		line := LineItem{
			ID:             uuid.New(),
			Description:    strings.TrimSpace(in.Description),
			Quantity:       in.Quantity,
			UnitPrice:      in.UnitPrice,
			WarrantyPeriod: in.WarrantyPeriod,
		}
		if in.InventoryItemID != "" {
			itemID, err := uuid.Parse(in.InventoryItemID)
			if err != nil {
				return nil, apperr.Validationf("line item %d: invalid inventory_item_id", i+1)
			}
			line.InventoryItemID = &itemID
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// stockDeltas diffs two line-item sets into a signed per-item delta:
// old lines add stock back, new lines subtract it.
func stockDeltas(oldLines, newLines []LineItem) map[uuid.UUID]int {
	deltas := make(map[uuid.UUID]int)
	for id, qty := range lineQuantities(oldLines) {
		deltas[id] += qty
	}
	for id, qty := range lineQuantities(newLines) {
		deltas[id] -= qty
	}
	for id, delta := range deltas {
		if delta == 0 {
			delete(deltas, id)
		}
	}
	return deltas
}

func lineQuantities(lines []LineItem) map[uuid.UUID]int {
	quantities := make(map[uuid.UUID]int)
	for _, li := range lines {
		if li.InventoryItemID != nil {
			quantities[*li.InventoryItemID] += li.Quantity
		}
	}
	return quantities
}

func sortAdjustments(adjustments []StockAdjustment) {
	sort.Slice(adjustments, func(i, j int) bool {
		return adjustments[i].ItemID.String() < adjustments[j].ItemID.String()
	})
}
