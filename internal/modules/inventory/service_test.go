package inventory

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/danmwale/shopledger-backend/internal/apperr"
	"github.com/danmwale/shopledger-backend/internal/modules/notification"
	"github.com/danmwale/shopledger-backend/internal/modules/user"
)

type fakeRepo struct {
	items map[uuid.UUID]*InventoryItem
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{items: map[uuid.UUID]*InventoryItem{}}
}

func (f *fakeRepo) Create(_ context.Context, item *InventoryItem) error {
	cp := *item
	f.items[item.ID] = &cp
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*InventoryItem, error) {
	item, ok := f.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *item
	return &cp, nil
}

func (f *fakeRepo) GetByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*InventoryItem, error) {
	out := map[uuid.UUID]*InventoryItem{}
	for _, id := range ids {
		if item, ok := f.items[id]; ok {
			cp := *item
			out[id] = &cp
		}
	}
	return out, nil
}

func (f *fakeRepo) List(_ context.Context) ([]*InventoryItem, error) {
	var out []*InventoryItem
	for _, item := range f.items {
		cp := *item
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeRepo) Update(_ context.Context, item *InventoryItem, delta, quantity *int) (int, error) {
	stored, ok := f.items[item.ID]
	if !ok {
		return 0, sql.ErrNoRows
	}
	// All-or-nothing like the real transaction: reject before mutating.
	newQty := stored.Quantity
	switch {
	case delta != nil:
		newQty += *delta
		if newQty < 0 {
			return 0, ErrStockBelowZero
		}
	case quantity != nil:
		newQty = *quantity
	}
	cp := *item
	cp.Quantity = newQty
	f.items[item.ID] = &cp
	return newQty, nil
}

func (f *fakeRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.items, id)
	return nil
}

type recordedNote struct {
	excludeID  string
	senderName string
	message    string
	typ        notification.Type
}

type fakeNotifier struct {
	sent []recordedNote
}

func (f *fakeNotifier) NotifyAdmins(_ context.Context, excludeID, senderName, message, _ string, typ notification.Type) error {
	f.sent = append(f.sent, recordedNote{excludeID: excludeID, senderName: senderName, message: message, typ: typ})
	return nil
}

var (
	admin = user.Actor{ID: uuid.NewString(), Username: "grace", Role: user.RoleAdmin}
	staff = user.Actor{ID: uuid.NewString(), Username: "moses", Role: user.RoleStaff}
)

func seedItem(repo *fakeRepo, quantity, reorderPoint int) *InventoryItem {
	item := &InventoryItem{
		ID:           uuid.New(),
		Name:         "SSD 1TB",
		Quantity:     quantity,
		ReorderPoint: reorderPoint,
		CostPrice:    90,
		SellingPrice: 150,
		Status:       StatusAvailable,
	}
	repo.items[item.ID] = item
	return item
}

func TestAddItemRequiresAdmin(t *testing.T) {
	repo := newFakeRepo()
	notifier := &fakeNotifier{}
	svc := NewService(repo, notifier, zap.NewNop())

	_, err := svc.AddItem(context.Background(), staff, AddItemRequest{Name: "Mouse", Quantity: 5})
	assert.True(t, apperr.IsKind(err, apperr.KindPermission))
	assert.Empty(t, repo.items)
}

func TestAddItemNotifiesOtherAdmins(t *testing.T) {
	repo := newFakeRepo()
	notifier := &fakeNotifier{}
	svc := NewService(repo, notifier, zap.NewNop())

	item, err := svc.AddItem(context.Background(), admin, AddItemRequest{Name: "Mouse", Quantity: 5})
	require.NoError(t, err)
	assert.Equal(t, StatusAvailable, item.Status)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, admin.ID, notifier.sent[0].excludeID)
	assert.Equal(t, "grace", notifier.sent[0].senderName)
	assert.Equal(t, notification.TypeInventory, notifier.sent[0].typ)
}

func TestCrossesReorderPoint(t *testing.T) {
	assert.True(t, CrossesReorderPoint(5, 4, 4))
	assert.True(t, CrossesReorderPoint(10, 0, 4))
	assert.False(t, CrossesReorderPoint(4, 3, 4), "already at or below, no re-fire")
	assert.False(t, CrossesReorderPoint(3, 5, 4), "increments never cross")
	assert.False(t, CrossesReorderPoint(5, 5, 4))
}

func TestUpdateItemStockDelta(t *testing.T) {
	repo := newFakeRepo()
	notifier := &fakeNotifier{}
	svc := NewService(repo, notifier, zap.NewNop())
	item := seedItem(repo, 10, 4)

	delta := -7
	updated, err := svc.UpdateItem(context.Background(), admin, item.ID.String(), UpdateItemRequest{StockDelta: &delta})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Quantity)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, notification.TypeLowStock, notifier.sent[0].typ)
	assert.Equal(t, notification.SystemSender, notifier.sent[0].senderName)
	assert.Empty(t, notifier.sent[0].excludeID, "low stock alerts address every admin")

	// Further decrement while already low must not fire again.
	delta = -1
	_, err = svc.UpdateItem(context.Background(), admin, item.ID.String(), UpdateItemRequest{StockDelta: &delta})
	require.NoError(t, err)
	assert.Len(t, notifier.sent, 1)
}

func TestUpdateItemRejectsNegativeResult(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, &fakeNotifier{}, zap.NewNop())
	item := seedItem(repo, 3, 1)

	delta := -5
	_, err := svc.UpdateItem(context.Background(), admin, item.ID.String(), UpdateItemRequest{StockDelta: &delta})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	assert.Equal(t, 3, repo.items[item.ID].Quantity)
}

func TestUpdateItemRejectedDeltaLeavesFieldsUntouched(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, &fakeNotifier{}, zap.NewNop())
	item := seedItem(repo, 3, 1)

	name := "Renamed SSD"
	delta := -5
	_, err := svc.UpdateItem(context.Background(), admin, item.ID.String(), UpdateItemRequest{
		Name: &name, StockDelta: &delta,
	})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	// The whole update is rejected: no field edit may land alongside a
	// refused stock change.
	stored := repo.items[item.ID]
	assert.Equal(t, "SSD 1TB", stored.Name)
	assert.Equal(t, 3, stored.Quantity)
}

func TestUpdateItemDeltaAndQuantityExclusive(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, &fakeNotifier{}, zap.NewNop())
	item := seedItem(repo, 3, 1)

	delta, qty := -1, 5
	_, err := svc.UpdateItem(context.Background(), admin, item.ID.String(), UpdateItemRequest{
		StockDelta: &delta, Quantity: &qty,
	})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestCostPriceRedaction(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, &fakeNotifier{}, zap.NewNop())
	item := seedItem(repo, 10, 4)

	forStaff, err := svc.GetItem(context.Background(), staff, item.ID.String())
	require.NoError(t, err)
	assert.Zero(t, forStaff.CostPrice)
	assert.Equal(t, 150.0, forStaff.SellingPrice)

	forAdmin, err := svc.GetItem(context.Background(), admin, item.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 90.0, forAdmin.CostPrice)

	// The stored document keeps its cost price.
	assert.Equal(t, 90.0, repo.items[item.ID].CostPrice)

	listed, err := svc.ListItems(context.Background(), staff)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Zero(t, listed[0].CostPrice)
}

func TestDeleteItemRequiresAdmin(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, &fakeNotifier{}, zap.NewNop())
	item := seedItem(repo, 10, 4)

	err := svc.DeleteItem(context.Background(), staff, item.ID.String())
	assert.True(t, apperr.IsKind(err, apperr.KindPermission))

	require.NoError(t, svc.DeleteItem(context.Background(), admin, item.ID.String()))
	assert.Empty(t, repo.items)
}
