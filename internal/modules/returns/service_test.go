package returns

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/danmwale/shopledger-backend/internal/apperr"
	"github.com/danmwale/shopledger-backend/internal/modules/inventory"
	"github.com/danmwale/shopledger-backend/internal/modules/user"
)

type fakeRepo struct {
	seq   map[string]int
	cases map[uuid.UUID]*ReturnCase
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{seq: map[string]int{}, cases: map[uuid.UUID]*ReturnCase{}}
}

func (f *fakeRepo) NextSequence(_ context.Context, prefix string, year int) (int, error) {
	key := fmt.Sprintf("%s-%d", prefix, year)
	f.seq[key]++
	return f.seq[key], nil
}

func (f *fakeRepo) Create(_ context.Context, rc *ReturnCase) error {
	cp := *rc
	f.cases[rc.ID] = &cp
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*ReturnCase, error) {
	rc, ok := f.cases[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *rc
	return &cp, nil
}

func (f *fakeRepo) Update(_ context.Context, rc *ReturnCase) error {
	if _, ok := f.cases[rc.ID]; !ok {
		return sql.ErrNoRows
	}
	cp := *rc
	f.cases[rc.ID] = &cp
	return nil
}

func (f *fakeRepo) List(_ context.Context) ([]*ReturnCase, error) {
	var out []*ReturnCase
	for _, rc := range f.cases {
		cp := *rc
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeRepo) ListByCreator(_ context.Context, creatorID string) ([]*ReturnCase, error) {
	var out []*ReturnCase
	for _, rc := range f.cases {
		if rc.CreatedBy == creatorID {
			cp := *rc
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeItems struct {
	items map[uuid.UUID]*inventory.InventoryItem
}

func (f *fakeItems) GetByID(_ context.Context, id uuid.UUID) (*inventory.InventoryItem, error) {
	item, ok := f.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return item, nil
}

var (
	admin = user.Actor{ID: uuid.NewString(), Username: "grace", Role: user.RoleAdmin}
	staff = user.Actor{ID: uuid.NewString(), Username: "moses", Role: user.RoleStaff}
)

func newTestService(repo *fakeRepo) (Service, uuid.UUID) {
	itemID := uuid.New()
	items := &fakeItems{items: map[uuid.UUID]*inventory.InventoryItem{
		itemID: {ID: itemID, Name: "HP LaserJet"},
	}}
	return NewService(repo, items, zap.NewNop()), itemID
}

func validRequest(itemID uuid.UUID) AddReturnRequest {
	return AddReturnRequest{
		Type:            string(TypeCustomer),
		CustomerName:    "Banda",
		InventoryItemID: itemID.String(),
		Quantity:        1,
		Reason:          "paper jam",
	}
}

func TestAddReturnSnapshotsItemName(t *testing.T) {
	repo := newFakeRepo()
	svc, itemID := newTestService(repo)

	rc, err := svc.AddReturn(context.Background(), staff, validRequest(itemID))
	require.NoError(t, err)

	assert.Equal(t, fmt.Sprintf("RTN-%d-0001", time.Now().Year()), rc.ReturnID)
	assert.Equal(t, "HP LaserJet", rc.InventoryItemName)
	assert.Equal(t, StatusAwaitingInspection, rc.Status)
	assert.Nil(t, rc.ResolutionDate)
	assert.Equal(t, staff.ID, rc.CreatedBy)
	assert.Equal(t, "moses", rc.CreatedByName)
}

func TestAddReturnUnknownItem(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(repo)

	_, err := svc.AddReturn(context.Background(), staff, validRequest(uuid.New()))
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestAddReturnValidation(t *testing.T) {
	repo := newFakeRepo()
	svc, itemID := newTestService(repo)

	bad := validRequest(itemID)
	bad.Type = "Gift"
	_, err := svc.AddReturn(context.Background(), staff, bad)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	bad = validRequest(itemID)
	bad.Quantity = 0
	_, err = svc.AddReturn(context.Background(), staff, bad)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestUpdateReturnRequiresAdmin(t *testing.T) {
	repo := newFakeRepo()
	svc, itemID := newTestService(repo)

	rc, err := svc.AddReturn(context.Background(), staff, validRequest(itemID))
	require.NoError(t, err)

	status := string(StatusUnderRepair)
	_, err = svc.UpdateReturn(context.Background(), staff, rc.ID, UpdateReturnRequest{Status: &status})
	assert.True(t, apperr.IsKind(err, apperr.KindPermission))
}

func TestResolutionDateStampedOnce(t *testing.T) {
	repo := newFakeRepo()
	svc, itemID := newTestService(repo)

	rc, err := svc.AddReturn(context.Background(), staff, validRequest(itemID))
	require.NoError(t, err)

	closed := string(StatusCompleted)
	first, err := svc.UpdateReturn(context.Background(), admin, rc.ID, UpdateReturnRequest{Status: &closed})
	require.NoError(t, err)
	require.NotNil(t, first.ResolutionDate)
	stamped := *first.ResolutionDate

	// Re-opening and closing again must not move the date.
	reopened := string(StatusUnderRepair)
	_, err = svc.UpdateReturn(context.Background(), admin, rc.ID, UpdateReturnRequest{Status: &reopened})
	require.NoError(t, err)

	second, err := svc.UpdateReturn(context.Background(), admin, rc.ID, UpdateReturnRequest{Status: &closed})
	require.NoError(t, err)
	require.NotNil(t, second.ResolutionDate)
	assert.True(t, stamped.Equal(*second.ResolutionDate))
}

func TestUpdateReturnNotesOnly(t *testing.T) {
	repo := newFakeRepo()
	svc, itemID := newTestService(repo)

	rc, err := svc.AddReturn(context.Background(), staff, validRequest(itemID))
	require.NoError(t, err)

	notes := "customer called twice"
	updated, err := svc.UpdateReturn(context.Background(), admin, rc.ID, UpdateReturnRequest{Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, notes, updated.Notes)
	assert.Equal(t, StatusAwaitingInspection, updated.Status)
	assert.Nil(t, updated.ResolutionDate)
}

func TestStaffSeesOnlyOwnReturns(t *testing.T) {
	repo := newFakeRepo()
	svc, itemID := newTestService(repo)

	mine, err := svc.AddReturn(context.Background(), staff, validRequest(itemID))
	require.NoError(t, err)
	theirs, err := svc.AddReturn(context.Background(), admin, validRequest(itemID))
	require.NoError(t, err)

	listed, err := svc.ListReturns(context.Background(), staff)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, mine.ID, listed[0].ID)

	all, err := svc.ListReturns(context.Background(), admin)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = svc.GetReturn(context.Background(), staff, theirs.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindPermission))
}
