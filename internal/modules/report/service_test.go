package report

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danmwale/shopledger-backend/internal/apperr"
	"github.com/danmwale/shopledger-backend/internal/modules/inventory"
	"github.com/danmwale/shopledger-backend/internal/modules/invoice"
	"github.com/danmwale/shopledger-backend/internal/modules/user"
)

type fakeInventory struct{ items []*inventory.InventoryItem }

func (f *fakeInventory) List(_ context.Context) ([]*inventory.InventoryItem, error) {
	return f.items, nil
}

type fakeInvoices struct{ invoices []*invoice.Invoice }

func (f *fakeInvoices) List(_ context.Context) ([]*invoice.Invoice, error) {
	return f.invoices, nil
}

var (
	admin = user.Actor{ID: uuid.NewString(), Username: "grace", Role: user.RoleAdmin}
	staff = user.Actor{ID: uuid.NewString(), Username: "moses", Role: user.RoleStaff}
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func testInvoice(number, customer string, created time.Time, status invoice.Status, qty int, price float64) *invoice.Invoice {
	return &invoice.Invoice{
		Number:       number,
		CustomerName: customer,
		Status:       status,
		LineItems:    []invoice.LineItem{{Quantity: qty, UnitPrice: price}},
		CreatedAt:    created,
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	columns := []Column{{Key: "name", Title: "Name"}, {Key: "qty", Title: "Quantity"}}
	rows := []map[string]string{
		{"name": "SSD 1TB", "qty": "7"},
		{"name": "Cable, HDMI", "qty": "12"},
	}
	require.NoError(t, WriteCSV(&buf, columns, rows))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Name,Quantity", lines[0])
	assert.Equal(t, "SSD 1TB,7", lines[1])
	assert.Equal(t, `"Cable, HDMI",12`, lines[2], "commas in cells are quoted")
}

func TestExportInventoryRequiresAdmin(t *testing.T) {
	svc := NewService(&fakeInventory{}, &fakeInvoices{})

	var buf bytes.Buffer
	err := svc.ExportInventory(context.Background(), staff, &buf)
	assert.True(t, apperr.IsKind(err, apperr.KindPermission))
	assert.Zero(t, buf.Len())
}

func TestExportInventory(t *testing.T) {
	svc := NewService(&fakeInventory{items: []*inventory.InventoryItem{
		{Name: "SSD 1TB", Quantity: 7, ReorderPoint: 2, CostPrice: 90, SellingPrice: 150, Status: inventory.StatusAvailable},
	}}, &fakeInvoices{})

	var buf bytes.Buffer
	require.NoError(t, svc.ExportInventory(context.Background(), admin, &buf))

	out := buf.String()
	assert.Contains(t, out, "SSD 1TB")
	assert.Contains(t, out, "90.00")
	assert.Contains(t, out, "150.00")
}

func TestExportInvoices(t *testing.T) {
	svc := NewService(&fakeInventory{}, &fakeInvoices{invoices: []*invoice.Invoice{
		testInvoice("INV-2026-0001", "Banda", day("2026-08-01"), invoice.StatusUnpaid, 2, 100),
	}})

	var buf bytes.Buffer
	require.NoError(t, svc.ExportInvoices(context.Background(), admin, &buf))

	out := buf.String()
	assert.Contains(t, out, "INV-2026-0001")
	assert.Contains(t, out, "200.00")
}

func TestSalesSummarySkipsCancelled(t *testing.T) {
	svc := NewService(&fakeInventory{}, &fakeInvoices{invoices: []*invoice.Invoice{
		testInvoice("INV-2026-0001", "A", day("2026-08-01"), invoice.StatusPaid, 1, 100),
		testInvoice("INV-2026-0002", "B", day("2026-08-01"), invoice.StatusUnpaid, 2, 50),
		testInvoice("INV-2026-0003", "C", day("2026-08-01"), invoice.StatusCancelled, 4, 25),
		testInvoice("INV-2026-0004", "D", day("2026-08-03"), invoice.StatusPaid, 1, 75),
	}})

	summary, err := svc.SalesSummary(context.Background(), admin)
	require.NoError(t, err)
	require.Len(t, summary, 2)

	assert.Equal(t, "2026-08-01", summary[0].Date)
	assert.Equal(t, 200.0, summary[0].Total)
	assert.Equal(t, 2, summary[0].Invoices)
	assert.Equal(t, "2026-08-03", summary[1].Date)
	assert.Equal(t, 75.0, summary[1].Total)
}
