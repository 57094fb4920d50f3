package invoice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		name  string
		paid  float64
		total float64
		want  Status
	}{
		{"nothing paid", 0, 100, StatusUnpaid},
		{"zero paid on zero total", 0, 0, StatusUnpaid},
		{"partial", 40, 100, StatusPartiallyPaid},
		{"exact", 100, 100, StatusPaid},
		{"overpaid", 120, 100, StatusPaid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveStatus(tt.paid, tt.total))
		})
	}
}

func TestInvoiceTotals(t *testing.T) {
	inv := &Invoice{
		LineItems: []LineItem{
			{Quantity: 2, UnitPrice: 100},
			{Quantity: 1, UnitPrice: 50},
		},
		Discount: 10,
		Payments: []Payment{{Amount: 100}, {Amount: 25}},
	}

	assert.Equal(t, 250.0, inv.Subtotal())
	assert.Equal(t, 25.0, inv.DiscountAmount())
	assert.Equal(t, 225.0, inv.Total())
	assert.Equal(t, 125.0, inv.AmountPaid())
}

func TestStockDeltas(t *testing.T) {
	a := mustUUID("11111111-1111-1111-1111-111111111111")
	b := mustUUID("22222222-2222-2222-2222-222222222222")

	oldLines := []LineItem{
		{InventoryItemID: &a, Quantity: 3},
		{InventoryItemID: &b, Quantity: 1},
	}
	newLines := []LineItem{
		{InventoryItemID: &a, Quantity: 5},
		{InventoryItemID: &b, Quantity: 1},
		{Quantity: 4}, // free-form line, no stock impact
	}

	deltas := stockDeltas(oldLines, newLines)
	assert.Equal(t, -2, deltas[a])
	_, hasB := deltas[b]
	assert.False(t, hasB, "unchanged quantities net to zero and are dropped")
}
