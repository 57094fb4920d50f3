package invoice

import (
	"time"

	"github.com/google/uuid"
)

// Status represents the payment lifecycle state of an invoice.
// Unpaid, Partially Paid and Paid are derived from the payment total;
// Cancelled is terminal and frozen regardless of payments.
type Status string

const (
	StatusUnpaid        Status = "Unpaid"
	StatusPartiallyPaid Status = "Partially Paid"
	StatusPaid          Status = "Paid"
	StatusCancelled     Status = "Cancelled"
)

// Method represents how a payment was made.
type Method string

const (
	MethodCash         Method = "Cash"
	MethodCard         Method = "Card"
	MethodBankTransfer Method = "Bank Transfer"
	MethodOther        Method = "Other"
)

// ValidMethod reports whether m is a known payment method.
func ValidMethod(m Method) bool {
	switch m {
	case MethodCash, MethodCard, MethodBankTransfer, MethodOther:
		return true
	}
	return false
}

// LineItem is a single line on an invoice. It is embedded in the invoice
// document and never persisted independently. InventoryItemID is optional:
// free-form lines carry no stock impact.
type LineItem struct {
	ID              uuid.UUID  `json:"id"`
	InventoryItemID *uuid.UUID `json:"inventory_item_id,omitempty"`
	Description     string     `json:"description"`
	Quantity        int        `json:"quantity"`
	UnitPrice       float64    `json:"unit_price"`
	WarrantyPeriod  string     `json:"warranty_period,omitempty"`
}

// Payment is an append-only record embedded in the invoice document.
type Payment struct {
	ID            uuid.UUID `json:"id"`
	Amount        float64   `json:"amount"`
	Date          time.Time `json:"date"`
	Method        Method    `json:"method"`
	Notes         string    `json:"notes,omitempty"`
	CreatedBy     string    `json:"created_by"`
	CreatedByName string    `json:"created_by_name"`
}

// Invoice is identified by its human-readable sequential number,
// e.g. INV-2026-0001.
type Invoice struct {
	Number        string     `json:"number"`
	CustomerName  string     `json:"customer_name"`
	CustomerPhone string     `json:"customer_phone,omitempty"`
	Status        Status     `json:"status"`
	LineItems     []LineItem `json:"line_items"`
	Discount      float64    `json:"discount"` // percentage, 0-100
	Payments      []Payment  `json:"payments"`
	CreatedBy     string     `json:"created_by"`
	CreatedByName string     `json:"created_by_name"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Subtotal is the sum of quantity times unit price over all line items.
func (inv *Invoice) Subtotal() float64 {
	var sum float64
	for _, li := range inv.LineItems {
		sum += float64(li.Quantity) * li.UnitPrice
	}
	return sum
}

// DiscountAmount is the subtotal share removed by the percentage discount.
func (inv *Invoice) DiscountAmount() float64 {
	return inv.Subtotal() * inv.Discount / 100
}

// Total is the amount owed after discount.
func (inv *Invoice) Total() float64 {
	return inv.Subtotal() - inv.DiscountAmount()
}

// AmountPaid is the sum of all recorded payments.
func (inv *Invoice) AmountPaid() float64 {
	var sum float64
	for _, p := range inv.Payments {
		sum += p.Amount
	}
	return sum
}

// DeriveStatus computes the payment status from the cumulative paid amount
// against the total. A zero paid amount is always Unpaid, even on a zero
// total. Cancelled is never derived; it is only set by Cancel.
func DeriveStatus(amountPaid, total float64) Status {
	switch {
	case amountPaid <= 0:
		return StatusUnpaid
	case amountPaid >= total:
		return StatusPaid
	default:
		return StatusPartiallyPaid
	}
}

// StockAdjustment is a signed quantity change applied to an inventory item
// inside the invoice write batch.
type StockAdjustment struct {
	ItemID uuid.UUID
	Delta  int
}

// Customer is a distinct customer derived from invoice records; there is no
// independent customer collection.
type Customer struct {
	Name         string  `json:"name"`
	Phone        string  `json:"phone,omitempty"`
	InvoiceCount int     `json:"invoice_count"`
	TotalBilled  float64 `json:"total_billed"`
}

// LineItemInput describes one requested invoice line.
type LineItemInput struct {
	InventoryItemID string  `json:"inventory_item_id,omitempty"`
	Description     string  `json:"description"`
	Quantity        int     `json:"quantity"`
	UnitPrice       float64 `json:"unit_price"`
	WarrantyPeriod  string  `json:"warranty_period,omitempty"`
}

// PaymentInput describes a payment to record.
type PaymentInput struct {
	Amount float64 `json:"amount"`
	Method string  `json:"method,omitempty"`
	Notes  string  `json:"notes,omitempty"`
}

// CreateInvoiceRequest is the payload for creating an invoice. Status may
// be Unpaid, Partially Paid, or Paid; the latter two synthesize an initial
// payment record.
type CreateInvoiceRequest struct {
	CustomerName   string          `json:"customer_name"`
	CustomerPhone  string          `json:"customer_phone,omitempty"`
	Status         string          `json:"status,omitempty"`
	Discount       float64         `json:"discount,omitempty"`
	LineItems      []LineItemInput `json:"line_items"`
	InitialPayment *PaymentInput   `json:"initial_payment,omitempty"`
}

// UpdateInvoiceRequest is the payload for editing an invoice. A nil
// LineItems leaves the lines (and stock) untouched.
type UpdateInvoiceRequest struct {
	CustomerName  *string         `json:"customer_name,omitempty"`
	CustomerPhone *string         `json:"customer_phone,omitempty"`
	Discount      *float64        `json:"discount,omitempty"`
	LineItems     []LineItemInput `json:"line_items,omitempty"`
}
