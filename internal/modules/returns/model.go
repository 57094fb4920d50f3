package returns

import (
	"time"

	"github.com/google/uuid"
)

// Type distinguishes who is returning the goods.
type Type string

const (
	TypeCustomer Type = "Customer Return"
	TypeSupplier Type = "Supplier Return"
)

// ValidType reports whether t is a known return type.
func ValidType(t Type) bool {
	return t == TypeCustomer || t == TypeSupplier
}

// Status is the lifecycle state of a return case.
type Status string

const (
	StatusAwaitingInspection Status = "Awaiting Inspection"
	StatusUnderRepair        Status = "Under Repair"
	StatusReadyForPickup     Status = "Ready for Pickup"
	StatusToBeReplaced       Status = "To be Replaced"
	StatusToBeRefunded       Status = "To be Refunded"
	StatusReturnToSupplier   Status = "Return to Supplier"
	StatusCompleted          Status = "Completed / Closed"
)

// ValidStatus reports whether s is a known return status.
func ValidStatus(s Status) bool {
	switch s {
	case StatusAwaitingInspection, StatusUnderRepair, StatusReadyForPickup,
		StatusToBeReplaced, StatusToBeRefunded, StatusReturnToSupplier,
		StatusCompleted:
		return true
	}
	return false
}

// ReturnCase is a logged product return. InventoryItemName is a snapshot
// taken at creation time and is not kept in sync with later renames.
type ReturnCase struct {
	ID                uuid.UUID  `json:"id"`
	ReturnID          string     `json:"returnId"`
	Type              Type       `json:"type"`
	Status            Status     `json:"status"`
	CustomerName      string     `json:"customerName"`
	CustomerPhone     string     `json:"customerPhone,omitempty"`
	InventoryItemID   uuid.UUID  `json:"inventoryItemId"`
	InventoryItemName string     `json:"inventoryItemName"`
	OriginalInvoiceID string     `json:"originalInvoiceId,omitempty"`
	Quantity          int        `json:"quantity"`
	Reason            string     `json:"reason"`
	Notes             string     `json:"notes,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	ResolutionDate    *time.Time `json:"resolutionDate,omitempty"`
	CreatedBy         string     `json:"createdBy"`
	CreatedByName     string     `json:"createdByName"`
}

// AddReturnRequest is the payload for logging a new return.
type AddReturnRequest struct {
	Type              string `json:"type"`
	CustomerName      string `json:"customerName"`
	CustomerPhone     string `json:"customerPhone"`
	InventoryItemID   string `json:"inventoryItemId"`
	OriginalInvoiceID string `json:"originalInvoiceId"`
	Quantity          int    `json:"quantity"`
	Reason            string `json:"reason"`
	Notes             string `json:"notes"`
}

// UpdateReturnRequest carries the editable fields of a return case. Nil
// fields are left unchanged.
type UpdateReturnRequest struct {
	Status *string `json:"status"`
	Notes  *string `json:"notes"`
}
