package notification

import (
	"time"

	"github.com/google/uuid"

	"github.com/danmwale/shopledger-backend/internal/modules/user"
)

// Type tags what a notification is about.
type Type string

const (
	TypeInventory Type = "inventory"
	TypeLowStock  Type = "low-stock"
	TypeInvoice   Type = "invoice"
)

// SystemSender is used for notifications not attributable to a user, such
// as low-stock alerts.
const SystemSender = "System"

// Notification is a fire-and-forget, per-recipient artifact written as a
// side effect of a ledger mutation.
type Notification struct {
	ID          uuid.UUID `json:"id"`
	RecipientID string    `json:"recipient_id"`
	SenderName  string    `json:"sender_name"`
	Message     string    `json:"message"`
	Link        string    `json:"link,omitempty"`
	Read        bool      `json:"read"`
	Type        Type      `json:"type"`
	CreatedAt   time.Time `json:"created_at"`
}

// FanOut builds one notification per admin recipient, skipping the acting
// user. Pass an empty excludeID to address every admin, e.g. for
// system-sent low-stock alerts.
func FanOut(admins []*user.User, excludeID, senderName, message, link string, typ Type) []*Notification {
	var out []*Notification
	for _, a := range admins {
		if excludeID != "" && a.ID.String() == excludeID {
			continue
		}
		out = append(out, &Notification{
			ID:          uuid.New(),
			RecipientID: a.ID.String(),
			SenderName:  senderName,
			Message:     message,
			Link:        link,
			Type:        typ,
		})
	}
	return out
}
