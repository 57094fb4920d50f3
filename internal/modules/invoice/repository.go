package invoice

import (
	"context"

	"github.com/danmwale/shopledger-backend/internal/modules/notification"
)

// Repository defines data access for invoices. Create and Update commit the
// invoice write, its stock adjustments, and the notification fan-out as one
// all-or-nothing batch: if any part fails, none of it is applied.
type Repository interface {
	// NextSequence atomically increments and returns the per-prefix,
	// per-year counter backing human-readable invoice numbers.
	NextSequence(ctx context.Context, prefix string, year int) (int, error)
	Create(ctx context.Context, inv *Invoice, adjustments []StockAdjustment, notes []*notification.Notification) error
	Update(ctx context.Context, inv *Invoice, adjustments []StockAdjustment, notes []*notification.Notification) error
	// Save overwrites the invoice document alone (payments, status, fields)
	// with no stock side effects.
	Save(ctx context.Context, inv *Invoice) error
	GetByNumber(ctx context.Context, number string) (*Invoice, error)
	List(ctx context.Context) ([]*Invoice, error)
	ListByCreator(ctx context.Context, userID string) ([]*Invoice, error)
}
