package notification

import "context"

// Repository defines data access for notifications.
type Repository interface {
	CreateBatch(ctx context.Context, notes []*Notification) error
	ListByRecipient(ctx context.Context, recipientID string) ([]*Notification, error)
	MarkRead(ctx context.Context, id, recipientID string) error
	MarkAllRead(ctx context.Context, recipientID string) error
}
