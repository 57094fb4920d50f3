package notification

import (
	"context"
	"database/sql"
)

type postgresRepo struct{ db *sql.DB }

// NewPostgresRepository creates a new PostgreSQL notification repository.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) CreateBatch(ctx context.Context, notes []*Notification) error {
	if len(notes) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, n := range notes {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO notifications (id, recipient_id, sender_name, message, link, read, type)
			VALUES ($1, $2, $3, $4, $5, false, $6)`,
			n.ID, n.RecipientID, n.SenderName, n.Message, n.Link, n.Type); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *postgresRepo) ListByRecipient(ctx context.Context, recipientID string) ([]*Notification, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, recipient_id, sender_name, message, link, read, type, created_at
		FROM notifications
		WHERE recipient_id = $1 ORDER BY created_at DESC`, recipientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var notes []*Notification
	for rows.Next() {
		n := &Notification{}
		if err := rows.Scan(&n.ID, &n.RecipientID, &n.SenderName, &n.Message, &n.Link, &n.Read, &n.Type, &n.CreatedAt); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func (r *postgresRepo) MarkRead(ctx context.Context, id, recipientID string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE notifications SET read = true WHERE id = $1 AND recipient_id = $2`, id, recipientID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *postgresRepo) MarkAllRead(ctx context.Context, recipientID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE notifications SET read = true WHERE recipient_id = $1 AND read = false`, recipientID)
	return err
}
