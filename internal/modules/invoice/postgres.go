package invoice

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/danmwale/shopledger-backend/internal/modules/notification"
)

type postgresRepo struct{ db *sql.DB }

// NewPostgresRepository creates a new PostgreSQL invoice repository.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) NextSequence(ctx context.Context, prefix string, year int) (int, error) {
	var value int
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO sequences (prefix, year, value) VALUES ($1, $2, 1)
		ON CONFLICT (prefix, year) DO UPDATE SET value = sequences.value + 1
		RETURNING value`, prefix, year).Scan(&value)
	return value, err
}

func (r *postgresRepo) Create(ctx context.Context, inv *Invoice, adjustments []StockAdjustment, notes []*notification.Notification) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		lineItems, payments, err := marshalEmbedded(inv)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO invoices
			  (number, customer_name, customer_phone, status, discount,
			   line_items, payments, created_by, created_by_name)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			inv.Number, inv.CustomerName, inv.CustomerPhone, inv.Status,
			inv.Discount, lineItems, payments, inv.CreatedBy, inv.CreatedByName); err != nil {
			return err
		}
		if err := applyAdjustments(ctx, tx, adjustments); err != nil {
			return err
		}
		return insertNotes(ctx, tx, notes)
	})
}

func (r *postgresRepo) Update(ctx context.Context, inv *Invoice, adjustments []StockAdjustment, notes []*notification.Notification) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		if err := saveInvoice(ctx, tx, inv); err != nil {
			return err
		}
		if err := applyAdjustments(ctx, tx, adjustments); err != nil {
			return err
		}
		return insertNotes(ctx, tx, notes)
	})
}

func (r *postgresRepo) Save(ctx context.Context, inv *Invoice) error {
	return saveInvoice(ctx, r.db, inv)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func saveInvoice(ctx context.Context, db execer, inv *Invoice) error {
	lineItems, payments, err := marshalEmbedded(inv)
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx, `
		UPDATE invoices
		SET customer_name=$1, customer_phone=$2, status=$3, discount=$4,
		    line_items=$5, payments=$6
		WHERE number=$7`,
		inv.CustomerName, inv.CustomerPhone, inv.Status, inv.Discount,
		lineItems, payments, inv.Number)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func applyAdjustments(ctx context.Context, tx *sql.Tx, adjustments []StockAdjustment) error {
	for _, adj := range adjustments {
		if adj.Delta == 0 {
			continue
		}
		res, err := tx.ExecContext(ctx, `
			UPDATE inventory_items SET quantity = quantity + $1 WHERE id = $2`,
			adj.Delta, adj.ItemID)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("inventory item %s missing during batch: %w", adj.ItemID, sql.ErrNoRows)
		}
	}
	return nil
}

func insertNotes(ctx context.Context, tx *sql.Tx, notes []*notification.Notification) error {
	for _, n := range notes {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO notifications (id, recipient_id, sender_name, message, link, read, type)
			VALUES ($1, $2, $3, $4, $5, false, $6)`,
			n.ID, n.RecipientID, n.SenderName, n.Message, n.Link, n.Type); err != nil {
			return err
		}
	}
	return nil
}

func (r *postgresRepo) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

const invoiceColumns = `number, customer_name, customer_phone, status, discount,
	line_items, payments, created_by, created_by_name, created_at`

func (r *postgresRepo) GetByNumber(ctx context.Context, number string) (*Invoice, error) {
	return scanInvoice(r.db.QueryRowContext(ctx, `
		SELECT `+invoiceColumns+` FROM invoices WHERE number = $1`, number))
}

func (r *postgresRepo) List(ctx context.Context) ([]*Invoice, error) {
	return r.queryInvoices(ctx, `
		SELECT `+invoiceColumns+` FROM invoices ORDER BY created_at DESC`)
}

func (r *postgresRepo) ListByCreator(ctx context.Context, userID string) ([]*Invoice, error) {
	return r.queryInvoices(ctx, `
		SELECT `+invoiceColumns+` FROM invoices WHERE created_by = $1
		ORDER BY created_at DESC`, userID)
}

func (r *postgresRepo) queryInvoices(ctx context.Context, query string, args ...interface{}) ([]*Invoice, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var invs []*Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invs = append(invs, inv)
	}
	return invs, rows.Err()
}

func marshalEmbedded(inv *Invoice) ([]byte, []byte, error) {
	lineItems, err := json.Marshal(inv.LineItems)
	if err != nil {
		return nil, nil, err
	}
	payments, err := json.Marshal(inv.Payments)
	if err != nil {
		return nil, nil, err
	}
	return lineItems, payments, nil
}

type rowScanner interface{ Scan(dest ...interface{}) error }

func scanInvoice(row rowScanner) (*Invoice, error) {
	inv := &Invoice{}
	var phone sql.NullString
	var lineItems, payments []byte
	err := row.Scan(&inv.Number, &inv.CustomerName, &phone, &inv.Status,
		&inv.Discount, &lineItems, &payments, &inv.CreatedBy, &inv.CreatedByName,
		&inv.CreatedAt)
	if err != nil {
		return nil, err
	}
	if phone.Valid {
		inv.CustomerPhone = phone.String
	}
	if len(lineItems) > 0 {
		if err := json.Unmarshal(lineItems, &inv.LineItems); err != nil {
			return nil, err
		}
	}
	if len(payments) > 0 {
		if err := json.Unmarshal(payments, &inv.Payments); err != nil {
			return nil, err
		}
	}
	if inv.LineItems == nil {
		inv.LineItems = []LineItem{}
	}
	if inv.Payments == nil {
		inv.Payments = []Payment{}
	}
	return inv, nil
}
