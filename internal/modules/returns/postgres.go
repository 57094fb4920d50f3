package returns

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

const returnColumns = `id, return_id, type, status, customer_name, customer_phone,
	inventory_item_id, inventory_item_name, original_invoice_id, quantity,
	reason, notes, created_at, resolution_date, created_by, created_by_name`

type postgresRepo struct{ db *sql.DB }

// NewPostgresRepository creates a new PostgreSQL returns repository.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) NextSequence(ctx context.Context, prefix string, year int) (int, error) {
	var value int
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO sequences (prefix, year, value) VALUES ($1, $2, 1)
		ON CONFLICT (prefix, year) DO UPDATE SET value = sequences.value + 1
		RETURNING value`, prefix, year).Scan(&value)
	return value, err
}

func (r *postgresRepo) Create(ctx context.Context, rc *ReturnCase) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO returns
		  (id, return_id, type, status, customer_name, customer_phone,
		   inventory_item_id, inventory_item_name, original_invoice_id,
		   quantity, reason, notes, created_by, created_by_name)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		rc.ID, rc.ReturnID, rc.Type, rc.Status, rc.CustomerName,
		nullString(rc.CustomerPhone), rc.InventoryItemID, rc.InventoryItemName,
		nullString(rc.OriginalInvoiceID), rc.Quantity, rc.Reason, rc.Notes,
		rc.CreatedBy, rc.CreatedByName)
	return err
}

func (r *postgresRepo) GetByID(ctx context.Context, id uuid.UUID) (*ReturnCase, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+returnColumns+` FROM returns WHERE id = $1`, id)
	return scanReturn(row)
}

func (r *postgresRepo) Update(ctx context.Context, rc *ReturnCase) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE returns
		SET status=$1, notes=$2, resolution_date=$3
		WHERE id=$4`,
		rc.Status, rc.Notes, rc.ResolutionDate, rc.ID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *postgresRepo) List(ctx context.Context) ([]*ReturnCase, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+returnColumns+` FROM returns ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReturns(rows)
}

func (r *postgresRepo) ListByCreator(ctx context.Context, creatorID string) ([]*ReturnCase, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+returnColumns+` FROM returns WHERE created_by = $1 ORDER BY created_at DESC`,
		creatorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReturns(rows)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReturn(row rowScanner) (*ReturnCase, error) {
	var rc ReturnCase
	var phone, invoiceID sql.NullString
	var resolved sql.NullTime
	if err := row.Scan(&rc.ID, &rc.ReturnID, &rc.Type, &rc.Status,
		&rc.CustomerName, &phone, &rc.InventoryItemID, &rc.InventoryItemName,
		&invoiceID, &rc.Quantity, &rc.Reason, &rc.Notes, &rc.CreatedAt,
		&resolved, &rc.CreatedBy, &rc.CreatedByName); err != nil {
		return nil, err
	}
	rc.CustomerPhone = phone.String
	rc.OriginalInvoiceID = invoiceID.String
	if resolved.Valid {
		t := resolved.Time
		rc.ResolutionDate = &t
	}
	return &rc, nil
}

func scanReturns(rows *sql.Rows) ([]*ReturnCase, error) {
	cases := []*ReturnCase{}
	for rows.Next() {
		rc, err := scanReturn(rows)
		if err != nil {
			return nil, err
		}
		cases = append(cases, rc)
	}
	return cases, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
