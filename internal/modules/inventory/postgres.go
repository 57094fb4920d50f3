package inventory

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type postgresRepo struct{ db *sql.DB }

// NewPostgresRepository creates a new PostgreSQL inventory repository.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

const itemColumns = `id, name, category, brand, quantity, selling_price, cost_price,
	reorder_point, status, warranty_period, created_at`

func (r *postgresRepo) Create(ctx context.Context, item *InventoryItem) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO inventory_items
		  (id, name, category, brand, quantity, selling_price, cost_price,
		   reorder_point, status, warranty_period)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		item.ID, item.Name, item.Category, item.Brand, item.Quantity,
		item.SellingPrice, item.CostPrice, item.ReorderPoint, item.Status,
		item.WarrantyPeriod)
	return err
}

func (r *postgresRepo) GetByID(ctx context.Context, id uuid.UUID) (*InventoryItem, error) {
	return r.scanItem(r.db.QueryRowContext(ctx, `
		SELECT `+itemColumns+` FROM inventory_items WHERE id = $1`, id))
}

func (r *postgresRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*InventoryItem, error) {
	items := make(map[uuid.UUID]*InventoryItem, len(ids))
	if len(ids) == 0 {
		return items, nil
	}
	strIDs := make([]string, len(ids))
	for i, id := range ids {
		strIDs[i] = id.String()
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+itemColumns+` FROM inventory_items WHERE id = ANY($1)`, pq.Array(strIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		item, err := r.scanItem(rows)
		if err != nil {
			return nil, err
		}
		items[item.ID] = item
	}
	return items, rows.Err()
}

func (r *postgresRepo) List(ctx context.Context) ([]*InventoryItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+itemColumns+` FROM inventory_items ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*InventoryItem
	for rows.Next() {
		item, err := r.scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *postgresRepo) Update(ctx context.Context, item *InventoryItem, delta, quantity *int) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()
	res, err := tx.ExecContext(ctx, `
		UPDATE inventory_items
		SET name=$1, category=$2, brand=$3, selling_price=$4, cost_price=$5,
		    reorder_point=$6, status=$7, warranty_period=$8
		WHERE id=$9`,
		item.Name, item.Category, item.Brand, item.SellingPrice, item.CostPrice,
		item.ReorderPoint, item.Status, item.WarrantyPeriod, item.ID)
	if err != nil {
		return 0, err
	}
	if err := requireRow(res); err != nil {
		return 0, err
	}
	newQty := item.Quantity
	switch {
	case delta != nil:
		err := tx.QueryRowContext(ctx, `
			UPDATE inventory_items SET quantity = quantity + $1 WHERE id = $2
			RETURNING quantity`, *delta, item.ID).Scan(&newQty)
		if err != nil {
			return 0, err
		}
		if newQty < 0 {
			return 0, ErrStockBelowZero
		}
	case quantity != nil:
		if _, err := tx.ExecContext(ctx, `
			UPDATE inventory_items SET quantity=$1 WHERE id=$2`, *quantity, item.ID); err != nil {
			return 0, err
		}
		newQty = *quantity
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return newQty, nil
}

func (r *postgresRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM inventory_items WHERE id=$1`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

type rowScanner interface{ Scan(dest ...interface{}) error }

func (r *postgresRepo) scanItem(row rowScanner) (*InventoryItem, error) {
	item := &InventoryItem{}
	err := row.Scan(&item.ID, &item.Name, &item.Category, &item.Brand,
		&item.Quantity, &item.SellingPrice, &item.CostPrice, &item.ReorderPoint,
		&item.Status, &item.WarrantyPeriod, &item.CreatedAt)
	if err != nil {
		return nil, err
	}
	return item, nil
}
