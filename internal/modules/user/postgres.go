package user

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

type postgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a new PostgreSQL user repository.
func NewPostgresRepository(db *sql.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) CreateUser(ctx context.Context, u *User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, username, email, role, password_hash)
		VALUES ($1, $2, $3, $4, $5)`,
		u.ID, u.Username, u.Email, u.Role, u.PasswordHash)
	return err
}

func (r *postgresRepository) GetUserByID(ctx context.Context, id string) (*User, error) {
	parsedID, err := uuid.Parse(id)
	if err != nil {
		return nil, sql.ErrNoRows
	}
	return r.scanUser(r.db.QueryRowContext(ctx, `
		SELECT id, username, email, role, password_hash, created_at
		FROM users WHERE id = $1`, parsedID))
}

func (r *postgresRepository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx, `
		SELECT id, username, email, role, password_hash, created_at
		FROM users WHERE email = $1`, email))
}

func (r *postgresRepository) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx, `
		SELECT id, username, email, role, password_hash, created_at
		FROM users WHERE username = $1`, username))
}

func (r *postgresRepository) ListUsers(ctx context.Context) ([]*User, error) {
	return r.queryUsers(ctx, `
		SELECT id, username, email, role, password_hash, created_at
		FROM users ORDER BY username`)
}

func (r *postgresRepository) ListAdmins(ctx context.Context) ([]*User, error) {
	return r.queryUsers(ctx, `
		SELECT id, username, email, role, password_hash, created_at
		FROM users WHERE role = 'admin' ORDER BY username`)
}

func (r *postgresRepository) queryUsers(ctx context.Context, query string) ([]*User, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var users []*User
	for rows.Next() {
		u := &User{}
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.Role, &u.PasswordHash, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

type rowScanner interface{ Scan(dest ...interface{}) error }

func (r *postgresRepository) scanUser(row rowScanner) (*User, error) {
	u := &User{}
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Role, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}
