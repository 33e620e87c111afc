package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/modesta/storefront-api/internal/domain/auth"
)

const (
	findAdminSQL = `SELECT id, email, password_hash FROM admins WHERE email = $1`

	upsertAdminSQL = `INSERT INTO admins (id, email, password_hash)
VALUES ($1, $2, $3)
ON CONFLICT (email) DO UPDATE SET password_hash = EXCLUDED.password_hash`
)

var _ auth.Repository = (*AdminRepository)(nil)

// AdminRepository stores admin accounts in PostgreSQL.
type AdminRepository struct {
	pool *pgxpool.Pool
}

// NewAdminRepository returns an AdminRepository using the given pool.
func NewAdminRepository(pool *pgxpool.Pool) *AdminRepository {
	return &AdminRepository{pool: pool}
}

// FindByEmail looks up an admin account. A missing account is reported as
// auth.ErrInvalidCredentials so callers cannot distinguish unknown emails
// from wrong passwords.
func (r *AdminRepository) FindByEmail(ctx context.Context, email string) (*auth.Admin, error) {
	var a auth.Admin
	err := r.pool.QueryRow(ctx, findAdminSQL, strings.ToLower(email)).
		Scan(&a.ID, &a.Email, &a.PasswordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auth.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("finding admin: %w", err)
	}
	return &a, nil
}

// Upsert creates the admin account or rotates its password hash. Used by
// seeding tooling, not by the serving path.
func (r *AdminRepository) Upsert(ctx context.Context, a *auth.Admin) error {
	_, err := r.pool.Exec(ctx, upsertAdminSQL, a.ID, strings.ToLower(a.Email), a.PasswordHash)
	if err != nil {
		return fmt.Errorf("upserting admin: %w", err)
	}
	return nil
}
