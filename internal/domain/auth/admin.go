// Package auth implements the single-admin authentication for the
// storefront: bcrypt-verified credentials exchanged for a signed token that
// gates the catalog mutation endpoints.
package auth

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// ErrInvalidCredentials is returned for any login failure. The message is
// deliberately generic to prevent account enumeration.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Admin is the administrator account record.
type Admin struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Repository provides lookup of admin accounts.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*Admin, error)
}
