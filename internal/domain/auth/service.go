package auth

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

// Service performs admin login and token verification.
type Service struct {
	admins Repository
	tokens *TokenManager
}

// NewService creates an auth Service.
func NewService(admins Repository, tokens *TokenManager) *Service {
	return &Service{admins: admins, tokens: tokens}
}

// Login verifies the credentials and returns a signed session token. All
// failure modes collapse into ErrInvalidCredentials; only infrastructure
// errors are reported distinctly.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", ErrInvalidCredentials
	}

	admin, err := s.admins.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return "", ErrInvalidCredentials
		}
		return "", errors.Wrap(err, "find admin")
	}

	if !VerifyPassword(password, admin.PasswordHash) {
		zctx.From(ctx).Info("Rejected admin login", zap.String("email", email))
		return "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(admin.ID)
	if err != nil {
		return "", errors.Wrap(err, "issue token")
	}
	return token, nil
}

// VerifyToken validates a session token and returns the admin identity, or
// an empty string when the token is missing or invalid.
func (s *Service) VerifyToken(token string) string {
	if token == "" {
		return ""
	}
	adminID, err := s.tokens.Verify(token)
	if err != nil {
		return ""
	}
	return adminID
}

// TokenTTL exposes the session token lifetime for cookie expiry.
func (s *Service) TokenTTL() int {
	return int(s.tokens.TTL().Seconds())
}
