package ports

import (
	"context"

	"github.com/medrecords/patient-portal/internal/core/domain"
)

// SessionClaims is what a verified session token vouches for.
type SessionClaims struct {
	Email string
}

// AuthService covers registration, credential checks and session tokens.
type AuthService interface {
	Register(ctx context.Context, email, password string) (*domain.User, error)
	// Login returns a signed session token for a matching email/password.
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	// VerifySession distinguishes domain.ErrMissingToken from domain.ErrInvalidToken.
	VerifySession(token string) (*SessionClaims, error)
}

// BotVerifier redeems a client-supplied challenge token. Any failure to reach
// the provider counts as a failed verification.
type BotVerifier interface {
	Verify(ctx context.Context, token, remoteIP string) bool
}
