package ports

import (
	"context"

	"github.com/medrecords/patient-portal/internal/core/domain"
)

// UserRepository persists credentials. Create returns a *domain.ConflictError
// when the email is taken; FindByEmail returns domain.ErrUserNotFound on a miss.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
}
