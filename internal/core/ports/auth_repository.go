package ports

import (
	"context"

	"github.com/99minutos/cargo-tracking/internal/core/domain"
)

// UserRepository stores accounts. Emails are unique and stored lowercase.
type UserRepository interface {
	// Create returns domain.ErrUserExists when the email or username is taken.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// FindByEmail returns domain.ErrUserNotFound for unknown emails.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
}
