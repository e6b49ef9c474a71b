package ports

import (
	"context"

	"github.com/99minutos/cargo-tracking/internal/core/domain"
)

// RegisterInput is a new account request. An empty Role means customer.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Role     string
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.Session, error)
}
