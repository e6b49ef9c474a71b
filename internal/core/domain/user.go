package domain

import (
	"errors"
	"time"
)

// Roles carried in the access token. Couriers report positions, customers
// follow their shipments, admins create shipments.
const (
	RoleAdmin    = "admin"
	RoleCourier  = "courier"
	RoleCustomer = "customer"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidRole        = errors.New("invalid role")
)

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleCourier, RoleCustomer:
		return true
	}
	return false
}

// User is an account. ID is the identity claim that routes personal
// real-time notifications.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session is the outcome of a successful login.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *User
}
