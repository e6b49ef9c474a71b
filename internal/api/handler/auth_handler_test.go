package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/99minutos/cargo-tracking/internal/core/domain"
	"github.com/99minutos/cargo-tracking/internal/core/ports"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (*domain.User, error)
	loginFn    func(ctx context.Context, email, password string) (*domain.Session, error)
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	return s.loginFn(ctx, email, password)
}

func TestAuthHandler_Register(t *testing.T) {
	var got ports.RegisterInput
	h := NewAuthHandler(&stubAuthService{
		registerFn: func(_ context.Context, in ports.RegisterInput) (*domain.User, error) {
			got = in
			return &domain.User{ID: "u-1", Username: in.Username, Email: in.Email, Role: domain.RoleCourier, PasswordHash: "hash"}, nil
		},
	})

	c, rec := postJSON(newTestEcho(), "/auth/register",
		`{"username":"ana","email":"ana@example.com","password":"longenough","role":"courier"}`)
	if err := h.Register(c); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	want := ports.RegisterInput{Username: "ana", Email: "ana@example.com", Password: "longenough", Role: "courier"}
	if got != want {
		t.Errorf("service input = %+v, want %+v", got, want)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if body["id"] != "u-1" || body["role"] != "courier" {
		t.Errorf("unexpected body: %v", body)
	}
	if _, leaked := body["passwordHash"]; leaked {
		t.Error("password hash must not be serialized")
	}
}

func TestAuthHandler_Register_Validation(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{
		registerFn: func(context.Context, ports.RegisterInput) (*domain.User, error) {
			t.Fatal("service must not be called")
			return nil, nil
		},
	})

	cases := map[string]string{
		"malformed json": `{"username":`,
		"short password": `{"username":"ana","email":"ana@example.com","password":"short"}`,
		"bad email":      `{"username":"ana","email":"nope","password":"longenough"}`,
		"unknown role":   `{"username":"ana","email":"ana@example.com","password":"longenough","role":"driver"}`,
		"short username": `{"username":"a","email":"ana@example.com","password":"longenough"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			c, _ := postJSON(newTestEcho(), "/auth/register", body)
			expectHTTPCode(t, h.Register(c), http.StatusBadRequest)
		})
	}
}

func TestAuthHandler_Register_ServiceErrorsPropagate(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{
		registerFn: func(context.Context, ports.RegisterInput) (*domain.User, error) {
			return nil, domain.ErrUserExists
		},
	})

	c, _ := postJSON(newTestEcho(), "/auth/register",
		`{"username":"ana","email":"ana@example.com","password":"longenough"}`)
	if err := h.Register(c); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthHandler_Login(t *testing.T) {
	exp := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	h := NewAuthHandler(&stubAuthService{
		loginFn: func(_ context.Context, email, password string) (*domain.Session, error) {
			if email != "ana@example.com" || password != "pw" {
				t.Errorf("unexpected credentials %q %q", email, password)
			}
			return &domain.Session{
				Token:     "signed",
				ExpiresAt: exp,
				User:      &domain.User{ID: "u-1", Username: "ana", Role: domain.RoleCustomer},
			}, nil
		},
	})

	c, rec := postJSON(newTestEcho(), "/auth/login", `{"email":"ana@example.com","password":"pw"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body sessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if body.Token != "signed" || !body.ExpiresAt.Equal(exp) || body.User.ID != "u-1" {
		t.Errorf("unexpected body: %+v", body)
	}
}

func TestAuthHandler_Login_Errors(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{
		loginFn: func(context.Context, string, string) (*domain.Session, error) {
			return nil, domain.ErrInvalidCredentials
		},
	})

	c, _ := postJSON(newTestEcho(), "/auth/login", `{"email":"ana@example.com"}`)
	expectHTTPCode(t, h.Login(c), http.StatusBadRequest)

	c, _ = postJSON(newTestEcho(), "/auth/login", `{"email":"ana@example.com","password":"wrong"}`)
	if err := h.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}
