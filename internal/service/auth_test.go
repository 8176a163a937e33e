package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/safar/safar-go/internal/model"
	"github.com/safar/safar-go/internal/repository/memstore"
)

func newTestAuthService() *AuthService {
	return NewAuthService(memstore.New().Users(), "test-secret")
}

func register(t *testing.T, svc *AuthService, email string) model.AuthResponse {
	t.Helper()
	resp, err := svc.Register(context.Background(), model.CreateUserRequest{
		FullName: "Test User",
		Email:    email,
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	return resp
}

func TestRegisterMissingFields(t *testing.T) {
	svc := newTestAuthService()

	tests := []struct {
		name string
		req  model.CreateUserRequest
	}{
		{"no name", model.CreateUserRequest{Email: "a@example.com", Password: "pw"}},
		{"no email", model.CreateUserRequest{FullName: "A", Password: "pw"}},
		{"no password", model.CreateUserRequest{FullName: "A", Email: "a@example.com"}},
		{"blank name", model.CreateUserRequest{FullName: "  ", Email: "a@example.com", Password: "pw"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.req)
			if !errors.Is(err, ErrFieldsRequired) {
				t.Errorf("Register() error = %v, want %v", err, ErrFieldsRequired)
			}
			if !errors.Is(err, ErrValidation) {
				t.Errorf("Register() error kind = %v, want %v", err, ErrValidation)
			}
		})
	}
}

func TestRegisterIssuesToken(t *testing.T) {
	svc := newTestAuthService()

	resp := register(t, svc, "Traveller@Example.com ")

	if resp.User.Email != "traveller@example.com" {
		t.Errorf("Register() email = %q, want normalized address", resp.User.Email)
	}
	if resp.User.ID == "" {
		t.Error("Register() returned empty user id")
	}

	userID, err := svc.VerifyToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("VerifyToken() error = %v", err)
	}
	if userID != resp.User.ID {
		t.Errorf("VerifyToken() = %q, want %q", userID, resp.User.ID)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newTestAuthService()
	first := register(t, svc, "dup@example.com")

	_, err := svc.Register(context.Background(), model.CreateUserRequest{
		FullName: "Someone Else",
		Email:    "DUP@example.com",
		Password: "another",
	})
	if !errors.Is(err, ErrUserExists) || !errors.Is(err, ErrConflict) {
		t.Fatalf("Register() error = %v, want %v", err, ErrUserExists)
	}

	resp, err := svc.Login(context.Background(), model.LoginRequest{Email: "dup@example.com", Password: "password123"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if resp.User.ID != first.User.ID || resp.User.FullName != "Test User" {
		t.Errorf("Login() user = %+v, want the first registration", resp.User)
	}
}

func TestLogin(t *testing.T) {
	svc := newTestAuthService()
	registered := register(t, svc, "login@example.com")

	tests := []struct {
		name    string
		req     model.LoginRequest
		wantErr error
	}{
		{"success", model.LoginRequest{Email: "LOGIN@example.com", Password: "password123"}, nil},
		{"wrong password", model.LoginRequest{Email: "login@example.com", Password: "nope"}, ErrInvalidPassword},
		{"unknown email", model.LoginRequest{Email: "ghost@example.com", Password: "password123"}, ErrUserNotFound},
		{"missing password", model.LoginRequest{Email: "login@example.com"}, ErrCredentialsRequired},
		{"missing email", model.LoginRequest{Password: "password123"}, ErrCredentialsRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := svc.Login(context.Background(), tt.req)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Login() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Login() error = %v", err)
			}
			userID, err := svc.VerifyToken(resp.AccessToken)
			if err != nil || userID != registered.User.ID {
				t.Errorf("VerifyToken() = %q, %v, want %q", userID, err, registered.User.ID)
			}
		})
	}
}

func TestWrongPasswordIsUnauthenticated(t *testing.T) {
	svc := newTestAuthService()
	register(t, svc, "kind@example.com")

	_, err := svc.Login(context.Background(), model.LoginRequest{Email: "kind@example.com", Password: "bad"})
	if !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("Login() error = %v, want kind %v", err, ErrUnauthenticated)
	}
}

func TestVerifyTokenExpiryBoundary(t *testing.T) {
	svc := newTestAuthService()
	issuedAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issuedAt }

	resp := register(t, svc, "clock@example.com")

	svc.now = func() time.Time { return issuedAt.Add(TokenTTL - time.Second) }
	if _, err := svc.VerifyToken(resp.AccessToken); err != nil {
		t.Errorf("VerifyToken() one second before expiry error = %v, want nil", err)
	}

	svc.now = func() time.Time { return issuedAt.Add(TokenTTL) }
	if _, err := svc.VerifyToken(resp.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("VerifyToken() at expiry error = %v, want %v", err, ErrInvalidToken)
	}
}

func TestVerifyTokenRejectsForeignSecret(t *testing.T) {
	svc := newTestAuthService()
	resp := register(t, svc, "secret@example.com")

	other := NewAuthService(memstore.New().Users(), "other-secret")
	if _, err := other.VerifyToken(resp.AccessToken); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("VerifyToken() error = %v, want kind %v", err, ErrUnauthenticated)
	}
	if _, err := svc.VerifyToken("garbage"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("VerifyToken() error = %v, want %v", err, ErrInvalidToken)
	}
}

func TestCurrentUser(t *testing.T) {
	svc := newTestAuthService()
	resp := register(t, svc, "me@example.com")

	user, err := svc.CurrentUser(context.Background(), resp.User.ID)
	if err != nil {
		t.Fatalf("CurrentUser() error = %v", err)
	}
	if user != resp.User {
		t.Errorf("CurrentUser() = %+v, want %+v", user, resp.User)
	}

	if _, err := svc.CurrentUser(context.Background(), "missing"); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("CurrentUser() error = %v, want kind %v", err, ErrUnauthenticated)
	}
}
