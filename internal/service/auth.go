package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/safar/safar-go/internal/crypto"
	"github.com/safar/safar-go/internal/model"
	"github.com/safar/safar-go/internal/repository"
)

// TokenTTL is how long an access token stays valid after issuance.
const TokenTTL = 72 * time.Hour

// UserStore persists user accounts.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// AuthService handles registration, login and token verification.
type AuthService struct {
	users     UserStore
	jwtSecret string
	now       func() time.Time
}

// NewAuthService creates a new AuthService signing tokens with secret.
func NewAuthService(users UserStore, secret string) *AuthService {
	return &AuthService{
		users:     users,
		jwtSecret: secret,
		now:       time.Now,
	}
}

// Register creates a new user account and returns an access token for it.
func (s *AuthService) Register(ctx context.Context, req model.CreateUserRequest) (model.AuthResponse, error) {
	fullName := strings.TrimSpace(req.FullName)
	email := normalizeEmail(req.Email)
	if fullName == "" || email == "" || req.Password == "" {
		return model.AuthResponse{}, ErrFieldsRequired
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		if errors.Is(err, crypto.ErrPasswordTooLong) {
			return model.AuthResponse{}, &Error{Kind: ErrValidation, Message: "Password is too long.", Err: err}
		}
		return model.AuthResponse{}, storageError(err)
	}

	user := &model.User{
		ID:           uuid.NewString(),
		FullName:     fullName,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return model.AuthResponse{}, ErrUserExists
		}
		return model.AuthResponse{}, storageError(err)
	}

	return s.issue(user)
}

// Login checks the password of the account registered under req.Email.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return model.AuthResponse{}, ErrCredentialsRequired
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.AuthResponse{}, ErrUserNotFound
		}
		return model.AuthResponse{}, storageError(err)
	}

	match, err := crypto.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil {
		return model.AuthResponse{}, storageError(err)
	}
	if !match {
		return model.AuthResponse{}, ErrInvalidPassword
	}

	return s.issue(user)
}

// VerifyToken returns the user id carried by a valid access token.
func (s *AuthService) VerifyToken(token string) (string, error) {
	claims, err := crypto.ValidateToken(token, s.jwtSecret, s.now())
	if err != nil {
		return "", ErrInvalidToken
	}
	return claims.UserID, nil
}

// CurrentUser loads the account behind a verified token. A token whose user
// has since disappeared is treated as invalid.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (model.UserResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.UserResponse{}, ErrInvalidToken
		}
		return model.UserResponse{}, storageError(err)
	}
	return user.Public(), nil
}

func (s *AuthService) issue(user *model.User) (model.AuthResponse, error) {
	token, err := crypto.GenerateToken(user.ID, s.jwtSecret, s.now(), TokenTTL)
	if err != nil {
		return model.AuthResponse{}, storageError(err)
	}

	return model.AuthResponse{
		User:        user.Public(),
		AccessToken: token,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
