// Package auth handles account registration, password login, and JWT issuance.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/enzococca/soqotra-rockart/internal/config"
	"github.com/enzococca/soqotra-rockart/internal/user"
)

const tokenTTL = 30 * 24 * time.Hour

// ErrInvalidCredentials is returned when the username or password is wrong.
var ErrInvalidCredentials = errors.New("invalid username or password")

// ErrNotApproved is returned when the account has not been approved by an admin yet.
var ErrNotApproved = errors.New("account awaiting approval")

// ErrDisabled is returned when the account has been deactivated.
var ErrDisabled = errors.New("account disabled")

// Service contains the business logic for password-based authentication.
type Service struct {
	userSvc *user.Service
	cfg     *config.Config
}

// NewService creates a new auth Service.
func NewService(userSvc *user.Service, cfg *config.Config) *Service {
	return &Service{userSvc: userSvc, cfg: cfg}
}

// Register creates a new account with a bcrypt-hashed password. No token
// is issued: except for the bootstrap admin, accounts must be approved
// before they can log in.
func (s *Service) Register(ctx context.Context, username, email, password string) (*user.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.userSvc.Create(ctx, username, email, string(hash))
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Login verifies the credentials and issues a JWT for approved, active
// accounts.
func (s *Service) Login(ctx context.Context, username, password string) (string, *user.User, error) {
	u, err := s.userSvc.GetByUsername(ctx, username)
	if err != nil {
		if s.userSvc.IsNotFound(err) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		return "", nil, ErrDisabled
	}
	if !u.IsApproved {
		return "", nil, ErrNotApproved
	}

	token, err := s.issueToken(u)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	return token, u, nil
}

// issueToken creates a signed JWT for the given user.
func (s *Service) issueToken(u *user.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":      u.ID,
		"username": u.Username,
		"role":     u.Role,
		"iat":      time.Now().Unix(),
		"exp":      time.Now().Add(tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}
