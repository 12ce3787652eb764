package user

import (
	"context"
	"errors"
	"fmt"
)

// Service contains business logic for user management.
type Service struct {
	repo *Repository
}

// NewService creates a new user Service.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// Create registers a new user account. The very first account in the
// database becomes an approved admin; everyone after that starts as an
// unapproved viewer until an admin lets them in.
func (s *Service) Create(ctx context.Context, username, email, passwordHash string) (*User, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}

	role, approved := RoleViewer, false
	if count == 0 {
		role, approved = RoleAdmin, true
	}

	u, err := s.repo.Create(ctx, username, email, passwordHash, role, approved)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// GetByID returns a user by their UUID.
func (s *Service) GetByID(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// GetByUsername returns a user by their username.
func (s *Service) GetByUsername(ctx context.Context, username string) (*User, error) {
	return s.repo.GetByUsername(ctx, username)
}

// List returns all user accounts.
func (s *Service) List(ctx context.Context) ([]*User, error) {
	return s.repo.List(ctx)
}

// Approve marks the account as approved so it can log in.
func (s *Service) Approve(ctx context.Context, id string) (*User, error) {
	return s.repo.SetApproved(ctx, id, true)
}

// ChangeRole assigns a new role to the account.
func (s *Service) ChangeRole(ctx context.Context, id, role string) (*User, error) {
	if !ValidRole(role) {
		return nil, fmt.Errorf("%w: role must be viewer, editor, or admin", ErrInvalidRole)
	}
	return s.repo.SetRole(ctx, id, role)
}

// ErrInvalidRole is returned for role names outside the known set.
var ErrInvalidRole = errors.New("invalid role")

// IsNotFound returns true when the error indicates a user was not found.
func (s *Service) IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
