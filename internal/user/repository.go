// Package user manages user accounts and their persistence.
package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Roles, in ascending order of privilege.
const (
	RoleViewer = "viewer"
	RoleEditor = "editor"
	RoleAdmin  = "admin"
)

// RoleRank orders roles for privilege checks. Unknown roles rank below
// viewer.
func RoleRank(role string) int {
	switch role {
	case RoleAdmin:
		return 3
	case RoleEditor:
		return 2
	case RoleViewer:
		return 1
	default:
		return 0
	}
}

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	return RoleRank(role) > 0
}

// User represents a registered catalog user.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	IsApproved   bool      `json:"isApproved"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ErrNotFound is returned when a user does not exist.
var ErrNotFound = errors.New("user not found")

// ErrAlreadyExists is returned when a username or email is already registered.
var ErrAlreadyExists = errors.New("user already exists")

const userColumns = `id, username, email, password_hash, role, is_approved, is_active, created_at, updated_at`

// Repository handles all user database operations.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository with the given connection pool.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func scanUser(row pgx.Row) (*User, error) {
	u := &User{}
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role,
		&u.IsApproved, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Create inserts a new user and returns the created record.
func (r *Repository) Create(ctx context.Context, username, email, passwordHash, role string, approved bool) (*User, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO users (username, email, password_hash, role, is_approved)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+userColumns,
		username, email, passwordHash, role, approved,
	)
	u, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// GetByID fetches a user by their UUID.
func (r *Repository) GetByID(ctx context.Context, id string) (*User, error) {
	u, err := scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return u, nil
}

// GetByUsername fetches a user by username.
func (r *Repository) GetByUsername(ctx context.Context, username string) (*User, error) {
	u, err := scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return u, nil
}

// List returns all users, oldest first.
func (r *Repository) List(ctx context.Context) ([]*User, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// SetApproved updates the approval flag.
func (r *Repository) SetApproved(ctx context.Context, id string, approved bool) (*User, error) {
	u, err := scanUser(r.db.QueryRow(ctx,
		`UPDATE users SET is_approved = $2, updated_at = NOW()
		 WHERE id = $1 RETURNING `+userColumns,
		id, approved))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("set approved: %w", err)
	}
	return u, nil
}

// SetRole updates the user's role.
func (r *Repository) SetRole(ctx context.Context, id, role string) (*User, error) {
	u, err := scanUser(r.db.QueryRow(ctx,
		`UPDATE users SET role = $2, updated_at = NOW()
		 WHERE id = $1 RETURNING `+userColumns,
		id, role))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("set role: %w", err)
	}
	return u, nil
}

// Count returns the total number of users.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

// isUniqueViolation checks whether an error is a PostgreSQL unique_violation (code 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
