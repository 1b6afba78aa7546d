// internal/users/users.go
//
// Account storage for players who sign up.
// Responsibilities:
//   - Validate usernames/passwords and hash passwords with bcrypt.
//   - Create users (case-insensitive unique usernames) and look them up.

package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUsernameTaken = errors.New("username taken")
	ErrNotFound      = errors.New("user not found")
)

// ValidationError reports a username/password that breaks the signup rules.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func invalid(reason string) error { return &ValidationError{Reason: reason} }

// User matches the users table shape.
type User struct {
	ID           string    `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"-" json:"createdAt"`
	CreatedRaw   string    `db:"created_at" json:"-"`
}

// Repo wraps the users table.
type Repo struct {
	db *sqlx.DB
}

// NewRepo constructs a Repo.
func NewRepo(db *sqlx.DB) *Repo { return &Repo{db: db} }

// Normalize trims whitespace; adjust here for stricter rules.
func Normalize(u string) string { return strings.TrimSpace(u) }

// ValidateSignup enforces basic username/password rules.
func ValidateSignup(u, p string) error {
	if len(u) < 3 || len(u) > 24 {
		return invalid("username must be 3–24 chars")
	}
	for _, r := range u {
		if !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return invalid("username: letters, numbers, underscore only")
		}
	}
	if len(p) < 8 || len(p) > 72 {
		return invalid("password must be 8–72 chars")
	}
	return nil
}

// Create validates input, checks uniqueness, hashes the password and inserts the user.
func (r *Repo) Create(ctx context.Context, username, pw string) (*User, error) {
	username = Normalize(username)
	if err := ValidateSignup(username, pw); err != nil {
		return nil, err
	}
	if _, err := r.FindByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(h),
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}
	u.CreatedRaw = u.CreatedAt.Format(time.RFC3339)
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(
		`INSERT INTO users (id, username, password_hash, created_at) VALUES (?, ?, ?, ?)`),
		u.ID, u.Username, u.PasswordHash, u.CreatedRaw,
	); err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

// FindByUsername loads a user by case-insensitive username.
func (r *Repo) FindByUsername(ctx context.Context, username string) (*User, error) {
	return r.findOne(ctx, `SELECT id, username, password_hash, created_at FROM users WHERE lower(username) = lower(?)`, username)
}

// FindByID loads a user by id.
func (r *Repo) FindByID(ctx context.Context, id string) (*User, error) {
	return r.findOne(ctx, `SELECT id, username, password_hash, created_at FROM users WHERE id = ?`, id)
}

// Authenticate returns the user when the password matches.
func (r *Repo) Authenticate(ctx context.Context, username, pw string) (*User, error) {
	u, err := r.FindByUsername(ctx, Normalize(username))
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(pw)) != nil {
		return nil, ErrNotFound
	}
	return u, nil
}

func (r *Repo) findOne(ctx context.Context, query string, arg any) (*User, error) {
	var u User
	if err := r.db.GetContext(ctx, &u, r.db.Rebind(query), arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	u.CreatedAt, _ = time.Parse(time.RFC3339, u.CreatedRaw)
	return &u, nil
}
