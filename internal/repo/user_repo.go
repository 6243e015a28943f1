package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/salesbuddy/server/internal/model"
)

// ErrUserNotFound is returned when no demo user row exists for an email.
var ErrUserNotFound = errors.New("user not found")

// UserRepo defines the interface for demo user repository operations
type UserRepo interface {
	Upsert(ctx context.Context, email string, expiresAt time.Time, marketingOptin bool) (model.DemoUser, error)
	GetByEmail(ctx context.Context, email string) (model.DemoUser, error)
}

type userRepo struct {
	db *sql.DB
}

// NewUserRepo creates a new UserRepo instance
func NewUserRepo(db *sql.DB) UserRepo {
	return &userRepo{db: db}
}

// Upsert creates the demo user or extends an existing one. GREATEST keeps the
// later expiry so a returning email never has its window shortened, and a
// previous opt-in is never cleared by a later signup without one.
func (r *userRepo) Upsert(ctx context.Context, email string, expiresAt time.Time, marketingOptin bool) (model.DemoUser, error) {
	query := `
		INSERT INTO demo_users (email, expires_at, is_active, marketing_optin)
		VALUES ($1, $2, TRUE, $3)
		ON CONFLICT (email) DO UPDATE SET
			expires_at = GREATEST(demo_users.expires_at, EXCLUDED.expires_at),
			is_active = TRUE,
			marketing_optin = demo_users.marketing_optin OR EXCLUDED.marketing_optin
		RETURNING id, email, created_at, expires_at, is_active, marketing_optin
	`
	var user model.DemoUser
	err := r.db.QueryRowContext(ctx, query, email, expiresAt, marketingOptin).Scan(
		&user.ID,
		&user.Email,
		&user.CreatedAt,
		&user.ExpiresAt,
		&user.IsActive,
		&user.MarketingOptin,
	)
	if err != nil {
		return model.DemoUser{}, fmt.Errorf("upsert demo user: %w", err)
	}
	return user, nil
}

// GetByEmail retrieves a demo user by email
func (r *userRepo) GetByEmail(ctx context.Context, email string) (model.DemoUser, error) {
	query := `
		SELECT id, email, created_at, expires_at, is_active, marketing_optin
		FROM demo_users
		WHERE email = $1
	`
	var user model.DemoUser
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID,
		&user.Email,
		&user.CreatedAt,
		&user.ExpiresAt,
		&user.IsActive,
		&user.MarketingOptin,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.DemoUser{}, ErrUserNotFound
		}
		return model.DemoUser{}, fmt.Errorf("query demo user: %w", err)
	}
	return user, nil
}
