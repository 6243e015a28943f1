package session

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/salesbuddy/server/internal/apperror"
	"github.com/salesbuddy/server/internal/model"
	"github.com/salesbuddy/server/internal/repo"
)

// DemoDuration is how long a demo session lasts from its latest activation.
const DemoDuration = 7 * 24 * time.Hour

// Status answers "is this email's demo still running" for status queries.
type Status struct {
	Active        bool      `json:"active"`
	Email         string    `json:"email"`
	ExpiresAt     time.Time `json:"expiresAt"`
	DaysRemaining int       `json:"daysRemaining"`
	Expired       bool      `json:"expired"`
}

// Service maintains demo session records.
type Service struct {
	userRepo repo.UserRepo
	now      func() time.Time
}

// NewService creates a new session service
func NewService(userRepo repo.UserRepo) *Service {
	return &Service{
		userRepo: userRepo,
		now:      time.Now,
	}
}

// Upsert creates or reactivates the demo session for the email. The expiry
// only ever moves forward: a repeat signup keeps the later of the stored and
// the freshly computed expiry.
func (s *Service) Upsert(ctx context.Context, email string, marketingOptin bool) (model.DemoUser, error) {
	expiresAt := s.now().Add(DemoDuration)
	user, err := s.userRepo.Upsert(ctx, email, expiresAt, marketingOptin)
	if err != nil {
		return model.DemoUser{}, apperror.Persistence(err, "Something went wrong. Please try again.")
	}
	return user, nil
}

// GetStatus computes the session state for the email. Pure read; safe to
// poll. A missing row reports expired with zero days remaining.
func (s *Service) GetStatus(ctx context.Context, email string) (Status, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return Status{Email: email, Expired: true}, nil
		}
		return Status{}, apperror.Persistence(err, "Failed to check session status")
	}

	now := s.now()
	expired := now.After(user.ExpiresAt) || !user.IsActive
	days := 0
	if !expired {
		days = int(math.Ceil(user.ExpiresAt.Sub(now).Hours() / 24))
	}

	return Status{
		Active:        !expired,
		Email:         user.Email,
		ExpiresAt:     user.ExpiresAt,
		DaysRemaining: days,
		Expired:       expired,
	}, nil
}
