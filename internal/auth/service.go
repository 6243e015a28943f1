package auth

import (
	"context"
	"time"

	"github.com/salesbuddy/server/internal/session"
)

// VerifyResult reports the outcome of a verification call. Verification and
// session materialization are decoupled: a verified email with a failed
// session upsert still succeeds, with SessionCreated false so callers can
// observe and retry the secondary step.
type VerifyResult struct {
	Email          string
	SessionCreated bool
	ExpiresAt      time.Time
}

// AuthService orchestrates OTP verification and session creation
type AuthService struct {
	otpService *OtpService
	sessions   *session.Service
}

// NewAuthService creates a new auth service
func NewAuthService(otpService *OtpService, sessions *session.Service) *AuthService {
	return &AuthService{
		otpService: otpService,
		sessions:   sessions,
	}
}

// VerifyAndStartSession verifies the submitted code and, on success, upserts
// the demo session. An upsert failure is logged and reported in the result
// rather than failing the verification.
func (s *AuthService) VerifyAndStartSession(ctx context.Context, email, code string, marketingOptin bool) (VerifyResult, error) {
	if err := s.otpService.VerifyCode(ctx, email, code); err != nil {
		return VerifyResult{}, err
	}

	user, err := s.sessions.Upsert(ctx, email, marketingOptin)
	if err != nil {
		logMaskedEmail(email, "session upsert after verification failed: %v", err)
		return VerifyResult{Email: email, SessionCreated: false}, nil
	}

	return VerifyResult{Email: email, SessionCreated: true, ExpiresAt: user.ExpiresAt}, nil
}
