package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"strings"
	"time"

	"github.com/salesbuddy/server/internal/apperror"
	"github.com/salesbuddy/server/internal/mail"
	"github.com/salesbuddy/server/internal/repo"
)

const (
	otpExpiry            = 10 * time.Minute
	requestWindow        = time.Hour
	maxRequestsPerWindow = 3
	maxVerifyAttempts    = 5
)

// OtpService issues and verifies single-use email codes. It is the sole gate
// before a demo session is created.
type OtpService struct {
	otpRepo repo.OtpRepo
	sender  mail.Sender
}

// NewOtpService creates a new OTP service
func NewOtpService(otpRepo repo.OtpRepo, sender mail.Sender) *OtpService {
	return &OtpService{
		otpRepo: otpRepo,
		sender:  sender,
	}
}

// IssueCode generates a 6-digit code for the email, persists it with a
// 10-minute expiry and delivers it over the email transport. Rate limit:
// max 3 codes per email in the trailing hour, checked before any side effect.
//
// A delivery failure is reported to the caller but the persisted row is kept;
// the next issuance request still counts it against the rate limit.
func (s *OtpService) IssueCode(ctx context.Context, email string) error {
	if !strings.Contains(email, "@") {
		return apperror.Validation("A valid email is required")
	}

	since := time.Now().Add(-requestWindow)
	count, err := s.otpRepo.CountRecentRequests(ctx, email, since)
	if err != nil {
		return apperror.Persistence(err, "Something went wrong. Please try again.")
	}
	if count >= maxRequestsPerWindow {
		return apperror.RateLimited("Too many OTP requests. Please try again later.")
	}

	code, err := generateCode()
	if err != nil {
		return fmt.Errorf("generate code: %w", err)
	}

	if _, err := s.otpRepo.Create(ctx, email, code, time.Now().Add(otpExpiry)); err != nil {
		return apperror.Persistence(err, "Something went wrong. Please try again.")
	}

	if err := s.sender.SendOTP(ctx, email, code); err != nil {
		logMaskedEmail(email, "failed to deliver OTP email: %v", err)
		return apperror.DeliveryFailed("Failed to send verification email. Please try again.")
	}
	return nil
}

// VerifyCode checks the submitted code against the most recent verifiable
// code for the email and marks it verified on a match. A mismatch counts one
// failed attempt; after 5 failed attempts the code stops being selectable and
// a fresh one has to be requested.
func (s *OtpService) VerifyCode(ctx context.Context, email, submitted string) error {
	if email == "" || submitted == "" {
		return apperror.Validation("Email and verification code are required")
	}

	otp, err := s.otpRepo.GetCurrent(ctx, email, maxVerifyAttempts)
	if err != nil {
		if errors.Is(err, repo.ErrNoCurrentCode) {
			return apperror.NotFoundOrExpired("Code expired or not found. Please request a new one.")
		}
		return apperror.Persistence(err, "Something went wrong. Please try again.")
	}

	if otp.Code != submitted {
		if _, err := s.otpRepo.IncrementAttempt(ctx, otp.ID); err != nil {
			logMaskedEmail(email, "failed to record attempt: %v", err)
		}
		return apperror.InvalidCode("Invalid verification code. Please try again.")
	}

	if err := s.otpRepo.MarkVerified(ctx, otp.ID); err != nil {
		return apperror.Persistence(err, "Something went wrong. Please try again.")
	}
	return nil
}

// generateCode returns a uniformly random code in [100000, 999999], so the
// string form is always exactly 6 digits.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// logMaskedEmail logs a message with a masked email address
func logMaskedEmail(email, format string, args ...interface{}) {
	log.Printf("Email "+maskEmail(email)+": "+format, args...)
}

// maskEmail masks the local part for logging (e.g. j***e@biz.com).
func maskEmail(email string) string {
	at := strings.Index(email, "@")
	if at <= 0 {
		return "****"
	}
	local, domain := email[:at], email[at:]
	switch len(local) {
	case 1:
		return local + "***" + domain
	case 2:
		return local[:1] + "***" + domain
	default:
		return local[:1] + "***" + local[len(local)-1:] + domain
	}
}
