package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/salesbuddy/server/internal/model"
)

// ErrNoCurrentCode is returned when no verifiable code exists for an email.
var ErrNoCurrentCode = errors.New("no current code")

// OtpRepo defines the interface for OTP code repository operations
type OtpRepo interface {
	Create(ctx context.Context, email, code string, expiresAt time.Time) (int64, error)
	CountRecentRequests(ctx context.Context, email string, since time.Time) (int, error)
	GetCurrent(ctx context.Context, email string, maxAttempts int) (model.OtpCode, error)
	MarkVerified(ctx context.Context, id int64) error
	IncrementAttempt(ctx context.Context, id int64) (int, error)
}

type otpRepo struct {
	db *sql.DB
}

// NewOtpRepo creates a new OtpRepo instance
func NewOtpRepo(db *sql.DB) OtpRepo {
	return &otpRepo{db: db}
}

// Create inserts a new code row. Rows are never replaced: each issuance adds
// one row and selection always picks the most recent verifiable one.
func (r *otpRepo) Create(ctx context.Context, email, code string, expiresAt time.Time) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO otp_codes (email, code, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`, email, code, expiresAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert otp code: %w", err)
	}
	return id, nil
}

// CountRecentRequests returns the number of codes issued for the email since
// the given time (for rate limiting).
func (r *otpRepo) CountRecentRequests(ctx context.Context, email string, since time.Time) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM otp_codes
		WHERE email = $1 AND created_at > $2
	`, email, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count recent requests: %w", err)
	}
	return count, nil
}

// GetCurrent returns the latest unexpired, unverified code for the email with
// fewer than maxAttempts failed attempts. Expiry is exclusive: a code is only
// current while now < expires_at.
func (r *otpRepo) GetCurrent(ctx context.Context, email string, maxAttempts int) (model.OtpCode, error) {
	query := `
		SELECT id, email, code, expires_at, verified, attempt_count, created_at
		FROM otp_codes
		WHERE email = $1
		  AND expires_at > NOW()
		  AND verified = FALSE
		  AND attempt_count < $2
		ORDER BY created_at DESC
		LIMIT 1
	`
	var otp model.OtpCode
	err := r.db.QueryRowContext(ctx, query, email, maxAttempts).Scan(
		&otp.ID,
		&otp.Email,
		&otp.Code,
		&otp.ExpiresAt,
		&otp.Verified,
		&otp.AttemptCount,
		&otp.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.OtpCode{}, ErrNoCurrentCode
		}
		return model.OtpCode{}, fmt.Errorf("query current code: %w", err)
	}
	return otp, nil
}

// MarkVerified sets verified = TRUE for the code row.
func (r *otpRepo) MarkVerified(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE otp_codes SET verified = TRUE WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("code not found")
	}
	return nil
}

// IncrementAttempt bumps attempt_count and returns the new count.
func (r *otpRepo) IncrementAttempt(ctx context.Context, id int64) (int, error) {
	var newCount int
	err := r.db.QueryRowContext(ctx, `
		UPDATE otp_codes
		SET attempt_count = attempt_count + 1
		WHERE id = $1
		RETURNING attempt_count
	`, id).Scan(&newCount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("code not found")
		}
		return 0, fmt.Errorf("increment attempt: %w", err)
	}
	return newCount, nil
}
