package model

import "time"

// OtpCode represents one issued verification code. Rows are append-only:
// each issuance inserts a new row, and only the verified flag and
// attempt_count are ever updated.
type OtpCode struct {
	ID           int64
	Email        string
	Code         string // exactly 6 ASCII digits
	ExpiresAt    time.Time
	Verified     bool
	AttemptCount int
	CreatedAt    time.Time
}

// DemoUser represents a time-boxed demo session bound to an email.
type DemoUser struct {
	ID             int64
	Email          string
	CreatedAt      time.Time
	ExpiresAt      time.Time
	IsActive       bool
	MarketingOptin bool
}

// ChatMessage is one persisted chat turn (user or assistant).
type ChatMessage struct {
	ID        int64
	UserEmail string
	Role      string // "user" | "assistant"
	Content   string
	CreatedAt time.Time
}

// Feedback is a user rating with an optional comment.
type Feedback struct {
	ID        int64
	UserEmail string
	Rating    int // 1..5
	Comment   *string
	CreatedAt time.Time
}
