package repo

import (
	"context"
	"database/sql"
	"fmt"
)

// FeedbackRepo defines the interface for feedback repository operations
type FeedbackRepo interface {
	Insert(ctx context.Context, email string, rating int, comment *string) (int64, error)
}

type feedbackRepo struct {
	db *sql.DB
}

// NewFeedbackRepo creates a new FeedbackRepo instance
func NewFeedbackRepo(db *sql.DB) FeedbackRepo {
	return &feedbackRepo{db: db}
}

func (r *feedbackRepo) Insert(ctx context.Context, email string, rating int, comment *string) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO feedback (user_email, rating, comment)
		VALUES ($1, $2, $3)
		RETURNING id
	`, email, rating, comment).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert feedback: %w", err)
	}
	return id, nil
}
