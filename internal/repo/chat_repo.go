package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/salesbuddy/server/internal/model"
)

// ChatRepo defines the interface for chat message repository operations
type ChatRepo interface {
	Insert(ctx context.Context, email, role, content string) (model.ChatMessage, error)
	ListByEmail(ctx context.Context, email string) ([]model.ChatMessage, error)
}

type chatRepo struct {
	db *sql.DB
}

// NewChatRepo creates a new ChatRepo instance
func NewChatRepo(db *sql.DB) ChatRepo {
	return &chatRepo{db: db}
}

// Insert appends one message row and returns it with id and created_at set.
func (r *chatRepo) Insert(ctx context.Context, email, role, content string) (model.ChatMessage, error) {
	msg := model.ChatMessage{
		UserEmail: email,
		Role:      role,
		Content:   content,
	}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO chat_messages (user_email, role, content)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, email, role, content).Scan(&msg.ID, &msg.CreatedAt)
	if err != nil {
		return model.ChatMessage{}, fmt.Errorf("insert chat message: %w", err)
	}
	return msg, nil
}

// ListByEmail returns all messages for the email ordered by creation time.
func (r *chatRepo) ListByEmail(ctx context.Context, email string) ([]model.ChatMessage, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_email, role, content, created_at
		FROM chat_messages
		WHERE user_email = $1
		ORDER BY created_at ASC
	`, email)
	if err != nil {
		return nil, fmt.Errorf("query chat messages: %w", err)
	}
	defer rows.Close()

	var messages []model.ChatMessage
	for rows.Next() {
		var msg model.ChatMessage
		if err := rows.Scan(&msg.ID, &msg.UserEmail, &msg.Role, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan chat message: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chat messages: %w", err)
	}
	return messages, nil
}
