package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/salesbuddy/server/internal/model"
	"github.com/salesbuddy/server/internal/repo"
)

// In-memory repository fakes shared by the handler tests. They reproduce the
// SQL-backed semantics closely enough for routing and response assertions.

type fakeOtpRepo struct {
	codes  []model.OtpCode
	nextID int64
}

func (f *fakeOtpRepo) Create(_ context.Context, email, code string, expiresAt time.Time) (int64, error) {
	f.nextID++
	f.codes = append(f.codes, model.OtpCode{
		ID:        f.nextID,
		Email:     email,
		Code:      code,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	})
	return f.nextID, nil
}

func (f *fakeOtpRepo) CountRecentRequests(_ context.Context, email string, since time.Time) (int, error) {
	count := 0
	for _, c := range f.codes {
		if c.Email == email && c.CreatedAt.After(since) {
			count++
		}
	}
	return count, nil
}

func (f *fakeOtpRepo) GetCurrent(_ context.Context, email string, maxAttempts int) (model.OtpCode, error) {
	for i := len(f.codes) - 1; i >= 0; i-- {
		c := f.codes[i]
		if c.Email == email && time.Now().Before(c.ExpiresAt) && !c.Verified && c.AttemptCount < maxAttempts {
			return c, nil
		}
	}
	return model.OtpCode{}, repo.ErrNoCurrentCode
}

func (f *fakeOtpRepo) MarkVerified(_ context.Context, id int64) error {
	for i := range f.codes {
		if f.codes[i].ID == id {
			f.codes[i].Verified = true
			return nil
		}
	}
	return errors.New("code not found")
}

func (f *fakeOtpRepo) IncrementAttempt(_ context.Context, id int64) (int, error) {
	for i := range f.codes {
		if f.codes[i].ID == id {
			f.codes[i].AttemptCount++
			return f.codes[i].AttemptCount, nil
		}
	}
	return 0, errors.New("code not found")
}

type fakeUserRepo struct {
	users     map[string]model.DemoUser
	nextID    int64
	upsertErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]model.DemoUser{}}
}

func (f *fakeUserRepo) Upsert(_ context.Context, email string, expiresAt time.Time, marketingOptin bool) (model.DemoUser, error) {
	if f.upsertErr != nil {
		return model.DemoUser{}, f.upsertErr
	}
	if existing, ok := f.users[email]; ok {
		if existing.ExpiresAt.After(expiresAt) {
			expiresAt = existing.ExpiresAt
		}
		existing.ExpiresAt = expiresAt
		existing.IsActive = true
		existing.MarketingOptin = existing.MarketingOptin || marketingOptin
		f.users[email] = existing
		return existing, nil
	}
	f.nextID++
	user := model.DemoUser{
		ID:             f.nextID,
		Email:          email,
		CreatedAt:      time.Now(),
		ExpiresAt:      expiresAt,
		IsActive:       true,
		MarketingOptin: marketingOptin,
	}
	f.users[email] = user
	return user, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (model.DemoUser, error) {
	user, ok := f.users[email]
	if !ok {
		return model.DemoUser{}, repo.ErrUserNotFound
	}
	return user, nil
}

type fakeChatRepo struct {
	messages  []model.ChatMessage
	nextID    int64
	insertErr error
	listErr   error
}

func (f *fakeChatRepo) Insert(_ context.Context, email, role, content string) (model.ChatMessage, error) {
	if f.insertErr != nil {
		return model.ChatMessage{}, f.insertErr
	}
	f.nextID++
	msg := model.ChatMessage{
		ID:        f.nextID,
		UserEmail: email,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}
	f.messages = append(f.messages, msg)
	return msg, nil
}

func (f *fakeChatRepo) ListByEmail(_ context.Context, email string) ([]model.ChatMessage, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []model.ChatMessage
	for _, msg := range f.messages {
		if msg.UserEmail == email {
			out = append(out, msg)
		}
	}
	return out, nil
}

type fakeFeedbackRepo struct {
	entries   []model.Feedback
	nextID    int64
	insertErr error
}

func (f *fakeFeedbackRepo) Insert(_ context.Context, email string, rating int, comment *string) (int64, error) {
	if f.insertErr != nil {
		return 0, f.insertErr
	}
	f.nextID++
	f.entries = append(f.entries, model.Feedback{
		ID:        f.nextID,
		UserEmail: email,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: time.Now(),
	})
	return f.nextID, nil
}

type fakeSender struct {
	sent    []string
	sendErr error
}

func (f *fakeSender) SendOTP(_ context.Context, _, code string) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, code)
	return nil
}
