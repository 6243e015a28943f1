package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salesbuddy/server/internal/session"
)

func TestHandleDemoSignup_workEmailSucceeds(t *testing.T) {
	userRepo := newFakeUserRepo()
	handler := NewSignupHandler(session.NewService(userRepo), false)

	rec := postJSON(t, handler.HandleDemoSignup, "/signup/demo", map[string]interface{}{
		"email":          "jane@biz.com",
		"marketingOptin": true,
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "jane@biz.com", resp["email"])

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, session.CookieName, cookies[0].Name)
	assert.Equal(t, "jane@biz.com", cookies[0].Value)

	user, ok := userRepo.users["jane@biz.com"]
	require.True(t, ok)
	assert.True(t, user.MarketingOptin)
}

func TestHandleDemoSignup_freeProviderRejected(t *testing.T) {
	userRepo := newFakeUserRepo()
	handler := NewSignupHandler(session.NewService(userRepo), false)

	for _, email := range []string{
		"jane@gmail.com",
		"jane@GMAIL.com",
		"jane@yahoo.com",
		"jane@hotmail.com",
		"jane@outlook.com",
	} {
		rec := postJSON(t, handler.HandleDemoSignup, "/signup/demo", map[string]string{"email": email})
		assert.Equal(t, http.StatusBadRequest, rec.Code, email)
		assert.Contains(t, rec.Body.String(), "Please use your work email")
	}
	assert.Empty(t, userRepo.users)
}

func TestHandleDemoSignup_invalidEmail(t *testing.T) {
	handler := NewSignupHandler(session.NewService(newFakeUserRepo()), false)

	rec := postJSON(t, handler.HandleDemoSignup, "/signup/demo", map[string]string{"email": "no-at-sign"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Valid email is required")
}

func TestHandleDemoSignup_storeFailureStillSucceeds(t *testing.T) {
	userRepo := newFakeUserRepo()
	userRepo.upsertErr = assert.AnError
	handler := NewSignupHandler(session.NewService(userRepo), false)

	rec := postJSON(t, handler.HandleDemoSignup, "/signup/demo", map[string]string{"email": "jane@biz.com"})

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, rec.Result().Cookies(), 1)
}
