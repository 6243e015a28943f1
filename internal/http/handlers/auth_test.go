package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salesbuddy/server/internal/auth"
	"github.com/salesbuddy/server/internal/session"
)

type authFixture struct {
	handler  *AuthHandler
	otpRepo  *fakeOtpRepo
	userRepo *fakeUserRepo
	sender   *fakeSender
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	otpRepo := &fakeOtpRepo{}
	userRepo := newFakeUserRepo()
	sender := &fakeSender{}

	otpService := auth.NewOtpService(otpRepo, sender)
	authService := auth.NewAuthService(otpService, session.NewService(userRepo))

	return &authFixture{
		handler:  NewAuthHandler(otpService, authService, false),
		otpRepo:  otpRepo,
		userRepo: userRepo,
		sender:   sender,
	}
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestHandleSendOTP_success(t *testing.T) {
	fx := newAuthFixture(t)

	rec := postJSON(t, fx.handler.HandleSendOTP, "/otp/send", map[string]string{"email": "jane@biz.com"})

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "Verification code sent to your email", resp["message"])
	assert.Len(t, fx.sender.sent, 1)
}

func TestHandleSendOTP_invalidEmail(t *testing.T) {
	fx := newAuthFixture(t)

	rec := postJSON(t, fx.handler.HandleSendOTP, "/otp/send", map[string]string{"email": "not-an-email"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "A valid email is required")
	assert.Empty(t, fx.sender.sent)
}

func TestHandleSendOTP_malformedBody(t *testing.T) {
	fx := newAuthFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/otp/send", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	fx.handler.HandleSendOTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleSendOTP_rateLimitedPerEmail(t *testing.T) {
	fx := newAuthFixture(t)

	for i := 0; i < 3; i++ {
		rec := postJSON(t, fx.handler.HandleSendOTP, "/otp/send", map[string]string{"email": "jane@biz.com"})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := postJSON(t, fx.handler.HandleSendOTP, "/otp/send", map[string]string{"email": "jane@biz.com"})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "Too many OTP requests")
}

func TestHandleVerifyOTP_successSetsCookieAndSession(t *testing.T) {
	fx := newAuthFixture(t)

	rec := postJSON(t, fx.handler.HandleSendOTP, "/otp/send", map[string]string{"email": "jane@biz.com"})
	require.Equal(t, http.StatusOK, rec.Code)
	code := fx.sender.sent[0]

	rec = postJSON(t, fx.handler.HandleVerifyOTP, "/otp/verify", map[string]interface{}{
		"email": "jane@biz.com",
		"code":  code,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp verifyOTPResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.True(t, resp.SessionCreated)
	assert.Equal(t, "jane@biz.com", resp.Email)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	cookie := cookies[0]
	assert.Equal(t, session.CookieName, cookie.Name)
	assert.Equal(t, "jane@biz.com", cookie.Value)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, 7*24*60*60, cookie.MaxAge)
	assert.False(t, cookie.HttpOnly)
	assert.False(t, cookie.Secure)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)

	user, ok := fx.userRepo.users["jane@biz.com"]
	require.True(t, ok)
	assert.True(t, user.IsActive)
}

func TestHandleVerifyOTP_wrongCode(t *testing.T) {
	fx := newAuthFixture(t)

	rec := postJSON(t, fx.handler.HandleSendOTP, "/otp/send", map[string]string{"email": "jane@biz.com"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = postJSON(t, fx.handler.HandleVerifyOTP, "/otp/verify", map[string]interface{}{
		"email": "jane@biz.com",
		"code":  "000000",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid verification code")
	assert.Empty(t, rec.Result().Cookies())
}

func TestHandleVerifyOTP_noCode(t *testing.T) {
	fx := newAuthFixture(t)

	rec := postJSON(t, fx.handler.HandleVerifyOTP, "/otp/verify", map[string]interface{}{
		"email": "jane@biz.com",
		"code":  "123456",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Code expired or not found")
}

func TestHandleVerifyOTP_sessionUpsertFailureStillVerifies(t *testing.T) {
	fx := newAuthFixture(t)

	rec := postJSON(t, fx.handler.HandleSendOTP, "/otp/send", map[string]string{"email": "jane@biz.com"})
	require.Equal(t, http.StatusOK, rec.Code)
	code := fx.sender.sent[0]

	fx.userRepo.upsertErr = assert.AnError

	rec = postJSON(t, fx.handler.HandleVerifyOTP, "/otp/verify", map[string]interface{}{
		"email": "jane@biz.com",
		"code":  code,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp verifyOTPResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.False(t, resp.SessionCreated)
}
