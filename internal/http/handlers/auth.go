package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/salesbuddy/server/internal/auth"
	"github.com/salesbuddy/server/internal/middleware"
	"github.com/salesbuddy/server/internal/session"
)

// AuthHandler handles OTP issuance and verification endpoints
type AuthHandler struct {
	otpService      *auth.OtpService
	authService     *auth.AuthService
	ipLimiter       *middleware.RateLimiter
	verifyIPLimiter *middleware.RateLimiter
	secureCookies   bool
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(otpService *auth.OtpService, authService *auth.AuthService, secureCookies bool) *AuthHandler {
	// IP rate limiters: 10 per 10min for send, 20 per 10min for verify
	// (the per-email limit is DB-based and lives in the OTP service).
	return &AuthHandler{
		otpService:      otpService,
		authService:     authService,
		ipLimiter:       middleware.NewRateLimiter(10*time.Minute, 10),
		verifyIPLimiter: middleware.NewRateLimiter(10*time.Minute, 20),
		secureCookies:   secureCookies,
	}
}

// sendOTPRequest is the request body for POST /otp/send
type sendOTPRequest struct {
	Email string `json:"email"`
}

// verifyOTPRequest is the request body for POST /otp/verify
type verifyOTPRequest struct {
	Email          string `json:"email"`
	Code           string `json:"code"`
	MarketingOptin bool   `json:"marketingOptin"`
}

// verifyOTPResponse is the JSON response for verify
type verifyOTPResponse struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	Email          string `json:"email"`
	SessionCreated bool   `json:"sessionCreated"`
}

// HandleSendOTP handles POST /otp/send
func (h *AuthHandler) HandleSendOTP(w http.ResponseWriter, r *http.Request) {
	var req sendOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Email = strings.TrimSpace(req.Email)

	if !h.ipLimiter.Allow(middleware.GetIPKey(r)) {
		writeErrorMessage(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")
		return
	}

	if err := h.otpService.IssueCode(r.Context(), req.Email); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Verification code sent to your email",
	})
}

// HandleVerifyOTP handles POST /otp/verify
func (h *AuthHandler) HandleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	req.Code = strings.TrimSpace(req.Code)

	if !h.verifyIPLimiter.Allow(middleware.GetIPKey(r)) {
		writeErrorMessage(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")
		return
	}

	result, err := h.authService.VerifyAndStartSession(r.Context(), req.Email, req.Code, req.MarketingOptin)
	if err != nil {
		writeError(w, err)
		return
	}

	// The cookie is a UI hint only; session status stays authoritative.
	session.SetCookie(w, result.Email, h.secureCookies)

	writeJSON(w, http.StatusOK, verifyOTPResponse{
		Success:        true,
		Message:        "Email verified successfully",
		Email:          result.Email,
		SessionCreated: result.SessionCreated,
	})
}
