package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/salesbuddy/server/internal/session"
)

// freeProviders are consumer email domains rejected for demo signups.
var freeProviders = map[string]bool{
	"gmail.com":   true,
	"yahoo.com":   true,
	"hotmail.com": true,
	"outlook.com": true,
}

// SignupHandler handles direct demo signups (email only, no OTP)
type SignupHandler struct {
	sessions      *session.Service
	secureCookies bool
}

// NewSignupHandler creates a new signup handler
func NewSignupHandler(sessions *session.Service, secureCookies bool) *SignupHandler {
	return &SignupHandler{sessions: sessions, secureCookies: secureCookies}
}

// demoSignupRequest is the request body for POST /signup/demo
type demoSignupRequest struct {
	Email          string `json:"email"`
	MarketingOptin bool   `json:"marketingOptin"`
}

// HandleDemoSignup handles POST /signup/demo
func (h *SignupHandler) HandleDemoSignup(w http.ResponseWriter, r *http.Request) {
	var req demoSignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Email = strings.TrimSpace(req.Email)

	if !strings.Contains(req.Email, "@") {
		writeErrorMessage(w, http.StatusBadRequest, "Valid email is required")
		return
	}
	domain := strings.ToLower(req.Email[strings.Index(req.Email, "@")+1:])
	if freeProviders[domain] {
		writeErrorMessage(w, http.StatusBadRequest, "Please use your work email")
		return
	}

	// Signup succeeds even when the store is down; the user can still reach
	// the demo and the session is materialized on the next verification.
	if _, err := h.sessions.Upsert(r.Context(), req.Email, req.MarketingOptin); err != nil {
		log.Printf("demo signup: session upsert failed: %v", err)
	}
	session.SetCookie(w, req.Email, h.secureCookies)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Demo signup successful",
		"email":   req.Email,
	})
}
