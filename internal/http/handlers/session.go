package handlers

import (
	"net/http"

	"github.com/salesbuddy/server/internal/session"
)

// SessionHandler answers demo session status queries
type SessionHandler struct {
	sessions *session.Service
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessions *session.Service) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// HandleStatus handles GET /session/status?email=
func (h *SessionHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		writeErrorMessage(w, http.StatusBadRequest, "Email parameter is required")
		return
	}

	status, err := h.sessions.GetStatus(r.Context(), email)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}
