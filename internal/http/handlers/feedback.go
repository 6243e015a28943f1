package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/salesbuddy/server/internal/repo"
)

// FeedbackHandler stores user ratings
type FeedbackHandler struct {
	feedbackRepo repo.FeedbackRepo
}

// NewFeedbackHandler creates a new feedback handler
func NewFeedbackHandler(feedbackRepo repo.FeedbackRepo) *FeedbackHandler {
	return &FeedbackHandler{feedbackRepo: feedbackRepo}
}

// feedbackRequest is the request body for POST /feedback
type feedbackRequest struct {
	Email   string  `json:"email"`
	Rating  int     `json:"rating"`
	Comment *string `json:"comment"`
}

// HandleSubmit handles POST /feedback. Unlike the session upsert after
// verification, a store failure here is surfaced to the caller.
func (h *FeedbackHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Email = strings.TrimSpace(req.Email)

	if req.Email == "" || req.Rating < 1 || req.Rating > 5 {
		writeErrorMessage(w, http.StatusBadRequest, "Valid email and rating (1-5) are required")
		return
	}

	if _, err := h.feedbackRepo.Insert(r.Context(), req.Email, req.Rating, req.Comment); err != nil {
		writeErrorMessage(w, http.StatusInternalServerError, "Failed to save feedback")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Feedback submitted successfully",
	})
}
