package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/salesbuddy/server/internal/apperror"
)

// writeJSON sends a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("failed to encode JSON response: %v", err)
		}
	}
}

// writeErrorMessage sends {"error": message} with the given status.
func writeErrorMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeError maps a domain error to its HTTP status and sends it.
//
// Validation, rate-limit and OTP errors carry user-correctable messages and
// are returned verbatim. Anything unrecognized becomes a generic 500 so
// internal details never leak to the client.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, apperror.ErrValidation),
			errors.Is(err, apperror.ErrNotFoundOrExpired),
			errors.Is(err, apperror.ErrInvalidCode):
			status = http.StatusBadRequest
		case errors.Is(err, apperror.ErrRateLimited):
			status = http.StatusTooManyRequests
		case errors.Is(err, apperror.ErrUpstreamUnavailable):
			status = http.StatusBadGateway
		}
		writeErrorMessage(w, status, appErr.Message)
		return
	}

	log.Printf("unhandled error: %v", err)
	writeErrorMessage(w, http.StatusInternalServerError, "Something went wrong. Please try again.")
}
