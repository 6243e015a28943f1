package handlers

import (
	"io"
	"log"
	"net/http"

	"github.com/salesbuddy/server/internal/graph"
)

// DocumentsHandler serves the demo document library backed by SharePoint.
// The graph client may be nil when the collaborator is not configured.
type DocumentsHandler struct {
	graph *graph.Client
}

// NewDocumentsHandler creates a new documents handler
func NewDocumentsHandler(graphClient *graph.Client) *DocumentsHandler {
	return &DocumentsHandler{graph: graphClient}
}

// HandleList handles GET /documents?email=
func (h *DocumentsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		writeErrorMessage(w, http.StatusBadRequest, "Email is required")
		return
	}
	if h.graph == nil {
		writeErrorMessage(w, http.StatusInternalServerError, "SharePoint configuration missing")
		return
	}

	documents, err := h.graph.ListDocuments(r.Context())
	if err != nil {
		log.Printf("documents list failed: %v", err)
		writeErrorMessage(w, http.StatusInternalServerError, "Failed to fetch documents. Please try again later.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"documents": documents,
	})
}

// HandlePreview handles GET /documents/preview?id=&email=. It proxies the
// file bytes with an inline disposition so PDFs render in an iframe instead
// of downloading.
func (h *DocumentsHandler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	documentID := r.URL.Query().Get("id")
	email := r.URL.Query().Get("email")
	if documentID == "" || email == "" {
		writeErrorMessage(w, http.StatusBadRequest, "Document ID and email are required")
		return
	}
	if h.graph == nil {
		writeErrorMessage(w, http.StatusInternalServerError, "SharePoint configuration missing")
		return
	}

	content, contentType, err := h.graph.FetchContent(r.Context(), documentID)
	if err != nil {
		log.Printf("document preview failed: %v", err)
		writeErrorMessage(w, http.StatusInternalServerError, "Failed to load document preview")
		return
	}
	defer content.Close()

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", "inline")
	w.Header().Set("Cache-Control", "private, max-age=300")
	if _, err := io.Copy(w, content); err != nil {
		log.Printf("document preview copy failed: %v", err)
	}
}
