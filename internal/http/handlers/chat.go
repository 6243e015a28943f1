package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/salesbuddy/server/internal/agent"
	"github.com/salesbuddy/server/internal/repo"
)

// ChatHandler proxies chat turns to the upstream agent and serves the
// persisted transcript.
type ChatHandler struct {
	agent    *agent.Client
	chatRepo repo.ChatRepo

	// strictEOF surfaces an error event when the upstream stream ends
	// without a success marker instead of closing silently.
	strictEOF bool
}

// NewChatHandler creates a new chat handler
func NewChatHandler(agentClient *agent.Client, chatRepo repo.ChatRepo, strictEOF bool) *ChatHandler {
	return &ChatHandler{
		agent:     agentClient,
		chatRepo:  chatRepo,
		strictEOF: strictEOF,
	}
}

// chatSendRequest is the request body for POST /chat/send
type chatSendRequest struct {
	Message string `json:"message"`
	Email   string `json:"email"`
}

// SSE event payloads. Clients concatenate chunk events in arrival order and
// treat the done event's response as the authoritative final text.
type sseChunk struct {
	Chunk string `json:"chunk"`
}

type sseDone struct {
	Done     bool   `json:"done"`
	Response string `json:"response"`
}

type sseError struct {
	Error string `json:"error"`
}

// HandleSend handles POST /chat/send. It forwards the message upstream,
// re-frames the agent's concatenated-JSON stream into clean SSE events and
// stops after the terminal success marker.
func (h *ChatHandler) HandleSend(w http.ResponseWriter, r *http.Request) {
	var req chatSendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	req.Email = strings.TrimSpace(req.Email)
	if req.Message == "" || req.Email == "" {
		writeErrorMessage(w, http.StatusBadRequest, "Message and email are required")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeErrorMessage(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	upstream, err := h.agent.Stream(r.Context(), req.Message)
	if err != nil {
		writeError(w, err)
		return
	}
	// Closing on every exit path releases the upstream connection, including
	// when the client disconnects mid-stream.
	defer upstream.Close()

	streamID := uuid.New().String()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	scanner := agent.NewScanner()
	buf := make([]byte, 4096)
	done := false

	for {
		n, readErr := upstream.Read(buf)
		if n > 0 {
			for _, obj := range scanner.Feed(buf[:n]) {
				var ev agent.StreamEvent
				if err := json.Unmarshal(obj, &ev); err != nil {
					// Undecodable fragment: drop, never fatal.
					continue
				}
				switch {
				case ev.Done():
					if err := writeSSE(w, flusher, sseDone{Done: true, Response: ev.Response}); err != nil {
						log.Printf("stream %s: client write failed: %v", streamID, err)
						return
					}
					done = true
				case ev.Chunk != "":
					if err := writeSSE(w, flusher, sseChunk{Chunk: ev.Chunk}); err != nil {
						log.Printf("stream %s: client write failed: %v", streamID, err)
						return
					}
				}
				if done {
					// No events are processed past the success marker.
					return
				}
			}
		}
		if readErr != nil {
			if !errors.Is(readErr, io.EOF) {
				log.Printf("stream %s: upstream read error: %v", streamID, readErr)
				return
			}
			// EOF without a success marker: lenient close by default.
			if h.strictEOF {
				_ = writeSSE(w, flusher, sseError{Error: "stream ended unexpectedly"})
			}
			return
		}
	}
}

func writeSSE(w io.Writer, flusher http.Flusher, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}

// historyMessage is one transcript entry with its display grouping label.
type historyMessage struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	DateLabel string    `json:"dateLabel"`
}

// HandleHistory handles GET /chat/history?email=
func (h *ChatHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		writeErrorMessage(w, http.StatusBadRequest, "Email parameter is required")
		return
	}

	messages, err := h.chatRepo.ListByEmail(r.Context(), email)
	if err != nil {
		log.Printf("chat history fetch failed: %v", err)
		writeErrorMessage(w, http.StatusInternalServerError, "Failed to fetch chat history")
		return
	}

	now := time.Now()
	out := make([]historyMessage, 0, len(messages))
	for _, msg := range messages {
		out = append(out, historyMessage{
			ID:        fmt.Sprintf("%d", msg.ID),
			Role:      msg.Role,
			Content:   msg.Content,
			Timestamp: msg.CreatedAt,
			DateLabel: dateLabel(msg.CreatedAt, now),
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"messages": out,
	})
}

// saveMessageRequest is the request body for POST /chat/history
type saveMessageRequest struct {
	Email   string `json:"email"`
	Role    string `json:"role"`
	Content string `json:"content"`
}

// HandleSaveMessage handles POST /chat/history
func (h *ChatHandler) HandleSaveMessage(w http.ResponseWriter, r *http.Request) {
	var req saveMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Role == "" || req.Content == "" {
		writeErrorMessage(w, http.StatusBadRequest, "email, role, and content are required")
		return
	}

	msg, err := h.chatRepo.Insert(r.Context(), req.Email, req.Role, req.Content)
	if err != nil {
		log.Printf("chat history save failed: %v", err)
		writeErrorMessage(w, http.StatusInternalServerError, "Failed to save message")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"id":      msg.ID,
	})
}

// dateLabel groups messages by calendar day relative to now: Today,
// Yesterday, then "Jan 2".
func dateLabel(t, now time.Time) string {
	ty, tm, td := t.Date()
	ny, nm, nd := now.Date()
	if ty == ny && tm == nm && td == nd {
		return "Today"
	}
	yesterday := now.AddDate(0, 0, -1)
	yy, ym, yd := yesterday.Date()
	if ty == yy && tm == ym && td == yd {
		return "Yesterday"
	}
	return t.Format("Jan 2")
}
