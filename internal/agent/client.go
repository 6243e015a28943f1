package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/salesbuddy/server/internal/apperror"
)

// StreamEvent is one decoded upstream fragment. Exactly one of the two shapes
// is populated: a chunk of streamed text, or the terminal success marker
// carrying the authoritative full response.
type StreamEvent struct {
	Chunk    string `json:"chunk,omitempty"`
	Status   string `json:"status,omitempty"`
	Response string `json:"response,omitempty"`
}

// Done reports whether the event is the terminal success marker.
func (e StreamEvent) Done() bool {
	return e.Status == "success"
}

// Client talks to the upstream conversational agent.
type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient creates an agent client for the given endpoint URL.
func NewClient(url string) *Client {
	return &Client{
		url: url,
		httpClient: &http.Client{
			// No overall timeout: responses stream for as long as the
			// agent keeps producing chunks. Cancellation comes from ctx.
			Timeout: 0,
			Transport: &http.Transport{
				ResponseHeaderTimeout: 30 * time.Second,
			},
		},
	}
}

type agentRequest struct {
	UserQuery string `json:"user_query"`
}

// Stream sends the user message upstream and returns the raw response body
// for incremental reading. The caller must close the returned body on every
// exit path so the underlying connection is released.
//
// A transport failure or a non-2xx status maps to ErrUpstreamUnavailable.
func (c *Client) Stream(ctx context.Context, message string) (io.ReadCloser, error) {
	body, err := json.Marshal(agentRequest{UserQuery: message})
	if err != nil {
		return nil, fmt.Errorf("marshal agent request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build agent request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperror.UpstreamUnavailable("Agent is currently unavailable")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_ = resp.Body.Close()
		return nil, apperror.UpstreamUnavailable("Agent is currently unavailable")
	}
	return resp.Body, nil
}
