package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// tokenMargin is subtracted from the token expiry before reuse: a cached
// token is only handed out while now < expiresAt - 5min.
const tokenMargin = 5 * time.Minute

// Document is a previewable file in the demo document library.
type Document struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	PreviewURL   string `json:"previewUrl"`
	DownloadURL  string `json:"downloadUrl"`
	Type         string `json:"type"`
	Size         string `json:"size"`
	MimeType     string `json:"mimeType"`
	LastModified string `json:"lastModified"`
}

// cachedToken is the explicit credential cache: value plus expiry, refreshed
// lazily inside the margin. It replaces ambient module-level state with
// owned, mutex-guarded state on the client.
type cachedToken struct {
	value     string
	expiresAt time.Time
}

// Client fetches documents from a SharePoint drive via Microsoft Graph using
// the client-credentials flow.
type Client struct {
	tenantID     string
	clientID     string
	clientSecret string
	siteID       string
	driveID      string

	loginBase  string
	graphBase  string
	httpClient *http.Client

	mu    sync.Mutex
	token cachedToken
	now   func() time.Time
}

// NewClient creates a Graph client for the given tenant and drive.
func NewClient(tenantID, clientID, clientSecret, siteID, driveID string) *Client {
	return &Client{
		tenantID:     tenantID,
		clientID:     clientID,
		clientSecret: clientSecret,
		siteID:       siteID,
		driveID:      driveID,
		loginBase:    "https://login.microsoftonline.com",
		graphBase:    "https://graph.microsoft.com/v1.0",
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		now:          time.Now,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// accessToken returns the cached token while it is still comfortably valid,
// otherwise requests a fresh one.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token.value != "" && c.now().Before(c.token.expiresAt.Add(-tokenMargin)) {
		return c.token.value, nil
	}

	form := url.Values{
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
		"scope":         {"https://graph.microsoft.com/.default"},
		"grant_type":    {"client_credentials"},
	}
	tokenURL := fmt.Sprintf("%s/%s/oauth2/v2.0/token", c.loginBase, c.tenantID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token request failed with status %d", resp.StatusCode)
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("token response missing access_token")
	}

	c.token = cachedToken{
		value:     tok.AccessToken,
		expiresAt: c.now().Add(time.Duration(tok.ExpiresIn) * time.Second),
	}
	return c.token.value, nil
}

type driveItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	WebURL      string `json:"webUrl"`
	Size        int64  `json:"size"`
	File        *struct {
		MimeType string `json:"mimeType"`
	} `json:"file"`
	LastModifiedDateTime string `json:"lastModifiedDateTime"`
	DownloadURL          string `json:"@microsoft.graph.downloadUrl"`
}

type driveChildren struct {
	Value []driveItem `json:"value"`
}

// ListDocuments returns the files (folders excluded) in the drive root.
func (c *Client) ListDocuments(ctx context.Context) ([]Document, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	listURL := fmt.Sprintf("%s/sites/%s/drives/%s/root/children", c.graphBase, c.siteID, c.driveID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, listURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build list request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list documents failed with status %d", resp.StatusCode)
	}

	var children driveChildren
	if err := json.NewDecoder(resp.Body).Decode(&children); err != nil {
		return nil, fmt.Errorf("decode drive children: %w", err)
	}

	documents := make([]Document, 0, len(children.Value))
	for _, item := range children.Value {
		if item.File == nil {
			continue
		}
		documents = append(documents, Document{
			ID:           item.ID,
			Name:         item.Name,
			Description:  item.Description,
			PreviewURL:   item.WebURL,
			DownloadURL:  item.DownloadURL,
			Type:         fileExtension(item.Name),
			Size:         formatFileSize(item.Size),
			MimeType:     item.File.MimeType,
			LastModified: item.LastModifiedDateTime,
		})
	}
	return documents, nil
}

// FetchContent streams the raw bytes of one document for inline preview. The
// caller must close the returned reader.
func (c *Client) FetchContent(ctx context.Context, documentID string) (io.ReadCloser, string, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, "", err
	}

	contentURL := fmt.Sprintf("%s/sites/%s/drives/%s/items/%s/content", c.graphBase, c.siteID, c.driveID, documentID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, contentURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("build content request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch content: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, "", fmt.Errorf("fetch content failed with status %d", resp.StatusCode)
	}
	return resp.Body, resp.Header.Get("Content-Type"), nil
}

func fileExtension(name string) string {
	idx := strings.LastIndex(name, ".")
	if idx < 0 || idx == len(name)-1 {
		return "file"
	}
	return strings.ToLower(name[idx+1:])
}

func formatFileSize(bytes int64) string {
	if bytes <= 0 {
		return "0 B"
	}
	units := []string{"B", "KB", "MB", "GB"}
	size := float64(bytes)
	i := 0
	for size >= 1024 && i < len(units)-1 {
		size /= 1024
		i++
	}
	return fmt.Sprintf("%.1f %s", size, units[i])
}
