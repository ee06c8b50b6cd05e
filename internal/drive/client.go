package drive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"arlingtonfleet/fleetmaint/internal/auth"
	"arlingtonfleet/fleetmaint/internal/metrics"
)

// Config locates the maintenance folder inside the remote document store.
type Config struct {
	BaseURL  string // e.g. https://graph.example.com/v1.0
	SiteID   string
	DriveID  string
	FolderID string
}

// ConfigFromEnv reads the document-store location from the environment.
func ConfigFromEnv() Config {
	baseURL := os.Getenv("GRAPH_BASE_URL")
	if baseURL == "" {
		baseURL = "https://graph.microsoft.com/v1.0"
	}
	return Config{
		BaseURL:  baseURL,
		SiteID:   os.Getenv("GRAPH_SITE_ID"),
		DriveID:  os.Getenv("GRAPH_DRIVE_ID"),
		FolderID: os.Getenv("GRAPH_FOLDER_ID"),
	}
}

// Item is one child of the maintenance folder.
type Item struct {
	Name        string `json:"name"`
	ID          string `json:"id"`
	DownloadURL string `json:"@microsoft.graph.downloadUrl,omitempty"`
	WebURL      string `json:"webUrl,omitempty"`
	ParentRef   struct {
		Path string `json:"path,omitempty"`
	} `json:"parentReference,omitempty"`
}

type listResponse struct {
	Value []Item `json:"value"`
}

// Client talks to the Graph-style drive API. It is an explicitly
// constructed, injected dependency; the bearer token is fetched from the
// token source on every call.
type Client struct {
	cfg     Config
	tokens  auth.TokenSource
	client  *http.Client
	metrics *metrics.MetricsRegistry

	// PollInterval and MaxPolls bound the async copy monitor loop.
	PollInterval time.Duration
	MaxPolls     int
}

// NewClient creates a drive client for the configured folder.
func NewClient(cfg Config, tokens auth.TokenSource) *Client {
	return &Client{
		cfg:    cfg,
		tokens: tokens,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		PollInterval: time.Second,
		MaxPolls:     30,
	}
}

// WithMetrics attaches the Prometheus registry; without it the client
// stays silent.
func (c *Client) WithMetrics(m *metrics.MetricsRegistry) *Client {
	c.metrics = m
	return c
}

// observe records one request's outcome and latency.
func (c *Client) observe(op string, start time.Time, failed bool) {
	if c.metrics == nil {
		return
	}
	outcome := "ok"
	if failed {
		outcome = "error"
	}
	c.metrics.DriveRequestsTotal.WithLabelValues(op, outcome).Inc()
	c.metrics.DriveRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func (c *Client) driveURL(parts ...string) string {
	base := fmt.Sprintf("%s/sites/%s/drives/%s", c.cfg.BaseURL, c.cfg.SiteID, c.cfg.DriveID)
	if len(parts) == 0 {
		return base
	}
	return base + "/" + strings.Join(parts, "/")
}

func (c *Client) do(ctx context.Context, op, method, rawURL string, body io.Reader, contentType string) (*http.Response, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	c.observe(op, start, err != nil || (resp != nil && resp.StatusCode >= 400))
	if err != nil {
		return nil, fmt.Errorf("drive request failed: %w", err)
	}
	return resp, nil
}

// graphError is the remote API's error envelope. Its message is folded
// into returned errors so it reaches the user.
type graphError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func remoteError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 8192))
	var ge graphError
	if err := json.Unmarshal(body, &ge); err == nil && ge.Error.Message != "" {
		return fmt.Errorf("drive returned %d: %s", resp.StatusCode, ge.Error.Message)
	}
	return fmt.Errorf("drive returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
}

// ListChildren lists the maintenance folder's files.
func (c *Client) ListChildren(ctx context.Context) ([]Item, error) {
	resp, err := c.do(ctx, "list_children", http.MethodGet, c.driveURL("items", c.cfg.FolderID, "children"), nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, remoteError(resp)
	}

	var lr listResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return nil, fmt.Errorf("failed to decode children listing: %w", err)
	}
	return lr.Value, nil
}

// FindChild returns the child whose name matches exactly (case-insensitive,
// surrounding whitespace ignored), or false when absent.
func FindChild(items []Item, name string) (Item, bool) {
	want := strings.ToLower(strings.TrimSpace(name))
	for _, it := range items {
		if strings.ToLower(strings.TrimSpace(it.Name)) == want {
			return it, true
		}
	}
	return Item{}, false
}

// Download fetches raw bytes from an item's download URL.
func (c *Client) Download(ctx context.Context, downloadURL string) ([]byte, error) {
	resp, err := c.do(ctx, "download", http.MethodGet, downloadURL, nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, remoteError(resp)
	}
	return io.ReadAll(resp.Body)
}

// Upload overwrites an existing item's content.
func (c *Client) Upload(ctx context.Context, itemID string, body []byte, contentType string) error {
	resp, err := c.do(ctx, "upload", http.MethodPut, c.driveURL("items", itemID, "content"), bytes.NewReader(body), contentType)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return remoteError(resp)
	}
	return nil
}

// UploadNew creates a file by name inside the maintenance folder.
func (c *Client) UploadNew(ctx context.Context, name string, body []byte, contentType string) error {
	u := c.driveURL("items", c.cfg.FolderID) + ":/" + url.PathEscape(name) + ":/content"
	resp, err := c.do(ctx, "upload_new", http.MethodPut, u, bytes.NewReader(body), contentType)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return remoteError(resp)
	}
	return nil
}

// Delete removes an item.
func (c *Client) Delete(ctx context.Context, itemID string) error {
	resp, err := c.do(ctx, "delete", http.MethodDelete, c.driveURL("items", itemID), nil, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return remoteError(resp)
	}
	return nil
}
