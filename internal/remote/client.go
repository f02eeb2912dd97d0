// Package remote talks to the HTTP todo store.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Makepad-fr/tada/internal/config"
	"github.com/Makepad-fr/tada/internal/model"
)

// Store is the remote collection of todo items.
type Store interface {
	List(ctx context.Context) ([]model.Item, error)
	Create(ctx context.Context, it model.Item) (model.Item, error)
	Delete(ctx context.Context, id string) error
	Toggle(ctx context.Context, id string) (model.Item, error)
	Update(ctx context.Context, id string, it model.Item) (model.Item, error)
}

const (
	userAgent = "tada"
	// Error bodies are cut to this many bytes.
	maxErrorBody = 512
)

// Client implements Store over the store's REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *log.Logger
}

var _ Store = (*Client)(nil)

func NewClient(cfg *config.Config, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.GetAPIBaseURL(),
		logger:     logger,
	}
}

// BaseURL is the store address requests are sent to.
func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) List(ctx context.Context) ([]model.Item, error) {
	var items []model.Item
	if err := c.do(ctx, "list todos", http.MethodGet, "/todos", nil, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.Item{}
	}
	return items, nil
}

// Create sends it without an id and with completed forced to false.
func (c *Client) Create(ctx context.Context, it model.Item) (model.Item, error) {
	body := wireFields{
		Title:       it.Title,
		Description: it.Description,
		Priority:    it.Priority,
		DueDate:     it.DueDate,
		Completed:   false,
	}
	var created model.Item
	err := c.do(ctx, "create todo", http.MethodPost, "/todos", body, &created)
	return created, err
}

func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, "delete todo", http.MethodDelete, todoPath(id), nil, nil)
}

func (c *Client) Toggle(ctx context.Context, id string) (model.Item, error) {
	var toggled model.Item
	err := c.do(ctx, "toggle todo", http.MethodPatch, todoPath(id)+"/toggle", nil, &toggled)
	return toggled, err
}

// Update replaces every field of the item with the given values.
func (c *Client) Update(ctx context.Context, id string, it model.Item) (model.Item, error) {
	body := wireFields{
		ID:          id,
		Title:       it.Title,
		Description: it.Description,
		Priority:    it.Priority,
		DueDate:     it.DueDate,
		Completed:   it.Completed,
	}
	var updated model.Item
	err := c.do(ctx, "update todo", http.MethodPut, todoPath(id), body, &updated)
	return updated, err
}

// wireFields is the request body for create and update. Store-managed
// timestamps are never sent.
type wireFields struct {
	ID          string         `json:"id,omitempty"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Priority    model.Priority `json:"priority"`
	DueDate     model.Date     `json:"dueDate"`
	Completed   bool           `json:"completed"`
}

func todoPath(id string) string {
	return "/todos/" + url.PathEscape(id)
}

func (c *Client) do(ctx context.Context, op, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return &TransportError{Op: op, Err: fmt.Errorf("encode request: %w", err)}
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "method", method, "path", path, "err", err)
		return &TransportError{Op: op, Err: err}
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.Warn("closing response body", "path", path, "err", cerr)
		}
	}()
	c.logger.Debug("request", "method", method, "path", path, "status", resp.StatusCode, "took", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &RemoteError{Op: op, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
