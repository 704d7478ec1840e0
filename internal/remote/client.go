// Package remote implements the persistence port against the transaksi REST
// service (GET/POST /transaksi, PUT/DELETE /transaksi/{id}).
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"transaksi/internal/core"
	applog "transaksi/internal/log"
	"transaksi/internal/ports"
)

// DefaultURL is where the desktop clients historically found the service.
const DefaultURL = "http://127.0.0.1:1323/transaksi"

// Ensure interface conformance
var _ ports.Store = (*Client)(nil)

type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// New creates a client for the collection URL, e.g. DefaultURL. A nil
// httpClient gets a client with a 10 second timeout.
func New(baseURL string, httpClient *http.Client) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("missing remote URL")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse remote URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid remote URL scheme %q: must be http or https", u.Scheme)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL: baseURL,
		http:    httpClient,
		logger:  slog.Default().With(applog.FieldComponent, applog.ComponentRemote),
	}, nil
}

// List implements ports.TransactionLister. Records come back most recently
// updated first; a single undecodable record fails the whole call.
func (c *Client) List(ctx context.Context) ([]core.Transaction, error) {
	resp, err := c.do(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if err := statusError("list", resp); err != nil {
		return nil, err
	}

	var body ListResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode list: %w", core.ErrBackendUnavailable, err)
	}
	out := make([]core.Transaction, 0, len(body.Data))
	for i, j := range body.Data {
		t, err := j.ToTransaction()
		if err != nil {
			return nil, fmt.Errorf("%w: record %d (%s): %w", core.ErrBackendUnavailable, i, j.ID, err)
		}
		out = append(out, t)
	}
	core.SortByRecency(out)

	c.logger.DebugContext(ctx, "Listed transactions from remote service", applog.FieldOperation, applog.OpList, "count", len(out))
	return out, nil
}

// Create implements ports.TransactionWriter. The id is assigned by the caller.
func (c *Client) Create(ctx context.Context, t core.Transaction) (string, error) {
	if t.ID == "" {
		return "", fmt.Errorf("%w: missing id", core.ErrValidationRejected)
	}
	body := FromTransaction(t)
	body.UpdatedAt = ""
	if err := c.send(ctx, applog.OpCreate, http.MethodPost, c.baseURL, body); err != nil {
		return "", err
	}
	return t.ID, nil
}

// Update implements ports.TransactionWriter. The body carries every field but the id.
func (c *Client) Update(ctx context.Context, id string, t core.Transaction) error {
	body := FromTransaction(t)
	body.ID = ""
	body.UpdatedAt = ""
	return c.send(ctx, applog.OpUpdate, http.MethodPut, c.itemURL(id), body)
}

// Delete implements ports.TransactionDeleter
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.send(ctx, applog.OpDelete, http.MethodDelete, c.itemURL(id), nil)
}

func (c *Client) itemURL(id string) string {
	return c.baseURL + "/" + url.PathEscape(id)
}

func (c *Client) send(ctx context.Context, op, method, target string, payload any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("%w: encode %s body: %w", core.ErrValidationRejected, op, err)
		}
		body = bytes.NewReader(b)
	}
	resp, err := c.do(ctx, method, target, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := statusError(op, resp); err != nil {
		return err
	}
	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)

	c.logger.InfoContext(ctx, "Remote transaction call succeeded", applog.FieldOperation, op, "method", method, "url", target)
	return nil
}

func (c *Client) do(ctx context.Context, method, target string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", core.ErrBackendUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", core.ErrBackendUnavailable, method, target, err)
	}
	return resp, nil
}

// statusError maps a non-200 response onto the error taxonomy.
func statusError(op string, resp *http.Response) error {
	if resp.StatusCode == http.StatusOK {
		return nil
	}
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	msg := strings.TrimSpace(string(snippet))

	var kind error
	switch resp.StatusCode {
	case http.StatusNotFound:
		kind = core.ErrNotFound
	case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
		kind = core.ErrValidationRejected
	default:
		kind = core.ErrBackendUnavailable
	}
	return fmt.Errorf("%w: %s: status %d: %s", kind, op, resp.StatusCode, msg)
}
