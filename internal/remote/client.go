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

	"campuslink/internal/metrics"
)

// Client calls the collection-style REST store. Every call is a single attempt.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// New creates a client with the given request timeout.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// List fetches every record of a collection into out. filter values are sent
// as exact-match query parameters.
func (c *Client) List(ctx context.Context, collection string, filter url.Values, out any) error {
	u := c.BaseURL + "/" + url.PathEscape(collection)
	if len(filter) > 0 {
		u += "?" + filter.Encode()
	}
	return c.do(ctx, http.MethodGet, collection, u, nil, out)
}

// Create posts a new record and decodes the created record into out.
func (c *Client) Create(ctx context.Context, collection string, in, out any) error {
	return c.do(ctx, http.MethodPost, collection, c.recordURL(collection, ""), in, out)
}

// Update replaces the record with the given id.
func (c *Client) Update(ctx context.Context, collection, id string, in, out any) error {
	if id == "" {
		return fmt.Errorf("update %s: id required", collection)
	}
	return c.do(ctx, http.MethodPut, collection, c.recordURL(collection, id), in, out)
}

// Delete removes the record with the given id.
func (c *Client) Delete(ctx context.Context, collection, id string) error {
	if id == "" {
		return fmt.Errorf("delete %s: id required", collection)
	}
	return c.do(ctx, http.MethodDelete, collection, c.recordURL(collection, id), nil, nil)
}

// Health checks that the store answers.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/healthz", nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return &NetworkError{Op: "health", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return &HTTPError{Op: "health", StatusCode: resp.StatusCode, Status: resp.Status}
	}
	return nil
}

func (c *Client) recordURL(collection, id string) string {
	u := c.BaseURL + "/" + url.PathEscape(collection)
	if id != "" {
		u += "/" + url.PathEscape(id)
	}
	return u
}

func (c *Client) do(ctx context.Context, method, collection, target string, in, out any) (err error) {
	op := method + " " + collection
	defer func() {
		metrics.StoreRequests.WithLabelValues(collection, method, outcome(err)).Inc()
	}()

	var body io.Reader
	if in != nil {
		raw, merr := json.Marshal(in)
		if merr != nil {
			return fmt.Errorf("%s: encode body: %w", op, merr)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &HTTPError{Op: op, StatusCode: resp.StatusCode, Status: resp.Status, Body: strings.TrimSpace(string(b))}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &NetworkError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case IsNetwork(err):
		return "network_error"
	case IsHTTP(err):
		return "http_error"
	default:
		return "error"
	}
}

// ListOf is List with a typed result.
func ListOf[T any](ctx context.Context, c *Client, collection string, filter url.Values) ([]T, error) {
	var out []T
	if err := c.List(ctx, collection, filter, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

// CreateOf is Create with a typed result.
func CreateOf[T any](ctx context.Context, c *Client, collection string, in T) (T, error) {
	var out T
	err := c.Create(ctx, collection, in, &out)
	return out, err
}

// UpdateOf is Update with a typed result.
func UpdateOf[T any](ctx context.Context, c *Client, collection, id string, in T) (T, error) {
	var out T
	err := c.Update(ctx, collection, id, in, &out)
	return out, err
}
