// Package client implements the typed consumer of the accounts API. Every
// endpoint the console calls lives here; responses are decoded into models
// at this boundary and never leak wire shapes upward.
package client

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

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/sma-adp-console/pkg/errors"
)

// Config carries the connection settings for the accounts API.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	UserEmail string
	UserID    string
	Transport http.RoundTripper
	Logger    *zap.Logger
}

// Client is the HTTP consumer of the accounts API. It performs no retries:
// mutating calls are fire-once, and the caller decides what a failure means.
type Client struct {
	base      *url.URL
	http      *http.Client
	userEmail string
	userID    string
	logger    *zap.Logger
}

// New validates the base URL and builds a client.
func New(cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid API base URL")
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "API base URL must be absolute")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	transport := cfg.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &Client{
		base:      base,
		http:      &http.Client{Timeout: cfg.Timeout, Transport: transport},
		userEmail: cfg.UserEmail,
		userID:    cfg.UserID,
		logger:    cfg.Logger,
	}, nil
}

// result is the acceptance surface enveloped responses implement.
type result interface {
	Accepted() bool
	FailureMessage() string
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out, true)
}

func (c *Client) send(ctx context.Context, method, path string, body, out interface{}) error {
	return c.do(ctx, method, path, nil, body, out, true)
}

// do performs one request and decodes the response into out. Path segments
// arrive already escaped, so the URL is joined as a string. With reject set,
// success:false payloads become REQUEST_REJECTED errors carrying the server
// message verbatim.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}, reject bool) error {
	endpoint := c.base.String() + joinPath(path)
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "encode request body")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrTransport.Code, appErrors.ErrTransport.Status,
			fmt.Sprintf("request to %s %s failed", method, path))
	}
	defer resp.Body.Close() //nolint:errcheck

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrTransport.Code, appErrors.ErrTransport.Status, "read response body")
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return c.statusError(resp.StatusCode, raw, method, path)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return appErrors.Wrap(err, appErrors.ErrDecode.Code, resp.StatusCode,
			fmt.Sprintf("decode %s %s response", method, path))
	}
	if reject {
		if r, ok := out.(result); ok && !r.Accepted() {
			if msg := r.FailureMessage(); msg != "" {
				return appErrors.Clone(appErrors.ErrRequestRejected, msg)
			}
			return appErrors.Clone(appErrors.ErrRequestRejected, "")
		}
	}
	return nil
}

// statusError maps non-2xx responses, preferring the server message when
// the body still carries the JSON envelope.
func (c *Client) statusError(status int, raw []byte, method, path string) error {
	var envelope struct {
		Message string `json:"message"`
	}
	_ = json.Unmarshal(raw, &envelope)
	msg := envelope.Message

	if status == http.StatusNotFound {
		return appErrors.Clone(appErrors.ErrNotFound, msg)
	}
	if msg == "" {
		msg = fmt.Sprintf("%s %s returned status %d", method, path, status)
	}
	e := appErrors.Clone(appErrors.ErrAPI, msg)
	e.Status = status
	return e
}

func joinPath(path string) string {
	if !strings.HasPrefix(path, "/") {
		return "/" + path
	}
	return path
}
