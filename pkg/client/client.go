// Package client talks to the template persistence service over HTTP.
package client

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

	"github.com/google/uuid"

	"tableflip.dev/tmpl/pkg/template"
)

// Routes served by the persistence service.
const (
	PathList   = "/select_templates"
	PathRead   = "/read_template"
	PathCreate = "/create_template"
	PathUpdate = "/update_template"
	PathDelete = "/delete_template"

	// HeaderRequestID carries a per-call id for correlating client and server logs.
	HeaderRequestID = "X-Request-ID"
)

// Transport is the set of remote operations available on templates.
type Transport interface {
	List(ctx context.Context) ([]template.Template, error)
	Get(ctx context.Context, id template.ID) (template.Template, error)
	Create(ctx context.Context, fields template.Fields) (template.Template, error)
	Update(ctx context.Context, t template.Template) (template.Template, error)
	Delete(ctx context.Context, id template.ID) error
}

// ErrTransport matches every failure returned by Client.
var ErrTransport = errors.New("client: transport failure")

// Error describes a failed call. Status is zero when no response was received.
type Error struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("client: ")
	b.WriteString(e.Op)
	if e.Status != 0 {
		fmt.Fprintf(&b, ": status %d", e.Status)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports true for ErrTransport so callers need not know the concrete type.
func (e *Error) Is(target error) bool { return target == ErrTransport }

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout bounds every request made by the client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithLogger sets the logger used for per-request debug records.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Client implements Transport against the persistence service.
type Client struct {
	base    *url.URL
	http    *http.Client
	timeout time.Duration
	logger  *slog.Logger
}

var _ Transport = (*Client)(nil)

// New returns a client for the service rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("client: parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("client: base url %q must be http or https", baseURL)
	}
	c := &Client{
		base:   u,
		http:   http.DefaultClient,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// List fetches every template in server order.
func (c *Client) List(ctx context.Context) ([]template.Template, error) {
	var out []template.Template
	if err := c.do(ctx, "list", http.MethodGet, PathList, 0, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []template.Template{}
	}
	return out, nil
}

// Get fetches a single template.
func (c *Client) Get(ctx context.Context, id template.ID) (template.Template, error) {
	var out template.Template
	err := c.do(ctx, "read", http.MethodGet, PathRead, id, nil, &out)
	return out, err
}

// Create submits a new template and returns it with its assigned id.
func (c *Client) Create(ctx context.Context, fields template.Fields) (template.Template, error) {
	var out template.Template
	if err := c.do(ctx, "create", http.MethodPost, PathCreate, 0, template.FromFields(fields), &out); err != nil {
		return template.Template{}, err
	}
	if out.ID == 0 {
		return template.Template{}, &Error{Op: "create", Message: "response carries no id"}
	}
	return out, nil
}

// Update replaces the template identified by t.ID with t.
func (c *Client) Update(ctx context.Context, t template.Template) (template.Template, error) {
	var out template.Template
	if err := c.do(ctx, "update", http.MethodPut, PathUpdate, t.ID, t, &out); err != nil {
		return template.Template{}, err
	}
	if out.ID == 0 {
		// Empty body: the service accepted t as sent.
		out = t
	}
	return out, nil
}

// Delete removes the template with id.
func (c *Client) Delete(ctx context.Context, id template.ID) error {
	return c.do(ctx, "delete", http.MethodDelete, PathDelete, id, nil, nil)
}

func (c *Client) endpoint(path string, id template.ID) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	if id != 0 {
		q := url.Values{}
		q.Set("id", id.String())
		u.RawQuery = q.Encode()
	}
	return u.String()
}

func (c *Client) do(ctx context.Context, op, method, path string, id template.ID, payload, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return &Error{Op: op, Err: err}
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, id), body)
	if err != nil {
		return &Error{Op: op, Err: err}
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	reqID := uuid.NewString()
	req.Header.Set(HeaderRequestID, reqID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "op", op, "request_id", reqID, "err", err)
		return &Error{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	c.logger.Debug("request done",
		"op", op,
		"method", method,
		"url", req.URL.String(),
		"status", resp.StatusCode,
		"request_id", reqID,
		"elapsed", time.Since(start),
	)
	if err != nil {
		return &Error{Op: op, Status: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := strings.TrimSpace(string(data))
		if message == "" {
			message = resp.Status
		}
		return &Error{Op: op, Status: resp.StatusCode, Message: message}
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &Error{Op: op, Status: resp.StatusCode, Message: "decode response", Err: err}
	}
	return nil
}
