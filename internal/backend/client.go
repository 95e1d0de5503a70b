// Package backend is the typed client of the buy-back REST service. One
// Client is built at startup and shared; every call is bound to the caller's
// context so an abandoned page request also abandons its backend call.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultTimeout = 10 * time.Second
	exportTimeout  = 30 * time.Second
	// maxErrorBody bounds how much of a failed response is kept for logging.
	maxErrorBody = 4 << 10
)

var (
	ErrTimeout     = errors.New("backend request timed out")
	ErrUnavailable = errors.New("backend unreachable")
)

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Method string
	Path   string
	Status int
	Detail string
	Body   []byte
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, e.Detail)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, http.StatusText(e.Status))
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	logger  *slog.Logger
}

type Option func(*Client)

// WithHTTPClient swaps the transport, mostly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func New(baseURL string, timeout time.Duration, logger *slog.Logger, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		timeout: timeout,
		logger:  logger.With("component", "backend"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string { return c.baseURL }

// AssetURL turns a stored upload path into something a browser can load.
// Absolute URLs and data URIs pass through untouched.
func (c *Client) AssetURL(p string) string {
	p = strings.TrimSpace(p)
	switch {
	case p == "":
		return ""
	case strings.HasPrefix(p, "http://"), strings.HasPrefix(p, "https://"), strings.HasPrefix(p, "data:"):
		return p
	}
	return c.baseURL + "/" + strings.TrimLeft(p, "/")
}

// ProductImageURL resolves product images, which the backend stores either
// with or without the uploads/products prefix.
func (c *Client) ProductImageURL(p string) string {
	p = strings.TrimSpace(p)
	if p == "" || strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") {
		return p
	}
	rel := strings.TrimLeft(p, "/")
	if strings.HasPrefix(rel, "uploads/") {
		return c.baseURL + "/" + rel
	}
	if !strings.Contains(rel, "products/") {
		rel = "products/" + rel
	}
	return c.baseURL + "/uploads/" + rel
}

type request struct {
	method  string
	path    string
	query   url.Values
	body    Body
	timeout time.Duration
}

type ctxKey struct{}

// WithRequestID tags outgoing backend calls made with ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

func (c *Client) newHTTPRequest(ctx context.Context, req request) (*http.Request, error) {
	u := c.baseURL + req.path
	if len(req.query) > 0 {
		u += "?" + req.query.Encode()
	}

	reader, contentType, err := req.body.encode()
	if err != nil {
		return nil, fmt.Errorf("encode %s %s: %w", req.method, req.path, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u, reader)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	httpReq.Header.Set("Accept", "application/json")

	id := RequestID(ctx)
	if id == "" {
		id = uuid.NewString()
	}
	httpReq.Header.Set("X-Request-ID", id)
	return httpReq, nil
}

// send issues req and returns a response with a 2xx status. The returned
// cancel func must be called once the body is consumed.
func (c *Client) send(ctx context.Context, req request) (*http.Response, context.CancelFunc, error) {
	timeout := req.timeout
	if timeout == 0 {
		timeout = c.timeout
	}

	var cancel context.CancelFunc
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}

	httpReq, err := c.newHTTPRequest(ctx, req)
	if err != nil {
		cancel()
		return nil, nil, err
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		err = c.transportError(ctx, req, err)
		cancel()
		c.logger.Error("backend request failed",
			"method", req.method, "path", req.path,
			"request_id", httpReq.Header.Get("X-Request-ID"), "error", err)
		return nil, nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer cancel()
		defer resp.Body.Close()
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := &APIError{
			Method: req.method,
			Path:   req.path,
			Status: resp.StatusCode,
			Detail: parseDetail(raw),
			Body:   raw,
		}
		c.logger.Error("backend request failed",
			"method", req.method, "path", req.path, "status", resp.StatusCode,
			"request_id", httpReq.Header.Get("X-Request-ID"), "payload", string(raw))
		return nil, nil, apiErr
	}

	return resp, cancel, nil
}

func (c *Client) transportError(ctx context.Context, req request, err error) error {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		return fmt.Errorf("%s %s: %w", req.method, req.path, ErrTimeout)
	case errors.Is(ctx.Err(), context.Canceled):
		return fmt.Errorf("%s %s: %w", req.method, req.path, context.Canceled)
	}
	return fmt.Errorf("%s %s: %w: %v", req.method, req.path, ErrUnavailable, err)
}

// do runs req and decodes a JSON answer into out (which may be nil).
func (c *Client) do(ctx context.Context, req request, out any) error {
	resp, cancel, err := c.send(ctx, req)
	if err != nil {
		return err
	}
	defer cancel()
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.transportError(ctx, req, err)
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", req.method, req.path, err)
	}
	return nil
}

// Download is a binary file produced by the backend, such as an Excel export.
type Download struct {
	Filename    string
	ContentType string
	Body        []byte
}

func (c *Client) download(ctx context.Context, req request, fallbackName string) (*Download, error) {
	resp, cancel, err := c.send(ctx, req)
	if err != nil {
		return nil, err
	}
	defer cancel()
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.transportError(ctx, req, err)
	}

	d := &Download{
		Filename:    filenameFrom(resp.Header.Get("Content-Disposition"), fallbackName),
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}
	if d.ContentType == "" {
		d.ContentType = "application/octet-stream"
	}
	return d, nil
}

// Stream is an open streaming response. Close releases it.
type Stream struct {
	ContentType string
	Body        io.ReadCloser
	cancel      context.CancelFunc
}

func (s *Stream) Close() error {
	err := s.Body.Close()
	s.cancel()
	return err
}

func (c *Client) stream(ctx context.Context, req request) (*Stream, error) {
	// Streams live as long as the caller's context; no per-call deadline.
	req.timeout = -1
	resp, cancel, err := c.send(ctx, req)
	if err != nil {
		return nil, err
	}
	return &Stream{
		ContentType: resp.Header.Get("Content-Type"),
		Body:        resp.Body,
		cancel:      cancel,
	}, nil
}

// parseDetail pulls the human readable message out of an error body. The
// backend answers {"detail": "..."} or a validation list [{"msg": "..."}].
func parseDetail(raw []byte) string {
	var envelope struct {
		Detail  json.RawMessage `json:"detail"`
		Error   string          `json:"error"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return strings.TrimSpace(string(raw))
	}

	if len(envelope.Detail) > 0 {
		var s string
		if err := json.Unmarshal(envelope.Detail, &s); err == nil {
			return s
		}
		var list []struct {
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(envelope.Detail, &list); err == nil {
			msgs := make([]string, 0, len(list))
			for _, item := range list {
				if item.Msg != "" {
					msgs = append(msgs, item.Msg)
				}
			}
			return strings.Join(msgs, "; ")
		}
		return string(envelope.Detail)
	}
	if envelope.Error != "" {
		return envelope.Error
	}
	return envelope.Message
}

func filenameFrom(disposition, fallback string) string {
	if disposition == "" {
		return fallback
	}
	for _, part := range strings.Split(disposition, ";") {
		part = strings.TrimSpace(part)
		if name, ok := strings.CutPrefix(part, "filename*=UTF-8''"); ok {
			if decoded, err := url.PathUnescape(name); err == nil {
				return decoded
			}
		}
	}
	for _, part := range strings.Split(disposition, ";") {
		part = strings.TrimSpace(part)
		if name, ok := strings.CutPrefix(part, "filename="); ok {
			return strings.Trim(name, `"`)
		}
	}
	return fallback
}

const pingTimeout = 3 * time.Second

// Ping reports whether the backend answers. Any status below 500 counts as
// up, since the root path is not a resource.
func (c *Client) Ping(ctx context.Context) error {
	resp, cancel, err := c.send(ctx, request{method: http.MethodGet, path: "/", timeout: pingTimeout})
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError {
		return nil
	}
	if err != nil {
		return err
	}
	defer cancel()
	return resp.Body.Close()
}
