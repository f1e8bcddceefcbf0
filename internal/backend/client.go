// Package backend is the console's client for the loyalty REST API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const maxErrorBody = 64 << 10

var (
	// ErrUnauthorized matches an APIError with status 401.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound matches an APIError with status 404.
	ErrNotFound = errors.New("not found")
)

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Status  int
	Message string
}

// Error reports the status and the backend's message.
func (e *APIError) Error() string {
	return fmt.Sprintf("backend: %d %s", e.Status, e.Message)
}

// Is lets callers test with errors.Is(err, ErrUnauthorized) and friends.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

// Message extracts a user-facing message from err, or def when there is none.
func Message(err error, def string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return def
}

// Credentials identify the operator on privileged calls.
type Credentials struct {
	Token     string
	UserID    string
	CSRFToken string
}

// Observer receives one call per backend round trip. The console's metrics implement it.
type Observer interface {
	ObserveBackend(endpoint string, status int, elapsed time.Duration)
}

// Config configures a Client.
type Config struct {
	BaseURL  string
	Timeout  time.Duration
	Observer Observer
	// HTTPClient overrides the default client; Timeout is ignored when set.
	HTTPClient *http.Client
}

// Client talks to the loyalty backend.
type Client struct {
	baseURL  string
	http     *http.Client
	observer Observer
	tracer   trace.Tracer
}

// NewClient builds a client for cfg.BaseURL (e.g. http://localhost:8080/api).
func NewClient(cfg Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		http:     hc,
		observer: cfg.Observer,
		tracer:   otel.Tracer("github.com/hongminglow/loyalty-console/internal/backend"),
	}
}

type call struct {
	method   string
	endpoint string // route template, used for metrics and span names
	path     string
	query    url.Values
	creds    *Credentials
	body     any
	out      any
}

func (c *Client) do(ctx context.Context, cl call) error {
	ctx, span := c.tracer.Start(ctx, cl.method+" "+cl.endpoint, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	start := time.Now()
	status, err := c.roundTrip(ctx, cl)
	if c.observer != nil {
		c.observer.ObserveBackend(cl.method+" "+cl.endpoint, status, time.Since(start))
	}
	span.SetAttributes(attribute.Int("http.response.status_code", status))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (c *Client) roundTrip(ctx context.Context, cl call) (int, error) {
	target := c.baseURL + cl.path
	if len(cl.query) > 0 {
		target += "?" + cl.query.Encode()
	}

	var body io.Reader
	if cl.body != nil {
		payload, err := json.Marshal(cl.body)
		if err != nil {
			return 0, fmt.Errorf("backend: encode %s: %w", cl.endpoint, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, target, body)
	if err != nil {
		return 0, fmt.Errorf("backend: build %s: %w", cl.endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	if cl.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cl.creds != nil {
		cl.creds.apply(req)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("backend: %s %s: %w", cl.method, cl.endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, decodeError(resp)
	}
	if cl.out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(cl.out); err != nil {
		return resp.StatusCode, fmt.Errorf("backend: decode %s: %w", cl.endpoint, err)
	}
	return resp.StatusCode, nil
}

func (cr Credentials) apply(req *http.Request) {
	if cr.Token != "" {
		req.Header.Set("Authorization", "Bearer "+cr.Token)
	}
	if cr.UserID != "" {
		req.Header.Set("X-User-Id", cr.UserID)
	}
	if cr.CSRFToken != "" && req.Method != http.MethodGet {
		// The backend compares the header against the csrf_token cookie.
		req.Header.Set("X-CSRF-Token", cr.CSRFToken)
		req.AddCookie(&http.Cookie{Name: "csrf_token", Value: cr.CSRFToken})
	}
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(raw, &payload) == nil {
		apiErr.Message = strings.TrimSpace(payload.Message)
		if apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(payload.Error)
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}

func pageQuery(page, limit int) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	return q
}
