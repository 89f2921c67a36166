// Package restapi implements the service.Service interface over the task REST API.
package restapi

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

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"

	"taskview/internal/service"
	"taskview/internal/task"
)

const (
	// DefaultBaseURL is used when no API URL is configured.
	DefaultBaseURL = "http://localhost:8080"

	// APITimeout is the default timeout for API calls.
	APITimeout = 5 * time.Second

	// RequestIDHeader carries a per-request identifier.
	RequestIDHeader = "X-Request-ID"

	tasksPath = "/api/tasks"
)

// Client implements service.Service over HTTP/JSON.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	timeout time.Duration
	logger  *log.Logger
}

// Options configures a Client.
type Options struct {
	// BaseURL is the scheme and host of the API, e.g. http://localhost:8080.
	BaseURL string

	// Token, if set, is sent as a Bearer token.
	Token *oauth2.Token

	// Timeout bounds each API call. Zero means APITimeout.
	Timeout time.Duration

	// Logger receives debug logs. Nil discards them.
	Logger *log.Logger
}

// New creates a client. When opts.Token is set, requests are authorized
// through an oauth2 transport.
func New(ctx context.Context, opts Options) (*Client, error) {
	var httpClient *http.Client
	if opts.Token != nil && opts.Token.AccessToken != "" {
		httpClient = oauth2.NewClient(ctx, oauth2.StaticTokenSource(opts.Token))
	} else {
		httpClient = &http.Client{}
	}
	return NewWithHTTPClient(opts, httpClient)
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
func NewWithHTTPClient(opts Options, httpClient *http.Client) (*Client, error) {
	raw := opts.BaseURL
	if raw == "" {
		raw = DefaultBaseURL
	}
	base, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid api url %q: %w", raw, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid api url %q: scheme must be http or https", raw)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = APITimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return &Client{
		baseURL: base,
		http:    httpClient,
		timeout: timeout,
		logger:  logger,
	}, nil
}

// List returns every task in API order.
func (c *Client) List(ctx context.Context) ([]task.Task, error) {
	var tasks []task.Task
	if err := c.do(ctx, "load", http.MethodGet, tasksPath, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// Create creates a task.
func (c *Client) Create(ctx context.Context, d task.Draft) (task.Task, error) {
	var t task.Task
	if err := c.do(ctx, "create", http.MethodPost, tasksPath, d, &t); err != nil {
		return task.Task{}, err
	}
	return t, nil
}

// Toggle flips a task's completion flag.
func (c *Client) Toggle(ctx context.Context, id int64) (task.Task, error) {
	var t task.Task
	if err := c.do(ctx, "toggle", http.MethodPatch, taskPath(id)+"/toggle", nil, &t); err != nil {
		return task.Task{}, err
	}
	return t, nil
}

// Update replaces a task's editable fields.
func (c *Client) Update(ctx context.Context, id int64, d task.Draft) (task.Task, error) {
	var t task.Task
	if err := c.do(ctx, "update", http.MethodPut, taskPath(id), d, &t); err != nil {
		return task.Task{}, err
	}
	return t, nil
}

// Delete deletes a task. Any response body is ignored.
func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.do(ctx, "delete", http.MethodDelete, taskPath(id), nil, nil)
}

func taskPath(id int64) string {
	return tasksPath + "/" + strconv.FormatInt(id, 10)
}

// do sends one request and decodes a JSON response into out (if non-nil).
func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &service.Error{Kind: service.KindTransport, Op: op, Err: err}
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, reqBody)
	if err != nil {
		return &service.Error{Kind: service.KindTransport, Op: op, Err: err}
	}
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		return wrapError(op, err)
	}
	defer res.Body.Close()

	c.logger.Debug("api call", "op", op, "method", method, "path", path,
		"status", res.StatusCode, "request_id", requestID, "duration", time.Since(start))

	if err := googleapi.CheckResponse(res); err != nil {
		return wrapError(op, err)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return &service.Error{Kind: service.KindTransport, Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// wrapError classifies API errors and gives them user-friendly messages.
func wrapError(op string, err error) error {
	if err == nil {
		return nil
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return &service.Error{
			Kind:   service.KindServer,
			Op:     op,
			Status: gerr.Code,
			Err:    errors.New(serverMessage(gerr)),
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		err = errors.New("request timed out")
	}
	return &service.Error{Kind: service.KindTransport, Op: op, Err: err}
}

func serverMessage(gerr *googleapi.Error) string {
	switch gerr.Code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return "token missing, expired or revoked (run: taskview login)"
	case http.StatusNotFound:
		return "not found"
	}
	if gerr.Message != "" {
		return fmt.Sprintf("%s (%d)", gerr.Message, gerr.Code)
	}
	if text := http.StatusText(gerr.Code); text != "" {
		return fmt.Sprintf("%s (%d)", strings.ToLower(text), gerr.Code)
	}
	return fmt.Sprintf("status %d", gerr.Code)
}
