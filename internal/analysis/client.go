// Package analysis is the HTTP client for the external analysis service.
package analysis

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "http://localhost:8000"

const (
	summarizePath = "/api/summarize"
	comparePath   = "/api/compare"
	redraftPath   = "/api/redraft"
	analyzePath   = "/api/analyze"
)

// ErrRequestFailed matches every *RequestError.
var ErrRequestFailed = errors.New("request failed")

// RequestError reports a transport failure or a non-2xx response.
type RequestError struct {
	Endpoint string
	// Status is the HTTP status text, or the transport error text when no
	// response was received.
	Status string
	Err    error
}

func (e *RequestError) Error() string {
	return "API request failed: " + e.Status
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

func (e *RequestError) Is(target error) bool {
	return target == ErrRequestFailed
}

// Client talks to the analysis service. It never retries.
type Client struct {
	baseURL string
	client  *resty.Client
}

// NewClient creates a client for baseURL. A zero timeout leaves requests
// bounded only by their context.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	client := resty.New()
	client.SetHeader("Content-Type", "application/json")
	client.SetHeader("Accept", "application/json")
	if timeout > 0 {
		client.SetTimeout(timeout)
	}

	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  client,
	}
}

// BaseURL returns the service root the client posts to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) urlJoin(path string) string {
	return c.baseURL + "/" + strings.TrimPrefix(path, "/")
}

func (c *Client) post(ctx context.Context, path string, body, result any) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(result).
		ForceContentType("application/json").
		Post(c.urlJoin(path))
	if err != nil {
		return &RequestError{Endpoint: path, Status: err.Error(), Err: err}
	}
	if !resp.IsSuccess() {
		return &RequestError{Endpoint: path, Status: statusText(resp.StatusCode(), resp.Status())}
	}
	return nil
}

// statusText returns the reason phrase of a status line such as
// "404 Not Found", falling back to the standard phrase and then the code.
func statusText(code int, status string) string {
	if text := strings.TrimSpace(strings.TrimPrefix(status, strconv.Itoa(code))); text != "" {
		return text
	}
	if text := http.StatusText(code); text != "" {
		return text
	}
	return strconv.Itoa(code)
}

// Summarize asks the service for a summary of req.Text.
func (c *Client) Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error) {
	var out SummarizeResponse
	if err := c.post(ctx, summarizePath, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Compare asks the service to compare two clauses.
func (c *Client) Compare(ctx context.Context, req CompareRequest) (*CompareResponse, error) {
	var out CompareResponse
	if err := c.post(ctx, comparePath, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Redraft asks the service to rewrite req.Text, following req.Instructions
// when given.
func (c *Client) Redraft(ctx context.Context, req RedraftRequest) (*RedraftResponse, error) {
	var out RedraftResponse
	if err := c.post(ctx, redraftPath, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Analyze sends a free-form prompt about req.Text.
func (c *Client) Analyze(ctx context.Context, req AnalyzeRequest) (*AnalyzeResponse, error) {
	var out AnalyzeResponse
	if err := c.post(ctx, analyzePath, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
