// Package llm holds the HTTP plumbing shared by the LLM provider adapters.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/codebook/internal/core/domain"
)

// maxErrorBody bounds how much of an error response ends up in a message.
const maxErrorBody = 512

// Client sends JSON requests to one provider API.
type Client struct {
	provider string
	baseURL  string
	header   http.Header
	http     *http.Client

	// throttled lists the statuses reported as domain.RateLimitError.
	throttled []int
}

// NewClient returns a client for baseURL that adds header to every request.
// Status 429 always counts as throttling; extra adds provider specific ones.
func NewClient(provider, baseURL string, timeout time.Duration, header http.Header, extra ...int) *Client {
	return &Client{
		provider:  provider,
		baseURL:   strings.TrimRight(baseURL, "/"),
		header:    header,
		http:      &http.Client{Timeout: timeout},
		throttled: append([]int{http.StatusTooManyRequests}, extra...),
	}
}

// BaseURL returns the API root without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// Timeout returns the per-request timeout.
func (c *Client) Timeout() time.Duration { return c.http.Timeout }

// PostJSON sends in as JSON to path and decodes a successful reply into out.
func (c *Client) PostJSON(ctx context.Context, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("%s: marshal request: %w", c.provider, err)
	}
	body, err := c.do(ctx, http.MethodPost, path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", c.provider, err)
	}
	return nil
}

// Get requests path and discards a successful reply.
func (c *Client) Get(ctx context.Context, path string) error {
	_, err := c.do(ctx, http.MethodGet, path, http.NoBody)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("%s: create request: %w", c.provider, err)
	}
	for k, v := range c.header {
		req.Header[k] = v
	}
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: send request: %w", c.provider, err)
	}
	defer resp.Body.Close()

	if slices.Contains(c.throttled, resp.StatusCode) {
		return nil, &domain.RateLimitError{
			Provider:   c.provider,
			RetryAfter: RetryAfter(resp.Header, time.Now()),
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read response: %w", c.provider, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{Provider: c.provider, Status: resp.StatusCode, Message: errorMessage(data)}
	}
	return data, nil
}

// APIError is a non-success reply other than throttling.
type APIError struct {
	Provider string
	Status   int
	Message  string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: status %d", e.Provider, e.Status)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Provider, e.Status, e.Message)
}

// errorMessage extracts error.message, the envelope both providers use,
// falling back to the raw body.
func errorMessage(body []byte) string {
	var envelope struct {
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &envelope) == nil && envelope.Error != nil && envelope.Error.Message != "" {
		return envelope.Error.Message
	}
	msg := strings.TrimSpace(string(body))
	if msg == "{}" {
		return ""
	}
	if len(msg) > maxErrorBody {
		msg = msg[:maxErrorBody] + "..."
	}
	return msg
}

// RetryAfter reads the Retry-After header as delay seconds or an HTTP date.
// It returns zero when the header is missing, malformed or in the past.
func RetryAfter(h http.Header, now time.Time) time.Duration {
	v := strings.TrimSpace(h.Get("Retry-After"))
	if v == "" {
		return 0
	}
	if secs, err := strconv.ParseFloat(v, 64); err == nil {
		if secs <= 0 {
			return 0
		}
		return time.Duration(secs * float64(time.Second))
	}
	if at, err := http.ParseTime(v); err == nil && at.After(now) {
		return at.Sub(now)
	}
	return 0
}
