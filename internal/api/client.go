// Package api implements the HTTP client for the archive-warehouse
// monitoring backend. Every call returns a classified *Error so callers can
// decide between surfacing the failure and substituting synthetic data; the
// client itself never retries and never touches the UI.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// Kind classifies a request failure.
type Kind int

const (
	// KindNetwork covers transport-level failures: DNS, refused connections,
	// broken pipes.
	KindNetwork Kind = iota + 1
	// KindHTTP covers non-2xx responses.
	KindHTTP
	// KindTimeout covers deadline expiry on either dial or response.
	KindTimeout
	// KindEnvelope covers 2xx responses whose body reports success=false.
	// Fallback policy treats these like transport failures.
	KindEnvelope
	// KindDecode covers responses the client could not parse.
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindHTTP:
		return "http"
	case KindTimeout:
		return "timeout"
	case KindEnvelope:
		return "envelope"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// Error is the classified failure returned by every client operation.
type Error struct {
	Kind    Kind
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("api: %s: %s", e.Kind, e.Message)
}

// KindOf extracts the failure kind from an error chain. Non-client errors
// report Kind(0).
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return 0
}

const defaultTimeout = 10 * time.Second

// Client wraps outbound calls with a base URL, a fixed timeout and JSON
// content negotiation.
type Client struct {
	base string
	http *http.Client
}

// NewClient builds a client for the given base URL. A non-positive timeout
// falls back to the 10s default.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string { return c.base }

// do issues one JSON request and decodes the raw response body into out
// (when out is non-nil). Used directly by the handful of endpoints that do
// not wrap their payload in the success envelope.
func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &Error{Kind: KindDecode, Message: fmt.Sprintf("encode request: %v", err)}
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return &Error{Kind: KindNetwork, Message: err.Error()}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return classifyTransport(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return classifyTransport(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{
			Kind:    KindHTTP,
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
		}
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &Error{Kind: KindDecode, Message: fmt.Sprintf("decode response: %v", err)}
	}
	return nil
}

// doEnveloped issues one request against an endpoint that wraps its payload
// in {success, data?, message?}. A success=false body is classified as
// KindEnvelope even on HTTP 200.
func (c *Client) doEnveloped(ctx context.Context, method, path string, body any, dataOut any) error {
	var wrapped struct {
		Success *bool           `json:"success"`
		Message string          `json:"message"`
		Error   string          `json:"error"`
		Data    json.RawMessage `json:"data"`
	}
	if err := c.do(ctx, method, path, body, &wrapped); err != nil {
		return err
	}
	if wrapped.Success != nil && !*wrapped.Success {
		msg := wrapped.Message
		if msg == "" {
			msg = wrapped.Error
		}
		if msg == "" {
			msg = "backend reported failure"
		}
		return &Error{Kind: KindEnvelope, Message: msg}
	}
	if dataOut == nil || len(wrapped.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(wrapped.Data, dataOut); err != nil {
		return &Error{Kind: KindDecode, Message: fmt.Sprintf("decode payload: %v", err)}
	}
	return nil
}

func classifyTransport(err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Message: err.Error()}
	}
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return &Error{Kind: KindTimeout, Message: err.Error()}
	}
	return &Error{Kind: KindNetwork, Message: err.Error()}
}
