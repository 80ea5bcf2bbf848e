package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Per-request timeout bounds. Device timeouts outside this range are
// clamped; a zero timeout selects the default.
const (
	MinTimeout     = 500 * time.Millisecond
	MaxTimeout     = 20 * time.Second
	DefaultTimeout = 4 * time.Second
)

// ErrRequestFailed is returned when a request could not complete:
// connection failure, DNS error, or timeout. Callers treat it the same
// as a non-OK response and fall back to cached state.
var ErrRequestFailed = errors.New("transport: request failed")

// Response is the outcome of a completed HTTP exchange.
type Response struct {
	// OK is true when the status code indicates success (2xx).
	OK bool

	// Status is the HTTP status code.
	Status int

	// Body is the raw response body text, returned regardless of
	// status code.
	Body string
}

// Client performs device HTTP requests. A single Client is shared by
// all device controllers; connection pooling is handled by the
// underlying http.Client.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Client struct {
	http *http.Client
}

// New creates a transport client.
//
// The underlying http.Client carries no global timeout; each call is
// bounded by its own context deadline in Get.
func New() *Client {
	return &Client{
		http: &http.Client{},
	}
}

// ClampTimeout bounds a per-request timeout into [MinTimeout, MaxTimeout].
// A zero or negative value selects DefaultTimeout.
func ClampTimeout(d time.Duration) time.Duration {
	if d <= 0 {
		return DefaultTimeout
	}
	if d < MinTimeout {
		return MinTimeout
	}
	if d > MaxTimeout {
		return MaxTimeout
	}
	return d
}

// Get issues exactly one GET request to url with the given timeout.
//
// A timed-out request aborts the in-flight call and returns an error
// wrapping ErrRequestFailed, as does any network-level failure. A
// response with a non-2xx status is not an error: the body and status
// are returned with OK set to false.
//
// Parameters:
//   - ctx: Parent context; the call also observes its cancellation
//   - url: Device endpoint to request
//   - timeout: Per-call deadline, clamped via ClampTimeout
//
// Returns:
//   - Response: Status, success flag, and raw body text
//   - error: nil, or an error wrapping ErrRequestFailed
func (c *Client) Get(ctx context.Context, url string, timeout time.Duration) (Response, error) {
	ctx, cancel := context.WithTimeout(ctx, ClampTimeout(timeout))
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Response{}, fmt.Errorf("%w: building request: %w", ErrRequestFailed, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	defer resp.Body.Close() //nolint:errcheck // Read-only body, nothing to recover

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("%w: reading body: %w", ErrRequestFailed, err)
	}

	return Response{
		OK:     resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices,
		Status: resp.StatusCode,
		Body:   string(body),
	}, nil
}
