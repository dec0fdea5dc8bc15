package transport

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"golang.org/x/net/http2"
)

// Config controls the retrying HTTP client's timeout and backoff schedule.
// Defaults match prior transient-status handling, generalized into a real
// exponential schedule.
type Config struct {
	Timeout      time.Duration
	MaxRetries   int
	BaseDelay    time.Duration
	MaxDelay     time.Duration
}

// DefaultConfig is the transport configuration every provider adapter uses
// unless overridden.
func DefaultConfig() Config {
	return Config{
		Timeout:    120 * time.Second,
		MaxRetries: 3,
		BaseDelay:  500 * time.Millisecond,
		MaxDelay:   30 * time.Second,
	}
}

// Client wraps *http.Client with exponential-backoff retry on transient
// network errors and 500/502/503/504/429 responses.
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient builds a Client. http2.ConfigureTransport is applied to the
// default transport so streaming responses use HTTP/2 multiplexing where
// the provider endpoint supports it, per SPEC_FULL.md's domain-stack
// wiring for golang.org/x/net.
func NewClient(cfg Config) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	_ = http2.ConfigureTransport(transport)
	return &Client{
		cfg: cfg,
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
	}
}

// Do issues req, retrying on transient failures per cfg. req.Body, if
// non-nil, must be replayable: caller supplies a GetBody func via
// req.GetBody (standard library contract) for retries to work.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := c.wait(ctx, attempt); err != nil {
				return nil, err
			}
			if req.GetBody != nil {
				body, err := req.GetBody()
				if err != nil {
					return nil, fmt.Errorf("transport: rewind request body: %w", err)
				}
				req.Body = body
			}
		}

		resp, err := c.http.Do(req.WithContext(ctx))
		if err != nil {
			lastErr = err
			if isTransientNetErr(err) {
				continue
			}
			return nil, err
		}

		if isTransientStatus(resp.StatusCode) && attempt < c.cfg.MaxRetries {
			resp.Body.Close()
			lastErr = fmt.Errorf("transport: transient status %d", resp.StatusCode)
			continue
		}
		return resp, nil
	}
	return nil, lastErr
}

func (c *Client) wait(ctx context.Context, attempt int) error {
	delay := time.Duration(float64(c.cfg.BaseDelay) * math.Pow(2, float64(attempt-1)))
	if delay > c.cfg.MaxDelay {
		delay = c.cfg.MaxDelay
	}
	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// isTransientStatus reports whether a status code is worth retrying.
// 429 is included deliberately: although the error taxonomy models
// RateLimit as its own ProviderError kind, the transport layer retries it
// exactly like a 5xx before it is ever classified.
func isTransientStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

func isTransientNetErr(err error) bool {
	if err == nil {
		return false
	}
	// Treat anything that isn't a context cancellation as potentially
	// transient; non-retryable 4xx arrive as a valid *http.Response, not a
	// transport error, so they never reach this branch.
	return err != context.Canceled && err != context.DeadlineExceeded
}

// ReadSSE drives an SSEParser over resp.Body, invoking onEvent for each
// completed event, until the body is exhausted or ctx is cancelled.
func ReadSSE(ctx context.Context, body io.Reader, onEvent func(SSEEvent) error) error {
	parser := NewSSEParser()
	reader := bufio.NewReaderSize(body, 64*1024)
	buf := make([]byte, 4096)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := reader.Read(buf)
		if n > 0 {
			for _, ev := range parser.Feed(buf[:n]) {
				if err := onEvent(ev); err != nil {
					return err
				}
			}
		}
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
	}
}
