package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const maxBody = 8 << 20

type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string { return fmt.Sprintf("GET %s: status %d", e.URL, e.Code) }

func (e *StatusError) retryable() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

type RetryOpts struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
}

var DefaultRetry = RetryOpts{
	MaxAttempts: 3,
	InitialWait: 2 * time.Second,
	MaxWait:     10 * time.Second,
}

// Client is the HTTP client every adapter fetches through: one user agent,
// per-host rate limiting, and retries with exponential backoff for transient
// failures.
type Client struct {
	HC        *http.Client
	Limiter   *HostLimiter
	UserAgent string
	Retry     RetryOpts
}

func NewClient(timeout time.Duration, limiter *HostLimiter, userAgent string) *Client {
	return &Client{
		HC:        &http.Client{Timeout: timeout},
		Limiter:   limiter,
		UserAgent: userAgent,
		Retry:     DefaultRetry,
	}
}

func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, rawURL, nil)
}

func (c *Client) PostForm(ctx context.Context, rawURL string, form string) ([]byte, error) {
	return c.do(ctx, http.MethodPost, rawURL, &form)
}

func (c *Client) Document(ctx context.Context, rawURL string) (*goquery.Document, error) {
	b, err := c.Get(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromReader(strings.NewReader(string(b)))
}

func (c *Client) do(ctx context.Context, method, rawURL string, form *string) ([]byte, error) {
	opts := c.Retry
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 1
	}
	wait := opts.InitialWait

	var lastErr error
	for attempt := 0; attempt < opts.MaxAttempts; attempt++ {
		b, err := c.once(ctx, method, rawURL, form)
		if err == nil {
			return b, nil
		}
		lastErr = err

		var se *StatusError
		if errors.As(err, &se) && !se.retryable() {
			return nil, err
		}
		if ctx.Err() != nil || attempt == opts.MaxAttempts-1 {
			break
		}

		sleep := time.Duration(float64(wait) * (0.5 + rand.Float64()))
		if opts.MaxWait > 0 && sleep > opts.MaxWait {
			sleep = opts.MaxWait
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(sleep):
		}
		wait *= 2
	}
	return nil, lastErr
}

func (c *Client) once(ctx context.Context, method, rawURL string, form *string) ([]byte, error) {
	if err := c.Limiter.WaitURL(ctx, rawURL); err != nil {
		return nil, err
	}

	var body io.Reader
	if form != nil {
		body = strings.NewReader(*form)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, err
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,application/json;q=0.8,*/*;q=0.5")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	hc := c.HC
	if hc == nil {
		hc = http.DefaultClient
	}
	res, err := hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, 64<<10))
		return nil, &StatusError{URL: rawURL, Code: res.StatusCode}
	}
	return io.ReadAll(io.LimitReader(res.Body, maxBody))
}
