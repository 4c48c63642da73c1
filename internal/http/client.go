package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	errs "github.com/jmgilman/go/errors"
	"github.com/rs/zerolog"
)

// Options configures a Client.
//
// The zero value of each field falls back to the default documented on it.
type Options struct {
	// UserAgent identifies the client on every request. The remote catalog's
	// usage policy asks for a descriptive value.
	// Default: "Mozilla/5.0 (compatible; AlbumArtMosaic/1.0)".
	UserAgent string

	// Timeout bounds a single request, including reading the body.
	// Default: 15s.
	Timeout time.Duration

	// MaxRetries is the maximum number of attempts made for one call while
	// the server keeps answering 429 Too Many Requests. Default: 5.
	MaxRetries int

	// InitialBackoff is the wait after the first 429. It doubles after every
	// further 429. Default: 1s.
	InitialBackoff time.Duration

	// Logger receives retry diagnostics. Default: a disabled logger.
	Logger *zerolog.Logger

	// Transport overrides the underlying round tripper (tests, proxies).
	Transport http.RoundTripper
}

// Client wraps HTTP GET requests with the catalog's rate limit policy.
//
// Client provides:
//   - A fixed User-Agent header on every request
//   - Timeout handling
//   - Exponential backoff on 429 responses, bounded by MaxRetries attempts
//   - Classified errors (see StatusCode and the jmgilman error codes)
//
// A Client is constructed once and injected into the components that need
// network access; it holds no per-call state and is safe for concurrent use.
// Note that the backoff delay is per call: concurrent callers do not
// coordinate their waits.
//
// Example usage:
//
//	client := NewClient(Options{UserAgent: "MyTool/1.0 (me@example.com)"})
//
//	body, err := client.Get(ctx, "https://bandcamp.com/search", url.Values{"q": {"Sun Ra"}})
//	if errs.GetCode(err) == errs.CodeRateLimit {
//	    // gave up after MaxRetries 429 responses
//	}
type Client struct {
	httpClient     *http.Client
	userAgent      string
	maxRetries     int
	initialBackoff time.Duration
	log            zerolog.Logger
}

// NewClient creates a new HTTP client from opts, applying defaults.
func NewClient(opts Options) *Client {
	if opts.UserAgent == "" {
		opts.UserAgent = "Mozilla/5.0 (compatible; AlbumArtMosaic/1.0)"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 5
	}
	if opts.InitialBackoff <= 0 {
		opts.InitialBackoff = time.Second
	}

	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   opts.Timeout,
			Transport: opts.Transport,
		},
		userAgent:      opts.UserAgent,
		maxRetries:     opts.MaxRetries,
		initialBackoff: opts.InitialBackoff,
		log:            log,
	}
}

// Get performs a GET request and returns the response body as bytes.
//
// query is merged into rawURL's existing query string; pass nil for none.
//
// Backoff policy:
//   - 200 OK returns the body
//   - 429 waits, doubles the wait and tries again, up to MaxRetries attempts
//     in total; exhausting them returns an error with code CodeRateLimit
//   - any other status returns immediately with a classified error
//
// Transport failures are returned with code CodeNetwork and are not retried.
// If ctx is done, ctx.Err() is returned unwrapped so callers can tell a
// cancelled run from a failed request.
//
// Example:
//
//	data, err := client.Get(ctx, "https://f4.bcbits.com/img/a123_7.jpg", nil)
func (c *Client) Get(ctx context.Context, rawURL string, query url.Values) ([]byte, error) {
	target, err := withQuery(rawURL, query)
	if err != nil {
		return nil, errs.Wrap(err, errs.CodeInvalidInput, "invalid request URL")
	}

	delay := c.initialBackoff
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		body, status, err := c.do(ctx, target)
		if err != nil {
			return nil, err
		}

		if status == http.StatusOK {
			return body, nil
		}
		if status != http.StatusTooManyRequests {
			return nil, statusError(status, target)
		}

		if attempt == c.maxRetries {
			break
		}

		c.log.Debug().
			Str("url", target).
			Int("attempt", attempt).
			Dur("delay", delay).
			Msg("rate limited, backing off")

		if err := wait(ctx, delay); err != nil {
			return nil, err
		}
		delay *= 2
	}

	rateErr := errs.Newf(errs.CodeRateLimit, "still rate limited after %d attempts", c.maxRetries)
	return nil, errs.WithContextMap(rateErr, map[string]interface{}{
		"status": http.StatusTooManyRequests,
		"url":    target,
	})
}

// do sends one request. A non-nil error means no usable response was received.
func (c *Client) do(ctx context.Context, target string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, 0, errs.Wrap(err, errs.CodeInvalidInput, "failed to build request")
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, 0, ctx.Err()
		}
		return nil, 0, errs.WithContext(errs.Wrap(err, errs.CodeNetwork, "request failed"), "url", target)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, resp.StatusCode, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return nil, 0, ctx.Err()
		}
		return nil, 0, errs.WithContext(errs.Wrap(err, errs.CodeNetwork, "failed to read response body"), "url", target)
	}

	return body, resp.StatusCode, nil
}

// StatusCode returns the HTTP status attached to an error returned by Get,
// or 0 when the failure happened before a response was received.
func StatusCode(err error) int {
	var platformErr errs.PlatformError
	if !errs.As(err, &platformErr) {
		return 0
	}
	status, _ := platformErr.Context()["status"].(int)
	return status
}

func statusError(status int, target string) error {
	code := errs.CodeInvalidInput
	switch {
	case status == http.StatusNotFound:
		code = errs.CodeNotFound
	case status == http.StatusUnauthorized:
		code = errs.CodeUnauthorized
	case status == http.StatusForbidden:
		code = errs.CodeForbidden
	case status >= 500:
		code = errs.CodeUnavailable
	}

	err := errs.Newf(code, "HTTP %d: %s", status, http.StatusText(status))
	return errs.WithContextMap(err, map[string]interface{}{
		"status": status,
		"url":    target,
	})
}

func withQuery(rawURL string, query url.Values) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("URL %q is not absolute", rawURL)
	}
	if len(query) > 0 {
		merged := u.Query()
		for k, vs := range query {
			for _, v := range vs {
				merged.Add(k, v)
			}
		}
		u.RawQuery = merged.Encode()
	}
	return u.String(), nil
}

func wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
