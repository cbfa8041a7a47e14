package eventbrite

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	BaseURL = "https://www.eventbrite.com"

	defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"
)

// FetchError kinds
const (
	FetchErrTimeout    = "timeout"
	FetchErrHTTPStatus = "http_status"
	FetchErrNetwork    = "network"
)

// FetchError reports a failed page fetch after all retries were spent.
type FetchError struct {
	Kind     string
	URL      string
	Status   int // set for http_status errors
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: %s %d after %d attempts", e.URL, e.Kind, e.Status, e.Attempts)
	}
	return fmt.Sprintf("fetch %s: %s after %d attempts", e.URL, e.Kind, e.Attempts)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Pacer enforces a minimum delay between consecutive requests. The sleep and
// now funcs are injectable so tests can run without waiting on a real clock.
type Pacer struct {
	mu    sync.Mutex
	delay time.Duration
	last  time.Time

	now   func() time.Time
	sleep func(time.Duration)
}

func NewPacer(delay time.Duration) *Pacer {
	return &Pacer{
		delay: delay,
		now:   time.Now,
		sleep: time.Sleep,
	}
}

// Wait blocks until at least the configured delay has passed since the
// previous call. The first call returns immediately.
func (p *Pacer) Wait() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.last.IsZero() {
		if elapsed := p.now().Sub(p.last); elapsed < p.delay {
			p.sleep(p.delay - elapsed)
		}
	}
	p.last = p.now()
}

// Client fetches Eventbrite pages with rate limiting and bounded retries.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	pacer      *Pacer
	maxRetries int
	backoff    time.Duration
}

func NewClient(requestDelay time.Duration, maxRetries int) *Client {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL:    BaseURL,
		userAgent:  defaultUserAgent,
		pacer:      NewPacer(requestDelay),
		maxRetries: maxRetries,
		backoff:    500 * time.Millisecond,
	}
}

// SearchURL returns the listing URL for a location slug and 1-based page number.
func (c *Client) SearchURL(location string, page int) string {
	if page <= 1 {
		return fmt.Sprintf("%s/d/%s/events/", c.baseURL, location)
	}
	return fmt.Sprintf("%s/d/%s/events/?page=%d", c.baseURL, location, page)
}

// FetchPage retrieves a raw page body. Transient failures (timeouts, 5xx and
// 429 responses, connection errors) are retried with exponential backoff up to
// the configured attempt count; other failures are returned immediately.
func (c *Client) FetchPage(ctx context.Context, pageURL string) (string, error) {
	if _, err := url.ParseRequestURI(pageURL); err != nil {
		return "", fmt.Errorf("malformed url %q: %w", pageURL, err)
	}

	var lastErr *FetchError
	delay := c.backoff

	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		if attempt > 1 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", ctx.Err()
			}
			delay *= 2
		}

		c.pacer.Wait()

		body, ferr := c.doRequest(ctx, pageURL)
		if ferr == nil {
			return body, nil
		}
		ferr.Attempts = attempt
		lastErr = ferr

		if !isTransient(ferr) {
			return "", ferr
		}
	}

	return "", lastErr
}

func (c *Client) doRequest(ctx context.Context, pageURL string) (string, *FetchError) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", &FetchError{Kind: FetchErrNetwork, URL: pageURL, Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		kind := FetchErrNetwork
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			kind = FetchErrTimeout
		}
		return "", &FetchError{Kind: kind, URL: pageURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", &FetchError{Kind: FetchErrHTTPStatus, URL: pageURL, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &FetchError{Kind: FetchErrNetwork, URL: pageURL, Err: err}
	}

	return string(body), nil
}

// isTransient reports whether a fetch failure is worth retrying. Timeouts,
// network errors, 5xx responses and 429 rate limiting are transient; any other
// 4xx is not.
func isTransient(e *FetchError) bool {
	switch e.Kind {
	case FetchErrTimeout, FetchErrNetwork:
		return true
	case FetchErrHTTPStatus:
		return e.Status >= 500 || e.Status == http.StatusTooManyRequests
	}
	return false
}

// ResolveURL makes a possibly relative href absolute against the site base.
func (c *Client) ResolveURL(href string) string {
	if href == "" || strings.HasPrefix(href, "http") {
		return href
	}
	if strings.HasPrefix(href, "/") {
		return c.baseURL + href
	}
	return href
}
