package eventbrite

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient(maxRetries int) *Client {
	c := NewClient(0, maxRetries)
	c.backoff = 0
	return c
}

func TestFetchPageSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>ok</html>"))
	}))
	defer srv.Close()

	body, err := newTestClient(3).FetchPage(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("FetchPage returned error: %v", err)
	}
	if body != "<html>ok</html>" {
		t.Errorf("body = %q", body)
	}
}

func TestFetchPageRetriesServerErrorsExactly(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestClient(3).FetchPage(context.Background(), srv.URL)

	var ferr *FetchError
	if !errors.As(err, &ferr) {
		t.Fatalf("err = %v, want *FetchError", err)
	}
	if ferr.Kind != FetchErrHTTPStatus || ferr.Status != 500 {
		t.Errorf("kind = %s status = %d", ferr.Kind, ferr.Status)
	}
	if ferr.Attempts != 3 {
		t.Errorf("attempts = %d, want 3", ferr.Attempts)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("server saw %d requests, want 3", got)
	}
}

func TestFetchPageDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestClient(3).FetchPage(context.Background(), srv.URL)

	var ferr *FetchError
	if !errors.As(err, &ferr) {
		t.Fatalf("err = %v, want *FetchError", err)
	}
	if ferr.Attempts != 1 {
		t.Errorf("attempts = %d, want 1", ferr.Attempts)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("server saw %d requests, want 1", got)
	}
}

func TestFetchPageRetriesRateLimiting(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte("recovered"))
	}))
	defer srv.Close()

	body, err := newTestClient(3).FetchPage(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("FetchPage returned error: %v", err)
	}
	if body != "recovered" {
		t.Errorf("body = %q", body)
	}
}

func TestFetchPageTimeoutKind(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := newTestClient(2)
	c.httpClient.Timeout = 20 * time.Millisecond

	_, err := c.FetchPage(context.Background(), srv.URL)

	var ferr *FetchError
	if !errors.As(err, &ferr) {
		t.Fatalf("err = %v, want *FetchError", err)
	}
	if ferr.Kind != FetchErrTimeout {
		t.Errorf("kind = %s, want %s", ferr.Kind, FetchErrTimeout)
	}
	if ferr.Attempts != 2 {
		t.Errorf("attempts = %d, want 2", ferr.Attempts)
	}
}

func TestFetchPageMalformedURL(t *testing.T) {
	_, err := newTestClient(3).FetchPage(context.Background(), "not a url")
	if err == nil {
		t.Fatal("FetchPage accepted a malformed URL")
	}
	var ferr *FetchError
	if errors.As(err, &ferr) {
		t.Error("malformed URL produced a FetchError; it should fail before any attempt")
	}
}

func TestPacerEnforcesMinimumDelay(t *testing.T) {
	current := time.Unix(1000, 0)
	var slept time.Duration

	p := &Pacer{
		delay: 2 * time.Second,
		now:   func() time.Time { return current },
		sleep: func(d time.Duration) {
			slept += d
			current = current.Add(d)
		},
	}

	p.Wait() // first call never sleeps
	if slept != 0 {
		t.Fatalf("first Wait slept %v", slept)
	}

	current = current.Add(500 * time.Millisecond)
	p.Wait()
	if slept != 1500*time.Millisecond {
		t.Errorf("slept %v, want 1.5s", slept)
	}

	current = current.Add(3 * time.Second)
	slept = 0
	p.Wait()
	if slept != 0 {
		t.Errorf("slept %v after delay already elapsed, want 0", slept)
	}
}

func TestSearchURL(t *testing.T) {
	c := NewClient(0, 1)
	if got := c.SearchURL("portugal--lisbon", 1); got != "https://www.eventbrite.com/d/portugal--lisbon/events/" {
		t.Errorf("page 1 url = %q", got)
	}
	if got := c.SearchURL("portugal--lisbon", 3); got != "https://www.eventbrite.com/d/portugal--lisbon/events/?page=3" {
		t.Errorf("page 3 url = %q", got)
	}
}

func TestResolveURL(t *testing.T) {
	c := NewClient(0, 1)
	if got := c.ResolveURL("/e/x-1"); got != "https://www.eventbrite.com/e/x-1" {
		t.Errorf("got %q", got)
	}
	if got := c.ResolveURL("https://elsewhere.com/e/x"); got != "https://elsewhere.com/e/x" {
		t.Errorf("got %q", got)
	}
	if got := c.ResolveURL(""); got != "" {
		t.Errorf("got %q", got)
	}
}
