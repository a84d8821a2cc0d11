package download

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/binpost/binpost/internal/collect"
)

// newTestClient returns a Client with a short timeout and a fixed retry
// budget so failure tests don't sit through the full production backoff.
func newTestClient(retries int) *Client {
	return &Client{
		client:    &http.Client{Timeout: 10 * time.Second},
		userAgent: DefaultUserAgent,
		retries:   retries,
	}
}

func TestFetch(t *testing.T) {
	payload := strings.Repeat("release archive bytes ", 256)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != DefaultUserAgent {
			t.Errorf("User-Agent = %q, want %q", got, DefaultUserAgent)
		}
		// Declare the length so the client exercises the reserved (hinted)
		// collection path; bodies this size would otherwise be chunked.
		w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	got, err := newTestClient(0).Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if string(got) != payload {
		t.Errorf("Fetch() returned %d bytes, want %d", len(got), len(payload))
	}
}

func TestFetchChunked(t *testing.T) {
	payload := strings.Repeat("no content-length here ", 512)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Flushing between writes forces chunked encoding: the client sees
		// ContentLength -1 and the collector runs in fragment mode.
		fl := w.(http.Flusher)
		for chunk := payload; len(chunk) > 0; {
			n := min(100, len(chunk))
			w.Write([]byte(chunk[:n]))
			fl.Flush()
			chunk = chunk[n:]
		}
	}))
	defer srv.Close()

	got, err := newTestClient(0).Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if string(got) != payload {
		t.Errorf("Fetch() returned %d bytes, want %d", len(got), len(payload))
	}
}

func TestFetchBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := newTestClient(0).Fetch(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("Fetch() succeeded on 404")
	}
	if !strings.Contains(err.Error(), "status code: 404") {
		t.Errorf("error %q does not mention the status code", err)
	}
}

func TestFetchRetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("eventually fine"))
	}))
	defer srv.Close()

	got, err := newTestClient(1).Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if string(got) != "eventually fine" {
		t.Errorf("Fetch() = %q", got)
	}
	if n := calls.Load(); n != 2 {
		t.Errorf("server saw %d requests, want 2", n)
	}
}

func TestFetchTruncatedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Declare more than we deliver; the server closes the connection
		// short and the client sees a mid-stream failure.
		w.Header().Set("Content-Length", strconv.Itoa(1000))
		w.Write([]byte("only this much"))
	}))
	defer srv.Close()

	_, err := newTestClient(0).Fetch(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("Fetch() succeeded on truncated body")
	}
	if !errors.Is(err, collect.ErrStream) {
		t.Errorf("error %v does not wrap collect.ErrStream", err)
	}
}

func TestFetchCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("never seen"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient(3).Fetch(ctx, srv.URL)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Fetch() error = %v, want context.Canceled", err)
	}
}
