package httpds

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"storesales/internal/config"
)

// scriptedTransport serves one canned response (or error) per request.
type scriptedTransport struct {
	script []any // *http.Response or error
	calls  int
}

func (s *scriptedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if s.calls >= len(s.script) {
		return nil, errors.New("script exhausted")
	}
	step := s.script[s.calls]
	s.calls++
	if err, ok := step.(error); ok {
		return nil, err
	}
	return step.(*http.Response), nil
}

func resp(code int, body string) *http.Response {
	return &http.Response{
		StatusCode: code,
		Status:     http.StatusText(code),
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

func testClient(maxRetries int, transport http.RoundTripper) *Client {
	c := NewClient(Options{MaxRetries: maxRetries, Transport: transport})
	// Keep retry tests fast.
	c.initialBackoff = time.Millisecond
	c.maxBackoff = 5 * time.Millisecond
	return c
}

func TestGet_OK(t *testing.T) {
	tr := &scriptedTransport{script: []any{resp(200, "batch")}}
	c := testClient(0, tr)

	r, err := c.Get(context.Background(), "http://example/orders.json")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer r.Body.Close()

	b, _ := io.ReadAll(r.Body)
	if string(b) != "batch" {
		t.Fatalf("body=%q", b)
	}
}

func TestGet_RetriesTransient(t *testing.T) {
	cases := []struct {
		name  string
		first any
	}{
		{"500 then 200", resp(500, "")},
		{"429 then 200", resp(429, "")},
		{"transport error then 200", errors.New("connection reset")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tr := &scriptedTransport{script: []any{tc.first, resp(200, "ok")}}
			c := testClient(2, tr)

			r, err := c.Get(context.Background(), "http://example/x")
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			r.Body.Close()
			if tr.calls != 2 {
				t.Fatalf("calls=%d; want 2", tr.calls)
			}
		})
	}
}

func TestGet_NonRetryableStatus(t *testing.T) {
	tr := &scriptedTransport{script: []any{resp(404, ""), resp(200, "")}}
	c := testClient(3, tr)

	_, err := c.Get(context.Background(), "http://example/x")
	if err == nil {
		t.Fatalf("Get succeeded on 404")
	}
	if tr.calls != 1 {
		t.Fatalf("calls=%d; want 1 (no retry on 404)", tr.calls)
	}
}

func TestGet_RetriesExhausted(t *testing.T) {
	tr := &scriptedTransport{script: []any{resp(503, ""), resp(503, ""), resp(503, "")}}
	c := testClient(2, tr)

	_, err := c.Get(context.Background(), "http://example/x")
	if err == nil {
		t.Fatalf("Get succeeded after exhausting retries")
	}
	if tr.calls != 3 {
		t.Fatalf("calls=%d; want 3 (1 + 2 retries)", tr.calls)
	}
}

func TestGet_EmptyURL(t *testing.T) {
	c := testClient(0, &scriptedTransport{})
	if _, err := c.Get(context.Background(), ""); err == nil {
		t.Fatalf("Get accepted empty url")
	}
}

func TestGet_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := testClient(0, &scriptedTransport{script: []any{resp(200, "")}})
	if _, err := c.Get(ctx, "http://example/x"); !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v; want context.Canceled", err)
	}
}

func TestBackoffDuration(t *testing.T) {
	initial := 200 * time.Millisecond
	max := 5 * time.Second

	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 200 * time.Millisecond},
		{1, 400 * time.Millisecond},
		{2, 800 * time.Millisecond},
		{4, 3200 * time.Millisecond},
		{5, max},  // clamped
		{40, max}, // overflow clamps too
	}
	for _, tc := range cases {
		if got := backoffDuration(initial, tc.attempt, max); got != tc.want {
			t.Fatalf("backoffDuration(attempt=%d)=%v; want %v", tc.attempt, got, tc.want)
		}
	}
}

func TestIsRetryableStatus(t *testing.T) {
	for code, want := range map[int]bool{
		200: false, 301: false, 400: false, 404: false,
		429: true, 500: true, 503: true, 599: true, 600: false,
	} {
		if got := isRetryableStatus(code); got != want {
			t.Fatalf("isRetryableStatus(%d)=%v; want %v", code, got, want)
		}
	}
}

func TestRemoteOpen(t *testing.T) {
	tr := &scriptedTransport{script: []any{resp(200, `[{"order_id":"A1"}]`)}}
	r := NewRemote(config.SourceHTTP{URL: "http://example/orders.json"})
	r.client = testClient(0, tr)

	rc, err := r.Open(context.Background())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()

	b, _ := io.ReadAll(rc)
	if string(b) != `[{"order_id":"A1"}]` {
		t.Fatalf("body=%q", b)
	}
}
