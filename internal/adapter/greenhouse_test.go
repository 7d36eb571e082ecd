package adapter

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"jobwatch/internal/model"
)

func TestGreenhouseFetchBoard_Success(t *testing.T) {
	payload := `{
		"jobs": [
			{
				"id": 12345,
				"title": "Software Engineer I",
				"location": {"name": "Bangalore, India"},
				"absolute_url": "https://boards.greenhouse.io/acme/jobs/12345",
				"content": "&lt;p&gt;Join our &lt;b&gt;payments&lt;/b&gt; team.&lt;/p&gt;",
				"updated_at": "2026-02-13T10:00:00Z"
			},
			{
				"id": 67890,
				"title": "Backend Engineer",
				"location": {"name": "Remote, US"},
				"absolute_url": "https://boards.greenhouse.io/acme/jobs/67890",
				"updated_at": "2026-02-13T11:30:00Z"
			}
		]
	}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/boards/acme/jobs" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("User-Agent") != userAgent {
			t.Errorf("unexpected user agent: %s", r.Header.Get("User-Agent"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	a := newTestGreenhouse(srv, nil, "acme")

	jobs, err := a.FetchBoard(context.Background(), "acme")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}

	j := jobs[0]
	if j.Signature != "greenhouse|acme|Software Engineer I|https://boards.greenhouse.io/acme/jobs/12345" {
		t.Errorf("unexpected signature: %s", j.Signature)
	}
	if j.Company != "acme" {
		t.Errorf("expected company acme, got %s", j.Company)
	}
	if j.Location != "Bangalore, India" {
		t.Errorf("expected location Bangalore, India, got %s", j.Location)
	}
	if j.Snippet != "Join our payments team." {
		t.Errorf("unexpected snippet: %q", j.Snippet)
	}
	if j.Source != "greenhouse" {
		t.Errorf("expected source greenhouse, got %s", j.Source)
	}
	if j.Posted == nil {
		t.Fatal("expected Posted to be set")
	}
	if j.Posted.Year() != 2026 || j.Posted.Month() != 2 || j.Posted.Day() != 13 {
		t.Errorf("unexpected Posted: %v", j.Posted)
	}
}

func TestGreenhouseFetchBoard_MatcherApplied(t *testing.T) {
	payload := `{
		"jobs": [
			{"id": 1, "title": "Junior Engineer", "absolute_url": "https://x/1"},
			{"id": 2, "title": "Staff Engineer", "absolute_url": "https://x/2"}
		]
	}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	junior := matcherFunc(func(title, _, _ string) bool {
		return strings.Contains(strings.ToLower(title), "junior")
	})
	a := newTestGreenhouse(srv, junior, "acme")

	jobs, err := a.FetchBoard(context.Background(), "acme")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected 1 job, got %d", len(jobs))
	}
	if jobs[0].Title != "Junior Engineer" {
		t.Errorf("unexpected job kept: %s", jobs[0].Title)
	}
}

func TestGreenhouseFetchBoard_URLFallback(t *testing.T) {
	payload := `{"jobs": [{"id": 777, "title": "Junior Engineer"}]}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	a := newTestGreenhouse(srv, nil, "acme")

	jobs, err := a.FetchBoard(context.Background(), "acme")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected 1 job, got %d", len(jobs))
	}
	if jobs[0].URL != "https://boards.greenhouse.io/acme/jobs/777" {
		t.Errorf("unexpected fallback URL: %s", jobs[0].URL)
	}
}

func TestGreenhouseFetchBoard_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	a := newTestGreenhouse(srv, nil, "fail-co")

	_, err := a.FetchBoard(context.Background(), "fail-co")
	if err == nil {
		t.Fatal("expected error for HTTP 500, got nil")
	}
	var httpErr *model.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected HTTPError, got %T", err)
	}
	if httpErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", httpErr.StatusCode)
	}
}

func TestGreenhouseFetchBoard_MalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not valid json`))
	}))
	defer srv.Close()

	a := newTestGreenhouse(srv, nil, "bad-co")

	_, err := a.FetchBoard(context.Background(), "bad-co")
	if err == nil {
		t.Fatal("expected error for malformed JSON, got nil")
	}
}

func TestGreenhouseFetchJobs_BoardIsolation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/broken/") {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"jobs": [{"id": 1, "title": "Junior Engineer", "absolute_url": "https://x/1"}]}`))
	}))
	defer srv.Close()

	a := newTestGreenhouse(srv, nil, "broken", "healthy")

	jobs, err := a.FetchJobs(context.Background())
	if err != nil {
		t.Fatalf("expected broken board to be skipped, got error: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected 1 job from the healthy board, got %d", len(jobs))
	}
	if jobs[0].Company != "healthy" {
		t.Errorf("unexpected company: %s", jobs[0].Company)
	}
}

func TestExtractText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "double-encoded HTML from Greenhouse API",
			input: "This is the job description. &lt;p&gt;Any HTML included.&lt;/p&gt;",
			want:  "This is the job description. Any HTML included.",
		},
		{
			name:  "typical job description with nested tags and whitespace",
			input: "&lt;p&gt;We are hiring.&lt;/p&gt;\n&lt;ul&gt;\n  &lt;li&gt;Write code&lt;/li&gt;\n  &lt;li&gt;Review PRs&lt;/li&gt;\n&lt;/ul&gt;",
			want:  "We are hiring. Write code Review PRs",
		},
		{
			name:  "plain text with no HTML",
			input: "No tags here.",
			want:  "No tags here.",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := extractText(tc.input)
			if got != tc.want {
				t.Errorf("extractText(%q)\n got  %q\n want %q", tc.input, got, tc.want)
			}
		})
	}
}

// --- helpers ---

// roundTripFunc adapts a function into an http.RoundTripper.
type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// testClient returns a client that rewrites every request to hit the test
// server, keeping the original path and query intact.
func testClient(srv *httptest.Server) *http.Client {
	return &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			req.URL.Scheme = "http"
			req.URL.Host = srv.Listener.Addr().String()
			return http.DefaultTransport.RoundTrip(req)
		}),
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// matcherFunc adapts a function into a model.Matcher.
type matcherFunc func(title, description, location string) bool

func (f matcherFunc) Match(title, description, location string) bool {
	return f(title, description, location)
}

func newTestGreenhouse(srv *httptest.Server, matcher model.Matcher, handles ...string) *GreenhouseAdapter {
	return NewGreenhouseAdapter(handles, matcher, testClient(srv), discardLogger())
}
