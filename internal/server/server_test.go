package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/phobologic/funcseg/internal/cache"
	"github.com/phobologic/funcseg/internal/model"
)

func newTestServer(t *testing.T, opts Options) *Server {
	t.Helper()
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)), opts)
}

func post(t *testing.T, s *Server, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, Options{Version: "test"})
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestSegment(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, Options{})
	rec := post(t, s, "/segment", Request{Source: "x: int = 1\ndef f(): pass\n"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp SegmentResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	want := []model.Segment{
		{Start: 0, End: 1, Kind: model.Code, Text: "x = 1"},
		{Start: 1, End: 3, Kind: model.Function, Text: "def f():\n    pass"},
	}
	if len(resp.Segments) != len(want) {
		t.Fatalf("got %+v, want %+v", resp.Segments, want)
	}
	for i := range want {
		if resp.Segments[i] != want[i] {
			t.Errorf("segment %d = %+v, want %+v", i, resp.Segments[i], want[i])
		}
	}
}

func TestSegmentEmptySource(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, Options{})
	rec := post(t, s, "/segment", Request{Source: ""})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"segments":[]`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestSegmentSyntaxError(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, Options{})
	rec := post(t, s, "/segment", Request{Source: "x = 1\ndef f(:\n"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var body syntaxErrorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Line < 1 || body.Error == "" {
		t.Errorf("body = %+v", body)
	}
}

func TestSegmentCached(t *testing.T) {
	t.Parallel()

	store, err := cache.Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	s := newTestServer(t, Options{Cache: store})
	req := Request{Source: "def f(): pass\n"}

	var first, second SegmentResponse
	if err := json.Unmarshal(post(t, s, "/segment", req).Body.Bytes(), &first); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(post(t, s, "/segment", req).Body.Bytes(), &second); err != nil {
		t.Fatal(err)
	}
	if first.Cached || !second.Cached {
		t.Errorf("cached flags = %v, %v; want false, true", first.Cached, second.Cached)
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, Options{})

	tests := []struct {
		name string
		req  Request
		want string
	}{
		{"default rules", Request{Source: "'doc'\nx:int=1"}, "x = 1"},
		{"raw", Request{Source: "'doc'\nx:int=1", Raw: true}, "'doc'\nx: int = 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := post(t, s, "/normalize", tt.req)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d", rec.Code)
			}
			var resp NormalizeResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatal(err)
			}
			if resp.Text != tt.want {
				t.Errorf("text = %q, want %q", resp.Text, tt.want)
			}
		})
	}
}

func TestBadRequests(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, Options{MaxRequestSize: 64})

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/segment", strings.NewReader("{not json")))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid JSON status = %d", rec.Code)
	}

	big := post(t, s, "/segment", Request{Source: strings.Repeat("x = 1\n", 100)})
	if big.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("oversized status = %d", big.Code)
	}

	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/segment", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET /segment status = %d", rec.Code)
	}
}
