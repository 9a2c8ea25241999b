package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// RecordedRequest is one request seen by a Backend.
type RecordedRequest struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   string
}

// Backend is a fake fortunes backend built on httptest. Routes use the
// net/http ServeMux pattern syntax ("POST /api/v1/analyze/enqueue").
// Every request is recorded, including unmatched ones.
type Backend struct {
	*httptest.Server

	mux *http.ServeMux

	mu       sync.Mutex
	requests []RecordedRequest
}

// NewBackend starts a Backend that is closed when the test ends.
func NewBackend(t *testing.T) *Backend {
	t.Helper()
	b := &Backend{mux: http.NewServeMux()}
	b.Server = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.Close)
	return b
}

// Handle registers h for pattern.
func (b *Backend) Handle(pattern string, h http.HandlerFunc) *Backend {
	b.mux.HandleFunc(pattern, h)
	return b
}

// Requests returns a copy of the recorded requests.
func (b *Backend) Requests() []RecordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]RecordedRequest(nil), b.requests...)
}

// Count returns how many recorded requests matched method and path.
func (b *Backend) Count(method, path string) int {
	n := 0
	for _, r := range b.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

func (b *Backend) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	b.mu.Lock()
	b.requests = append(b.requests, RecordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
		Header: r.Header.Clone(),
		Body:   string(body),
	})
	b.mu.Unlock()

	r.Body = io.NopCloser(bytes.NewReader(body))
	b.mux.ServeHTTP(w, r)
}

// JSON responds with status and body encoded as JSON.
func JSON(status int, body any) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}
}

// Status responds with an empty body.
func Status(status int) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
	}
}

// Sequence serves handlers in order, repeating the last one once exhausted.
func Sequence(handlers ...http.HandlerFunc) http.HandlerFunc {
	var (
		mu sync.Mutex
		i  int
	)
	return func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		h := handlers[i]
		if i < len(handlers)-1 {
			i++
		}
		mu.Unlock()
		h(w, r)
	}
}

// SetCookie responds with the given cookies and then delegates to next.
func SetCookie(next http.HandlerFunc, cookies ...*http.Cookie) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for _, c := range cookies {
			http.SetCookie(w, c)
		}
		next(w, r)
	}
}
