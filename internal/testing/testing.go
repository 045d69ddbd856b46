// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/popcorn/internal/models"
)

// MockMovieService is a test double for [services.MovieService].
//
// SearchFunc and MovieFunc default to returning nothing; Calls records every search query in order.
type MockMovieService struct {
	SearchFunc func(ctx context.Context, query string) ([]models.SearchResult, error)
	MovieFunc  func(ctx context.Context, id string) (*models.MovieDetail, error)

	mu    sync.Mutex
	calls []string
}

func (m *MockMovieService) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, query)
	m.mu.Unlock()

	if m.SearchFunc == nil {
		return []models.SearchResult{}, nil
	}
	return m.SearchFunc(ctx, query)
}

func (m *MockMovieService) Movie(ctx context.Context, id string) (*models.MovieDetail, error) {
	if m.MovieFunc == nil {
		return &models.MovieDetail{ID: id}, nil
	}
	return m.MovieFunc(ctx, id)
}

func (m *MockMovieService) Name() string { return "mock" }

// Calls returns the search queries received so far.
func (m *MockMovieService) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails once maxWrites writes have gone through
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// BlockingRoundTripper holds every request until its context is done and reports each aborted request on Aborted.
type BlockingRoundTripper struct {
	Aborted chan string
}

func NewBlockingRoundTripper() *BlockingRoundTripper {
	return &BlockingRoundTripper{Aborted: make(chan string, 16)}
}

func (b *BlockingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	<-req.Context().Done()
	b.Aborted <- req.URL.RawQuery
	return nil, req.Context().Err()
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

// BodyString builds a response body for [NewMockRoundTripper].
func BodyString(s string) io.ReadCloser {
	return io.NopCloser(strings.NewReader(s))
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
