// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/batchalign/internal/models"
)

// SubmitFunc computes the outcome for one work item.
type SubmitFunc func(ctx context.Context, item models.WorkItem) models.Outcome

// MockSubmitter is a test double for [services.Submitter].
//
// Outcomes are looked up by audio name; unknown items succeed with an empty
// JSON object unless Func is set. Every call is recorded in order.
type MockSubmitter struct {
	Func     SubmitFunc
	Outcomes map[string]models.Outcome
	Delay    time.Duration

	mu    sync.Mutex
	calls []models.WorkItem
}

func (m *MockSubmitter) Submit(ctx context.Context, item models.WorkItem) models.Outcome {
	m.mu.Lock()
	m.calls = append(m.calls, item)
	m.mu.Unlock()

	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return models.Skipped(models.MessageCancelled)
		}
	}

	if m.Func != nil {
		return m.Func(ctx, item)
	}
	if o, ok := m.Outcomes[item.Audio.Name]; ok {
		return o
	}
	return models.Succeeded(MustPayload(`{}`))
}

// Calls returns the audio names submitted so far, in order.
func (m *MockSubmitter) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := make([]string, len(m.calls))
	for i, c := range m.calls {
		names[i] = c.Audio.Name
	}
	return names
}

// MockProber is a test double for [services.Prober].
type MockProber struct {
	Err error

	mu    sync.Mutex
	pings int
}

func (m *MockProber) Ping(ctx context.Context) error {
	m.mu.Lock()
	m.pings++
	m.mu.Unlock()
	return m.Err
}

// Pings returns how many times Ping was called.
func (m *MockProber) Pings() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pings
}

// MustPayload builds a payload from a JSON literal or panics.
func MustPayload(body string) models.Payload {
	p, err := models.NewPayload([]byte(body))
	if err != nil {
		panic(err)
	}
	return p
}

// WorkItems pairs name stems into work items ("a" → a.wav + a.txt).
func WorkItems(stems ...string) []models.WorkItem {
	items := make([]models.WorkItem, len(stems))
	for i, s := range stems {
		items[i] = models.WorkItem{
			Index:      i,
			Audio:      models.NewInputFile(s+".wav", models.KindAudio, []byte("RIFF"+s)),
			Transcript: models.NewInputFile(s+".txt", models.KindTranscript, []byte("text "+s)),
		}
	}
	return items
}

// Files builds in-memory input files of kind.
func Files(kind models.FileKind, names ...string) []models.InputFile {
	files := make([]models.InputFile, len(names))
	for i, n := range names {
		files[i] = models.NewInputFile(n, kind, []byte(n))
	}
	return files
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
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

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

// MustWriteFiles creates files named names under dir, each containing its own name.
func MustWriteFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		path := filepath.Join(dir, n)
		if err := os.WriteFile(path, []byte(n), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", path, err)
		}
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
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
