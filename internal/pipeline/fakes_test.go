package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dgallion1/lawgest/internal/index"
	"github.com/dgallion1/lawgest/internal/segment"
	"github.com/dgallion1/lawgest/internal/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeUploads struct {
	mu      sync.Mutex
	uploads map[string]storage.Upload
	learned map[string]int
}

func newFakeUploads(ups ...storage.Upload) *fakeUploads {
	f := &fakeUploads{uploads: make(map[string]storage.Upload), learned: make(map[string]int)}
	for _, u := range ups {
		f.uploads[u.ID] = u
	}
	return f
}

func (f *fakeUploads) Get(_ context.Context, id string) (storage.Upload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.uploads[id]
	if !ok {
		return storage.Upload{}, storage.ErrNotFound
	}
	return u, nil
}

func (f *fakeUploads) MarkLearned(_ context.Context, id string, chunks int, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.learned[id] = chunks
	return nil
}

// fakeFiles serves file contents keyed by path.
type fakeFiles map[string]string

func (f fakeFiles) Open(path string) (io.ReadCloser, error) {
	s, ok := f[path]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return io.NopCloser(strings.NewReader(s)), nil
}

type fakeIndexer struct {
	mu     sync.Mutex
	chunks []segment.Chunk
	err    error
}

func (f *fakeIndexer) Index(_ context.Context, chunks []segment.Chunk) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	f.chunks = append(f.chunks, chunks...)
	return len(chunks), nil
}

type fakeRetriever struct {
	hits []index.Hit
	err  error
}

func (f *fakeRetriever) Search(_ context.Context, _ string, _ int) ([]index.Hit, error) {
	return f.hits, f.err
}

// fakeAnswerer answers from a function and counts calls.
type fakeAnswerer struct {
	mu    sync.Mutex
	calls int
	fn    func(call int, prompt string) (string, error)
}

func (f *fakeAnswerer) Complete(_ context.Context, _, prompt string) (string, error) {
	f.mu.Lock()
	f.calls++
	n := f.calls
	f.mu.Unlock()
	return f.fn(n, prompt)
}

var errBoom = errors.New("boom")
