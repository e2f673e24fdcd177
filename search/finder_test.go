package search

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/poiesic/productfinder/ai"
	"github.com/poiesic/productfinder/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubIndex is a test double for Index.
type stubIndex struct {
	mu      sync.Mutex
	hits    []*core.Document
	err     error
	queries []core.QueryOptions
	names   []string
}

func (s *stubIndex) Search(_ context.Context, indexName string, query core.QueryOptions) (*Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.names = append(s.names, indexName)
	s.queries = append(s.queries, query)
	if s.err != nil {
		return nil, s.err
	}
	return &Response{Value: s.hits}, nil
}

// recordingMonitor captures monitor callbacks.
type recordingMonitor struct {
	text   string
	query  core.QueryOptions
	hits   []*core.Document
	ranked []*core.Document
	err    error
}

func (m *recordingMonitor) Start(text string, query core.QueryOptions) {
	m.text = text
	m.query = query
}
func (m *recordingMonitor) AfterSearch(hits []*core.Document) { m.hits = hits }
func (m *recordingMonitor) Failed(err error)                  { m.err = err }
func (m *recordingMonitor) Finish(ranked []*core.Document)    { m.ranked = ranked }

func newTestFinder(t *testing.T, index Index) *Finder {
	t.Helper()
	f, err := NewFinder(index, "products", testScopes(), WithPoolSize(2))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestNewFinder_Validation(t *testing.T) {
	_, err := NewFinder(nil, "products", nil)
	assert.ErrorIs(t, err, ErrIndexRequired)

	_, err = NewFinder(&stubIndex{}, "", nil)
	assert.ErrorIs(t, err, ErrIndexNameRequired)
}

func TestFind_BuildsQueryAndRanks(t *testing.T) {
	index := &stubIndex{hits: docs("Red Shirt", "Red Shirt Classic", "Blue Jeans")}
	f := newTestFinder(t, index)

	speech := ai.NewSpeechResult("red shirt")
	entities := ai.EntityResult{Entities: []core.Entity{entity("color", "Red")}}

	matches, err := f.Find(context.Background(), speech, entities)
	require.NoError(t, err)
	assert.Equal(t, []string{"Red Shirt"}, names(matches))

	require.Len(t, index.queries, 1)
	assert.Equal(t, "products", index.names[0])
	assert.Equal(t, `red shirt +colors:"Red"`, index.queries[0].Search)
}

func TestFind_PropagatesIndexErrorUnchanged(t *testing.T) {
	indexErr := errors.New("index unavailable")
	f := newTestFinder(t, &stubIndex{err: indexErr})

	matches, err := f.Find(context.Background(), ai.NewSpeechResult("red shirt"), ai.EntityResult{})
	assert.Same(t, indexErr, err)
	assert.Nil(t, matches)
}

func TestFindWithMonitor(t *testing.T) {
	hits := docs("Red Shirt", "Blue Jeans")
	f := newTestFinder(t, &stubIndex{hits: hits})
	monitor := &recordingMonitor{}

	_, err := f.FindWithMonitor(context.Background(), ai.NewSpeechResult("red shirt"), ai.EntityResult{}, monitor)
	require.NoError(t, err)

	assert.Equal(t, "red shirt", monitor.text)
	assert.Equal(t, "red shirt ", monitor.query.Search)
	assert.Len(t, monitor.hits, 2)
	assert.Equal(t, []string{"Red Shirt"}, names(monitor.ranked))
	assert.NoError(t, monitor.err)
}

func TestFindProduct_DeliversOnWorker(t *testing.T) {
	f := newTestFinder(t, &stubIndex{hits: docs("Red Shirt", "Red Shirt Classic")})

	type outcome struct {
		err     error
		matches []*core.Document
	}
	done := make(chan outcome, 1)

	err := f.FindProduct(context.Background(), ai.NewSpeechResult("red shirt"), ai.EntityResult{},
		func(err error, matches []*core.Document) {
			done <- outcome{err, matches}
		})
	require.NoError(t, err)

	select {
	case got := <-done:
		require.NoError(t, got.err)
		require.NotEmpty(t, got.matches)
		assert.LessOrEqual(t, len(got.matches), 2)
		assert.Equal(t, "Red Shirt", got.matches[0].Name)
	case <-time.After(5 * time.Second):
		t.Fatal("callback not delivered")
	}
}

func TestFindProduct_NeverCallsBackInCallerStack(t *testing.T) {
	f := newTestFinder(t, &stubIndex{hits: docs("Red Shirt")})

	var mu sync.Mutex
	returned := false
	sawReturn := make(chan bool, 1)

	// Hold the lock across the call so the callback cannot observe state
	// until FindProduct has returned.
	mu.Lock()
	err := f.FindProduct(context.Background(), ai.NewSpeechResult("red shirt"), ai.EntityResult{},
		func(error, []*core.Document) {
			mu.Lock()
			defer mu.Unlock()
			sawReturn <- returned
		})
	returned = true
	mu.Unlock()
	require.NoError(t, err)

	select {
	case got := <-sawReturn:
		assert.True(t, got)
	case <-time.After(5 * time.Second):
		t.Fatal("callback not delivered")
	}
}

func TestFindProduct_Error(t *testing.T) {
	indexErr := errors.New("boom")
	f := newTestFinder(t, &stubIndex{err: indexErr})

	errs := make(chan error, 1)
	var gotMatches []*core.Document
	err := f.FindProduct(context.Background(), ai.NewSpeechResult("red shirt"), ai.EntityResult{},
		func(err error, matches []*core.Document) {
			gotMatches = matches
			errs <- err
		})
	require.NoError(t, err)

	select {
	case got := <-errs:
		assert.Same(t, indexErr, got)
		assert.Nil(t, gotMatches)
	case <-time.After(5 * time.Second):
		t.Fatal("callback not delivered")
	}
}

func TestFindProduct_RequiresCallback(t *testing.T) {
	f := newTestFinder(t, &stubIndex{})
	err := f.FindProduct(context.Background(), ai.NewSpeechResult("x"), ai.EntityResult{}, nil)
	assert.ErrorIs(t, err, ErrCallbackRequired)
}

func TestFindProduct_AfterClose(t *testing.T) {
	f, err := NewFinder(&stubIndex{}, "products", nil)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	require.NoError(t, f.Close())

	called := false
	err = f.FindProduct(context.Background(), ai.NewSpeechResult("x"), ai.EntityResult{},
		func(error, []*core.Document) { called = true })
	assert.ErrorIs(t, err, ErrFinderClosed)
	assert.False(t, called)
}

// blockingIndex holds every search until release is closed.
type blockingIndex struct {
	started chan struct{}
	release chan struct{}
}

func newBlockingIndex() *blockingIndex {
	return &blockingIndex{started: make(chan struct{}, 16), release: make(chan struct{})}
}

func (b *blockingIndex) Search(ctx context.Context, _ string, _ core.QueryOptions) (*Response, error) {
	b.started <- struct{}{}
	select {
	case <-b.release:
		return &Response{Value: docs("Red Shirt")}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestFindProduct_NestedCallWithSingleWorker(t *testing.T) {
	f, err := NewFinder(&stubIndex{hits: docs("Red Shirt")}, "products", nil, WithPoolSize(1))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	nested := make(chan error, 1)
	err = f.FindProduct(context.Background(), ai.NewSpeechResult("red shirt"), ai.EntityResult{},
		func(error, []*core.Document) {
			err := f.FindProduct(context.Background(), ai.NewSpeechResult("blue shirt"), ai.EntityResult{},
				func(err error, _ []*core.Document) {
					nested <- err
				})
			if err != nil {
				nested <- err
			}
		})
	require.NoError(t, err)

	select {
	case err := <-nested:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("follow-up FindProduct from a callback never completed")
	}
}

func TestFindProduct_SaturatedPoolDoesNotBlockCaller(t *testing.T) {
	index := newBlockingIndex()
	f, err := NewFinder(index, "products", nil, WithPoolSize(1))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	results := make(chan []*core.Document, 2)
	callback := func(_ error, matches []*core.Document) { results <- matches }

	require.NoError(t, f.FindProduct(context.Background(), ai.NewSpeechResult("red shirt"), ai.EntityResult{}, callback))
	<-index.started

	returned := make(chan error, 1)
	go func() {
		returned <- f.FindProduct(context.Background(), ai.NewSpeechResult("red shirt"), ai.EntityResult{}, callback)
	}()

	select {
	case err := <-returned:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("FindProduct waited for a busy worker")
	}

	close(index.release)
	for range 2 {
		select {
		case matches := <-results:
			assert.Equal(t, []string{"Red Shirt"}, names(matches))
		case <-time.After(2 * time.Second):
			t.Fatal("callback not delivered")
		}
	}
}

func TestClose_WaitsForOverflowCallbacks(t *testing.T) {
	index := newBlockingIndex()
	f, err := NewFinder(index, "products", nil, WithPoolSize(1), WithReleaseTimeout(2*time.Second))
	require.NoError(t, err)

	var mu sync.Mutex
	delivered := 0
	callback := func(error, []*core.Document) {
		mu.Lock()
		delivered++
		mu.Unlock()
	}

	for range 3 {
		require.NoError(t, f.FindProduct(context.Background(), ai.NewSpeechResult("red shirt"), ai.EntityResult{}, callback))
	}
	for range 3 {
		<-index.started
	}

	time.AfterFunc(50*time.Millisecond, func() { close(index.release) })
	require.NoError(t, f.Close())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 3, delivered)
}

// syncBuffer is a bytes.Buffer safe for concurrent writers.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestNewFinder_PoolUsesLoggerRegardlessOfOptionOrder(t *testing.T) {
	var out syncBuffer
	logger := slog.New(slog.NewTextHandler(&out, nil))

	f, err := NewFinder(&stubIndex{hits: docs("Red Shirt")}, "products", nil,
		WithPoolSize(1), WithLogger(logger))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	err = f.FindProduct(context.Background(), ai.NewSpeechResult("red shirt"), ai.EntityResult{},
		func(error, []*core.Document) { panic("callback failure") })
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "find callback panicked")
	}, 2*time.Second, 10*time.Millisecond)
}
