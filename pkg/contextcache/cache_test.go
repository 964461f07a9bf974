package contextcache

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"construction-assist-be/pkg/normalize"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	mu   sync.Mutex
	refs map[string][]DocumentRef
	err  error
}

func (s *fakeSource) ListDocuments(_ context.Context, id uuid.UUID) ([]DocumentRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.refs[id.String()], nil
}

func (s *fakeSource) set(id uuid.UUID, refs []DocumentRef) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refs[id.String()] = refs
}

func newTestCache(source *fakeSource) *Cache {
	discard := log.New(io.Discard, "", 0)
	return New(normalize.NewNormalizer(50, discard), source, discard)
}

func writeDoc(t *testing.T, name, content string) DocumentRef {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return DocumentRef{FilePath: path, MediaType: "text/plain"}
}

func TestGetReferentialStability(t *testing.T) {
	convID := uuid.New()
	source := &fakeSource{refs: map[string][]DocumentRef{}}
	source.set(convID, []DocumentRef{writeDoc(t, "spec.txt", "foundation depth 2m\n")})
	cache := newTestCache(source)

	first, err := cache.Get(context.Background(), convID, false)
	require.NoError(t, err)
	second, err := cache.Get(context.Background(), convID, false)
	require.NoError(t, err)

	// Two consecutive non-forced reads with no intervening invalidation
	// return the identical sequence.
	require.Len(t, first, 1)
	assert.Same(t, &first[0], &second[0])
}

func TestGetForceRefreshPicksUpNewDocuments(t *testing.T) {
	convID := uuid.New()
	source := &fakeSource{refs: map[string][]DocumentRef{}}
	source.set(convID, []DocumentRef{writeDoc(t, "a.txt", "first\n")})
	cache := newTestCache(source)

	chunks, err := cache.Get(context.Background(), convID, false)
	require.NoError(t, err)
	require.Len(t, chunks, 1)

	source.set(convID, []DocumentRef{
		writeDoc(t, "a.txt", "first\n"),
		writeDoc(t, "b.txt", "second\n"),
	})

	// Non-forced read still serves the cached entry.
	cached, err := cache.Get(context.Background(), convID, false)
	require.NoError(t, err)
	assert.Len(t, cached, 1)

	refreshed, err := cache.Get(context.Background(), convID, true)
	require.NoError(t, err)
	assert.Len(t, refreshed, 2)
}

func TestGetAllDiagnosticEntryFallsThrough(t *testing.T) {
	convID := uuid.New()
	source := &fakeSource{refs: map[string][]DocumentRef{}}
	// Unreadable file: the cached entry will hold a single diagnostic chunk.
	source.set(convID, []DocumentRef{{FilePath: "/nonexistent/plan.txt", MediaType: "text/plain"}})
	cache := newTestCache(source)

	chunks, err := cache.Get(context.Background(), convID, false)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	require.True(t, chunks[0].Diagnostic)

	// The file becomes readable; a plain read must not keep serving the
	// stale all-diagnostic entry.
	source.set(convID, []DocumentRef{writeDoc(t, "plan.txt", "pour schedule\n")})

	chunks, err = cache.Get(context.Background(), convID, false)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.False(t, chunks[0].Diagnostic)
}

func TestInvalidate(t *testing.T) {
	convA, convB := uuid.New(), uuid.New()
	source := &fakeSource{refs: map[string][]DocumentRef{}}
	source.set(convA, []DocumentRef{writeDoc(t, "a.txt", "a\n")})
	source.set(convB, []DocumentRef{writeDoc(t, "b.txt", "b\n")})
	cache := newTestCache(source)

	_, err := cache.Get(context.Background(), convA, false)
	require.NoError(t, err)
	_, err = cache.Get(context.Background(), convB, false)
	require.NoError(t, err)

	cache.Invalidate(convA)
	assert.Equal(t, 1, cache.entries.ItemCount())

	cache.InvalidateAll()
	assert.Equal(t, 0, cache.entries.ItemCount())
}

func TestConcurrentForceRefresh(t *testing.T) {
	convID := uuid.New()
	source := &fakeSource{refs: map[string][]DocumentRef{}}
	docs := []DocumentRef{writeDoc(t, "site.txt", "crane inspection\n")}
	source.set(convID, docs)
	cache := newTestCache(source)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := cache.Get(context.Background(), convID, true)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// The surviving entry matches one complete refresh, never a partial mix.
	chunks, err := cache.Get(context.Background(), convID, false)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Contains(t, chunks[0].Text, "crane inspection")
}

func TestGetSourceErrorPropagates(t *testing.T) {
	source := &fakeSource{refs: map[string][]DocumentRef{}, err: fmt.Errorf("store offline")}
	cache := newTestCache(source)

	_, err := cache.Get(context.Background(), uuid.New(), false)
	assert.Error(t, err)
}
