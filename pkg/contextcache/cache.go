package contextcache

import (
	"context"
	"log"
	"time"

	"construction-assist-be/pkg/normalize"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

// DocumentRef points at one uploaded document registered for a conversation.
type DocumentRef struct {
	FilePath  string
	MediaType string
}

// DocumentSource enumerates the documents currently registered for a
// conversation. The cache refreshes from this on every miss or forced read.
type DocumentSource interface {
	ListDocuments(ctx context.Context, conversationID uuid.UUID) ([]DocumentRef, error)
}

type entry struct {
	chunks      []normalize.Chunk
	refreshedAt time.Time
}

// Cache holds the most recently normalized chunks per conversation.
// Entries never expire on their own; they are replaced by forced refresh
// or removed by explicit invalidation. Memory growth is unbounded, which
// is an accepted limitation of this design.
type Cache struct {
	entries    *gocache.Cache
	normalizer *normalize.Normalizer
	source     DocumentSource
	logger     *log.Logger
}

func New(normalizer *normalize.Normalizer, source DocumentSource, logger *log.Logger) *Cache {
	return &Cache{
		entries:    gocache.New(gocache.NoExpiration, 0),
		normalizer: normalizer,
		source:     source,
		logger:     logger,
	}
}

// Get returns the normalized chunks for a conversation. A cached entry is
// reused unless forceRefresh is set or every cached chunk is a diagnostic:
// a stale "only errors" entry must not mask successful re-processing.
func (c *Cache) Get(ctx context.Context, conversationID uuid.UUID, forceRefresh bool) ([]normalize.Chunk, error) {
	key := conversationID.String()

	if !forceRefresh {
		if raw, found := c.entries.Get(key); found {
			e := raw.(*entry)
			if !allDiagnostic(e.chunks) {
				return e.chunks, nil
			}
			c.logger.Printf("[CACHE] Entry for %s holds only diagnostics, refreshing", key)
		}
	}

	return c.refresh(ctx, conversationID)
}

// refresh normalizes every registered document and replaces the entry as a
// single swap. Concurrent refreshes may race; each individual swap is
// atomic and the surviving entry matches one complete refresh.
func (c *Cache) refresh(ctx context.Context, conversationID uuid.UUID) ([]normalize.Chunk, error) {
	refs, err := c.source.ListDocuments(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	chunks := make([]normalize.Chunk, 0)
	for _, ref := range refs {
		chunks = append(chunks, c.normalizer.Normalize(ref.FilePath, ref.MediaType)...)
	}

	c.entries.Set(conversationID.String(), &entry{
		chunks:      chunks,
		refreshedAt: time.Now(),
	}, gocache.NoExpiration)

	return chunks, nil
}

// Invalidate removes exactly one conversation's entry.
func (c *Cache) Invalidate(conversationID uuid.UUID) {
	c.entries.Delete(conversationID.String())
}

// InvalidateAll clears every entry. Used when a global action, such as
// deleting a document from an unrelated surface, may affect any
// conversation's view of it.
func (c *Cache) InvalidateAll() {
	c.entries.Flush()
}

func allDiagnostic(chunks []normalize.Chunk) bool {
	if len(chunks) == 0 {
		return false
	}
	for _, ch := range chunks {
		if !ch.Diagnostic {
			return false
		}
	}
	return true
}
