package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/joinaiwms/horizon/core"
	"github.com/joinaiwms/horizon/embedding"
	"github.com/joinaiwms/horizon/logging"
	"github.com/joinaiwms/horizon/storage"
)

// Entry is the metadata record for one stored memory. Position pins it to a
// row of the vector index; Deleted hides it from retrieval without disturbing
// the rows behind it.
type Entry struct {
	ID        string         `json:"id"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata"`
	Position  int            `json:"position"`
	Deleted   bool           `json:"deleted"`
	CreatedAt time.Time      `json:"created_at"`
}

// Stats summarizes store contents for status reporting.
type Stats struct {
	Entries   int    `json:"entries"`
	Deleted   int    `json:"deleted"`
	IndexSize int    `json:"index_size"`
	Dimension int    `json:"dimension"`
	Embedder  string `json:"embedder"`
}

// Options configure a Store.
type Options struct {
	// Storage persists the store across restarts. Nil keeps the store
	// volatile, which suits tests and throwaway sessions.
	Storage storage.Store

	// Logger receives persistence warnings. Defaults to a no-op.
	Logger logging.Logger
}

// Store is the semantic memory store. All access is guarded by one RWMutex;
// embedding calls happen before the lock is taken so provider latency never
// serializes readers.
type Store struct {
	mu       sync.RWMutex
	index    *FlatIndex
	entries  map[string]*Entry
	order    []string // index position -> entry id
	nextID   int
	embedder embedding.Embedder
	storage  storage.Store
	logger   logging.Logger
}

// New creates a store bound to the given embedder. When a storage backend is
// configured, previously persisted state is loaded; artifacts that are
// missing, unreadable or inconsistent with each other leave the store empty.
func New(embedder embedding.Embedder, optFns ...func(o *Options)) (*Store, error) {
	if embedder == nil {
		return nil, fmt.Errorf("memory: embedder is required")
	}

	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	index, err := NewFlatIndex(embedder.Dimensions())
	if err != nil {
		return nil, err
	}

	s := &Store{
		index:    index,
		entries:  make(map[string]*Entry),
		order:    []string{},
		embedder: embedder,
		storage:  opts.Storage,
		logger:   opts.Logger,
	}
	if s.storage != nil {
		s.load()
	}
	return s, nil
}

// Add embeds the content and stores it, returning the assigned mem_<n> id.
// The id sequence never reuses a number, even after deletions. Persistence
// runs best-effort: a failed save is logged and the in-memory state stands.
func (s *Store) Add(ctx context.Context, content string, metadata map[string]any) (string, error) {
	vec, err := s.embed(ctx, content)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pos, err := s.index.Insert(vec)
	if err != nil {
		return "", err
	}

	id := fmt.Sprintf("mem_%d", s.nextID)
	s.nextID++

	md := make(map[string]any, len(metadata))
	for k, v := range metadata {
		md[k] = v
	}

	s.entries[id] = &Entry{
		ID:        id,
		Content:   content,
		Metadata:  md,
		Position:  pos,
		CreatedAt: time.Now().UTC(),
	}
	s.order = append(s.order, id)

	s.persistLocked()
	return id, nil
}

// Search embeds the query and returns the live entries among the k best index
// hits, best first, dropping tombstoned entries and scores below threshold.
// Filtering happens after the cut, so fewer than k results can come back even
// when more live entries would qualify.
func (s *Store) Search(ctx context.Context, query string, k int, threshold float64) ([]core.SearchResult, error) {
	if k <= 0 {
		return []core.SearchResult{}, nil
	}

	vec, err := s.embed(ctx, query)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	hits, err := s.index.Search(vec, k)
	if err != nil {
		return nil, err
	}

	results := make([]core.SearchResult, 0, len(hits))
	for _, hit := range hits {
		entry := s.entries[s.order[hit.Position]]
		if entry.Deleted || float64(hit.Score) < threshold {
			continue
		}
		md := make(map[string]any, len(entry.Metadata))
		for k, v := range entry.Metadata {
			md[k] = v
		}
		results = append(results, core.SearchResult{
			ID:       entry.ID,
			Content:  entry.Content,
			Score:    float64(hit.Score),
			Metadata: md,
		})
	}
	return results, nil
}

// Delete tombstones the entry. It reports whether a live entry was removed;
// deleting an unknown or already deleted id is a no-op returning false. The
// underlying vector stays in the index so later positions keep their meaning.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	if !ok || entry.Deleted {
		return false
	}
	entry.Deleted = true

	s.persistLocked()
	return true
}

// Get returns a copy of the entry with the given id. Tombstoned entries are
// returned with Deleted set; only search hides them.
func (s *Store) Get(id string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[id]
	if !ok {
		return Entry{}, false
	}

	cp := *entry
	cp.Metadata = make(map[string]any, len(entry.Metadata))
	for k, v := range entry.Metadata {
		cp.Metadata[k] = v
	}
	return cp, true
}

// Stats reports live and tombstoned counts alongside index geometry.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	deleted := 0
	for _, e := range s.entries {
		if e.Deleted {
			deleted++
		}
	}
	return Stats{
		Entries:   len(s.entries) - deleted,
		Deleted:   deleted,
		IndexSize: s.index.Count(),
		Dimension: s.index.Dimension(),
		Embedder:  s.embedder.Name(),
	}
}

// embed runs the provider call and enforces the index width. Provider errors
// surface as EmbeddingError unless already typed.
func (s *Store) embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		var ee *core.EmbeddingError
		var dm *core.DimensionMismatchError
		if errors.As(err, &ee) || errors.As(err, &dm) {
			return nil, err
		}
		return nil, &core.EmbeddingError{Provider: s.embedder.Name(), Err: err}
	}
	if len(vec) != s.index.Dimension() {
		return nil, &core.DimensionMismatchError{Want: s.index.Dimension(), Got: len(vec)}
	}
	return vec, nil
}
