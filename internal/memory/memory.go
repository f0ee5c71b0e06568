// Package memory implements the in-process Memory Store (spec §3, §4.2):
// an append-only, thread-safe log of MemoryItem records with substring
// search, degrading gracefully to containment matching when no embedder is
// configured. Grounded on oasis/memory's ShouldExtract/ParseExtractedFacts
// parsing-ladder style and its brute-force cosine-similarity scan.
package memory

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/kadai-ai/kadai/internal/errs"
)

type Kind string

const (
	KindQAndA       Kind = "Q_AND_A"
	KindTODO        Kind = "TODO"
	KindRepoInsight Kind = "REPO_INSIGHT"
	KindDailyOp     Kind = "DAILY_OP"
	KindSystem      Kind = "SYSTEM"
	KindTaskResult  Kind = "TASK_RESULT"
)

// Item is a MemoryItem (spec §3). Never mutated after Add; eviction is
// implementation-defined and this store implements none (spec default).
type Item struct {
	ID         string
	Kind       Kind
	Text       string
	Tags       map[string]struct{}
	Metadata   map[string]any
	CreatedAt  time.Time
	Confidence float64 // default 1.0; lets a skill express partial certainty
	Embedding  []float32
}

// Embedder turns text into a vector for similarity search. Optional: when
// nil, Search falls back to pure substring containment (spec §4.2).
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// IDGen issues opaque unique ids for new items.
type IDGen func() string

// Store is the Memory Store contract (spec §4.2).
type Store interface {
	Add(ctx context.Context, item Item) (string, error)
	Get(ctx context.Context, id string) (Item, error)
	Search(ctx context.Context, query string, kind *Kind, tags []string, limit int) ([]Item, error)
	ListByKind(ctx context.Context, kind Kind, limit int) ([]Item, error)
	ListByTags(ctx context.Context, tags []string) ([]Item, error)
}

type memStore struct {
	mu       sync.RWMutex
	items    []Item
	byID     map[string]int
	idGen    IDGen
	embedder Embedder
}

// New creates the default in-memory Store. embedder may be nil.
func New(idGen IDGen, embedder Embedder) Store {
	return &memStore{
		byID:     make(map[string]int),
		idGen:    idGen,
		embedder: embedder,
	}
}

func (s *memStore) Add(ctx context.Context, item Item) (string, error) {
	if item.ID == "" {
		item.ID = s.idGen()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	if item.Confidence == 0 {
		item.Confidence = 1.0
	}
	if item.Tags == nil {
		item.Tags = map[string]struct{}{}
	}
	if item.Embedding == nil && s.embedder != nil {
		if emb, err := s.embedder.Embed(ctx, item.Text); err == nil {
			item.Embedding = emb
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, item)
	s.byID[item.ID] = len(s.items) - 1
	return item.ID, nil
}

func (s *memStore) Get(_ context.Context, id string) (Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.byID[id]
	if !ok {
		return Item{}, errs.NotFound
	}
	return s.items[idx], nil
}

func (s *memStore) Search(ctx context.Context, query string, kind *Kind, tags []string, limit int) ([]Item, error) {
	tokens := tokenize(query)

	s.mu.RLock()
	candidates := make([]Item, 0, len(s.items))
	for _, it := range s.items {
		if kind != nil && it.Kind != *kind {
			continue
		}
		if !hasAllTags(it, tags) {
			continue
		}
		if len(tokens) > 0 && !containsAllTokens(it.Text, tokens) {
			continue
		}
		candidates = append(candidates, it)
	}
	s.mu.RUnlock()

	if s.embedder != nil && query != "" {
		queryEmb, err := s.embedder.Embed(ctx, query)
		if err == nil {
			sort.SliceStable(candidates, func(i, j int) bool {
				si, sj := cosine(queryEmb, candidates[i].Embedding), cosine(queryEmb, candidates[j].Embedding)
				if si != sj {
					return si > sj
				}
				return candidates[i].CreatedAt.After(candidates[j].CreatedAt)
			})
			return truncate(candidates, limit), nil
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].CreatedAt.After(candidates[j].CreatedAt)
	})
	return truncate(candidates, limit), nil
}

func (s *memStore) ListByKind(_ context.Context, kind Kind, limit int) ([]Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Item
	for i := len(s.items) - 1; i >= 0; i-- {
		if s.items[i].Kind == kind {
			out = append(out, s.items[i])
		}
	}
	return truncate(out, limit), nil
}

func (s *memStore) ListByTags(_ context.Context, tags []string) ([]Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Item
	for i := len(s.items) - 1; i >= 0; i-- {
		if hasAllTags(s.items[i], tags) {
			out = append(out, s.items[i])
		}
	}
	return out, nil
}

func tokenize(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	return fields
}

func containsAllTokens(text string, tokens []string) bool {
	lower := strings.ToLower(text)
	for _, t := range tokens {
		if !strings.Contains(lower, t) {
			return false
		}
	}
	return true
}

func hasAllTags(it Item, tags []string) bool {
	for _, t := range tags {
		if _, ok := it.Tags[t]; !ok {
			return false
		}
	}
	return true
}

func truncate(items []Item, limit int) []Item {
	if limit <= 0 || limit >= len(items) {
		return items
	}
	return items[:limit]
}

func cosine(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return -1
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return -1
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
