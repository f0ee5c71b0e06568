// Package typesensestore adapts internal/memory.Store onto Typesense, the
// same hybrid-search engine internal/retriever/code.Retriever names its mock
// findings after ("typesense://project/...") without ever wiring a real
// client. This package is the wiring that retriever left as a placeholder:
// a genuine collection schema, document upserts, and a search query against
// github.com/typesense/typesense-go/v4.
package typesensestore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kadai-ai/kadai/internal/errs"
	"github.com/kadai-ai/kadai/internal/memory"
	"github.com/typesense/typesense-go/v4/typesense"
	"github.com/typesense/typesense-go/v4/typesense/api"
	"github.com/typesense/typesense-go/v4/typesense/api/pointer"
)

const collectionName = "kadai_memory"

// Config mirrors the server/key pair every typesense-go example connects
// with.
type Config struct {
	ServerURL string
	APIKey    string
}

type store struct {
	client *typesense.Client
	idGen  memory.IDGen
}

// New connects to Typesense and ensures the memory collection schema
// exists, then returns a memory.Store backed by it. idGen issues ids for
// items that arrive without one, same contract as memory.New.
func New(ctx context.Context, cfg Config, idGen memory.IDGen) (memory.Store, error) {
	if cfg.ServerURL == "" {
		return nil, fmt.Errorf("typesense server URL is required")
	}
	client := typesense.NewClient(
		typesense.WithServer(cfg.ServerURL),
		typesense.WithAPIKey(cfg.APIKey),
	)

	s := &store{client: client, idGen: idGen}
	if err := s.ensureCollection(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *store) ensureCollection(ctx context.Context) error {
	_, err := s.client.Collection(collectionName).Retrieve(ctx)
	if err == nil {
		return nil
	}

	schema := &api.CollectionSchema{
		Name: collectionName,
		Fields: []api.Field{
			{Name: "id", Type: "string"},
			{Name: "kind", Type: "string", Facet: pointer.True()},
			{Name: "text", Type: "string"},
			{Name: "tags", Type: "string[]", Facet: pointer.True(), Optional: pointer.True()},
			{Name: "created_at", Type: "int64"},
			{Name: "confidence", Type: "float"},
		},
		DefaultSortingField: pointer.String("created_at"),
	}
	if _, err := s.client.Collections().Create(ctx, schema); err != nil {
		return fmt.Errorf("create collection %s: %w", collectionName, err)
	}
	return nil
}

type document struct {
	ID         string   `json:"id"`
	Kind       string   `json:"kind"`
	Text       string   `json:"text"`
	Tags       []string `json:"tags"`
	CreatedAt  int64    `json:"created_at"`
	Confidence float64  `json:"confidence"`
}

func toDocument(item memory.Item) document {
	tags := make([]string, 0, len(item.Tags))
	for t := range item.Tags {
		tags = append(tags, t)
	}
	return document{
		ID:         item.ID,
		Kind:       string(item.Kind),
		Text:       item.Text,
		Tags:       tags,
		CreatedAt:  item.CreatedAt.UnixMilli(),
		Confidence: item.Confidence,
	}
}

func fromDocument(doc map[string]any) memory.Item {
	item := memory.Item{Tags: map[string]struct{}{}}
	if v, ok := doc["id"].(string); ok {
		item.ID = v
	}
	if v, ok := doc["kind"].(string); ok {
		item.Kind = memory.Kind(v)
	}
	if v, ok := doc["text"].(string); ok {
		item.Text = v
	}
	if v, ok := doc["confidence"].(float64); ok {
		item.Confidence = v
	}
	if ms, ok := doc["created_at"].(float64); ok {
		item.CreatedAt = time.UnixMilli(int64(ms))
	}
	if raw, ok := doc["tags"].([]interface{}); ok {
		for _, t := range raw {
			if s, ok := t.(string); ok {
				item.Tags[s] = struct{}{}
			}
		}
	}
	return item
}

func (s *store) Add(ctx context.Context, item memory.Item) (string, error) {
	if item.ID == "" {
		item.ID = s.idGen()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	if item.Confidence == 0 {
		item.Confidence = 1.0
	}

	doc := toDocument(item)
	_, err := s.client.Collection(collectionName).Documents().Upsert(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("upsert memory item %q: %w", item.ID, err)
	}
	return item.ID, nil
}

func (s *store) Get(ctx context.Context, id string) (memory.Item, error) {
	doc, err := s.client.Collection(collectionName).Document(id).Retrieve(ctx)
	if err != nil {
		return memory.Item{}, errs.NotFound
	}
	return fromDocument(doc), nil
}

// Search runs a Typesense query_by full-text search over text, optionally
// filtered by kind and tags, degrading to a match-all query when query is
// empty (same "empty query still lists recent items" behavior memory.Store
// gives callers with no embedder configured).
func (s *store) Search(ctx context.Context, query string, kind *memory.Kind, tags []string, limit int) ([]memory.Item, error) {
	q := query
	if q == "" {
		q = "*"
	}
	params := &api.SearchCollectionParams{
		Q:       q,
		QueryBy: "text",
		SortBy:  pointer.String("created_at:desc"),
	}
	if limit > 0 {
		perPage := limit
		params.PerPage = &perPage
	}

	filters := make([]string, 0, 2)
	if kind != nil {
		filters = append(filters, fmt.Sprintf("kind:=%s", string(*kind)))
	}
	for _, t := range tags {
		filters = append(filters, fmt.Sprintf("tags:=%s", t))
	}
	if len(filters) > 0 {
		filterBy := strings.Join(filters, " && ")
		params.FilterBy = &filterBy
	}

	result, err := s.client.Collection(collectionName).Documents().Search(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("search memory: %w", err)
	}

	out := make([]memory.Item, 0)
	if result.Hits == nil {
		return out, nil
	}
	for _, hit := range *result.Hits {
		if hit.Document == nil {
			continue
		}
		out = append(out, fromDocument(*hit.Document))
	}
	return out, nil
}

func (s *store) ListByKind(ctx context.Context, kind memory.Kind, limit int) ([]memory.Item, error) {
	return s.Search(ctx, "", &kind, nil, limit)
}

func (s *store) ListByTags(ctx context.Context, tags []string) ([]memory.Item, error) {
	return s.Search(ctx, "", nil, tags, 0)
}
