// Package arangostore adapts the teacher's code-graph ArangoDB client
// (common/arangodb/client.go) into an optional persistent backend for
// internal/graph.Graph: same connection setup, database/collection/graph
// bootstrap, and AQL query shape, with the code-graph-specific
// collections (functions, types, calls, implements, ...) collapsed into
// one generic entities/edges pair, since this graph stores Entity/Edge
// records rather than parsed-source symbols.
package arangostore

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/arangodb/go-driver/v2/arangodb"
	"github.com/arangodb/go-driver/v2/connection"
	"github.com/kadai-ai/kadai/internal/errs"
	"github.com/kadai-ai/kadai/internal/graph"
	"github.com/kadai-ai/kadai/internal/thread"
)

const (
	entityCollection = "entities"
	edgeCollection   = "edges"
	graphName        = "kadai_graph"
)

// Config mirrors common/arangodb.Config.
type Config struct {
	URL      string
	Username string
	Password string
	Database string
}

func (c Config) validate() error {
	if c.URL == "" {
		return fmt.Errorf("arangodb URL is required")
	}
	if c.Username == "" {
		return fmt.Errorf("arangodb username is required")
	}
	if c.Database == "" {
		return fmt.Errorf("arangodb database name is required")
	}
	return nil
}

type store struct {
	client arangodb.Client
	db     arangodb.Database
	cfg    Config
}

// New connects to ArangoDB and ensures the database/collections/graph
// definition exist, grounded directly on
// common/arangodb.client.EnsureDatabase/EnsureCollections/EnsureGraph.
func New(ctx context.Context, cfg Config) (graph.Graph, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("arangodb config: %w", err)
	}

	endpoint := connection.NewRoundRobinEndpoints([]string{cfg.URL})
	conn := connection.NewHttp2Connection(connection.DefaultHTTP2ConfigurationWrapper(endpoint, true))
	if err := conn.SetAuthentication(connection.NewBasicAuth(cfg.Username, cfg.Password)); err != nil {
		return nil, fmt.Errorf("arangodb auth: %w", err)
	}

	client := arangodb.NewClient(conn)
	s := &store{client: client, cfg: cfg}

	if err := s.ensureDatabase(ctx); err != nil {
		return nil, err
	}
	if err := s.ensureCollections(ctx); err != nil {
		return nil, err
	}
	if err := s.ensureGraph(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *store) ensureDatabase(ctx context.Context) error {
	exists, err := s.client.DatabaseExists(ctx, s.cfg.Database)
	if err != nil {
		return fmt.Errorf("check database exists: %w", err)
	}
	if !exists {
		if _, err := s.client.CreateDatabase(ctx, s.cfg.Database, nil); err != nil {
			return fmt.Errorf("create database: %w", err)
		}
		slog.InfoContext(ctx, "arangodb database created", "database", s.cfg.Database)
	}

	db, err := s.client.GetDatabase(ctx, s.cfg.Database, nil)
	if err != nil {
		return fmt.Errorf("get database: %w", err)
	}
	s.db = db
	return nil
}

func (s *store) ensureCollections(ctx context.Context) error {
	if err := s.ensureCollection(ctx, entityCollection, false); err != nil {
		return err
	}
	return s.ensureCollection(ctx, edgeCollection, true)
}

func (s *store) ensureCollection(ctx context.Context, name string, isEdge bool) error {
	exists, err := s.db.CollectionExists(ctx, name)
	if err != nil {
		return fmt.Errorf("check collection %s exists: %w", name, err)
	}
	if exists {
		return nil
	}

	props := &arangodb.CreateCollectionPropertiesV2{}
	colType := arangodb.CollectionTypeDocument
	if isEdge {
		colType = arangodb.CollectionTypeEdge
	}
	props.Type = &colType

	if _, err := s.db.CreateCollectionV2(ctx, name, props); err != nil {
		return fmt.Errorf("create collection %s: %w", name, err)
	}
	slog.InfoContext(ctx, "arangodb collection created", "collection", name, "is_edge", isEdge)
	return nil
}

func (s *store) ensureGraph(ctx context.Context) error {
	exists, err := s.db.GraphExists(ctx, graphName)
	if err != nil {
		return fmt.Errorf("check graph exists: %w", err)
	}
	if exists {
		return nil
	}

	def := &arangodb.GraphDefinition{
		Name: graphName,
		EdgeDefinitions: []arangodb.EdgeDefinition{
			{Collection: edgeCollection, From: []string{entityCollection}, To: []string{entityCollection}},
		},
	}
	if _, err := s.db.CreateGraph(ctx, graphName, def, nil); err != nil {
		return fmt.Errorf("create graph: %w", err)
	}
	slog.InfoContext(ctx, "arangodb graph created", "graph", graphName)
	return nil
}

// UpsertEntity writes or replaces an entity document via an AQL UPSERT,
// since (unlike the teacher's append-only code-graph ingestion)
// kadai.graph.Graph entities are mutated across repeated writes.
func (s *store) UpsertEntity(ctx context.Context, id, kind string, attrs map[string]any) error {
	attrsJSON, err := json.Marshal(attrs)
	if err != nil {
		return fmt.Errorf("marshal entity attrs: %w", err)
	}

	query := `
		UPSERT { _key: @key }
		INSERT { _key: @key, id: @id, kind: @kind, attrs: @attrs }
		UPDATE { kind: @kind, attrs: @attrs }
		IN @@collection
	`
	cursor, err := s.db.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]any{
			"key":         makeKey(id),
			"id":          id,
			"kind":        kind,
			"attrs":       json.RawMessage(attrsJSON),
			"@collection": entityCollection,
		},
	})
	if err != nil {
		return fmt.Errorf("upsert entity %q: %w", id, err)
	}
	cursor.Close()
	return nil
}

// AddEdge writes an edge document, failing with errs.NotFound if either
// endpoint entity hasn't been upserted yet (matching memGraph's
// invariant).
func (s *store) AddEdge(ctx context.Context, src, dst, label string, attrs map[string]any) error {
	if ok, err := s.entityExists(ctx, src); err != nil {
		return err
	} else if !ok {
		return fmt.Errorf("edge source %q: %w", src, errs.NotFound)
	}
	if ok, err := s.entityExists(ctx, dst); err != nil {
		return err
	} else if !ok {
		return fmt.Errorf("edge destination %q: %w", dst, errs.NotFound)
	}

	attrsJSON, err := json.Marshal(attrs)
	if err != nil {
		return fmt.Errorf("marshal edge attrs: %w", err)
	}

	query := `
		UPSERT { _key: @key }
		INSERT { _key: @key, _from: @from, _to: @to, label: @label, attrs: @attrs }
		UPDATE { label: @label, attrs: @attrs }
		IN @@collection
	`
	cursor, err := s.db.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]any{
			"key":         makeEdgeKey(src, dst, label),
			"from":        fmt.Sprintf("%s/%s", entityCollection, makeKey(src)),
			"to":          fmt.Sprintf("%s/%s", entityCollection, makeKey(dst)),
			"label":       label,
			"attrs":       json.RawMessage(attrsJSON),
			"@collection": edgeCollection,
		},
	})
	if err != nil {
		return fmt.Errorf("add edge %s->%s: %w", src, dst, err)
	}
	cursor.Close()
	return nil
}

// entityExists checks for a key's presence via AQL rather than a direct
// document-get call, reusing the same db.Query/cursor.HasMore shape the
// rest of this store (and the teacher's traversal queries) already use.
func (s *store) entityExists(ctx context.Context, id string) (bool, error) {
	query := `FOR d IN @@collection FILTER d._key == @key LIMIT 1 RETURN d._key`
	cursor, err := s.db.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]any{
			"key":         makeKey(id),
			"@collection": entityCollection,
		},
	})
	if err != nil {
		return false, fmt.Errorf("check entity %q exists: %w", id, err)
	}
	defer cursor.Close()
	return cursor.HasMore(), nil
}

// IngestThread mirrors memGraph.IngestThread's entity/edge derivation,
// driven through this store's own UpsertEntity/AddEdge so both Graph
// implementations share identical ingestion semantics (spec §3).
func (s *store) IngestThread(ctx context.Context, threadID, title string, entries []thread.Entry) error {
	if err := s.UpsertEntity(ctx, "thread:"+threadID, "thread", map[string]any{"title": title}); err != nil {
		return err
	}
	for i, e := range entries {
		entryID := fmt.Sprintf("entry:%s:%d", threadID, i)
		if err := s.UpsertEntity(ctx, entryID, "thread_entry", map[string]any{"text": e.Text, "kind": string(e.Kind)}); err != nil {
			return err
		}
		if err := s.AddEdge(ctx, "thread:"+threadID, entryID, "has_entry", nil); err != nil {
			return err
		}
		for _, ref := range e.Refs {
			refID := ref.Kind + ":" + ref.ID
			if ok, err := s.entityExists(ctx, refID); err != nil {
				return err
			} else if !ok {
				if err := s.UpsertEntity(ctx, refID, ref.Kind, nil); err != nil {
					return err
				}
			}
			if err := s.AddEdge(ctx, entryID, refID, "references", nil); err != nil {
				return err
			}
		}
	}
	return nil
}

// Related runs a bidirectional BFS via AQL's built-in graph traversal,
// grounded on GetCallers/GetCallees's traversal query shape, capped at
// graph.MaxRelatedNodes the same way memGraph.Related is.
func (s *store) Related(ctx context.Context, id string, depth int) ([]graph.Entity, error) {
	if ok, err := s.entityExists(ctx, id); err != nil {
		return nil, err
	} else if !ok {
		return nil, errs.NotFound
	}

	query := `
		FOR v IN 0..@depth ANY @start GRAPH @graph
			OPTIONS { bfs: true, uniqueVertices: "global" }
			LIMIT @limit
			RETURN { id: v.id, kind: v.kind, attrs: v.attrs }
	`
	cursor, err := s.db.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]any{
			"start": fmt.Sprintf("%s/%s", entityCollection, makeKey(id)),
			"depth": depth,
			"graph": graphName,
			"limit": graph.MaxRelatedNodes,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("related(%q): %w", id, err)
	}
	defer cursor.Close()

	var out []graph.Entity
	for cursor.HasMore() {
		var doc struct {
			ID    string         `json:"id"`
			Kind  string         `json:"kind"`
			Attrs map[string]any `json:"attrs"`
		}
		if _, err := cursor.ReadDocument(ctx, &doc); err != nil {
			return nil, fmt.Errorf("read related document: %w", err)
		}
		out = append(out, graph.Entity{ID: doc.ID, Kind: doc.Kind, Attributes: doc.Attrs})
	}
	return out, nil
}

func makeKey(id string) string {
	hash := md5.Sum([]byte(id))
	return hex.EncodeToString(hash[:])[:16]
}

func makeEdgeKey(src, dst, label string) string {
	hash := md5.Sum([]byte(src + "->" + dst + ":" + label))
	return hex.EncodeToString(hash[:])[:16]
}
