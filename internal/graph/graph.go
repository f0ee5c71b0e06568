// Package graph implements the in-memory Knowledge Graph (spec §3, §4.2): a
// directed labeled multigraph of Entity/Edge with a BFS related() query.
// An optional persistent backend lives in internal/graph/arangostore,
// adapted from the teacher's code-graph client.
package graph

import (
	"context"
	"strconv"
	"sync"

	"github.com/kadai-ai/kadai/internal/errs"
	"github.com/kadai-ai/kadai/internal/thread"
)

type Entity struct {
	ID         string
	Kind       string
	Attributes map[string]any
}

type Edge struct {
	Src        string
	Dst        string
	Label      string
	Attributes map[string]any
}

// MaxRelatedNodes bounds related()'s BFS, per spec §4.2's "capped by an
// implementation limit (default 64 nodes)".
const MaxRelatedNodes = 64

// Graph is the Knowledge Graph contract (spec §4.2).
type Graph interface {
	UpsertEntity(ctx context.Context, id, kind string, attrs map[string]any) error
	AddEdge(ctx context.Context, src, dst, label string, attrs map[string]any) error
	IngestThread(ctx context.Context, threadID, title string, entries []thread.Entry) error
	Related(ctx context.Context, id string, depth int) ([]Entity, error)
}

type memGraph struct {
	mu       sync.RWMutex
	entities map[string]Entity
	out      map[string][]Edge // src -> outgoing edges
	in       map[string][]Edge // dst -> incoming edges (related() traverses both directions)
}

func New() Graph {
	return &memGraph{
		entities: make(map[string]Entity),
		out:      make(map[string][]Edge),
		in:       make(map[string][]Edge),
	}
}

func (g *memGraph) UpsertEntity(_ context.Context, id, kind string, attrs map[string]any) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.entities[id] = Entity{ID: id, Kind: kind, Attributes: attrs}
	return nil
}

func (g *memGraph) AddEdge(_ context.Context, src, dst, label string, attrs map[string]any) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.entities[src]; !ok {
		return errs.NotFound
	}
	if _, ok := g.entities[dst]; !ok {
		return errs.NotFound
	}
	e := Edge{Src: src, Dst: dst, Label: label, Attributes: attrs}
	g.out[src] = append(g.out[src], e)
	g.in[dst] = append(g.in[dst], e)
	return nil
}

// IngestThread creates a thread entity and derives entity mentions from
// each entry's references (spec §3: "each dispatcher invocation ingests the
// thread entry as one entity with edges to referenced entities").
func (g *memGraph) IngestThread(ctx context.Context, threadID, title string, entries []thread.Entry) error {
	if err := g.UpsertEntity(ctx, "thread:"+threadID, "thread", map[string]any{"title": title}); err != nil {
		return err
	}
	for i, e := range entries {
		entryID := threadIDForEntry(threadID, i)
		if err := g.UpsertEntity(ctx, entryID, "thread_entry", map[string]any{"text": e.Text, "kind": string(e.Kind)}); err != nil {
			return err
		}
		if err := g.AddEdge(ctx, "thread:"+threadID, entryID, "has_entry", nil); err != nil {
			return err
		}
		for _, ref := range e.Refs {
			refID := ref.Kind + ":" + ref.ID
			if _, ok := g.entities[refID]; !ok {
				if err := g.UpsertEntity(ctx, refID, ref.Kind, nil); err != nil {
					return err
				}
			}
			if err := g.AddEdge(ctx, entryID, refID, "references", nil); err != nil {
				return err
			}
		}
	}
	return nil
}

func threadIDForEntry(threadID string, index int) string {
	return "entry:" + threadID + ":" + strconv.Itoa(index)
}

// Related returns entities reachable from id within depth hops via BFS
// (spec §4.2), cycle-tolerant via a visited set, capped at MaxRelatedNodes.
func (g *memGraph) Related(_ context.Context, id string, depth int) ([]Entity, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if _, ok := g.entities[id]; !ok {
		return nil, errs.NotFound
	}

	visited := map[string]bool{id: true}
	result := []Entity{g.entities[id]}
	frontier := []string{id}

	for hop := 0; hop < depth && len(result) < MaxRelatedNodes; hop++ {
		var next []string
		for _, cur := range frontier {
			for _, e := range g.out[cur] {
				if !visited[e.Dst] && len(result) < MaxRelatedNodes {
					visited[e.Dst] = true
					result = append(result, g.entities[e.Dst])
					next = append(next, e.Dst)
				}
			}
			for _, e := range g.in[cur] {
				if !visited[e.Src] && len(result) < MaxRelatedNodes {
					visited[e.Src] = true
					result = append(result, g.entities[e.Src])
					next = append(next, e.Src)
				}
			}
		}
		frontier = next
		if len(frontier) == 0 {
			break
		}
	}

	return result, nil
}
