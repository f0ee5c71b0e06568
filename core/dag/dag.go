package dag

import (
	"fmt"
	"sort"

	"github.com/kadai-ai/kadai/internal/errs"
)

// Dag is an immutable {name, nodes_by_name} graph over deps (spec §3).
type Dag struct {
	Name  string
	nodes map[string]DagNode
	order []string // deterministic registration order, for tie-breaking
}

// New builds a Dag from its nodes and validates it: deps must reference
// known nodes, the dependency graph must be acyclic, and sibling (mutually
// non-dependent) nodes must not declare overlapping Writes keys.
func New(name string, nodes []DagNode) (*Dag, error) {
	d := &Dag{Name: name, nodes: make(map[string]DagNode, len(nodes))}
	for _, n := range nodes {
		if _, exists := d.nodes[n.Name]; exists {
			return nil, fmt.Errorf("dag %q: duplicate node name %q: %w", name, n.Name, errs.Internal)
		}
		d.nodes[n.Name] = n
		d.order = append(d.order, n.Name)
	}
	if err := d.validate(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Dag) validate() error {
	for _, n := range d.nodes {
		for _, dep := range n.Deps {
			if _, ok := d.nodes[dep]; !ok {
				return fmt.Errorf("dag %q: node %q depends on unknown node %q: %w", d.Name, n.Name, dep, errs.Internal)
			}
		}
	}

	if _, err := d.topoOrder(); err != nil {
		return err
	}

	reach := d.transitiveDeps()
	names := append([]string(nil), d.order...)
	sort.Strings(names)
	for i, a := range names {
		for _, b := range names[i+1:] {
			if reach[a][b] || reach[b][a] {
				continue // one depends on the other: sequential, sharing is fine
			}
			if overlap := sharedKeys(d.nodes[a].Writes, d.nodes[b].Writes); overlap != "" {
				return fmt.Errorf("dag %q: sibling nodes %q and %q both write key %q: %w", d.Name, a, b, overlap, errs.Internal)
			}
		}
	}
	return nil
}

func sharedKeys(a, b []string) string {
	set := make(map[string]bool, len(a))
	for _, k := range a {
		set[k] = true
	}
	for _, k := range b {
		if set[k] {
			return k
		}
	}
	return ""
}

// transitiveDeps returns, for each node, the set of nodes it (transitively) depends on.
func (d *Dag) transitiveDeps() map[string]map[string]bool {
	memo := make(map[string]map[string]bool, len(d.nodes))
	var visit func(name string, stack map[string]bool) map[string]bool
	visit = func(name string, stack map[string]bool) map[string]bool {
		if r, ok := memo[name]; ok {
			return r
		}
		result := make(map[string]bool)
		for _, dep := range d.nodes[name].Deps {
			if stack[dep] {
				continue // cycle already reported by topoOrder
			}
			result[dep] = true
			stack[dep] = true
			for k := range visit(dep, stack) {
				result[k] = true
			}
		}
		memo[name] = result
		return result
	}
	for name := range d.nodes {
		visit(name, map[string]bool{name: true})
	}
	return memo
}

// topoOrder returns nodes in dependency order, tie-breaking on name (spec
// §4.1 "Topological order tie-breaks on node name for determinism in
// tests"). Returns an Internal error if the graph has a cycle.
func (d *Dag) topoOrder() ([]string, error) {
	indegree := make(map[string]int, len(d.nodes))
	dependents := make(map[string][]string, len(d.nodes))
	for name, n := range d.nodes {
		indegree[name] += 0
		for _, dep := range n.Deps {
			indegree[name]++
			dependents[dep] = append(dependents[dep], name)
		}
	}

	var ready []string
	for name, deg := range indegree {
		if deg == 0 {
			ready = append(ready, name)
		}
	}
	sort.Strings(ready)

	var order []string
	for len(ready) > 0 {
		sort.Strings(ready)
		next := ready[0]
		ready = ready[1:]
		order = append(order, next)

		for _, dep := range dependents[next] {
			indegree[dep]--
			if indegree[dep] == 0 {
				ready = append(ready, dep)
			}
		}
	}

	if len(order) != len(d.nodes) {
		return nil, fmt.Errorf("dag %q: cycle detected: %w", d.Name, errs.Internal)
	}
	return order, nil
}

func (d *Dag) node(name string) (DagNode, bool) {
	n, ok := d.nodes[name]
	return n, ok
}
