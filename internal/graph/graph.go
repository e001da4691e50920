// Package graph implements CachedStableGraph, the directed multigraph
// backing the include dependency index, and the depth-first traversal
// with cycle detection over it. Multiple edges between the same pair of
// nodes are meaningful: a file included twice at different lines is two
// edges differing by weight.
package graph

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// NodeIndex identifies a node. Indices are stable: removing a node other
// than n never changes the value that refers to n.
type NodeIndex int

// FilialTuple is the unit of DFS emission: a child together with the
// parent it was reached through, or no parent for the traversal root.
type FilialTuple[T any] struct {
	Child  T
	Parent *T
}

// Edge is a (child, weight) pair as returned by AllEdgesFrom.
type Edge[V cmp.Ordered] struct {
	Child  NodeIndex
	Weight V
}

type outEdge[V cmp.Ordered] struct {
	child  NodeIndex
	weight V
}

// NotFoundError reports that a key has no corresponding node.
type NotFoundError[K any] struct{ Key K }

func (e *NotFoundError[K]) Error() string {
	return fmt.Sprintf("node not found for key %v", e.Key)
}

// CachedStableGraph is a directed multigraph keyed by K with edge weight
// V, with an O(1) key→index lookup cache.
type CachedStableGraph[K comparable, V cmp.Ordered] struct {
	next  NodeIndex
	keys  map[NodeIndex]K
	cache map[K]NodeIndex
	out   map[NodeIndex][]outEdge[V]
}

// New returns an empty graph.
func New[K comparable, V cmp.Ordered]() *CachedStableGraph[K, V] {
	return &CachedStableGraph[K, V]{
		keys:  make(map[NodeIndex]K),
		cache: make(map[K]NodeIndex),
		out:   make(map[NodeIndex][]outEdge[V]),
	}
}

// NodeCount returns the number of live nodes.
func (g *CachedStableGraph[K, V]) NodeCount() int { return len(g.keys) }

// Key returns the key stored at idx. Panics if idx was removed or never
// allocated.
func (g *CachedStableGraph[K, V]) Key(idx NodeIndex) K {
	k, ok := g.keys[idx]
	if !ok {
		panic(fmt.Sprintf("graph: no key for index %d", idx))
	}
	return k
}

// FindNode resolves k to its index. The cache is consulted first (O(1));
// on a miss it falls back to a linear scan over keys and populates the
// cache on hit.
func (g *CachedStableGraph[K, V]) FindNode(k K) (NodeIndex, bool) {
	if idx, ok := g.cache[k]; ok {
		return idx, true
	}
	for idx, key := range g.keys {
		if key == k {
			g.cache[k] = idx
			return idx, true
		}
	}
	return 0, false
}

// AddNode returns the existing index for k if present, else allocates one.
func (g *CachedStableGraph[K, V]) AddNode(k K) NodeIndex {
	if idx, ok := g.FindNode(k); ok {
		return idx
	}
	idx := g.next
	g.next++
	g.keys[idx] = k
	g.cache[k] = idx
	return idx
}

// RemoveNode deletes a node and every edge incident to it, incoming or
// outgoing. Other node indices are unaffected.
func (g *CachedStableGraph[K, V]) RemoveNode(n NodeIndex) {
	k, ok := g.keys[n]
	if !ok {
		return
	}
	delete(g.keys, n)
	delete(g.cache, k)
	delete(g.out, n)
	for parent, edges := range g.out {
		filtered := edges[:0:0]
		for _, e := range edges {
			if e.child != n {
				filtered = append(filtered, e)
			}
		}
		g.out[parent] = filtered
	}
}

// AddEdge always adds a new edge; multiplicity between the same (p, c) is
// meaningful (the same file #include'd twice on different lines).
func (g *CachedStableGraph[K, V]) AddEdge(p, c NodeIndex, w V) {
	g.out[p] = append(g.out[p], outEdge[V]{child: c, weight: w})
}

// RemoveEdge removes exactly one edge matching (p, c, w); no-op if none
// matches.
func (g *CachedStableGraph[K, V]) RemoveEdge(p, c NodeIndex, w V) {
	edges := g.out[p]
	for i, e := range edges {
		if e.child == c && e.weight == w {
			g.out[p] = slices.Delete(edges, i, i+1)
			return
		}
	}
}

// AllEdgesFrom returns the (child, weight) pairs out of p in non-decreasing
// weight order. This ordering is what the merge builder and the DFS rely
// on for deterministic, textual-include-order traversal.
func (g *CachedStableGraph[K, V]) AllEdgesFrom(p NodeIndex) []Edge[V] {
	edges := g.out[p]
	out := make([]Edge[V], len(edges))
	for i, e := range edges {
		out[i] = Edge[V]{Child: e.child, Weight: e.weight}
	}
	slices.SortFunc(out, func(a, b Edge[V]) int { return cmp.Compare(a.Weight, b.Weight) })
	return out
}

// EdgesBetween returns the weights of every edge p->c in non-decreasing
// order.
func (g *CachedStableGraph[K, V]) EdgesBetween(p, c NodeIndex) []V {
	var weights []V
	for _, e := range g.out[p] {
		if e.child == c {
			weights = append(weights, e.weight)
		}
	}
	slices.Sort(weights)
	return weights
}

// Children returns the (possibly repeated) child indices out of n, in
// non-decreasing weight order.
func (g *CachedStableGraph[K, V]) Children(n NodeIndex) []NodeIndex {
	edges := g.AllEdgesFrom(n)
	out := make([]NodeIndex, len(edges))
	for i, e := range edges {
		out[i] = e.Child
	}
	return out
}

// Parents returns every node with at least one outgoing edge to n,
// repeated once per incident edge. Parents are derived from the outgoing
// adjacency rather than stored separately, so there is one set of edge
// invariants to maintain.
func (g *CachedStableGraph[K, V]) Parents(n NodeIndex) []NodeIndex {
	var out []NodeIndex
	for parent, edges := range g.out {
		for _, e := range edges {
			if e.child == n {
				out = append(out, parent)
			}
		}
	}
	return out
}

// RootAncestors returns the set of parentless ancestors reachable from n
// by walking incoming edges, or ok=false if a reverse cycle through n was
// detected. An empty, ok=true result means n itself has no parents.
// Each ancestor appears once, even when reachable along several reverse
// paths (a parent with two edges to n counts as one ancestor path).
func (g *CachedStableGraph[K, V]) RootAncestors(n NodeIndex) (ancestors []NodeIndex, ok bool) {
	raw, ok := g.rootAncestors(n, n, map[NodeIndex]bool{})
	if !ok {
		return nil, false
	}
	seen := make(map[NodeIndex]bool, len(raw))
	deduped := raw[:0]
	for _, a := range raw {
		if !seen[a] {
			seen[a] = true
			deduped = append(deduped, a)
		}
	}
	return deduped, true
}

// RootAncestorsForKey resolves k and calls RootAncestors, or reports
// NotFoundError if k is unknown.
func (g *CachedStableGraph[K, V]) RootAncestorsForKey(k K) ([]NodeIndex, bool, error) {
	idx, found := g.FindNode(k)
	if !found {
		return nil, false, &NotFoundError[K]{Key: k}
	}
	a, ok := g.RootAncestors(idx)
	return a, ok, nil
}

// DOT renders the full graph as Graphviz DOT, one edge per occurrence
// (so a file included twice by the same parent produces two edges).
func (g *CachedStableGraph[K, V]) DOT() string {
	var b strings.Builder
	b.WriteString("digraph {\n")
	for idx, key := range g.keys {
		for _, e := range g.out[idx] {
			child := g.keys[e.child]
			fmt.Fprintf(&b, "\t%q -> %q [label=%q];\n", fmt.Sprint(key), fmt.Sprint(child), fmt.Sprint(e.weight))
		}
	}
	b.WriteString("}\n")
	return b.String()
}

func (g *CachedStableGraph[K, V]) rootAncestors(initial, current NodeIndex, visited map[NodeIndex]bool) ([]NodeIndex, bool) {
	if current == initial && len(visited) > 0 {
		return nil, false
	}
	seen := make(map[NodeIndex]bool, len(visited)+1)
	for k := range visited {
		seen[k] = true
	}
	seen[current] = true

	parents := g.Parents(current)
	if len(parents) == 0 {
		if current == initial {
			return []NodeIndex{}, true
		}
		return []NodeIndex{current}, true
	}

	var out []NodeIndex
	for _, p := range parents {
		anc, ok := g.rootAncestors(initial, p, seen)
		if !ok {
			return nil, false
		}
		out = append(out, anc...)
	}
	return out, true
}
