package graph

import (
	"cmp"
	"fmt"
	"strings"

	"github.com/optifine-glsl/mcglsl-lsp/internal/lspdiag"
)

// visitCount tracks one frame of the live DFS path: how many times we've
// backtracked to this node after exhausting one outgoing edge (touch),
// and how many backtracks are needed before unwinding past it to its own
// parent (children).
type visitCount struct {
	node     NodeIndex
	touch    int
	children int
}

// Dfs performs a depth-first traversal that visits every include
// *occurrence*: a diamond-shaped include graph yields the shared node once
// per parent path, and a file included twice by the same parent is
// emitted twice.
type Dfs[K comparable, V cmp.Ordered] struct {
	graph *CachedStableGraph[K, V]
	stack []NodeIndex
	cycle []visitCount
}

// NewDfs starts a traversal rooted at start.
func NewDfs[K comparable, V cmp.Ordered](g *CachedStableGraph[K, V], start NodeIndex) *Dfs[K, V] {
	return &Dfs[K, V]{graph: g, stack: []NodeIndex{start}}
}

// Next advances the traversal. It returns (tuple, nil, true) for a normal
// emission, (zero, err, true) when a cycle was detected (the iterator is
// still "live" in the sense that the caller decides whether to continue
// asking), or (zero, nil, false) when the traversal is exhausted.
func (d *Dfs[K, V]) Next() (FilialTuple[NodeIndex], *CycleError[K], bool) {
	var parent *NodeIndex
	if len(d.cycle) > 0 {
		p := d.cycle[len(d.cycle)-1].node
		parent = &p
	}

	if len(d.stack) == 0 {
		return FilialTuple[NodeIndex]{}, nil, false
	}

	child := d.stack[len(d.stack)-1]
	d.stack = d.stack[:len(d.stack)-1]

	d.cycle = append(d.cycle, visitCount{
		node:     child,
		children: len(d.graph.out[child]),
		touch:    1,
	})

	children := d.graph.AllEdgesFrom(child)
	if len(children) > 0 {
		childNodes := make([]NodeIndex, len(children))
		for i, e := range children {
			childNodes[i] = e.Child
		}
		if err := d.checkForCycle(childNodes); err != nil {
			return FilialTuple[NodeIndex]{}, err, true
		}
		// push in reverse so popping the stack yields ascending edge-weight order
		for i := len(children) - 1; i >= 0; i-- {
			d.stack = append(d.stack, children[i].Child)
		}
	} else {
		d.resetPathToBranch()
	}

	return FilialTuple[NodeIndex]{Child: child, Parent: parent}, nil, true
}

func (d *Dfs[K, V]) resetPathToBranch() {
	for len(d.cycle) > 0 {
		top := &d.cycle[len(d.cycle)-1]
		top.touch++
		if top.touch > top.children {
			d.cycle = d.cycle[:len(d.cycle)-1]
		} else {
			break
		}
	}
}

func (d *Dfs[K, V]) checkForCycle(children []NodeIndex) *CycleError[K] {
	for _, prev := range d.cycle {
		for _, child := range children {
			if prev.node == child {
				nodes := make([]NodeIndex, len(d.cycle))
				for i, vc := range d.cycle {
					nodes[i] = vc.node
				}
				return newCycleError(nodes, child, d.graph)
			}
		}
	}
	return nil
}

// CycleError reports a directed cycle discovered mid-traversal. Its
// payload is the ordered live DFS path from its root down to the node
// being expanded, plus the offending child (a node already on that path)
// that closes the cycle.
type CycleError[K any] struct {
	nodes []K
}

func newCycleError[K comparable, V cmp.Ordered](path []NodeIndex, offender NodeIndex, g *CachedStableGraph[K, V]) *CycleError[K] {
	resolved := make([]K, 0, len(path)+1)
	for _, idx := range path {
		resolved = append(resolved, g.Key(idx))
	}
	resolved = append(resolved, g.Key(offender))
	return &CycleError[K]{nodes: resolved}
}

// FirstNode returns the node at the root of the live DFS path when the
// cycle was detected, which is where the diagnostic gets anchored.
func (e *CycleError[K]) FirstNode() K { return e.nodes[0] }

// Error renders the cycle as
// "Include cycle detected:\nA imports \nB, which imports \nC"
func (e *CycleError[K]) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Include cycle detected:\n%v imports ", e.nodes[0])
	for _, p := range e.nodes[1 : len(e.nodes)-1] {
		fmt.Fprintf(&b, "\n%v, which imports ", p)
	}
	fmt.Fprintf(&b, "\n%v", e.nodes[len(e.nodes)-1])
	return b.String()
}

// ToDiagnostic renders the cycle as a fixed-range LSP diagnostic on the
// first line of the tree root.
func (e *CycleError[K]) ToDiagnostic() lspdiag.Diagnostic {
	return lspdiag.Diagnostic{
		Severity: lspdiag.SeverityError,
		Range: lspdiag.Range{
			Start: lspdiag.Position{Line: 0, Character: 0},
			End:   lspdiag.Position{Line: 0, Character: 500},
		},
		Source:  lspdiag.Source,
		Message: e.Error(),
	}
}
