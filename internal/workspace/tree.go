// Package workspace implements the stateful project model: discovery,
// incremental update, top-level classification, and DFS-tree generation
// rooted at any entry point.
package workspace

import (
	"fmt"
	"sync"

	"github.com/optifine-glsl/mcglsl-lsp/internal/graph"
	"github.com/optifine-glsl/mcglsl-lsp/internal/normpath"
	"github.com/optifine-glsl/mcglsl-lsp/internal/sourcefile"
)

// shaderExtensions is the set of recognized shader source extensions.
var shaderExtensions = map[string]bool{
	"fsh": true, "vsh": true, "gsh": true, "glsl": true, "csh": true,
}

// NonTopLevelError reports that a candidate tree root is not a recognized
// shader program entry point: an editable but un-lintable file.
type NonTopLevelError struct{ Path normpath.Path }

func (e *NonTopLevelError) Error() string {
	return fmt.Sprintf("got a non-valid top-level file: %s", e.Path)
}

// FileNotFoundError reports that an include target has no known source,
// e.g. because the file was deleted after being referenced.
type FileNotFoundError struct{ Importing, Missing normpath.Path }

func (e *FileNotFoundError) Error() string {
	return fmt.Sprintf("file %s not found; imported by %s", e.Missing, e.Importing)
}

// TreeNode is one materialized DFS emission: the visited file and the
// file that included it (nil for the tree root).
type TreeNode struct {
	Child  *sourcefile.Sourcefile
	Parent *sourcefile.Sourcefile
}

// TreeItem is one slot in a materialized tree: either a valid TreeNode,
// a non-terminal FileNotFoundError (traversal continues), or a terminal
// cycle error (the last item in Items).
type TreeItem struct {
	Node TreeNode
	Err  error
}

// TreeResult is one entry of TreesForEntry's result: either the tree is
// rooted at a non-top-level file (NonTopLevel set, Items empty) or it is
// a materialized, in-traversal-order sequence of TreeItems.
type TreeResult struct {
	NonTopLevel *normpath.Path
	Items       []TreeItem
}

// Tree is the per-workspace aggregate: the include graph, the source
// text per file, and the advisory set of files left without parents.
// All mutating operations and TreesForEntry take the same mutex; a
// workspace has exactly one exclusive-access guard.
type Tree struct {
	mu sync.Mutex

	root         normpath.Path
	graph        *graph.CachedStableGraph[normpath.Path, sourcefile.IncludeLine]
	sources      map[normpath.Path]*sourcefile.Sourcefile
	disconnected map[normpath.Path]bool
}

// NewTree returns an empty tree rooted at root.
func NewTree(root normpath.Path) *Tree {
	return &Tree{
		root:         root,
		graph:        graph.New[normpath.Path, sourcefile.IncludeLine](),
		sources:      make(map[normpath.Path]*sourcefile.Sourcefile),
		disconnected: make(map[normpath.Path]bool),
	}
}

// Root returns the workspace root this tree was built under.
func (t *Tree) Root() normpath.Path { return t.root }

// DOT renders the tree's full include graph as Graphviz DOT, backing the
// graphDot command.
func (t *Tree) DOT() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.graph.DOT()
}

// NumConnectedEntries returns the count of nodes in the graph.
func (t *Tree) NumConnectedEntries() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.graph.NodeCount()
}

// UpdateSourcefile upserts path's text, then diffs the previously known
// outgoing edges against the freshly parsed includes, applying only the
// delta. Re-invoking with unchanged text is a no-op diff.
func (t *Tree) UpdateSourcefile(path normpath.Path, text string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.updateSourcefileLocked(path, text)
}

func (t *Tree) updateSourcefileLocked(path normpath.Path, text string) error {
	src, ok := t.sources[path]
	if ok {
		src.Source = text
		src.InvalidateCache()
	} else {
		src = sourcefile.New(text, path, t.root)
		t.sources[path] = src
	}

	includes, err := src.Includes()
	if err != nil {
		// a parse failure is never fatal: treat as no includes
		includes = nil
	}

	idx := t.graph.AddNode(path)

	type childKey struct {
		path normpath.Path
		line sourcefile.IncludeLine
	}

	prev := make(map[childKey]bool)
	for _, e := range t.graph.AllEdgesFrom(idx) {
		prev[childKey{path: t.graph.Key(e.Child), line: e.Weight}] = true
	}

	next := make(map[childKey]bool, len(includes))
	for _, inc := range includes {
		next[childKey{path: inc.Path, line: inc.Line}] = true
	}

	for k := range prev {
		if next[k] {
			continue
		}
		childIdx, found := t.graph.FindNode(k.path)
		if !found {
			continue
		}
		t.graph.RemoveEdge(idx, childIdx, k.line)
		if k.path.Exists() && len(t.graph.Parents(childIdx)) == 0 {
			t.disconnected[k.path] = true
		}
	}

	for k := range next {
		if prev[k] {
			continue
		}
		childIdx := t.graph.AddNode(k.path)
		t.graph.AddEdge(idx, childIdx, k.line)
		delete(t.disconnected, k.path)
	}

	return nil
}

// RootAncestorsBeforeRemoval returns the top-level ancestors of path,
// meant to be captured just before RemoveSourcefile so callers can
// re-lint each one afterward.
func (t *Tree) RootAncestorsBeforeRemoval(path normpath.Path) (ancestors []normpath.Path, ok bool, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	idxs, reachable, rerr := t.graph.RootAncestorsForKey(path)
	if rerr != nil {
		return nil, false, rerr
	}
	if !reachable {
		return nil, false, nil
	}
	out := make([]normpath.Path, 0, len(idxs))
	for _, idx := range idxs {
		candidate := t.graph.Key(idx)
		if IsTopLevel(candidate.StripPrefix(t.root).String()) {
			out = append(out, candidate)
		}
	}
	return out, true, nil
}

// RemoveSourcefile removes path's source entry, its graph node, and every
// incident edge, then re-derives each former parent's edges from its
// unchanged text. Parents whose source still names the removed file get a
// fresh, sourceless node for it, so their next traversal surfaces a
// FileNotFound instead of silently shrinking. Callers that need to
// re-lint former ancestors must capture them (via RootAncestorsBeforeRemoval)
// before calling this.
func (t *Tree) RemoveSourcefile(path normpath.Path) {
	t.mu.Lock()
	defer t.mu.Unlock()
	idx, found := t.graph.FindNode(path)
	if !found {
		return
	}

	parentIdxs := t.graph.Parents(idx)
	seen := make(map[normpath.Path]bool, len(parentIdxs))
	var parents []normpath.Path
	for _, p := range parentIdxs {
		key := t.graph.Key(p)
		if !seen[key] {
			seen[key] = true
			parents = append(parents, key)
		}
	}

	delete(t.disconnected, path)
	delete(t.sources, path)
	t.graph.RemoveNode(idx)

	for _, parent := range parents {
		if src, ok := t.sources[parent]; ok {
			_ = t.updateSourcefileLocked(parent, src.Source)
		}
	}
}

// TreesForEntry is the central routing operation: it
// computes path's root ancestors and yields one materialized tree per
// top-level ancestor and a NonTopLevel result per ancestor that is not
// top-level. When path has no ancestors it yields a single tree rooted at
// path if path is top-level, else a single NonTopLevel result.
func (t *Tree) TreesForEntry(path normpath.Path) ([]TreeResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	ancestorIdxs, ok, err := t.graph.RootAncestorsForKey(path)
	if err != nil {
		return nil, err
	}
	if !ok {
		// A reverse cycle through path itself is treated the same as
		// "no ancestors"; the forward DFS reports the cycle.
		ancestorIdxs = nil
	}

	node, _ := t.graph.FindNode(path)

	if len(ancestorIdxs) == 0 {
		if !IsTopLevel(path.StripPrefix(t.root).String()) {
			p := path
			return []TreeResult{{NonTopLevel: &p}}, nil
		}
		return []TreeResult{t.materializeTree(node)}, nil
	}

	results := make([]TreeResult, 0, len(ancestorIdxs))
	for _, ancestorIdx := range ancestorIdxs {
		rootPath := t.graph.Key(ancestorIdx)
		if !IsTopLevel(rootPath.StripPrefix(t.root).String()) {
			p := rootPath
			results = append(results, TreeResult{NonTopLevel: &p})
			continue
		}
		results = append(results, t.materializeTree(ancestorIdx))
	}
	return results, nil
}

func (t *Tree) materializeTree(start graph.NodeIndex) TreeResult {
	d := graph.NewDfs(t.graph, start)
	var items []TreeItem
	for {
		tup, cycleErr, ok := d.Next()
		if !ok {
			break
		}
		if cycleErr != nil {
			items = append(items, TreeItem{Err: cycleErr})
			break
		}

		childPath := t.graph.Key(tup.Child)
		var parentPath normpath.Path
		var parentSrc *sourcefile.Sourcefile
		if tup.Parent != nil {
			parentPath = t.graph.Key(*tup.Parent)
			parentSrc = t.sources[parentPath]
		}

		childSrc, found := t.sources[childPath]
		if !found {
			items = append(items, TreeItem{Err: &FileNotFoundError{Importing: parentPath, Missing: childPath}})
			continue
		}

		items = append(items, TreeItem{Node: TreeNode{Child: childSrc, Parent: parentSrc}})
	}
	return TreeResult{Items: items}
}
