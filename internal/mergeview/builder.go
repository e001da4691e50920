// Package mergeview implements the merged-view builder: it stitches a
// materialized depth-first include traversal into one GLSL translation
// unit, injecting synthetic #line directives whose source index is
// allocated through a sourcefile.SourceMapper. The recursion mirrors the
// traversal's preorder shape, so each file's emission cursor is a local
// of its own frame.
package mergeview

import (
	"fmt"
	"strings"

	"github.com/optifine-glsl/mcglsl-lsp/internal/graph"
	"github.com/optifine-glsl/mcglsl-lsp/internal/normpath"
	"github.com/optifine-glsl/mcglsl-lsp/internal/parser"
	"github.com/optifine-glsl/mcglsl-lsp/internal/sourcefile"
	"github.com/optifine-glsl/mcglsl-lsp/internal/workspace"
)

type edgeKey struct {
	parent, child normpath.Path
}

// Builder produces one merged GLSL source string from a materialized tree.
// A Builder is single-use: construct one per merge and discard it after
// Build returns.
type Builder struct {
	items    []workspace.TreeItem
	mapper   *sourcefile.SourceMapper[normpath.Path]
	preamble string

	pos        int
	edgeCursor map[edgeKey]int
	lineMaps   map[normpath.Path]*sourcefile.LineMap
	includes   parser.Default

	out []byte
}

// New returns a Builder for items, a materialized DFS tree in traversal
// order whose first element has a nil parent. mapper is seeded with the
// root path during Build and keeps the lifetime of this single build
// only. preamble is an externally supplied block inserted verbatim after
// the #version line.
func New(items []workspace.TreeItem, mapper *sourcefile.SourceMapper[normpath.Path], preamble string) *Builder {
	return &Builder{
		items:      items,
		mapper:     mapper,
		preamble:   preamble,
		edgeCursor: make(map[edgeKey]int),
		lineMaps:   make(map[normpath.Path]*sourcefile.LineMap),
	}
}

// Build produces the merged text. It returns the graph.CycleError[normpath.Path]
// encountered mid-traversal, if any, unwrapped so callers can render it
// as a diagnostic; callers normally short-circuit on a cycle before ever
// constructing a Builder, but Build defends against the case anyway.
func (b *Builder) Build() (string, error) {
	if len(b.items) == 0 {
		return "", fmt.Errorf("mergeview: empty tree")
	}
	first := b.items[0]
	if first.Err != nil {
		return "", first.Err
	}
	if first.Node.Parent != nil {
		return "", fmt.Errorf("mergeview: root item must have a nil parent")
	}
	root := first.Node.Child
	b.pos = 1

	b.mapper.GetNum(root.Path)

	versionLine := root.VersionLineOffset()
	_, endPtr := b.lineMapFor(root.Path, root.Source).LineRangeForPosition(uint32(versionLine))
	cv := len(root.Source)
	if endPtr != nil {
		cv = *endPtr + 1
	}

	b.emitSlice(root, root.Source[:cv])
	b.emit(b.preamble)
	b.emitClosing(versionLine+1, root.Path)

	endCursor, err := b.consumeChildren(root, cv)
	if err != nil {
		return "", err
	}

	if endCursor < len(root.Source) {
		b.emitSlice(root, root.Source[endCursor:])
	}

	return string(b.out), nil
}

// consumeChildren processes every item belonging to self,
// starting self's own cursor at startCursor, until the next item
// in traversal order belongs to an ancestor instead, at which point the
// recursion unwinds back to that ancestor's own consumeChildren call. It
// returns self's final cursor, the byte offset up to which self's text has
// already been emitted.
func (b *Builder) consumeChildren(self *sourcefile.Sourcefile, startCursor int) (int, error) {
	cursor := startCursor
	for b.pos < len(b.items) {
		item := b.items[b.pos]

		if item.Err != nil {
			if cycleErr, ok := item.Err.(*graph.CycleError[normpath.Path]); ok {
				return cursor, cycleErr
			}
			fnf, ok := item.Err.(*workspace.FileNotFoundError)
			if !ok {
				return cursor, fmt.Errorf("mergeview: unexpected tree item error: %w", item.Err)
			}
			if fnf.Importing != self.Path {
				// belongs to an ancestor's frame; unwind to it
				return cursor, nil
			}
			b.pos++
			entry, err := b.nextEdge(self, fnf.Missing)
			if err != nil {
				return cursor, err
			}
			start, _ := b.lineBounds(self.Path, self.Source, entry.Line)
			b.emitSlice(self, self.Source[cursor:start])
			// Swap the directive text for a compiler-visible #error and
			// resume right after the closing quote, so content following
			// the directive keeps its offsets.
			b.emit(fmt.Sprintf("#error Couldn't import file %s\n", fnf.Missing))
			cursor = entry.ByteEnd
			continue
		}

		node := item.Node
		if node.Parent == nil || node.Parent.Path != self.Path {
			return cursor, nil
		}
		b.pos++

		child := node.Child
		entry, err := b.nextEdge(self, child.Path)
		if err != nil {
			return cursor, err
		}
		line := entry.Line
		start, endExclusive := b.lineBounds(self.Path, self.Source, line)
		b.emitSlice(self, self.Source[cursor:start])
		cursor = endExclusive
		b.emitOpening(child.Path)

		childEnd, err := b.consumeChildren(child, 0)
		if err != nil {
			return cursor, err
		}
		tailEnd := len(child.Source)
		if tailEnd > 0 && child.Source[tailEnd-1] == '\n' {
			tailEnd--
		}
		if childEnd < tailEnd {
			b.emitSlice(child, child.Source[childEnd:tailEnd])
		}
		b.emitClosing(int(line)+1, self.Path)
	}
	return cursor, nil
}

// nextEdge returns the next not-yet-consumed include of child within
// self, advancing a per-(self,child) cursor so that a file included twice
// by the same parent resolves to its two distinct lines in order.
func (b *Builder) nextEdge(self *sourcefile.Sourcefile, child normpath.Path) (sourcefile.IncludeEntry, error) {
	key := edgeKey{parent: self.Path, child: child}
	entries, err := self.IncludesOfPath(child)
	if err != nil {
		return sourcefile.IncludeEntry{}, err
	}
	idx := b.edgeCursor[key]
	if idx >= len(entries) {
		return sourcefile.IncludeEntry{}, fmt.Errorf("mergeview: no remaining include of %s in %s", child, self.Path)
	}
	b.edgeCursor[key] = idx + 1
	return entries[idx], nil
}

func (b *Builder) lineMapFor(path normpath.Path, source string) *sourcefile.LineMap {
	if lm, ok := b.lineMaps[path]; ok {
		return lm
	}
	lm := sourcefile.NewLineMap(source)
	b.lineMaps[path] = lm
	return lm
}

// lineBounds returns the byte offset of the start of line, and the byte
// offset of the start of the following line (or len(source) if line is
// the source's last line).
func (b *Builder) lineBounds(path normpath.Path, source string, line sourcefile.IncludeLine) (start, endExclusive int) {
	lm := b.lineMapFor(path, source)
	start, endPtr := lm.LineRangeForPosition(uint32(line))
	if endPtr != nil {
		endExclusive = *endPtr + 1
	} else {
		endExclusive = len(source)
	}
	return start, endExclusive
}

func (b *Builder) emit(s string) {
	b.out = append(b.out, s...)
}

// emitSlice appends a slice of owner's text, rewriting any #include
// directive still present in it to a compiler-visible #error. Includes
// consumed by the traversal are excised by the cursor bookkeeping before
// their text ever reaches here, so anything left is by construction
// unresolved: a file deleted after being referenced, or one that never
// existed.
func (b *Builder) emitSlice(owner *sourcefile.Sourcefile, slice string) {
	matches, err := b.includes.ParseIncludes(slice)
	if err != nil || len(matches) == 0 {
		b.emit(slice)
		return
	}
	start := 0
	for _, m := range matches {
		var resolved normpath.Path
		if strings.HasPrefix(m.RawPath, "/") {
			resolved = owner.Root.Join("shaders", strings.TrimPrefix(m.RawPath, "/"))
		} else {
			resolved = owner.Path.Parent().Join(m.RawPath)
		}
		lineStart := start
		if idx := strings.LastIndexByte(slice[start:m.ByteStart], '\n'); idx >= 0 {
			lineStart = start + idx + 1
		}
		b.emit(slice[start:lineStart])
		b.emit(fmt.Sprintf("#error Couldn't import file %s\n", resolved))
		start = m.ByteEnd
	}
	b.emit(slice[start:])
}

// emitOpening appends the opening #line directive for entering child:
// always line 0, since the child's own text begins at its own offset 0
// from the compiler's perspective.
func (b *Builder) emitOpening(child normpath.Path) {
	b.emit(fmt.Sprintf("#line 0 %d // %s\n", b.mapper.GetNum(child), child))
}

// emitClosing appends the closing directive that returns the compiler's
// notion of position to line/path after a child's (or the preamble's)
// text has been fully emitted. The leading newline is omitted when the
// previously emitted chunk already ends in a #line directive, which
// would otherwise produce double blank lines.
func (b *Builder) emitClosing(line int, path normpath.Path) {
	directive := fmt.Sprintf("#line %d %d // %s\n", line, b.mapper.GetNum(path), path)
	if !endsWithLineDirective(b.out) {
		directive = "\n" + directive
	}
	b.emit(directive)
}

func endsWithLineDirective(out []byte) bool {
	if len(out) == 0 {
		return false
	}
	i := len(out) - 1
	for i >= 0 && out[i] == '\n' {
		i--
	}
	end := i + 1
	start := end
	for start > 0 && out[start-1] != '\n' {
		start--
	}
	trimmed := out[start:end]
	for len(trimmed) > 0 && (trimmed[0] == ' ' || trimmed[0] == '\t') {
		trimmed = trimmed[1:]
	}
	const prefix = "#line"
	return len(trimmed) >= len(prefix) && string(trimmed[:len(prefix)]) == prefix
}
