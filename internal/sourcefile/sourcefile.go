// Package sourcefile models a single shader source file: its text, its
// lazily-parsed includes and #version directive, and the SourceMapper/
// LineMap helpers used to build and back-translate merged views.
package sourcefile

import (
	"sort"
	"strings"

	"github.com/optifine-glsl/mcglsl-lsp/internal/normpath"
	"github.com/optifine-glsl/mcglsl-lsp/internal/parser"
)

// IncludeLine is the zero-based line index of an #include occurrence;
// it doubles as the graph's edge weight.
type IncludeLine int

// IncludeEntry is one resolved include: where it points, which line of
// the containing file it occupies, and the byte span of the directive
// itself (used by the merge builder to rewrite unresolved includes in
// place without disturbing surrounding offsets).
type IncludeEntry struct {
	Path               normpath.Path
	Line               IncludeLine
	ByteStart, ByteEnd int
}

// Sourcefile is a (path, workspace root, text) record plus two lazily
// computed projections, Includes and Version.
type Sourcefile struct {
	Path   normpath.Path
	Root   normpath.Path
	Source string

	parser parser.Parser

	includesOnce bool
	includes     []IncludeEntry
}

// New constructs a Sourcefile using the default directive parser.
func New(source string, path, root normpath.Path) *Sourcefile {
	return &Sourcefile{Path: path, Root: root, Source: source, parser: parser.NewDefault()}
}

// Includes returns every #include occurrence in textual order, resolved
// to absolute paths: a leading '/' resolves under <root>/shaders/…,
// otherwise relative to the containing file's directory. Repeated
// includes of the same file produce multiple entries.
func (s *Sourcefile) Includes() ([]IncludeEntry, error) {
	if s.includesOnce {
		return s.includes, nil
	}
	matches, err := s.parser.ParseIncludes(s.Source)
	if err != nil {
		return nil, err
	}
	entries := make([]IncludeEntry, 0, len(matches))
	for _, m := range matches {
		var resolved normpath.Path
		if strings.HasPrefix(m.RawPath, "/") {
			resolved = s.Root.Join("shaders", strings.TrimPrefix(m.RawPath, "/"))
		} else {
			resolved = s.Path.Parent().Join(m.RawPath)
		}
		entries = append(entries, IncludeEntry{
			Path:      resolved,
			Line:      IncludeLine(m.Line),
			ByteStart: m.ByteStart,
			ByteEnd:   m.ByteEnd,
		})
	}
	s.includes = entries
	s.includesOnce = true
	return entries, nil
}

// InvalidateCache discards the memoized include list so the next call to
// Includes() re-parses Source. Callers must set Source before invoking
// this, normally from Tree.UpdateSourcefile.
func (s *Sourcefile) InvalidateCache() {
	s.includesOnce = false
	s.includes = nil
}

// IncludesOfPath returns, in ascending line order, every include of
// child within s. Used by the merge builder's per-(parent, child) edge
// iterator to handle a file included more than once by the same parent.
func (s *Sourcefile) IncludesOfPath(child normpath.Path) ([]IncludeEntry, error) {
	all, err := s.Includes()
	if err != nil {
		return nil, err
	}
	var entries []IncludeEntry
	for _, e := range all {
		if e.Path == child {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Line < entries[j].Line })
	return entries, nil
}

// Version extracts the #version directive's numeric argument, mapping it
// to one of the recognized GLSL versions; missing or unrecognized values
// default to 110.
func (s *Sourcefile) Version() int {
	n, found, err := s.parser.ParseVersion(s.Source)
	if err != nil || !found {
		return 110
	}
	return parser.KnownVersion(n)
}

// VersionLineOffset returns the zero-based line index of the #version
// directive, or 0 if there is none.
func (s *Sourcefile) VersionLineOffset() int {
	return parser.FindVersionLineOffset(s.Source)
}
