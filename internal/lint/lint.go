// Package lint orchestrates the full per-root lint pipeline:
// TreesForEntry -> mergeview.Builder -> ShaderValidator.Validate ->
// diagnostics.Parser -> back-fill.
//
// This lives in its own package rather than as a method on
// workspace.Tree: mergeview.Builder consumes workspace.TreeItem, so a
// method on Tree that also imported mergeview would form an import cycle.
package lint

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/optifine-glsl/mcglsl-lsp/internal/diagnostics"
	"github.com/optifine-glsl/mcglsl-lsp/internal/graph"
	"github.com/optifine-glsl/mcglsl-lsp/internal/lspdiag"
	"github.com/optifine-glsl/mcglsl-lsp/internal/mergeview"
	"github.com/optifine-glsl/mcglsl-lsp/internal/normpath"
	"github.com/optifine-glsl/mcglsl-lsp/internal/sourcefile"
	"github.com/optifine-glsl/mcglsl-lsp/internal/validator"
	"github.com/optifine-glsl/mcglsl-lsp/internal/workspace"
)

// Runner holds the collaborators a lint pass needs beyond the workspace
// tree itself: the preamble text inserted after every root's #version
// line, and the mailbox-wrapped shader validator.
type Runner struct {
	Preamble  string
	Validator *validator.Actor

	group singleflight.Group
}

// Lint runs the full pipeline for every tree rooted at, or ancestor of,
// path, returning a diagnostics map keyed by file. A non-top-level tree
// root is silently skipped; a missing include surfaces a warning on the
// importing file without aborting the rest of the tree; a cycle surfaces
// one diagnostic on the first node of the cycle and skips merging that
// tree, but sibling trees still proceed.
func (r *Runner) Lint(ctx context.Context, tree *workspace.Tree, path normpath.Path) (map[normpath.Path][]lspdiag.Diagnostic, error) {
	// Rapid keystrokes fire did_save for the same file faster than a
	// validator round-trip; concurrent duplicates share one pass.
	key := tree.Root().String() + "\x00" + path.String()
	v, err, _ := r.group.Do(key, func() (any, error) {
		return r.lint(ctx, tree, path)
	})
	if err != nil {
		return nil, err
	}
	return v.(map[normpath.Path][]lspdiag.Diagnostic), nil
}

func (r *Runner) lint(ctx context.Context, tree *workspace.Tree, path normpath.Path) (map[normpath.Path][]lspdiag.Diagnostic, error) {
	results := make(map[normpath.Path][]lspdiag.Diagnostic)

	treeResults, err := tree.TreesForEntry(path)
	if err != nil {
		return nil, err
	}

	var visited []normpath.Path
	seenVisited := make(map[normpath.Path]bool)
	addVisited := func(p normpath.Path) {
		if !seenVisited[p] {
			seenVisited[p] = true
			visited = append(visited, p)
		}
	}

	for _, tr := range treeResults {
		if tr.NonTopLevel != nil {
			slog.Info("skipping non-top-level tree root", "path", tr.NonTopLevel.String())
			continue
		}
		if len(tr.Items) == 0 {
			continue
		}

		for _, item := range tr.Items {
			if item.Err == nil {
				addVisited(item.Node.Child.Path)
				continue
			}
			if fnf, ok := item.Err.(*workspace.FileNotFoundError); ok {
				addVisited(fnf.Importing)
				results[fnf.Importing] = append(results[fnf.Importing], warningDiagnostic(fnf.Error()))
			}
		}

		if cyc := lastCycle(tr.Items); cyc != nil {
			results[cyc.FirstNode()] = append(results[cyc.FirstNode()], cyc.ToDiagnostic())
			continue
		}
		if tr.Items[0].Err != nil {
			continue
		}

		root := tr.Items[0].Node.Child
		mapper := sourcefile.NewSourceMapper[normpath.Path](len(tr.Items))
		merged, err := mergeview.New(tr.Items, mapper, r.Preamble).Build()
		if err != nil {
			if cyc, ok := err.(*graph.CycleError[normpath.Path]); ok {
				results[cyc.FirstNode()] = append(results[cyc.FirstNode()], cyc.ToDiagnostic())
				continue
			}
			return nil, err
		}

		output, err := r.Validator.Validate(ctx, kindForExtension(root.Path.Extension()), merged)
		if err != nil || output == "" {
			// An unavailable validator (e.g. context canceled by the
			// outer dispatcher's timeout policy) and a clean compile
			// both mean "no diagnostics this round".
			continue
		}

		parser := diagnostics.New(r.Validator.Vendor())
		for p, ds := range parser.Parse(output, root.Path, mapper) {
			results[p] = append(results[p], ds...)
		}
	}

	return diagnostics.BackFill(results, visited), nil
}

// MergeEntry renders the merged text for a single top-level entry file,
// plus its SourceMapper table (SourceNum -> path), backing the
// virtualMerge command.
// path must itself be a top-level entry with no ancestors; callers that
// want the merge for a leaf header should resolve an ancestor via
// Tree.TreesForEntry first.
func MergeEntry(tree *workspace.Tree, path normpath.Path, preamble string) (merged string, table map[int]string, err error) {
	results, err := tree.TreesForEntry(path)
	if err != nil {
		return "", nil, err
	}
	if len(results) != 1 || results[0].NonTopLevel != nil {
		return "", nil, fmt.Errorf("lint: %s is not a standalone top-level entry", path)
	}
	items := results[0].Items
	if cyc := lastCycle(items); cyc != nil {
		return "", nil, cyc
	}

	mapper := sourcefile.NewSourceMapper[normpath.Path](len(items))
	merged, err = mergeview.New(items, mapper, preamble).Build()
	if err != nil {
		return "", nil, err
	}

	table = make(map[int]string)
	for i := 0; ; i++ {
		key, ok := mapper.Lookup(sourcefile.SourceNum(i))
		if !ok {
			break
		}
		table[i] = key.String()
	}
	return merged, table, nil
}

func lastCycle(items []workspace.TreeItem) *graph.CycleError[normpath.Path] {
	last := items[len(items)-1]
	cyc, _ := last.Err.(*graph.CycleError[normpath.Path])
	return cyc
}

func warningDiagnostic(message string) lspdiag.Diagnostic {
	return lspdiag.Diagnostic{
		Range: lspdiag.Range{
			Start: lspdiag.Position{Line: 0, Character: 0},
			End:   lspdiag.Position{Line: 0, Character: 1000},
		},
		Severity: lspdiag.SeverityWarning,
		Source:   lspdiag.Source,
		Message:  message,
	}
}

func kindForExtension(ext string) validator.ShaderKind {
	switch ext {
	case "vsh":
		return validator.KindVertex
	case "gsh":
		return validator.KindGeometry
	case "csh":
		return validator.KindCompute
	default:
		return validator.KindFragment
	}
}
