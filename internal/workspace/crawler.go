package workspace

import (
	"io/fs"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
	"golang.org/x/sync/errgroup"

	"github.com/optifine-glsl/mcglsl-lsp/internal/normpath"
)

const readWorkers = 8

// ignoreEntry is one .gitignore matcher scoped to the directory depth it
// was loaded at, popped off the stack once the walk backs out of scope.
type ignoreEntry struct {
	depth   int
	matcher *ignore.GitIgnore
}

// Build walks the tree's root recursively, registering every shader
// source file found via UpdateSourcefile. File texts are read in
// parallel under a worker
// limit; unreadable files and directories are skipped rather than
// aborting the walk. A directory's own .gitignore is honored for
// everything beneath it.
func (t *Tree) Build() error {
	var ignoreStack []ignoreEntry
	var paths []normpath.Path

	if gi, err := ignore.CompileIgnoreFile(t.root.Join(".gitignore").String()); err == nil {
		ignoreStack = append(ignoreStack, ignoreEntry{depth: 0, matcher: gi})
	}

	err := filepath.WalkDir(t.root.String(), func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		rel, err := filepath.Rel(t.root.String(), p)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		depth := 0
		if rel != "." {
			depth = strings.Count(rel, "/") + 1
		}
		for len(ignoreStack) > 0 && ignoreStack[len(ignoreStack)-1].depth >= depth && depth > 0 {
			ignoreStack = ignoreStack[:len(ignoreStack)-1]
		}

		if d.IsDir() {
			if rel == "." {
				return nil
			}
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			if isGitignored(rel, ignoreStack) {
				return filepath.SkipDir
			}
			if gi, loadErr := ignore.CompileIgnoreFile(filepath.Join(p, ".gitignore")); loadErr == nil {
				ignoreStack = append(ignoreStack, ignoreEntry{depth: depth, matcher: gi})
			}
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		if isGitignored(rel, ignoreStack) {
			return nil
		}

		path := normpath.New(p)
		if !shaderExtensions[path.Extension()] {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return err
	}

	// Read texts in parallel, then apply graph updates serially under the
	// tree's single guard. A failed read leaves its slot unset and the
	// apply loop skips it; the file reappears on a subsequent open/save.
	texts := make([]string, len(paths))
	read := make([]bool, len(paths))
	var g errgroup.Group
	g.SetLimit(readWorkers)
	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			text, readErr := p.ReadText()
			if readErr != nil {
				return nil
			}
			texts[i] = text
			read[i] = true
			return nil
		})
	}
	_ = g.Wait()

	for i, p := range paths {
		if !read[i] {
			continue
		}
		if err := t.UpdateSourcefile(p, texts[i]); err != nil {
			return err
		}
	}
	return nil
}

func isGitignored(relPath string, stack []ignoreEntry) bool {
	for _, entry := range stack {
		if entry.matcher.MatchesPath(relPath) {
			return true
		}
	}
	return false
}
