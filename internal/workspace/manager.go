package workspace

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/optifine-glsl/mcglsl-lsp/internal/normpath"
)

// Manager hosts every workspace tree discovered under one process,
// routing an edited file to its owning tree by longest path-prefix
// match. A process may serve several shader packs at once; did_open and
// friends carry only a file path, so ownership has to be derived here.
type Manager struct {
	mu    sync.Mutex
	trees map[normpath.Path]*Tree
	roots []normpath.Path // kept sorted longest-first for prefix search
}

// NewManager returns an empty manager.
func NewManager() *Manager {
	return &Manager{trees: make(map[normpath.Path]*Tree)}
}

// Discover walks under searchRoot looking for shader project roots: a
// `shaders/` directory (optionally with `shaders.properties` inside it)
// and `shaders/world<N>/` dimension directories are collapsed to their
// common parent, the workspace root. Each newly discovered root gets a
// freshly Built Tree. Already-known roots are left untouched.
func (m *Manager) Discover(searchRoot normpath.Path) error {
	var found []normpath.Path
	err := filepath.WalkDir(searchRoot.String(), func(p string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if d.Name() != "shaders" {
			return nil
		}
		root := normpath.New(filepath.Dir(p))
		found = append(found, root)
		return filepath.SkipDir
	})
	if err != nil {
		return fmt.Errorf("discovering workspaces under %s: %w", searchRoot, err)
	}

	for _, root := range found {
		if err := m.AddWorkspace(root); err != nil {
			return err
		}
	}
	return nil
}

// AddWorkspace registers and builds a tree rooted at root, unless one is
// already registered there.
func (m *Manager) AddWorkspace(root normpath.Path) error {
	m.mu.Lock()
	if _, ok := m.trees[root]; ok {
		m.mu.Unlock()
		return nil
	}
	tree := NewTree(root)
	m.trees[root] = tree
	m.roots = append(m.roots, root)
	sort.Slice(m.roots, func(i, j int) bool {
		return len(m.roots[i].String()) > len(m.roots[j].String())
	})
	m.mu.Unlock()

	return tree.Build()
}

// TreeForFile resolves the owning Tree for an absolute file path by
// longest-prefix match over registered roots.
func (m *Manager) TreeForFile(path normpath.Path) (*Tree, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := path.String()
	for _, root := range m.roots {
		if p == root.String() || strings.HasPrefix(p, root.String()+"/") {
			return m.trees[root], true
		}
	}
	return nil, false
}

// Trees returns every registered tree, keyed by root.
func (m *Manager) Trees() map[normpath.Path]*Tree {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[normpath.Path]*Tree, len(m.trees))
	for k, v := range m.trees {
		out[k] = v
	}
	return out
}
