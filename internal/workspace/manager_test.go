package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optifine-glsl/mcglsl-lsp/internal/normpath"
)

func writeShader(t *testing.T, path, text string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
}

func TestDiscoverFindsShaderRoots(t *testing.T) {
	base := t.TempDir()
	writeShader(t, filepath.Join(base, "packA", "shaders", "final.fsh"), "#version 120\nvoid main() {}\n")
	writeShader(t, filepath.Join(base, "packB", "shaders", "world1", "composite.fsh"), "#version 120\nvoid main() {}\n")
	writeShader(t, filepath.Join(base, "unrelated", "notes.txt"), "not a shader\n")

	m := NewManager()
	require.NoError(t, m.Discover(normpath.New(base)))

	trees := m.Trees()
	assert.Len(t, trees, 2)
	assert.Contains(t, trees, normpath.New(filepath.Join(base, "packA")))
	assert.Contains(t, trees, normpath.New(filepath.Join(base, "packB")))
}

func TestTreeForFileLongestPrefixWins(t *testing.T) {
	base := t.TempDir()
	writeShader(t, filepath.Join(base, "outer", "shaders", "final.fsh"), "void main() {}\n")
	writeShader(t, filepath.Join(base, "outer", "nested", "shaders", "final.fsh"), "void main() {}\n")

	m := NewManager()
	require.NoError(t, m.Discover(normpath.New(base)))

	nestedFile := normpath.New(filepath.Join(base, "outer", "nested", "shaders", "final.fsh"))
	tree, ok := m.TreeForFile(nestedFile)
	require.True(t, ok)
	assert.Equal(t, normpath.New(filepath.Join(base, "outer", "nested")), tree.Root())

	outerFile := normpath.New(filepath.Join(base, "outer", "shaders", "final.fsh"))
	tree, ok = m.TreeForFile(outerFile)
	require.True(t, ok)
	assert.Equal(t, normpath.New(filepath.Join(base, "outer")), tree.Root())

	_, ok = m.TreeForFile(normpath.New(filepath.Join(base, "elsewhere", "x.fsh")))
	assert.False(t, ok)
}

func TestBuildRegistersShaderFilesAndSkipsOthers(t *testing.T) {
	base := t.TempDir()
	rootDir := filepath.Join(base, "pack")
	writeShader(t, filepath.Join(rootDir, "shaders", "final.fsh"), "#version 120\n#include \"common.glsl\"\n")
	writeShader(t, filepath.Join(rootDir, "shaders", "common.glsl"), "int x;\n")
	writeShader(t, filepath.Join(rootDir, "shaders", "readme.md"), "# docs\n")

	tr := NewTree(normpath.New(rootDir))
	require.NoError(t, tr.Build())

	_, found := tr.graph.FindNode(normpath.New(filepath.Join(rootDir, "shaders", "final.fsh")))
	assert.True(t, found)
	_, found = tr.graph.FindNode(normpath.New(filepath.Join(rootDir, "shaders", "common.glsl")))
	assert.True(t, found)
	_, found = tr.graph.FindNode(normpath.New(filepath.Join(rootDir, "shaders", "readme.md")))
	assert.False(t, found)
}

func TestBuildHonorsGitignore(t *testing.T) {
	base := t.TempDir()
	rootDir := filepath.Join(base, "pack")
	writeShader(t, filepath.Join(rootDir, "shaders", "final.fsh"), "void main() {}\n")
	writeShader(t, filepath.Join(rootDir, "scratch", "wip.glsl"), "int wip;\n")
	require.NoError(t, os.WriteFile(filepath.Join(rootDir, ".gitignore"), []byte("scratch/\n"), 0o644))

	tr := NewTree(normpath.New(rootDir))
	require.NoError(t, tr.Build())

	_, found := tr.graph.FindNode(normpath.New(filepath.Join(rootDir, "scratch", "wip.glsl")))
	assert.False(t, found)
	_, found = tr.graph.FindNode(normpath.New(filepath.Join(rootDir, "shaders", "final.fsh")))
	assert.True(t, found)
}
