package sourcefile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optifine-glsl/mcglsl-lsp/internal/normpath"
)

func TestIncludesResolvesRelativeAndAbsolute(t *testing.T) {
	root := normpath.New("/proj")
	path := normpath.New("/proj/shaders/utils/sample.glsl")
	text := "#include \"sibling.glsl\"\n#include \"/lib/math.glsl\"\n"

	src := New(text, path, root)
	includes, err := src.Includes()
	require.NoError(t, err)
	require.Len(t, includes, 2)

	assert.Equal(t, "/proj/shaders/utils/sibling.glsl", includes[0].Path.String())
	assert.Equal(t, IncludeLine(0), includes[0].Line)
	assert.Equal(t, "/proj/shaders/lib/math.glsl", includes[1].Path.String())
	assert.Equal(t, IncludeLine(1), includes[1].Line)
}

func TestIncludesRepeatedChildKeepsBothEntries(t *testing.T) {
	root := normpath.New("/proj")
	path := normpath.New("/proj/shaders/final.fsh")
	text := "#version 120\n#include \"t.glsl\"\nint x;\n#include \"t.glsl\"\n"

	src := New(text, path, root)
	includes, err := src.Includes()
	require.NoError(t, err)
	require.Len(t, includes, 2)
	assert.Equal(t, includes[0].Path, includes[1].Path)
	assert.Equal(t, IncludeLine(1), includes[0].Line)
	assert.Equal(t, IncludeLine(3), includes[1].Line)
}

func TestIncludesOfPathAscendingLines(t *testing.T) {
	root := normpath.New("/proj")
	path := normpath.New("/proj/shaders/final.fsh")
	text := "#include \"a.glsl\"\n#include \"t.glsl\"\n#include \"t.glsl\"\n"

	src := New(text, path, root)
	entries, err := src.IncludesOfPath(normpath.New("/proj/shaders/t.glsl"))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, IncludeLine(1), entries[0].Line)
	assert.Equal(t, IncludeLine(2), entries[1].Line)
}

func TestInvalidateCacheReparses(t *testing.T) {
	root := normpath.New("/proj")
	path := normpath.New("/proj/shaders/final.fsh")

	src := New("#include \"a.glsl\"\n", path, root)
	includes, err := src.Includes()
	require.NoError(t, err)
	require.Len(t, includes, 1)

	src.Source = "int x;\n"
	src.InvalidateCache()
	includes, err = src.Includes()
	require.NoError(t, err)
	assert.Empty(t, includes)
}

func TestVersionDefaultsTo110(t *testing.T) {
	root := normpath.New("/proj")
	path := normpath.New("/proj/shaders/final.fsh")

	assert.Equal(t, 450, New("#version 450\n", path, root).Version())
	assert.Equal(t, 110, New("#version 999\n", path, root).Version())
	assert.Equal(t, 110, New("void main() {}\n", path, root).Version())
}

func TestVersionLineOffset(t *testing.T) {
	root := normpath.New("/proj")
	path := normpath.New("/proj/shaders/final.fsh")

	assert.Equal(t, 1, New("// header\n#version 120\n", path, root).VersionLineOffset())
	assert.Equal(t, 0, New("void main() {}\n", path, root).VersionLineOffset())
}
