package normpath

import (
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCleansAndSlashes(t *testing.T) {
	p := New("/home/user/pack/shaders/../shaders/final.fsh")
	assert.Equal(t, "/home/user/pack/shaders/final.fsh", p.String())
}

func TestFromURLDecodesPercentEncoding(t *testing.T) {
	u, err := url.Parse("file:///home/user/My%20Shaders/final.fsh")
	require.NoError(t, err)

	p := FromURL(u)
	assert.Equal(t, "/home/user/My Shaders/final.fsh", p.String())
}

func TestJoinAndParent(t *testing.T) {
	root := New("/proj")
	joined := root.Join("shaders", "utils/common.glsl")
	assert.Equal(t, "/proj/shaders/utils/common.glsl", joined.String())
	assert.Equal(t, "/proj/shaders/utils", joined.Parent().String())
}

func TestExtension(t *testing.T) {
	assert.Equal(t, "fsh", New("/proj/shaders/final.fsh").Extension())
	assert.Equal(t, "", New("/proj/shaders/LICENSE").Extension())
}

func TestStripPrefix(t *testing.T) {
	root := New("/proj")
	p := New("/proj/shaders/final.fsh")
	assert.Equal(t, "shaders/final.fsh", p.StripPrefix(root).String())

	unrelated := New("/other/file.fsh")
	assert.Equal(t, "/other/file.fsh", unrelated.StripPrefix(root).String())
}

func TestReadTextNormalizesCRLF(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "crlf.glsl")
	require.NoError(t, os.WriteFile(file, []byte("a\r\nb\r\nc\n"), 0o644))

	text, err := New(file).ReadText()
	require.NoError(t, err)
	assert.Equal(t, "a\nb\nc\n", text)
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "present.glsl")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	assert.True(t, New(file).Exists())
	assert.False(t, New(filepath.Join(dir, "absent.glsl")).Exists())
}
