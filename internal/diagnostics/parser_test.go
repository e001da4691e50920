package diagnostics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optifine-glsl/mcglsl-lsp/internal/lspdiag"
	"github.com/optifine-glsl/mcglsl-lsp/internal/normpath"
	"github.com/optifine-glsl/mcglsl-lsp/internal/sourcefile"
)

func TestParseNvidiaError(t *testing.T) {
	root := normpath.New("/proj/shaders/final.fsh")
	mapper := sourcefile.NewSourceMapper[normpath.Path](1)
	mapper.GetNum(root)

	p := New("NVIDIA Corporation")
	result := p.Parse("0(9) : error C0000: syntax error, unexpected '}'", root, mapper)

	require.Len(t, result, 1)
	diags := result[root]
	require.Len(t, diags, 1)

	d := diags[0]
	assert.Equal(t, lspdiag.SeverityError, d.Severity)
	assert.Equal(t, "syntax error, unexpected '}'", d.Message)
	assert.Equal(t, uint32(8), d.Range.Start.Line)
	assert.Equal(t, uint32(0), d.Range.Start.Character)
	assert.Equal(t, uint32(8), d.Range.End.Line)
	assert.Equal(t, uint32(1000), d.Range.End.Character)
	assert.Equal(t, "mcglsl", d.Source)
}

func TestParseNvidiaBackMapsSourceNum(t *testing.T) {
	root := normpath.New("/proj/shaders/final.fsh")
	common := normpath.New("/proj/shaders/common.glsl")
	mapper := sourcefile.NewSourceMapper[normpath.Path](2)
	mapper.GetNum(root)
	mapper.GetNum(common)

	p := New("NVIDIA Corporation")
	output := "0(3) : error C0000: syntax error, unexpected INT\n" +
		"1(7) : warning C7022: unrecognized profile specifier"
	result := p.Parse(output, root, mapper)

	require.Len(t, result, 2)
	require.Len(t, result[root], 1)
	require.Len(t, result[common], 1)
	assert.Equal(t, lspdiag.SeverityWarning, result[common][0].Severity)
	assert.Equal(t, uint32(6), result[common][0].Range.Start.Line)
}

func TestParseNvidiaUnknownSourceFallsBackToRoot(t *testing.T) {
	root := normpath.New("/proj/shaders/final.fsh")
	mapper := sourcefile.NewSourceMapper[normpath.Path](1)
	mapper.GetNum(root)

	p := New("NVIDIA Corporation")
	result := p.Parse("42(1) : error C0000: bad things", root, mapper)

	require.Len(t, result, 1)
	require.Len(t, result[root], 1)
}

func TestParseDefaultVendor(t *testing.T) {
	root := normpath.New("/proj/shaders/final.fsh")
	common := normpath.New("/proj/shaders/common.glsl")
	mapper := sourcefile.NewSourceMapper[normpath.Path](2)
	mapper.GetNum(root)
	mapper.GetNum(common)

	p := New("AMD")
	output := "ERROR: 1:5: 'assign' : cannot convert from 'const int' to 'float'\n" +
		"WARNING: 0:2: 'x' : unused variable\n" +
		"some unrelated driver chatter"
	result := p.Parse(output, root, mapper)

	require.Len(t, result, 2)
	require.Len(t, result[common], 1)
	assert.Equal(t, lspdiag.SeverityError, result[common][0].Severity)
	assert.Equal(t, uint32(4), result[common][0].Range.Start.Line)
	assert.Equal(t, "cannot convert from 'const int' to 'float'", result[common][0].Message)

	require.Len(t, result[root], 1)
	assert.Equal(t, lspdiag.SeverityWarning, result[root][0].Severity)
}

func TestParseIgnoresNonMatchingLines(t *testing.T) {
	root := normpath.New("/proj/shaders/final.fsh")
	mapper := sourcefile.NewSourceMapper[normpath.Path](1)
	mapper.GetNum(root)

	p := New("NVIDIA Corporation")
	result := p.Parse("compilation complete\n\n", root, mapper)
	assert.Empty(t, result)
}

func TestBackFillAddsEmptyEntries(t *testing.T) {
	root := normpath.New("/proj/shaders/final.fsh")
	common := normpath.New("/proj/shaders/common.glsl")

	result := map[normpath.Path][]lspdiag.Diagnostic{
		root: {{Message: "boom"}},
	}
	filled := BackFill(result, []normpath.Path{root, common})

	require.Len(t, filled, 2)
	assert.Len(t, filled[root], 1)
	assert.Empty(t, filled[common])

	_, present := filled[common]
	assert.True(t, present)
}
