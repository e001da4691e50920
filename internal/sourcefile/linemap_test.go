package sourcefile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineMapPositions(t *testing.T) {
	lm := NewLineMap("a\nbc\n\nd")
	assert.Equal(t, []int{0, 2, 5, 6}, lm.positions)
}

func TestOffsetForPosition(t *testing.T) {
	lm := NewLineMap("a\nbc\n\nd")
	assert.Equal(t, 0, lm.OffsetForPosition(0, 0))
	assert.Equal(t, 3, lm.OffsetForPosition(1, 1))
	assert.Equal(t, 6, lm.OffsetForPosition(3, 0))
}

func TestLineRangeForPosition(t *testing.T) {
	lm := NewLineMap("abc\ndef\nghi")

	start, end := lm.LineRangeForPosition(0)
	require.NotNil(t, end)
	assert.Equal(t, 0, start)
	assert.Equal(t, 3, *end)

	start, end = lm.LineRangeForPosition(2)
	assert.Equal(t, 8, start)
	assert.Nil(t, end)
}
