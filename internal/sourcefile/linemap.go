package sourcefile

// LineMap records the byte offset at which each line of a text begins,
// supporting translation between LSP (line, character) positions and
// byte offsets.
type LineMap struct {
	positions []int
}

// NewLineMap scans source once, recording offset 0 and the offset
// immediately after every '\n'.
func NewLineMap(source string) *LineMap {
	positions := []int{0}
	for i, ch := range source {
		if ch == '\n' {
			positions = append(positions, i+1)
		}
	}
	return &LineMap{positions: positions}
}

// OffsetForPosition converts a zero-based (line, character) pair to a
// byte offset into the original source.
func (m *LineMap) OffsetForPosition(line, character uint32) int {
	return m.positions[line] + int(character)
}

// LineRangeForPosition returns the byte offset of the start of the line
// containing position, and the offset of its last byte (end is nil for
// the final line, which has no terminating newline to exclude).
func (m *LineMap) LineRangeForPosition(line uint32) (start int, end *int) {
	start = m.positions[line]
	if int(line)+1 >= len(m.positions) {
		return start, nil
	}
	e := m.positions[line+1] - 1
	return start, &e
}
