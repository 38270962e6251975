package bridge

import "sort"

// lineTable indexes the line starts of a text so byte offsets can be
// converted to and from the 1-based (line, column) positions used inside
// position-map artifacts. Columns are byte columns. The conversion at
// this boundary must be exact: an off-by-one here shifts every
// translated result in the system.
type lineTable struct {
	text   string
	starts []int // byte offset of each line start
}

func newLineTable(text string) *lineTable {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &lineTable{text: text, starts: starts}
}

// position converts a byte offset to a 1-based (line, col) pair. Offsets
// outside [0, len(text)] are clamped.
func (t *lineTable) position(offset int) (line, col int) {
	if offset < 0 {
		offset = 0
	}
	if offset > len(t.text) {
		offset = len(t.text)
	}
	// First line start greater than offset; the line is the one before.
	i := sort.SearchInts(t.starts, offset+1)
	line = i // 1-based because t.starts[0] == 0 always matches
	col = offset - t.starts[line-1] + 1
	return line, col
}

// offset converts a 1-based (line, col) pair to a byte offset, clamping
// to the line's bounds. A column one past the last character addresses
// the line's end.
func (t *lineTable) offset(line, col int) int {
	if line < 1 {
		return 0
	}
	if line > len(t.starts) {
		return len(t.text)
	}
	start := t.starts[line-1]
	end := len(t.text)
	if line < len(t.starts) {
		end = t.starts[line] - 1 // before the newline
	}
	off := start + col - 1
	if off < start {
		return start
	}
	if off > end {
		return end
	}
	return off
}

// lineCount returns the number of lines.
func (t *lineTable) lineCount() int {
	return len(t.starts)
}
