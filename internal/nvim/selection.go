package nvim

import (
	"strings"
	"unicode/utf8"
)

// span is a 0-based byte range in the buffer, end column exclusive, in the
// form nvim_buf_set_text expects.
type span struct {
	startRow, startCol int
	endRow, endCol     int
}

// visualState is what Neovim reports about the current or last selection.
type visualState struct {
	mode     string // current mode, e.g. "n", "v", "V"
	lastMode string // visualmode(): mode of the last selection
	markFrom [2]int // '< as (row 1-based, col 0-based)
	markTo   [2]int // '>
	cursorV  []int  // getpos('v'): [bufnum, lnum, col 1-based, off]
	cursor   []int  // getpos('.')
}

const blockwiseMode = "\x16"

func isVisual(mode string) bool {
	return mode == "v" || mode == "V" || mode == blockwiseMode
}

func (s visualState) live() bool {
	return isVisual(s.mode) && len(s.cursorV) >= 3 && len(s.cursor) >= 3
}

// blockwise reports whether the selection that would be resolved is a
// CTRL-V block.
func (s visualState) blockwise() bool {
	if s.live() {
		return s.mode == blockwiseMode
	}
	return s.lastMode == blockwiseMode && s.markFrom[0] > 0
}

// selection resolves the selected span. While a visual mode is active the
// live selection wins over the marks left by the previous one.
func (s visualState) selection(lines [][]byte) (span, bool) {
	if s.live() {
		from := [2]int{s.cursorV[1], s.cursorV[2] - 1}
		to := [2]int{s.cursor[1], s.cursor[2] - 1}
		return selectionSpan(s.mode, from, to, lines)
	}
	return selectionSpan(s.lastMode, s.markFrom, s.markTo, lines)
}

// selectionSpan converts two inclusive positions into a span. Linewise
// selections cover whole lines; the character under the end position is
// included, whatever its width. Blockwise selections have no span.
func selectionSpan(mode string, from, to [2]int, lines [][]byte) (span, bool) {
	if mode == blockwiseMode || from[0] <= 0 || to[0] <= 0 || len(lines) == 0 {
		return span{}, false
	}
	if to[0] < from[0] || (to[0] == from[0] && to[1] < from[1]) {
		from, to = to, from
	}

	startRow, endRow := from[0]-1, to[0]-1
	if startRow >= len(lines) {
		return span{}, false
	}
	pastEnd := endRow >= len(lines)
	if pastEnd {
		endRow = len(lines) - 1
	}

	if mode == "V" {
		return span{startRow, 0, endRow, len(lines[endRow])}, true
	}

	startCol := clampCol(from[1], lines[startRow])
	last := lines[endRow]
	endCol := clampCol(to[1], last)
	if pastEnd {
		endCol = len(last)
	} else if endCol < len(last) {
		_, size := utf8.DecodeRune(last[endCol:])
		endCol += size
	}
	if endRow == startRow && endCol < startCol {
		endCol = startCol
	}
	return span{startRow, startCol, endRow, endCol}, true
}

func clampCol(col int, line []byte) int {
	if col < 0 {
		return 0
	}
	if col > len(line) {
		return len(line)
	}
	return col
}

// text extracts the span from lines.
func (s span) text(lines [][]byte) string {
	if s.startRow == s.endRow {
		return string(lines[s.startRow][s.startCol:s.endCol])
	}

	var b strings.Builder
	b.Write(lines[s.startRow][s.startCol:])
	for row := s.startRow + 1; row < s.endRow; row++ {
		b.WriteByte('\n')
		b.Write(lines[row])
	}
	b.WriteByte('\n')
	b.Write(lines[s.endRow][:s.endCol])
	return b.String()
}

// splitLines turns text into the replacement form of nvim_buf_set_text.
func splitLines(text string) [][]byte {
	parts := strings.Split(text, "\n")
	out := make([][]byte, len(parts))
	for i, p := range parts {
		out[i] = []byte(p)
	}
	return out
}

func joinLines(lines [][]byte) string {
	parts := make([]string, len(lines))
	for i, l := range lines {
		parts[i] = string(l)
	}
	return strings.Join(parts, "\n")
}
