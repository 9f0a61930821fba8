package textutil

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

const DefaultTabWidth = 4

// Expand rewrites text so every rune has a fixed display width: tabs become
// spaces up to the next tab stop and control characters become visible caret
// escapes (^G, ^?). Column math over the result is invertible.
func Expand(text string, tabWidth int) string {
	if tabWidth <= 0 {
		tabWidth = DefaultTabWidth
	}
	if !needsExpand(text) {
		return text
	}

	var b strings.Builder
	column := 0
	for _, r := range text {
		switch {
		case r == '\t':
			spaces := tabWidth - (column % tabWidth)
			for i := 0; i < spaces; i++ {
				b.WriteByte(' ')
			}
			column += spaces
		case isControl(r):
			b.WriteString(caretEscape(r))
			column += 2
		default:
			b.WriteRune(r)
			column += runewidth.RuneWidth(r)
		}
	}
	return b.String()
}

// CellWidth reports the display width of a single expanded rune: 0 for
// combining marks, 2 for East-Asian wide runes and caret-escaped controls,
// 1 for everything else.
func CellWidth(r rune) int {
	if isControl(r) {
		return 2
	}
	return runewidth.RuneWidth(r)
}

// DisplayWidth reports the printable width of already-expanded text.
func DisplayWidth(text string) int {
	width := 0
	for _, r := range text {
		width += CellWidth(r)
	}
	return width
}

// LineWidth reports the display width of raw line text under the tab policy.
func LineWidth(text string, tabWidth int) int {
	return DisplayWidth(Expand(text, tabWidth))
}

// ColumnSpan converts a byte span within raw line text to display columns.
// Offsets must lie on rune boundaries; out-of-range offsets clamp to the ends.
func ColumnSpan(text string, start, end, tabWidth int) (int, int) {
	if tabWidth <= 0 {
		tabWidth = DefaultTabWidth
	}
	if end < start {
		start, end = end, start
	}

	startCol, endCol := -1, -1
	column := 0
	for i, r := range text {
		if i >= start && startCol < 0 {
			startCol = column
		}
		if i >= end && endCol < 0 {
			endCol = column
		}
		if r == '\t' {
			column += tabWidth - (column % tabWidth)
		} else {
			column += CellWidth(r)
		}
	}
	if startCol < 0 {
		startCol = column
	}
	if endCol < 0 {
		endCol = column
	}
	return startCol, endCol
}

func needsExpand(text string) bool {
	for _, r := range text {
		if r == '\t' || isControl(r) {
			return true
		}
	}
	return false
}

func isControl(r rune) bool {
	return (r < 0x20 && r != '\t') || r == 0x7f
}

func caretEscape(r rune) string {
	if r == 0x7f {
		return "^?"
	}
	return string([]rune{'^', r + 0x40})
}
