package textutil

import "strings"

// Row is one display row produced by projecting a logical line: the text to
// draw, its display width, and the display column of its first cell within
// the expanded line.
type Row struct {
	Start int
	Text  string
	Width int
}

// Project divides a logical line into display rows of at most paneWidth
// columns by greedy packing. A double-width rune that would straddle the
// boundary moves whole to the next row; zero-width runes stay with the rune
// they follow. An empty line projects to a single empty row.
func Project(text string, paneWidth, tabWidth int) []Row {
	expanded := Expand(text, tabWidth)
	if paneWidth <= 0 {
		return []Row{{Start: 0, Text: "", Width: 0}}
	}

	var rows []Row
	var b strings.Builder
	start, width := 0, 0
	for _, r := range expanded {
		w := CellWidth(r)
		if w > 0 && width+w > paneWidth && width > 0 {
			rows = append(rows, Row{Start: start, Text: b.String(), Width: width})
			start += width
			b.Reset()
			width = 0
		}
		b.WriteRune(r)
		width += w
	}
	rows = append(rows, Row{Start: start, Text: b.String(), Width: width})
	return rows
}

// RowCount reports len(Project(text, paneWidth, tabWidth)) without building
// the row strings.
func RowCount(text string, paneWidth, tabWidth int) int {
	expanded := Expand(text, tabWidth)
	if paneWidth <= 0 {
		return 1
	}
	rows, width := 1, 0
	for _, r := range expanded {
		w := CellWidth(r)
		if w > 0 && width+w > paneWidth && width > 0 {
			rows++
			width = 0
		}
		width += w
	}
	return rows
}

// Clip returns the horizontal slice of a logical line visible in a pane of
// paneWidth columns scrolled left columns to the right. Runes straddling
// either edge are excluded, so Row.Start may exceed left by one column when
// a double-width rune crosses the boundary.
func Clip(text string, left, paneWidth, tabWidth int) Row {
	expanded := Expand(text, tabWidth)
	if paneWidth <= 0 || left < 0 {
		return Row{Start: left, Text: "", Width: 0}
	}

	var b strings.Builder
	column, width := 0, 0
	start := -1
	for _, r := range expanded {
		w := CellWidth(r)
		if column < left {
			column += w
			continue
		}
		if width+w > paneWidth {
			break
		}
		if start < 0 {
			start = column
		}
		b.WriteRune(r)
		width += w
		column += w
	}
	if start < 0 {
		start = left
	}
	return Row{Start: start, Text: b.String(), Width: width}
}
