package render

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	searchpkg "github.com/kk-code-lab/peek/internal/search"
	statepkg "github.com/kk-code-lab/peek/internal/state"
	textutil "github.com/kk-code-lab/peek/internal/textutil"
)

// Renderer handles all UI rendering
type Renderer struct {
	screen tcell.Screen
}

// NewRenderer creates a new renderer
func NewRenderer(screen tcell.Screen) *Renderer {
	return &Renderer{screen: screen}
}

// Render draws the pane and the message line based on state
func (r *Renderer) Render(st *statepkg.SessionState) {
	r.screen.Clear()

	rows := st.VisibleRows()
	for y := 0; y < st.PaneHeight; y++ {
		if y < len(rows) {
			r.drawRow(st, y, rows[y])
		} else {
			r.screen.SetContent(0, y, '~', nil, tcell.StyleDefault.Dim(true))
		}
	}
	r.drawMessageLine(st)

	r.screen.Show()
}

func (r *Renderer) drawRow(st *statepkg.SessionState, y int, row statepkg.DisplayRow) {
	x := 0
	gutter := st.GutterWidth()
	if gutter > 0 {
		label := ""
		if row.First {
			label = fmt.Sprintf("%*d ", gutter-1, row.Line+1)
		}
		r.drawText(0, y, gutter, label, tcell.StyleDefault.Dim(true))
		x = gutter
	}

	lineWidth := st.LineWidth(row.Line)
	markStyle := tcell.StyleDefault.Dim(true)
	if !st.WrapEnabled {
		// one margin column each side carries the clip marks
		if st.LeftColumn > 0 && lineWidth > 0 {
			r.screen.SetContent(x, y, '+', nil, markStyle)
		}
		x++
	}

	spans := rowSpans(st, row)
	column := row.Start
	for _, ru := range row.Text {
		w := textutil.CellWidth(ru)
		style := tcell.StyleDefault
		if spanCovers(spans, column) {
			style = style.Reverse(true)
		}
		r.screen.SetContent(x, y, ru, nil, style)
		x += w
		column += w
	}

	if lineWidth > row.Start+row.Width {
		markX := st.GutterWidth() + st.TextWidth()
		if !st.WrapEnabled {
			markX++
		}
		r.screen.SetContent(markX, y, '+', nil, markStyle)
	}
}

// rowSpans returns the match spans of the row's logical line, in display
// columns of the expanded line.
func rowSpans(st *statepkg.SessionState, row statepkg.DisplayRow) []searchpkg.Span {
	if !st.Search.Active() {
		return nil
	}
	text, err := st.Store.Get(row.Line)
	if err != nil {
		return nil
	}
	return st.Search.Matches(text)
}

func spanCovers(spans []searchpkg.Span, column int) bool {
	for _, s := range spans {
		if column >= s.Start && column < s.End {
			return true
		}
	}
	return false
}

func (r *Renderer) drawMessageLine(st *statepkg.SessionState) {
	y := st.PaneHeight
	width := st.PaneWidth

	switch {
	case st.SearchActive:
		r.drawText(0, y, width, "/"+st.SearchInput, tcell.StyleDefault)
	case st.Message != "":
		r.drawText(0, y, width, st.Message, tcell.StyleDefault.Reverse(true))
	case st.AtEnd():
		x := r.drawText(0, y, width, "(END)", tcell.StyleDefault.Reverse(true))
		if st.Follow {
			r.drawText(x+1, y, width-x-1, "[following]", tcell.StyleDefault.Dim(true))
		}
	case st.Follow:
		r.drawText(0, y, width, ":[following]", tcell.StyleDefault.Dim(true))
	default:
		r.drawText(0, y, width, ":", tcell.StyleDefault)
	}
}

// drawText draws a string starting at x, advancing by display width, and
// returns the x position after the last cell drawn.
func (r *Renderer) drawText(x, y, maxWidth int, text string, style tcell.Style) int {
	remaining := maxWidth
	for _, ru := range text {
		w := textutil.CellWidth(ru)
		if w > remaining {
			break
		}
		r.screen.SetContent(x, y, ru, nil, style)
		x += w
		remaining -= w
	}
	return x
}
