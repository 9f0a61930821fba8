package state

import (
	"github.com/kk-code-lab/peek/internal/buffer"
	"github.com/kk-code-lab/peek/internal/search"
	"github.com/kk-code-lab/peek/internal/textutil"
)

// SessionState is the whole mutable state of a pager session: the line
// store, the viewport position, the view toggles and the transient search
// and follow status. The reducer is its only writer once the app loop runs.
type SessionState struct {
	Store    *buffer.Store
	Search   *search.Searcher
	TabWidth int

	// Viewport position. TopSubrow indexes a display row within TopLine;
	// it is dormant while wrapping is off (ignored by projection, kept so
	// toggling wrap off and on again restores the position) and any
	// vertical move while unwrapped resets it.
	TopLine    int
	TopSubrow  int
	LeftColumn int

	// Geometry. PaneHeight counts text rows; the message line is extra.
	PaneHeight int
	PaneWidth  int
	TermHeight int

	WrapEnabled     bool
	ShowLineNumbers bool
	Follow          bool

	// Transient UI status.
	SearchInput  string
	SearchActive bool
	Message      string

	savedTop    int
	savedSubrow int
	savedLeft   int
	searchSaved bool

	// Last match the search landed on. Next/prev step from here rather
	// than from the top line, which clamping may hold short of the match.
	matchLine  int
	matchValid bool
}

func NewSessionState(store *buffer.Store, searcher *search.Searcher) *SessionState {
	return &SessionState{
		Store:      store,
		Search:     searcher,
		TabWidth:   textutil.DefaultTabWidth,
		PaneHeight: 10,
		PaneWidth:  80,
		TermHeight: 24,
	}
}

// DisplayRow is one renderable pane row: a slice of a logical line plus the
// bookkeeping the renderer needs for the gutter and extend marks.
type DisplayRow struct {
	Line  int
	Start int
	Text  string
	Width int
	First bool
}

// GutterWidth reports the columns consumed by the line-number gutter,
// including its trailing space, or 0 when line numbers are off.
func (st *SessionState) GutterWidth() int {
	if !st.ShowLineNumbers {
		return 0
	}
	return lineNumberDigits(st.Store.Len()) + 1
}

func lineNumberDigits(n int) int {
	switch {
	case n < 100:
		return 2
	case n < 1000:
		return 3
	case n < 10000:
		return 4
	default:
		return 5
	}
}

// TextWidth reports the columns available to line text: the pane width minus
// the gutter and the extend-mark margin.
func (st *SessionState) TextWidth() int {
	margin := 2
	if st.WrapEnabled {
		margin = 1
	}
	w := st.PaneWidth - st.GutterWidth() - margin
	if w < 1 {
		w = 1
	}
	return w
}

func (st *SessionState) lineRows(i int) int {
	if !st.WrapEnabled {
		return 1
	}
	text, err := st.Store.Get(i)
	if err != nil {
		return 1
	}
	return textutil.RowCount(text, st.TextWidth(), st.TabWidth)
}

// VisibleRows projects the viewport into at most PaneHeight display rows.
func (st *SessionState) VisibleRows() []DisplayRow {
	rows := make([]DisplayRow, 0, st.PaneHeight)
	line, subrow := st.TopLine, st.TopSubrow
	for len(rows) < st.PaneHeight && line < st.Store.Len() {
		text, err := st.Store.Get(line)
		if err != nil {
			break
		}
		if st.WrapEnabled {
			projected := textutil.Project(text, st.TextWidth(), st.TabWidth)
			for ; subrow < len(projected) && len(rows) < st.PaneHeight; subrow++ {
				p := projected[subrow]
				rows = append(rows, DisplayRow{
					Line:  line,
					Start: p.Start,
					Text:  p.Text,
					Width: p.Width,
					First: subrow == 0,
				})
			}
		} else {
			clipped := textutil.Clip(text, st.LeftColumn, st.TextWidth(), st.TabWidth)
			rows = append(rows, DisplayRow{
				Line:  line,
				Start: clipped.Start,
				Text:  clipped.Text,
				Width: clipped.Width,
				First: true,
			})
		}
		line++
		subrow = 0
	}
	return rows
}

// LineWidth reports the full display width of a logical line.
func (st *SessionState) LineWidth(i int) int {
	text, err := st.Store.Get(i)
	if err != nil {
		return 0
	}
	return textutil.LineWidth(text, st.TabWidth)
}

// MaxLeftColumn reports the largest useful horizontal offset: the widest
// visible line's display width minus the text width, 0 when everything fits.
func (st *SessionState) MaxLeftColumn() int {
	if st.WrapEnabled {
		return 0
	}
	widest := 0
	last := st.TopLine + st.PaneHeight
	if last > st.Store.Len() {
		last = st.Store.Len()
	}
	for i := st.TopLine; i < last; i++ {
		if w := st.LineWidth(i); w > widest {
			widest = w
		}
	}
	max := widest - st.TextWidth()
	if max < 0 {
		max = 0
	}
	return max
}

// AtEnd reports whether the final display row of the final line is visible.
func (st *SessionState) AtEnd() bool {
	remaining := st.PaneHeight
	for line := st.TopLine; line < st.Store.Len(); line++ {
		rows := st.lineRows(line)
		if line == st.TopLine && st.WrapEnabled {
			rows -= st.TopSubrow
		}
		remaining -= rows
		if remaining < 0 {
			return false
		}
	}
	return true
}

// maxTopPosition returns the topmost viewport position that keeps the last
// display row bottom-aligned.
func (st *SessionState) maxTopPosition() (int, int) {
	n := st.Store.Len()
	if n == 0 {
		return 0, 0
	}
	need := st.PaneHeight
	line := n - 1
	for {
		rows := st.lineRows(line)
		if rows >= need {
			return line, rows - need
		}
		need -= rows
		if line == 0 {
			return 0, 0
		}
		line--
	}
}

func (st *SessionState) clampVertical() {
	if st.TopLine < 0 {
		st.TopLine = 0
	}
	if st.TopSubrow < 0 {
		st.TopSubrow = 0
	}
	if st.TopLine >= st.Store.Len() {
		st.TopLine, st.TopSubrow = st.maxTopPosition()
		return
	}
	maxLine, maxSubrow := st.maxTopPosition()
	if !st.WrapEnabled {
		// TopSubrow is dormant here; clamp the line only
		if st.TopLine > maxLine {
			st.TopLine = maxLine
		}
		return
	}
	if rows := st.lineRows(st.TopLine); st.TopSubrow >= rows {
		st.TopSubrow = rows - 1
	}
	if st.TopLine > maxLine || (st.TopLine == maxLine && st.TopSubrow > maxSubrow) {
		st.TopLine, st.TopSubrow = maxLine, maxSubrow
	}
}

func (st *SessionState) clampHorizontal() {
	if st.LeftColumn < 0 {
		st.LeftColumn = 0
	}
	if max := st.MaxLeftColumn(); st.LeftColumn > max {
		st.LeftColumn = max
	}
}
