package state

import (
	"github.com/kk-code-lab/peek/internal/search"
)

const msgPatternNotFound = "pattern not found"

// StateReducer applies Actions to a SessionState. It is the single writer of
// session state; the app loop renders after every successful reduction.
type StateReducer struct{}

func NewStateReducer() *StateReducer {
	return &StateReducer{}
}

func (r *StateReducer) Reduce(st *SessionState, action Action) (*SessionState, error) {
	switch a := action.(type) {

	case MoveDownAction:
		st.scrollDown(a.Lines)
	case MoveUpAction:
		st.scrollUp(a.Lines)
	case MoveDownHalfPagesAction:
		st.scrollDown(a.Pages * halfPage(st.PaneHeight))
	case MoveUpHalfPagesAction:
		st.scrollUp(a.Pages * halfPage(st.PaneHeight))
	case MoveDownPagesAction:
		st.scrollDown(a.Pages * st.PaneHeight)
	case MoveUpPagesAction:
		st.scrollUp(a.Pages * st.PaneHeight)
	case MoveToTopAction:
		st.TopLine, st.TopSubrow = 0, 0
	case MoveToBottomAction:
		st.TopLine, st.TopSubrow = st.maxTopPosition()
	case MoveToLineAction:
		st.TopLine, st.TopSubrow = a.Number-1, 0
		st.clampVertical()

	case MoveLeftAction:
		st.scrollLeft(a.Columns)
	case MoveRightAction:
		st.scrollRight(a.Columns)
	case MoveLeftHalfPagesAction:
		st.scrollLeft(a.Pages * halfPage(st.TextWidth()))
	case MoveRightHalfPagesAction:
		st.scrollRight(a.Pages * halfPage(st.TextWidth()))
	case MoveToHeadOfLineAction:
		if !st.WrapEnabled {
			st.LeftColumn = 0
		}
	case MoveToEndOfLineAction:
		if !st.WrapEnabled {
			st.LeftColumn = st.MaxLeftColumn()
		}

	case ToggleLineNumbersAction:
		st.ShowLineNumbers = !st.ShowLineNumbers
		st.clampVertical()
		st.clampHorizontal()
	case ToggleWrapAction:
		st.WrapEnabled = !st.WrapEnabled
		st.LeftColumn = 0
		st.clampVertical()
	case IncrementHeightAction:
		st.setPaneHeight(st.PaneHeight + a.Delta)
	case DecrementHeightAction:
		st.setPaneHeight(st.PaneHeight - a.Delta)
	case SetHeightAction:
		st.setPaneHeight(a.Height)
	case ResizeAction:
		st.PaneWidth = a.Width
		st.TermHeight = a.Height
		st.setPaneHeight(st.PaneHeight)

	case SearchIncrementalAction:
		r.searchIncremental(st, a.Pattern)
	case SearchTriggerAction:
		st.SearchActive = false
		st.searchSaved = false
		st.Message = ""
	case SearchNextAction:
		r.searchStep(st, search.Forward)
	case SearchPrevAction:
		r.searchStep(st, search.Backward)
	case CancelAction:
		r.cancel(st)

	case ToggleFollowAction:
		st.Follow = !st.Follow
		if st.Follow {
			st.TopLine, st.TopSubrow = st.maxTopPosition()
		}
	case FollowChunkAction:
		wasAtEnd := st.AtEnd()
		st.Store.Append(a.Data)
		if st.Follow && wasAtEnd {
			st.TopLine, st.TopSubrow = st.maxTopPosition()
		}
	case FollowAnomalyAction:
		st.Message = a.Err.Error()

	case MessageAction:
		st.Message = a.Text

	case QuitAction:
		// handled by the app loop
	}
	return st, nil
}

func halfPage(size int) int {
	if size < 2 {
		return 1
	}
	return size / 2
}

func (st *SessionState) scrollDown(n int) {
	if !st.WrapEnabled {
		st.TopLine += n
		st.TopSubrow = 0
		st.clampVertical()
		return
	}
	for i := 0; i < n; i++ {
		if st.TopSubrow+1 < st.lineRows(st.TopLine) {
			st.TopSubrow++
		} else if st.TopLine+1 < st.Store.Len() {
			st.TopLine++
			st.TopSubrow = 0
		} else {
			break
		}
	}
	st.clampVertical()
}

func (st *SessionState) scrollUp(n int) {
	if !st.WrapEnabled {
		st.TopLine -= n
		if st.TopLine < 0 {
			st.TopLine = 0
		}
		st.TopSubrow = 0
		return
	}
	for i := 0; i < n; i++ {
		if st.TopSubrow > 0 {
			st.TopSubrow--
		} else if st.TopLine > 0 {
			st.TopLine--
			st.TopSubrow = st.lineRows(st.TopLine) - 1
		} else {
			break
		}
	}
}

func (st *SessionState) scrollLeft(n int) {
	if st.WrapEnabled {
		return
	}
	st.LeftColumn -= n
	st.clampHorizontal()
}

func (st *SessionState) scrollRight(n int) {
	if st.WrapEnabled {
		return
	}
	st.LeftColumn += n
	st.clampHorizontal()
}

func (st *SessionState) setPaneHeight(h int) {
	max := st.TermHeight - 1
	if max < 1 {
		max = 1
	}
	if h > max {
		h = max
	}
	if h < 1 {
		h = 1
	}
	st.PaneHeight = h
	st.clampVertical()
	st.clampHorizontal()
}

// searchIncremental applies one edit of the search prompt: remember where the
// search started, recompile, and preview-jump to the first match after that
// origin. A compile error shows inline and keeps the previous preview.
func (r *StateReducer) searchIncremental(st *SessionState, pattern string) {
	if !st.searchSaved {
		st.savedTop = st.TopLine
		st.savedSubrow = st.TopSubrow
		st.savedLeft = st.LeftColumn
		st.searchSaved = true
	}
	st.SearchActive = true
	st.SearchInput = pattern

	if err := st.Search.SetPattern(pattern); err != nil {
		st.Message = err.Error()
		return
	}
	st.Message = ""
	if pattern == "" {
		st.TopLine, st.TopSubrow, st.LeftColumn = st.savedTop, st.savedSubrow, st.savedLeft
		st.matchValid = false
		return
	}
	if m, ok := st.Search.Find(search.Forward, st.savedTop-1); ok {
		st.matchLine, st.matchValid = m.Line, true
		st.jumpToLine(m.Line)
	} else {
		st.TopLine, st.TopSubrow, st.LeftColumn = st.savedTop, st.savedSubrow, st.savedLeft
		st.Message = msgPatternNotFound
	}
}

func (r *StateReducer) searchStep(st *SessionState, dir search.Direction) {
	if !st.Search.Active() {
		return
	}
	from := st.TopLine
	if st.matchValid {
		from = st.matchLine
	}
	if m, ok := st.Search.Find(dir, from); ok {
		st.matchLine, st.matchValid = m.Line, true
		st.jumpToLine(m.Line)
		st.Message = ""
	} else {
		st.Message = msgPatternNotFound
	}
}

func (r *StateReducer) cancel(st *SessionState) {
	if st.SearchActive {
		st.TopLine, st.TopSubrow, st.LeftColumn = st.savedTop, st.savedSubrow, st.savedLeft
		st.Search.SetPattern("")
		st.SearchActive = false
		st.searchSaved = false
		st.SearchInput = ""
		st.matchValid = false
		st.clampVertical()
		st.clampHorizontal()
	}
	st.Message = ""
}

func (st *SessionState) jumpToLine(line int) {
	st.TopLine, st.TopSubrow = line, 0
	st.clampVertical()
}
