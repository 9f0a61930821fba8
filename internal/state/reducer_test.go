package state

import (
	"fmt"
	"strings"
	"testing"

	"github.com/kk-code-lab/peek/internal/buffer"
	"github.com/kk-code-lab/peek/internal/search"
)

func newTestState(lines ...string) *SessionState {
	store := buffer.New()
	for _, line := range lines {
		store.Append([]byte(line + "\n"))
	}
	st := NewSessionState(store, search.New(store, 4))
	st.PaneHeight = 5
	st.PaneWidth = 20
	st.TermHeight = 24
	return st
}

func numberedLines(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("line %d", i+1)
	}
	return out
}

func reduce(t *testing.T, st *SessionState, actions ...Action) {
	t.Helper()
	r := NewStateReducer()
	for _, a := range actions {
		if _, err := r.Reduce(st, a); err != nil {
			t.Fatalf("Reduce(%T): %v", a, err)
		}
	}
}

func TestVerticalMovementClamps(t *testing.T) {
	st := newTestState(numberedLines(20)...)

	reduce(t, st, MoveUpAction{Lines: 3})
	if st.TopLine != 0 {
		t.Errorf("scroll up at top moved to %d", st.TopLine)
	}

	reduce(t, st, MoveDownAction{Lines: 100})
	if st.TopLine != 15 {
		t.Errorf("scroll down past end: top = %d, want 15", st.TopLine)
	}
	if !st.AtEnd() {
		t.Error("not at end after clamping to bottom")
	}

	reduce(t, st, MoveDownAction{Lines: 1})
	if st.TopLine != 15 {
		t.Errorf("scroll down at bottom moved to %d", st.TopLine)
	}
}

func TestPageAndHalfPageSteps(t *testing.T) {
	st := newTestState(numberedLines(40)...)

	reduce(t, st, MoveDownPagesAction{Pages: 2})
	if st.TopLine != 10 {
		t.Errorf("two pages down: top = %d, want 10", st.TopLine)
	}
	reduce(t, st, MoveUpHalfPagesAction{Pages: 1})
	if st.TopLine != 8 {
		t.Errorf("half page up: top = %d, want 8", st.TopLine)
	}
}

func TestMoveToLineClamps(t *testing.T) {
	st := newTestState(numberedLines(20)...)

	reduce(t, st, MoveToLineAction{Number: 7})
	if st.TopLine != 6 {
		t.Errorf("goto 7: top = %d, want 6", st.TopLine)
	}
	reduce(t, st, MoveToLineAction{Number: 9999})
	if st.TopLine != 15 {
		t.Errorf("goto past end: top = %d, want 15", st.TopLine)
	}
	reduce(t, st, MoveToLineAction{Number: 0})
	if st.TopLine != 0 {
		t.Errorf("goto 0: top = %d, want 0", st.TopLine)
	}
}

func TestTopAndBottom(t *testing.T) {
	st := newTestState(numberedLines(12)...)
	reduce(t, st, MoveToBottomAction{})
	if st.TopLine != 7 || !st.AtEnd() {
		t.Errorf("bottom: top = %d, AtEnd = %v", st.TopLine, st.AtEnd())
	}
	reduce(t, st, MoveToTopAction{})
	if st.TopLine != 0 || st.TopSubrow != 0 {
		t.Errorf("top: position = (%d, %d)", st.TopLine, st.TopSubrow)
	}
}

func TestShortBufferStaysAtTop(t *testing.T) {
	st := newTestState("one", "two")
	reduce(t, st, MoveToBottomAction{}, MoveDownAction{Lines: 5})
	if st.TopLine != 0 || st.TopSubrow != 0 {
		t.Errorf("short buffer scrolled to (%d, %d)", st.TopLine, st.TopSubrow)
	}
}

func TestHorizontalScrollClampsToWidestVisibleLine(t *testing.T) {
	st := newTestState("short", strings.Repeat("x", 50), "tiny")

	reduce(t, st, MoveRightAction{Columns: 1000})
	want := 50 - st.TextWidth()
	if st.LeftColumn != want {
		t.Errorf("left column = %d, want %d", st.LeftColumn, want)
	}
	reduce(t, st, MoveToHeadOfLineAction{})
	if st.LeftColumn != 0 {
		t.Errorf("head of line: left column = %d", st.LeftColumn)
	}
	reduce(t, st, MoveToEndOfLineAction{})
	if st.LeftColumn != want {
		t.Errorf("end of line: left column = %d, want %d", st.LeftColumn, want)
	}
}

func TestHorizontalIgnoredWhileWrapping(t *testing.T) {
	st := newTestState(strings.Repeat("x", 50))
	reduce(t, st, ToggleWrapAction{}, MoveRightAction{Columns: 10})
	if st.LeftColumn != 0 {
		t.Errorf("wrap mode scrolled horizontally to %d", st.LeftColumn)
	}
}

func TestToggleWrapResetsOffsets(t *testing.T) {
	st := newTestState(strings.Repeat("abcdef ", 20))
	reduce(t, st, MoveRightAction{Columns: 10})
	if st.LeftColumn == 0 {
		t.Fatal("setup: expected a horizontal offset")
	}
	reduce(t, st, ToggleWrapAction{})
	if !st.WrapEnabled || st.LeftColumn != 0 {
		t.Errorf("wrap on: enabled = %v, left = %d", st.WrapEnabled, st.LeftColumn)
	}
	reduce(t, st, MoveDownAction{Lines: 1})
	if st.TopSubrow != 1 {
		t.Fatalf("setup: expected subrow 1, got %d", st.TopSubrow)
	}
	reduce(t, st, ToggleWrapAction{})
	if st.WrapEnabled {
		t.Errorf("wrap still enabled after second toggle")
	}
	if rows := st.VisibleRows(); len(rows) == 0 || rows[0].Start != 0 {
		t.Errorf("unwrapped projection honors a dormant subrow: %+v", rows[0])
	}
}

func TestToggleWrapTwiceRestoresState(t *testing.T) {
	st := newTestState(numberedLines(30)...)
	reduce(t, st, MoveDownAction{Lines: 7})
	before := *st
	reduce(t, st, ToggleWrapAction{}, ToggleWrapAction{})
	if st.TopLine != before.TopLine || st.TopSubrow != before.TopSubrow ||
		st.WrapEnabled != before.WrapEnabled || st.LeftColumn != 0 {
		t.Errorf("state after double toggle = (%d, %d, %v, %d), want (%d, %d, %v, 0)",
			st.TopLine, st.TopSubrow, st.WrapEnabled, st.LeftColumn,
			before.TopLine, before.TopSubrow, before.WrapEnabled)
	}
}

func TestToggleWrapTwiceRestoresWrappedSubrow(t *testing.T) {
	st := newTestState(strings.Repeat("x", 100), "tail")
	reduce(t, st, ToggleWrapAction{}, MoveDownAction{Lines: 2})
	if st.TopLine != 0 || st.TopSubrow != 2 {
		t.Fatalf("setup: position = (%d, %d), want (0, 2)", st.TopLine, st.TopSubrow)
	}
	reduce(t, st, ToggleWrapAction{}, ToggleWrapAction{})
	if !st.WrapEnabled || st.TopLine != 0 || st.TopSubrow != 2 {
		t.Errorf("after double toggle = (%d, %d, wrap %v), want (0, 2, wrap true)",
			st.TopLine, st.TopSubrow, st.WrapEnabled)
	}
}

func TestWrappedScrollIsSubrowPrecise(t *testing.T) {
	st := newTestState(strings.Repeat("x", 100), "tail")
	reduce(t, st, ToggleWrapAction{})
	rows := st.lineRows(0)
	if rows < 2 {
		t.Fatalf("setup: long line projects to %d rows", rows)
	}
	reduce(t, st, MoveDownAction{Lines: 1})
	if st.TopLine != 0 || st.TopSubrow != 1 {
		t.Errorf("position = (%d, %d), want (0, 1)", st.TopLine, st.TopSubrow)
	}
	reduce(t, st, MoveToBottomAction{})
	if !st.AtEnd() {
		t.Error("bottom not reached")
	}
	visible := st.VisibleRows()
	if len(visible) != st.PaneHeight {
		t.Errorf("bottom-aligned view has %d rows, want %d", len(visible), st.PaneHeight)
	}
	if last := visible[len(visible)-1]; last.Line != 1 {
		t.Errorf("last visible row is line %d, want 1", last.Line)
	}
}

func TestHeightActionsClamp(t *testing.T) {
	st := newTestState(numberedLines(30)...)
	st.TermHeight = 10

	reduce(t, st, SetHeightAction{Height: 0})
	if st.PaneHeight != 1 {
		t.Errorf("SetHeight(0): height = %d, want 1", st.PaneHeight)
	}
	reduce(t, st, SetHeightAction{Height: 999})
	if st.PaneHeight != 9 {
		t.Errorf("SetHeight(999): height = %d, want terminal-1 = 9", st.PaneHeight)
	}
	reduce(t, st, DecrementHeightAction{Delta: 3})
	if st.PaneHeight != 6 {
		t.Errorf("decrement: height = %d, want 6", st.PaneHeight)
	}
	reduce(t, st, IncrementHeightAction{Delta: 100})
	if st.PaneHeight != 9 {
		t.Errorf("increment clamp: height = %d, want 9", st.PaneHeight)
	}
}

func TestResizeReclampsViewport(t *testing.T) {
	st := newTestState(numberedLines(20)...)
	reduce(t, st, MoveToBottomAction{})
	top := st.TopLine

	reduce(t, st, ResizeAction{Width: 20, Height: 6})
	if st.PaneHeight != 5 {
		t.Errorf("pane height after shrink = %d, want 5", st.PaneHeight)
	}
	reduce(t, st, ResizeAction{Width: 20, Height: 40})
	reduce(t, st, SetHeightAction{Height: 15})
	if st.TopLine >= top && st.TopLine != 5 {
		t.Errorf("taller pane did not pull the top up: top = %d", st.TopLine)
	}
}

func TestFollowChunkSticksToBottomOnlyWhenAtEnd(t *testing.T) {
	st := newTestState(numberedLines(10)...)
	reduce(t, st, ToggleFollowAction{})
	if !st.Follow || !st.AtEnd() {
		t.Fatalf("follow on: follow = %v, AtEnd = %v", st.Follow, st.AtEnd())
	}

	reduce(t, st, FollowChunkAction{Data: []byte("line 11\nline 12\n")})
	if !st.AtEnd() {
		t.Error("append while at end did not keep the view bottom-aligned")
	}
	if st.TopLine != 7 {
		t.Errorf("top = %d, want 7", st.TopLine)
	}

	reduce(t, st, MoveToTopAction{})
	reduce(t, st, FollowChunkAction{Data: []byte("line 13\n")})
	if st.TopLine != 0 {
		t.Errorf("append while scrolled up moved the view to %d", st.TopLine)
	}
	if st.Store.Len() != 13 {
		t.Errorf("store has %d lines, want 13", st.Store.Len())
	}
}

func TestSearchIncrementalPreviewAndCancel(t *testing.T) {
	st := newTestState("alpha", "bravo", "charlie", "delta", "echo", "foxtrot", "golf", "hotel")

	reduce(t, st, SearchIncrementalAction{Pattern: "g"})
	if st.TopLine != 3 {
		t.Errorf("preview jump: top = %d, want bottom-clamped 3", st.TopLine)
	}
	if !containsLine(st.VisibleRows(), 6) {
		t.Error("match line 6 not visible after preview jump")
	}
	if !st.SearchActive || st.SearchInput != "g" {
		t.Errorf("search state: active = %v, input = %q", st.SearchActive, st.SearchInput)
	}

	reduce(t, st, CancelAction{})
	if st.TopLine != 0 {
		t.Errorf("cancel did not revert: top = %d", st.TopLine)
	}
	if st.Search.Active() || st.SearchActive || st.SearchInput != "" {
		t.Error("cancel left search state behind")
	}
}

func TestSearchIncrementalCompileErrorKeepsPosition(t *testing.T) {
	st := newTestState("alpha", "delta", "echo", "foxtrot", "golf", "hotel", "bravo", "india")

	reduce(t, st, SearchIncrementalAction{Pattern: "br"})
	if st.TopLine != 3 {
		t.Fatalf("setup: top = %d, want 3", st.TopLine)
	}
	reduce(t, st, SearchIncrementalAction{Pattern: "br["})
	if st.TopLine != 3 {
		t.Errorf("compile error moved the view to %d", st.TopLine)
	}
	if st.Message == "" {
		t.Error("compile error produced no message")
	}
	if st.Search.Pattern() != "br" {
		t.Errorf("active pattern = %q, want %q", st.Search.Pattern(), "br")
	}
}

func TestSearchTriggerThenNextPrev(t *testing.T) {
	st := newTestState("hit", "miss", "hit", "miss", "hit", "miss", "miss", "miss")

	reduce(t, st, SearchIncrementalAction{Pattern: "hit"}, SearchTriggerAction{})
	if st.SearchActive {
		t.Fatal("trigger left search input active")
	}
	if st.TopLine != 0 {
		t.Fatalf("top = %d, want 0", st.TopLine)
	}

	reduce(t, st, SearchNextAction{})
	if st.TopLine != 2 {
		t.Errorf("next: top = %d, want 2", st.TopLine)
	}
	reduce(t, st, SearchNextAction{})
	reduce(t, st, SearchNextAction{})
	if st.Message != msgPatternNotFound {
		t.Errorf("past last match: message = %q", st.Message)
	}
	reduce(t, st, SearchPrevAction{})
	if st.TopLine != 2 {
		t.Errorf("prev: top = %d, want 2", st.TopLine)
	}
}

func containsLine(rows []DisplayRow, line int) bool {
	for _, row := range rows {
		if row.Line == line {
			return true
		}
	}
	return false
}

func TestSearchNotFoundRevertsPreview(t *testing.T) {
	st := newTestState(numberedLines(10)...)
	reduce(t, st, MoveDownAction{Lines: 1})

	reduce(t, st, SearchIncrementalAction{Pattern: "zzz"})
	if st.TopLine != 1 {
		t.Errorf("no-match preview moved the view to %d", st.TopLine)
	}
	if st.Message != msgPatternNotFound {
		t.Errorf("message = %q, want %q", st.Message, msgPatternNotFound)
	}
}

func TestGutterWidthTiers(t *testing.T) {
	tests := []struct {
		lines int
		want  int
	}{
		{5, 3},
		{99, 3},
		{100, 4},
		{1000, 5},
		{10000, 6},
	}
	for _, tt := range tests {
		st := newTestState(numberedLines(tt.lines)...)
		st.ShowLineNumbers = true
		if got := st.GutterWidth(); got != tt.want {
			t.Errorf("%d lines: gutter = %d, want %d", tt.lines, got, tt.want)
		}
	}
}

func TestVisibleRowsMarksContinuations(t *testing.T) {
	st := newTestState(strings.Repeat("x", 60), "next")
	reduce(t, st, ToggleWrapAction{})
	rows := st.VisibleRows()
	if len(rows) < 3 {
		t.Fatalf("got %d rows", len(rows))
	}
	if !rows[0].First || rows[1].First {
		t.Errorf("continuation flags wrong: %v %v", rows[0].First, rows[1].First)
	}
	last := rows[len(rows)-1]
	if last.Line != 1 || !last.First {
		t.Errorf("last row = %+v, want first row of line 1", last)
	}
}
