package search

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/kk-code-lab/peek/internal/buffer"
	"github.com/kk-code-lab/peek/internal/textutil"
)

var ErrPatternCompile = errors.New("invalid search pattern")

// Span is a half-open range of display columns within an expanded line.
type Span struct {
	Start int
	End   int
}

type Match struct {
	Line int
	Span Span
}

type Direction int

const (
	Forward Direction = iota
	Backward
)

// Searcher finds regex matches over a line store. A failed compile keeps the
// previously active pattern so an incremental edit never loses state.
type Searcher struct {
	store    *buffer.Store
	tabWidth int
	re       *regexp.Regexp
	pattern  string
	wrapScan bool
}

func New(store *buffer.Store, tabWidth int) *Searcher {
	return &Searcher{store: store, tabWidth: tabWidth}
}

// SetWrapScan chooses whether Find continues from the opposite end of the
// buffer after reaching an edge.
func (s *Searcher) SetWrapScan(on bool) {
	s.wrapScan = on
}

func (s *Searcher) Pattern() string {
	return s.pattern
}

func (s *Searcher) Active() bool {
	return s.re != nil
}

// SetPattern compiles text as the active pattern. An empty string clears the
// search; a compile failure returns ErrPatternCompile and leaves the prior
// pattern in effect.
func (s *Searcher) SetPattern(text string) error {
	if text == "" {
		s.re = nil
		s.pattern = ""
		return nil
	}
	re, err := regexp.Compile(text)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPatternCompile, err)
	}
	s.re = re
	s.pattern = text
	return nil
}

// Find returns the first matching line strictly after (Forward) or before
// (Backward) the from index. With wrap scan enabled the scan continues from
// the opposite end of the buffer; otherwise it stops at the edge.
func (s *Searcher) Find(dir Direction, from int) (Match, bool) {
	if s.re == nil || s.store.Len() == 0 {
		return Match{}, false
	}
	n := s.store.Len()
	if dir == Forward {
		for i := from + 1; i < n; i++ {
			if m, ok := s.lineMatch(i); ok {
				return m, true
			}
		}
		if s.wrapScan {
			for i := 0; i <= from && i < n; i++ {
				if m, ok := s.lineMatch(i); ok {
					return m, true
				}
			}
		}
		return Match{}, false
	}

	start := from - 1
	if start >= n {
		start = n - 1
	}
	for i := start; i >= 0; i-- {
		if m, ok := s.lineMatch(i); ok {
			return m, true
		}
	}
	if s.wrapScan {
		for i := n - 1; i >= from && i >= 0; i-- {
			if m, ok := s.lineMatch(i); ok {
				return m, true
			}
		}
	}
	return Match{}, false
}

// Matches reports every match span within a single line as display columns.
func (s *Searcher) Matches(line string) []Span {
	if s.re == nil {
		return nil
	}
	locs := s.re.FindAllStringIndex(line, -1)
	if len(locs) == 0 {
		return nil
	}
	spans := make([]Span, 0, len(locs))
	for _, loc := range locs {
		start, end := textutil.ColumnSpan(line, loc[0], loc[1], s.tabWidth)
		spans = append(spans, Span{Start: start, End: end})
	}
	return spans
}

func (s *Searcher) lineMatch(i int) (Match, bool) {
	text, err := s.store.Get(i)
	if err != nil {
		return Match{}, false
	}
	loc := s.re.FindStringIndex(text)
	if loc == nil {
		return Match{}, false
	}
	start, end := textutil.ColumnSpan(text, loc[0], loc[1], s.tabWidth)
	return Match{Line: i, Span: Span{Start: start, End: end}}, true
}
