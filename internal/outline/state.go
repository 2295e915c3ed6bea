package outline

import "strings"

// State is the extractor's scanning state: the terms finished so far plus
// the open term, sub-item and detail. The zero value is ready to use.
//
// An open detail always has an open sub-item, and an open sub-item always
// has an open term.
type State struct {
	result []Term
	term   *Term
	sub    *SubItem
	detail *Detail
	lines  int
}

// Feed applies one physical line. Surrounding whitespace is ignored and
// blank lines are skipped.
func (s *State) Feed(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}

	switch Classify(line) {
	case KindTerm:
		s.closeTerm()
		s.term = &Term{Title: line, SubItems: []SubItem{}}
		s.lines++

	case KindSubItem:
		s.ensureTerm()
		s.closeSub()
		s.sub = &SubItem{Title: line, Details: []Detail{}}
		s.lines++

	case KindDetail:
		s.ensureSub()
		s.closeDetail()
		s.detail = &Detail{Title: line, SubDetails: []string{}}
		s.lines++

	case KindSubDetail, KindBullet:
		s.addLeaf(line)

	default:
		s.continueLine(line)
	}
}

// Finish closes every open node and returns the terms in source order.
// The state is reset afterwards.
func (s *State) Finish() ([]Term, error) {
	s.closeTerm()
	out := s.result
	*s = State{}
	if len(out) == 0 {
		return nil, ErrEmptyResult
	}
	return out, nil
}

// Lines reports how many lines have been placed in the tree since the last
// Finish, counting each new node and each appended leaf or continuation.
func (s *State) Lines() int {
	return s.lines
}

// addLeaf places a roman-numeral or dash line. Without an open detail the
// line becomes a title-only detail of the current sub-item.
func (s *State) addLeaf(line string) {
	if s.detail != nil {
		s.detail.SubDetails = append(s.detail.SubDetails, line)
		s.lines++
		return
	}
	s.ensureSub()
	s.sub.Details = append(s.sub.Details, Detail{Title: line, SubDetails: []string{}})
	s.lines++
}

// continueLine appends an unnumbered line to the most specific open node.
func (s *State) continueLine(line string) {
	switch {
	case s.detail != nil && len(s.detail.SubDetails) > 0:
		last := len(s.detail.SubDetails) - 1
		s.detail.SubDetails[last] += " " + line
	case s.detail != nil:
		s.detail.Title += " " + line
	case s.sub != nil:
		s.sub.Title += " " + line
	default:
		s.ensureTerm()
		s.term.Title += " " + line
	}
	s.lines++
}

func (s *State) ensureTerm() {
	if s.term == nil {
		s.term = &Term{Title: PlaceholderTitle, SubItems: []SubItem{}}
	}
}

func (s *State) ensureSub() {
	s.ensureTerm()
	if s.sub == nil {
		s.sub = &SubItem{Title: PlaceholderTitle, Details: []Detail{}}
	}
}

func (s *State) closeDetail() {
	if s.detail == nil {
		return
	}
	s.sub.Details = append(s.sub.Details, *s.detail)
	s.detail = nil
}

func (s *State) closeSub() {
	s.closeDetail()
	if s.sub == nil {
		return
	}
	s.term.SubItems = append(s.term.SubItems, *s.sub)
	s.sub = nil
}

func (s *State) closeTerm() {
	s.closeSub()
	if s.term == nil {
		return
	}
	s.result = append(s.result, *s.term)
	s.term = nil
}
