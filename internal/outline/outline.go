// Package outline builds a four-level outline (term, sub-item, detail,
// sub-detail) from the numbered lines of a legal document.
//
// Extraction never fails on malformed numbering. Lines that arrive without
// the rank above them are attached to placeholder nodes, and unnumbered
// lines are appended to the most specific open node, so every non-blank
// input line ends up somewhere in the tree.
package outline

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// PlaceholderTitle titles nodes synthesized for orphaned lines.
const PlaceholderTitle = "Không rõ tiêu đề"

// ErrEmptyResult is returned when the input holds no non-blank line.
var ErrEmptyResult = errors.New("outline: empty structured output")

var (
	termPattern      = regexp.MustCompile(`^Điều\s+\d+[.:]`)
	subItemPattern   = regexp.MustCompile(`^\d+\.\d+`)
	detailPattern    = regexp.MustCompile(`^[a-zA-Z]\)`)
	subDetailPattern = regexp.MustCompile(`(?i)^(i{1,3}|iv|v|vi|vii|viii|ix|x)\)`)
)

// Term is a top-level numbered provision ("Điều N.").
type Term struct {
	Title    string    `json:"title"`
	SubItems []SubItem `json:"sub_items"`
}

// SubItem is an "N.M" item within a term.
type SubItem struct {
	Title   string   `json:"title"`
	Details []Detail `json:"details"`
}

// Detail is a lettered "a)" point within a sub-item.
type Detail struct {
	Title      string   `json:"title"`
	SubDetails []string `json:"sub_details"`
}

// LineKind classifies a trimmed, non-blank line.
type LineKind int

const (
	KindContinuation LineKind = iota
	KindTerm
	KindSubItem
	KindDetail
	KindSubDetail
	KindBullet
)

func (k LineKind) String() string {
	switch k {
	case KindTerm:
		return "term"
	case KindSubItem:
		return "sub_item"
	case KindDetail:
		return "detail"
	case KindSubDetail:
		return "sub_detail"
	case KindBullet:
		return "bullet"
	default:
		return "continuation"
	}
}

// Classify reports which rule applies to line. Patterns are checked in
// priority order, so "i)" is a detail while "ii)" is a sub-detail.
func Classify(line string) LineKind {
	switch {
	case termPattern.MatchString(line):
		return KindTerm
	case subItemPattern.MatchString(line):
		return KindSubItem
	case detailPattern.MatchString(line):
		return KindDetail
	case subDetailPattern.MatchString(line):
		return KindSubDetail
	case strings.HasPrefix(line, "- "):
		return KindBullet
	default:
		return KindContinuation
	}
}

// Extract builds the outline for lines in order. It returns ErrEmptyResult
// when no line carries text.
func Extract(lines []string) ([]Term, error) {
	var s State
	for _, line := range lines {
		s.Feed(line)
	}
	return s.Finish()
}

// ExtractReader is Extract over a line stream. Lines have no length limit.
func ExtractReader(r io.Reader) ([]Term, error) {
	br := bufio.NewReader(r)

	var s State
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			s.Feed(line)
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read lines: %w", err)
		}
	}
	return s.Finish()
}
