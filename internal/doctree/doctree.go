package doctree

import (
	"fmt"
	"strings"
)

// Unit names how a loader divided the document.
type Unit string

const (
	UnitPage      Unit = "page"
	UnitParagraph Unit = "paragraph"
)

// Document is a loaded source file as an ordered list of units: pages for
// PDF, paragraphs for everything else.
type Document struct {
	Title string   // Document title (from metadata or filename)
	Unit  Unit     // What each entry of Units represents
	Units []string // Unit text in source order; may contain empty entries
}

// Len returns the number of units, counting empty ones.
func (d *Document) Len() int {
	return len(d.Units)
}

// Text joins all units into the full document text.
func (d *Document) Text() string {
	return strings.Join(d.Units, "\n")
}

// Select returns the physical lines of units start..end, 1-indexed and
// inclusive. An out-of-range request returns a *RangeError.
func (d *Document) Select(start, end int) ([]string, error) {
	total := len(d.Units)
	if start < 1 || start > total || end < start || end > total {
		return nil, &RangeError{Start: start, End: end, Total: total, Unit: d.Unit}
	}

	var lines []string
	for _, u := range d.Units[start-1 : end] {
		if u == "" {
			continue
		}
		lines = append(lines, strings.Split(u, "\n")...)
	}
	return lines, nil
}

// RangeError reports a unit range outside 1..Total.
type RangeError struct {
	Start int
	End   int
	Total int
	Unit  Unit
}

func (e *RangeError) Error() string {
	if e.Start < 1 || e.Start > e.Total {
		return fmt.Sprintf("start %s %d is out of range (1-%d)", e.Unit, e.Start, e.Total)
	}
	return fmt.Sprintf("end %s %d is out of range (%d-%d)", e.Unit, e.End, e.Start, e.Total)
}
