package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/dgallion1/lawgest/internal/doctree"
)

func TestTextParser_BasicParagraphSplitting(t *testing.T) {
	input := "Điều 1. Phạm vi\n1.1 Nội dung\n\nĐiều 2. Đối tượng\n\nĐiều 3. Hiệu lực"
	p := &TextParser{}
	doc, err := p.Parse(strings.NewReader(input), "quy-che.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if doc.Title != "quy-che" {
		t.Errorf("expected title %q, got %q", "quy-che", doc.Title)
	}
	if doc.Unit != doctree.UnitParagraph {
		t.Errorf("expected unit %q, got %q", doctree.UnitParagraph, doc.Unit)
	}
	want := []string{
		"Điều 1. Phạm vi\n1.1 Nội dung",
		"Điều 2. Đối tượng",
		"Điều 3. Hiệu lực",
	}
	if len(doc.Units) != len(want) {
		t.Fatalf("expected %d units, got %d", len(want), len(doc.Units))
	}
	for i, w := range want {
		if doc.Units[i] != w {
			t.Errorf("unit[%d]: expected %q, got %q", i, w, doc.Units[i])
		}
	}
}

func TestTextParser_EmptyInput(t *testing.T) {
	p := &TextParser{}
	doc, err := p.Parse(strings.NewReader(""), "empty.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "empty" {
		t.Errorf("expected title %q, got %q", "empty", doc.Title)
	}
	if doc.Len() != 0 {
		t.Errorf("expected 0 units for empty input, got %d", doc.Len())
	}
}

func TestTextParser_MultipleBlankLines(t *testing.T) {
	// Multiple consecutive blank lines should not produce empty paragraphs.
	input := "Para one.\n\n\n\nPara two."
	p := &TextParser{}
	doc, err := p.Parse(strings.NewReader(input), "gaps.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Len() != 2 {
		t.Fatalf("expected 2 units, got %d", doc.Len())
	}
}

func TestTextParser_WhitespaceOnlyLines(t *testing.T) {
	input := "Para one.   \n   \nPara two."
	p := &TextParser{}
	doc, err := p.Parse(strings.NewReader(input), "ws.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Len() != 2 {
		t.Fatalf("expected 2 units, got %d", doc.Len())
	}
	if doc.Units[0] != "Para one." {
		t.Errorf("expected trailing spaces trimmed, got %q", doc.Units[0])
	}
}

func TestForFile(t *testing.T) {
	tests := []struct {
		filename string
		wantErr  bool
		office   bool
	}{
		{"luat.docx", false, true},
		{"LUAT.PDF", false, true},
		{"notes.txt", false, false},
		{"readme.md", false, false},
		{"page.htm", false, false},
		{"table.csv", true, false},
		{"noext", true, false},
	}
	for _, tt := range tests {
		p, err := ForFile(tt.filename)
		if tt.wantErr {
			if !errors.Is(err, ErrUnsupported) {
				t.Errorf("%s: expected ErrUnsupported, got %v (parser %T)", tt.filename, err, p)
			}
			if IsSupportedExtension(tt.filename) {
				t.Errorf("%s: expected unsupported extension", tt.filename)
			}
		} else if err != nil {
			t.Errorf("%s: unexpected error: %v", tt.filename, err)
		}
		if got := IsOfficeDocument(tt.filename); got != tt.office {
			t.Errorf("%s: IsOfficeDocument expected %v, got %v", tt.filename, tt.office, got)
		}
	}
}
