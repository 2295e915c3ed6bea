package parser

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/lawgest/internal/doctree"
	"golang.org/x/text/unicode/norm"
)

// Parser converts raw document bytes into an ordered list of units.
type Parser interface {
	Parse(r io.Reader, filename string) (*doctree.Document, error)
}

// ErrUnsupported is returned by ForFile for unknown extensions.
var ErrUnsupported = errors.New("unsupported file extension")

// SupportedExtensions lists file extensions this service can load.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// IsOfficeDocument reports whether filename is a .pdf or .docx file, the
// only formats accepted for learning and review.
func IsOfficeDocument(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf", ".docx":
		return true
	}
	return false
}

func trimExt(filename string, exts ...string) string {
	for _, ext := range exts {
		if strings.HasSuffix(strings.ToLower(filename), ext) {
			return filename[:len(filename)-len(ext)]
		}
	}
	return filename
}

// nfc composes decomposed Vietnamese diacritics so heading patterns such as
// "Điều" match text produced by PDF and Word exporters.
func nfc(s string) string {
	return norm.NFC.String(s)
}
