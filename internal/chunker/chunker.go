package chunker

import (
	"strings"
	"unicode"
)

// Config controls window splitting. Sizes are measured in runes.
type Config struct {
	Size    int // Maximum window length.
	Overlap int // Runes shared between consecutive windows.
}

// DefaultConfig returns the defaults used for legal article text.
func DefaultConfig() Config {
	return Config{
		Size:    500,
		Overlap: 200,
	}
}

// normalize applies defaults to zero values and keeps Overlap below Size.
func (c Config) normalize() Config {
	if c.Size <= 0 {
		c.Size = 500
	}
	if c.Overlap < 0 {
		c.Overlap = 0
	}
	if c.Overlap >= c.Size {
		c.Overlap = c.Size / 2
	}
	return c
}

// Separators tried when looking for a soft cut, most preferred first.
var boundaries = []string{"\n\n", "\n", ". ", "; ", ": ", " "}

// Split breaks text into windows of at most cfg.Size runes, each sharing
// roughly cfg.Overlap runes with its predecessor. Every window is a
// contiguous substring of text with surrounding whitespace trimmed.
func Split(text string, cfg Config) []string {
	cfg = cfg.normalize()

	runes := []rune(text)
	n := len(runes)
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if n <= cfg.Size {
		return []string{strings.TrimSpace(text)}
	}

	var result []string
	start := 0
	for start < n {
		end := start + cfg.Size
		if end >= n {
			appendWindow(&result, runes[start:n])
			break
		}

		lo := start + cfg.Overlap + 1
		if half := start + cfg.Size/2; half > lo {
			lo = half
		}
		cut := softCut(runes, lo, end)
		appendWindow(&result, runes[start:cut])

		next := cut - cfg.Overlap
		if next <= start {
			next = start + 1
		}
		start = alignToWord(runes, next, cut)
	}

	return result
}

// softCut returns the best cut position in (lo, hi]. The cut falls right
// after a boundary separator; hi itself is the hard fallback.
func softCut(runes []rune, lo, hi int) int {
	if lo > hi {
		lo = hi
	}
	window := string(runes[lo:hi])
	for _, sep := range boundaries {
		idx := strings.LastIndex(window, sep)
		if idx < 0 {
			continue
		}
		cut := lo + len([]rune(window[:idx+len(sep)]))
		if cut > lo {
			return cut
		}
	}
	return hi
}

// alignToWord moves pos forward to the start of the next word so an
// overlapping window does not begin mid-word. It never moves past limit.
func alignToWord(runes []rune, pos, limit int) int {
	if pos == 0 || unicode.IsSpace(runes[pos-1]) {
		return pos
	}
	for i := pos; i < limit; i++ {
		if unicode.IsSpace(runes[i]) {
			return i + 1
		}
	}
	return pos
}

func appendWindow(result *[]string, window []rune) {
	s := strings.TrimSpace(string(window))
	if s != "" {
		*result = append(*result, s)
	}
}
