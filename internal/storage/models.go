package storage

import (
	"fmt"
	"time"

	"github.com/dgallion1/lawgest/internal/outline"
	"github.com/dgallion1/lawgest/internal/qa"
)

// Kind separates the law corpus from internal documents under review.
type Kind string

const (
	KindLaw      Kind = "law"
	KindInternal Kind = "internal"
)

// ParseKind validates a kind name.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindLaw, KindInternal:
		return k, nil
	}
	return "", fmt.Errorf("unknown upload kind %q (want %q or %q)", s, KindLaw, KindInternal)
}

// Upload is a stored source file.
type Upload struct {
	ID          string     `json:"upload_id"`
	Kind        Kind       `json:"kind"`
	Filename    string     `json:"filename"`
	Path        string     `json:"-"`
	Size        int64      `json:"size"`
	ContentHash string     `json:"content_hash"`
	Chunks      int        `json:"chunks"`
	LearnedAt   *time.Time `json:"learned_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Run is one persisted review of a page range.
type Run struct {
	ID           string         `json:"run_id"`
	UploadID     string         `json:"upload_id"`
	StartPage    int            `json:"start_page"`
	EndPage      int            `json:"end_page"`
	Terms        []outline.Term `json:"terms"`
	Results      []qa.Result    `json:"results"`
	ProcessingMs int64          `json:"processing_ms"`
	CreatedAt    time.Time      `json:"created_at"`
}
