package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrTooLarge is returned by Save when the upload exceeds the size limit.
var ErrTooLarge = errors.New("file exceeds upload limit")

// FileStore writes uploads under root/<kind>/.
type FileStore struct {
	root string
}

func NewFileStore(root string) *FileStore {
	return &FileStore{root: root}
}

// SavedFile describes a file written by Save.
type SavedFile struct {
	Path        string
	Size        int64
	ContentHash string
}

// Save copies r into a new file named after filename and returns its path,
// size and SHA-256. At most maxBytes are accepted when maxBytes > 0.
func (s *FileStore) Save(kind Kind, filename string, r io.Reader, maxBytes int64) (SavedFile, error) {
	dir := filepath.Join(s.root, string(kind))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return SavedFile{}, fmt.Errorf("create upload dir: %w", err)
	}

	name := uuid.NewString() + "_" + cleanName(filename)
	path := filepath.Join(dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return SavedFile{}, fmt.Errorf("create upload file: %w", err)
	}

	if maxBytes > 0 {
		r = io.LimitReader(r, maxBytes+1)
	}
	h := sha256.New()
	size, err := io.Copy(io.MultiWriter(f, h), r)
	closeErr := f.Close()
	switch {
	case err != nil:
		err = fmt.Errorf("write upload file: %w", err)
	case closeErr != nil:
		err = fmt.Errorf("close upload file: %w", closeErr)
	case maxBytes > 0 && size > maxBytes:
		err = ErrTooLarge
	}
	if err != nil {
		os.Remove(path)
		return SavedFile{}, err
	}

	return SavedFile{Path: path, Size: size, ContentHash: hex.EncodeToString(h.Sum(nil))}, nil
}

// Open opens a stored file for reading.
func (s *FileStore) Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Remove deletes a stored file. A missing file is not an error.
func (s *FileStore) Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// cleanName keeps the base name and replaces path and control characters.
func cleanName(filename string) string {
	name := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" {
		return "upload"
	}
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == '/' || r == ':' {
			return '_'
		}
		return r
	}, name)
}
