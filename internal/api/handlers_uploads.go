package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/lawgest/internal/parser"
	"github.com/dgallion1/lawgest/internal/storage"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
			return
		}
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	kind, err := storage.ParseKind(r.FormValue("kind"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !parser.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	saved, err := s.deps.Files.Save(kind, filename, file, s.cfg.MaxUploadBytes)
	if err != nil {
		s.fail(w, r, fmt.Errorf("save %s: %w", filename, err), http.StatusInternalServerError)
		return
	}

	up := &storage.Upload{
		Kind:        kind,
		Filename:    filename,
		Path:        saved.Path,
		Size:        saved.Size,
		ContentHash: saved.ContentHash,
	}
	// Indexed chunks are keyed by filename, so a law upload replaces any
	// earlier law upload of the same name.
	var replaced []storage.Upload
	if kind == storage.KindLaw {
		if replaced, err = s.sameNameLaws(ctx, filename); err != nil {
			s.deps.Files.Remove(saved.Path)
			s.fail(w, r, err, http.StatusInternalServerError)
			return
		}
	}

	if err := s.deps.Uploads.Create(ctx, up); err != nil {
		s.deps.Files.Remove(saved.Path)
		s.fail(w, r, err, http.StatusInternalServerError)
		return
	}

	for _, old := range replaced {
		if err := s.removeUpload(ctx, old); err != nil {
			s.fail(w, r, fmt.Errorf("replace upload %s: %w", old.ID, err), http.StatusBadGateway)
			return
		}
		s.log.Info("law upload replaced", "old_upload_id", old.ID, "upload_id", up.ID, "filename", filename)
	}

	s.log.Info("file uploaded", "upload_id", up.ID, "kind", kind, "filename", filename, "size", up.Size)
	writeJSON(w, http.StatusCreated, up)
}

func (s *Server) handleListUploads(w http.ResponseWriter, r *http.Request) {
	var kind storage.Kind
	if v := r.URL.Query().Get("kind"); v != "" {
		k, err := storage.ParseKind(v)
		if err != nil {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		kind = k
	}

	uploads, err := s.deps.Uploads.List(r.Context(), kind)
	if err != nil {
		s.fail(w, r, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"uploads": uploads})
}

// handleDeleteUpload removes an upload, its stored file and runs, and for a
// learned law document its indexed chunks.
func (s *Server) handleDeleteUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	up, err := s.deps.Uploads.Get(ctx, chi.URLParam(r, "uploadID"))
	if err != nil {
		s.fail(w, r, err, http.StatusInternalServerError)
		return
	}

	if err := s.removeUpload(ctx, up); err != nil {
		s.fail(w, r, err, http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"upload_id":       up.ID,
		"deleted":         true,
		"index_forgotten": s.indexed(up),
	})
}

func (s *Server) sameNameLaws(ctx context.Context, filename string) ([]storage.Upload, error) {
	laws, err := s.deps.Uploads.List(ctx, storage.KindLaw)
	if err != nil {
		return nil, err
	}
	var out []storage.Upload
	for _, u := range laws {
		if u.Filename == filename {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *Server) indexed(up storage.Upload) bool {
	return up.Kind == storage.KindLaw && up.LearnedAt != nil && s.deps.Index != nil
}

// removeUpload drops up's indexed chunks when it was learned, then its
// record and stored file.
func (s *Server) removeUpload(ctx context.Context, up storage.Upload) error {
	if s.indexed(up) {
		if err := s.deps.Index.Forget(ctx, up.Filename); err != nil {
			return err
		}
	}
	if err := s.deps.Uploads.Delete(ctx, up.ID); err != nil {
		return err
	}
	if err := s.deps.Files.Remove(up.Path); err != nil {
		s.log.Warn("remove upload file", "upload_id", up.ID, "error", err)
	}
	return nil
}

func sanitizeFilename(name string) string {
	// Browsers on Windows may send the full client path.
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." || name == "/" {
		name = "unnamed"
	}
	return name
}
