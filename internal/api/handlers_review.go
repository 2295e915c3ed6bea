package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/dgallion1/lawgest/internal/chunker"
	"github.com/dgallion1/lawgest/internal/doctree"
	"github.com/dgallion1/lawgest/internal/outline"
	"github.com/dgallion1/lawgest/internal/parser"
	"github.com/dgallion1/lawgest/internal/pipeline"
	"github.com/dgallion1/lawgest/internal/segment"
	"github.com/dgallion1/lawgest/internal/storage"
)

type segmentRequest struct {
	UploadID  string `json:"upload_id"`
	ChunkSize int    `json:"chunk_size"`
	Overlap   *int   `json:"overlap"`
}

type rangeRequest struct {
	UploadID  string `json:"upload_id"`
	StartPage int    `json:"start_page"`
	EndPage   int    `json:"end_page"`
}

// loadUpload resolves an upload and parses its stored file. On failure the
// error response has already been written.
func (s *Server) loadUpload(w http.ResponseWriter, r *http.Request, id string) (storage.Upload, *doctree.Document, bool) {
	if id == "" {
		jsonError(w, "upload_id is required", http.StatusBadRequest)
		return storage.Upload{}, nil, false
	}
	up, err := s.deps.Uploads.Get(r.Context(), id)
	if err != nil {
		s.fail(w, r, err, http.StatusInternalServerError)
		return storage.Upload{}, nil, false
	}
	doc, err := pipeline.LoadDocument(s.deps.Files, up, s.cfg.PDFFallbackPdftotext)
	if err != nil {
		s.fail(w, r, err, http.StatusInternalServerError)
		return storage.Upload{}, nil, false
	}
	return up, doc, true
}

// handleSegment returns the chunks a learn job would index, without
// indexing them.
func (s *Server) handleSegment(w http.ResponseWriter, r *http.Request) {
	var req segmentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	// Optional chunk config overrides.
	cfg := chunker.Config{Size: s.cfg.ChunkSize, Overlap: s.cfg.ChunkOverlap}
	if req.ChunkSize > 0 {
		cfg.Size = req.ChunkSize
	}
	if req.Overlap != nil && *req.Overlap >= 0 {
		cfg.Overlap = *req.Overlap
	}

	up, doc, ok := s.loadUpload(w, r, req.UploadID)
	if !ok {
		return
	}
	chunks := segment.Segment(doc.Text(), up.Filename, cfg)
	writeJSON(w, http.StatusOK, map[string]any{
		"upload_id": up.ID,
		"units":     doc.Len(),
		"count":     len(chunks),
		"chunks":    chunks,
	})
}

// handleOutline extracts the term tree of a page or paragraph range.
func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	var req rangeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	up, doc, ok := s.loadUpload(w, r, req.UploadID)
	if !ok {
		return
	}

	terms, err := pipeline.ExtractRange(doc, req.StartPage, req.EndPage)
	if err != nil {
		s.fail(w, r, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"upload_id": up.ID,
		"unit":      doc.Unit,
		"total":     doc.Len(),
		"terms":     terms,
		"questions": outline.Questions(terms),
	})
}

// handleProcess extracts the outline of a range, reviews every question
// against the law corpus and stores the run.
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req rangeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	up, doc, ok := s.loadUpload(w, r, req.UploadID)
	if !ok {
		return
	}
	if !parser.IsOfficeDocument(up.Filename) {
		jsonError(w, "only PDF and DOCX files are supported", http.StatusBadRequest)
		return
	}

	terms, err := pipeline.ExtractRange(doc, req.StartPage, req.EndPage)
	if err != nil {
		s.fail(w, r, err, http.StatusInternalServerError)
		return
	}

	results, err := s.deps.Reviewer.Run(r.Context(), terms)
	if err != nil {
		s.fail(w, r, fmt.Errorf("review: %w", err), http.StatusBadGateway)
		return
	}

	elapsed := time.Since(start)
	run := &storage.Run{
		UploadID:     up.ID,
		StartPage:    req.StartPage,
		EndPage:      req.EndPage,
		Terms:        terms,
		Results:      results,
		ProcessingMs: elapsed.Milliseconds(),
	}
	if err := s.deps.Runs.Create(r.Context(), run); err != nil {
		s.fail(w, r, err, http.StatusInternalServerError)
		return
	}

	s.log.Info("review stored", "run_id", run.ID, "upload_id", up.ID, "questions", len(results), "duration_ms", run.ProcessingMs)
	writeJSON(w, http.StatusOK, map[string]any{
		"run_id":          run.ID,
		"upload_id":       up.ID,
		"terms":           terms,
		"results":         results,
		"processing_time": elapsed.Seconds(),
	})
}
