package api

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/dgallion1/lawgest/internal/export"
	"github.com/go-chi/chi/v5"
)

// exportFilename is the download name of an exported run.
const exportFilename = "qa_results.docx"

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.deps.Runs.Get(r.Context(), chi.URLParam(r, "runID"))
	if err != nil {
		s.fail(w, r, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleLatestRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.deps.Runs.Latest(r.Context(), chi.URLParam(r, "uploadID"))
	if err != nil {
		s.fail(w, r, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleExportRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.deps.Runs.Get(r.Context(), chi.URLParam(r, "runID"))
	if err != nil {
		s.fail(w, r, err, http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteDOCX(&buf, run.Results); err != nil {
		s.fail(w, r, err, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+exportFilename)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
