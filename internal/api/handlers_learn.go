package api

import (
	"fmt"
	"net/http"

	"github.com/dgallion1/lawgest/internal/parser"
	"github.com/dgallion1/lawgest/internal/storage"
	"github.com/go-chi/chi/v5"
)

type learnRequest struct {
	UploadID string `json:"upload_id"`
}

// handleLearn queues a law upload for segmentation and indexing.
func (s *Server) handleLearn(w http.ResponseWriter, r *http.Request) {
	var req learnRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.UploadID == "" {
		jsonError(w, "upload_id is required", http.StatusBadRequest)
		return
	}

	up, err := s.deps.Uploads.Get(r.Context(), req.UploadID)
	if err != nil {
		s.fail(w, r, err, http.StatusInternalServerError)
		return
	}
	if up.Kind != storage.KindLaw {
		jsonError(w, fmt.Sprintf("only %s uploads can be learned", storage.KindLaw), http.StatusBadRequest)
		return
	}
	if !parser.IsOfficeDocument(up.Filename) {
		jsonError(w, "only PDF and DOCX files are supported", http.StatusBadRequest)
		return
	}

	job, err := s.deps.Jobs.Submit(up.ID, up.Filename)
	if err != nil {
		s.fail(w, r, err, http.StatusServiceUnavailable)
		return
	}

	snap := job.Snapshot()
	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":    snap.ID,
		"upload_id": snap.UploadID,
		"status":    snap.Status,
		"poll_url":  fmt.Sprintf("/api/learn/%s/status", snap.ID),
	})
}

func (s *Server) handleLearnStatus(w http.ResponseWriter, r *http.Request) {
	job := s.deps.Jobs.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}
