package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dgallion1/lawgest/internal/doctree"
	"github.com/dgallion1/lawgest/internal/outline"
	"github.com/dgallion1/lawgest/internal/parser"
	"github.com/dgallion1/lawgest/internal/pipeline"
	"github.com/dgallion1/lawgest/internal/storage"
)

// maxJSONBody caps request bodies on the JSON endpoints.
const maxJSONBody = 1 << 20

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// decodeJSON reads a JSON request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// errorStatus maps domain errors to HTTP status codes. Errors it does not
// recognize get fallback.
func errorStatus(err error, fallback int) int {
	var rangeErr *doctree.RangeError
	switch {
	case errors.As(err, &rangeErr), errors.Is(err, parser.ErrUnsupported):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, outline.ErrEmptyResult):
		return http.StatusUnprocessableEntity
	case errors.Is(err, pipeline.ErrQueueFull):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return fallback
}

// fail writes err as a JSON error, logging server-side failures.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error, fallback int) {
	code := errorStatus(err, fallback)
	if code >= http.StatusInternalServerError {
		s.log.Error("request failed", "path", r.URL.Path, "status", code, "error", err)
	}
	jsonError(w, err.Error(), code)
}
