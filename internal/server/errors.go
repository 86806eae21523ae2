package server

import (
	"encoding/json"
	"net/http"
)

// errorResponse is the JSON body of every non-2xx response.
type errorResponse struct {
	Error string `json:"error"`
}

// Canned error messages. Validation errors are surfaced verbatim; compute
// failures stay opaque and go to the logs instead.
const (
	msgModelNotLoaded = "model not loaded"
	msgEncoderFailed  = "embedding failed"
	msgAnalyzerFailed = "analysis failed"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error":"encoding failed"}`, http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
