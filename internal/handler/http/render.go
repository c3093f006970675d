package http

import (
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/MKhiriev/go-trace-keeper/internal/tracelog"
	"github.com/MKhiriev/go-trace-keeper/models"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		writeText(w, http.StatusInternalServerError, tracelog.SerializationErrorMarker)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}

func writeText(w http.ResponseWriter, status int, s string) {
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	}
	w.WriteHeader(status)
	_, _ = io.WriteString(w, s)
}

func errorBody(r *http.Request, msg string) models.ErrorResponse {
	return models.ErrorResponse{Error: msg, TraceID: tracelog.TraceIDFromContext(r.Context())}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, status, errorBody(r, msg))
}
