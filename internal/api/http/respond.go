package http

import (
	"encoding/json"
	"net/http"

	"roomgate-backend/internal/domain"
	"roomgate-backend/internal/logger"
)

// errorEnvelope is the single error body shape for every endpoint:
// {"error": {"code": "...", "message": "..."}}
type errorEnvelope struct {
	Error *domain.Error `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			logger.Error("Failed to encode response", "error", err)
		}
	}
}

// writeError maps any error to the envelope. Non-domain errors are opaque
// 500s; their detail stays in the log, not the response.
func writeError(w http.ResponseWriter, err error) {
	de := domain.AsError(err)
	if de.Code == domain.CodeInternal {
		logger.Error("Request failed", "error", err)
	}
	writeJSON(w, de.Status, errorEnvelope{Error: de})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, domain.NewError(domain.CodeInvalidRequest, http.StatusBadRequest, "malformed request body"))
		return false
	}
	return true
}
