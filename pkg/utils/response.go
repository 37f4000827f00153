package utils

import (
	"encoding/json"
	"net/http"

	"github.com/zhouzirui/kelly-poet/backend/pkg/log"
)

// RespondJSON writes payload as a JSON response.
func RespondJSON(w http.ResponseWriter, r *http.Request, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.FromCtx(r.Context()).Error().Err(err).Msg("failed to encode response")
	}
}

// RespondError writes an {"error": message} JSON response.
func RespondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	RespondJSON(w, r, status, map[string]string{"error": message})
}
