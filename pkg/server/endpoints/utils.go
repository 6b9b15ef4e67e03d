package endpoints

import (
	"encoding/json"
	"net/http"
)

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithInternalError hides the cause from the client; the caller is
// responsible for logging it server-side.
func respondWithInternalError(w http.ResponseWriter) {
	respondWithError(w, http.StatusInternalServerError, "internal server error")
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}
