package webserver

import (
	"encoding/json"
	"net/http"
)

// ErrorResp is the body of every non-2xx API response.
type ErrorResp struct {
	Error      string `json:"error"`
	StatusCode int    `json:"status_code"`
}

// writeJSONResponse writes a JSON response with the specified HTTP status and data.
func writeJSONResponse(w http.ResponseWriter, httpStatus int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// writeErrorResponse sends an error JSON response.
func writeErrorResponse(w http.ResponseWriter, message string, httpStatus int) {
	writeJSONResponse(w, httpStatus, &ErrorResp{Error: message, StatusCode: httpStatus})
}
