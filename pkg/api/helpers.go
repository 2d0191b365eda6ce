package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// Success writes data as JSON with the given status. A nil data writes only
// the status line.
func Success(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// Error writes the error envelope, tagged with the request id chi assigned.
func Error(w http.ResponseWriter, r *http.Request, statusCode int, detail ErrorDetail) {
	resp := ErrorResponse{
		Error:     detail,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if r != nil {
		resp.RequestID = middleware.GetReqID(r.Context())
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(resp)
}
