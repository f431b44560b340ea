package commons

import (
	"encoding/json"
	"net/http"
	"time"
)

// ErrorBody is the error envelope shared by every endpoint:
// {"timestamp": "...", "error": "NOT_FOUND", "message": "..."}.
type ErrorBody struct {
	Timestamp string `json:"timestamp"`
	Error     string `json:"error"`
	Message   string `json:"message"`
}

func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func WriteError(w http.ResponseWriter, status int, code string, message string) {
	WriteJSON(w, status, ErrorBody{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Error:     code,
		Message:   message,
	})
}
