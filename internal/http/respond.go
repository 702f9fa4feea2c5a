package httpx

import (
	"encoding/json"
	"net/http"
	"time"
)

// envelope is the body of every JSON response the API writes.
type envelope struct {
	Success    bool         `json:"success"`
	StatusCode int          `json:"statusCode"`
	Message    string       `json:"message"`
	Data       any          `json:"data,omitempty"`
	Meta       *listMeta    `json:"meta,omitempty"`
	Errors     []fieldError `json:"errors,omitempty"`
	Path       string       `json:"path,omitempty"`
	RequestID  string       `json:"requestId,omitempty"`
	Timestamp  string       `json:"timestamp"`
}

type listMeta struct {
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// writeJSON writes JSON response with status code.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeData wraps data in the success envelope.
func writeData(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, envelope{
		Success:    true,
		StatusCode: status,
		Message:    message,
		Data:       data,
		Timestamp:  timestamp(),
	})
}

// writeList is writeData plus paging metadata.
func writeList(w http.ResponseWriter, message string, data any, total, limit, offset int) {
	writeJSON(w, http.StatusOK, envelope{
		Success:    true,
		StatusCode: http.StatusOK,
		Message:    message,
		Data:       data,
		Meta:       &listMeta{Total: total, Limit: limit, Offset: offset},
		Timestamp:  timestamp(),
	})
}

func writeNoContent(w http.ResponseWriter, message string) {
	writeData(w, http.StatusOK, message, nil)
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
