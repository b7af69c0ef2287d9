package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// ErrorBody is the JSON error response shape.
type ErrorBody struct {
	Code   int    `json:"code"`
	Detail string `json:"detail"`
}

// ResultInfo carries pagination metadata for list endpoints.
type ResultInfo struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Count      int `json:"count"`
	TotalCount int `json:"total_count"`
	TotalPages int `json:"total_pages,omitempty"`
}

// Paginated builds a list response that includes result_info for pagination.
func Paginated(result interface{}, info ResultInfo) map[string]interface{} {
	return map[string]interface{}{
		"result":      result,
		"result_info": info,
	}
}

// WriteJSON serialises resp as JSON and writes it to w with the given HTTP status code.
func WriteJSON(w http.ResponseWriter, status int, resp interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// WriteRawJSON writes pre-serialised JSON to w unchanged, preserving the
// upstream body byte-for-byte.
func WriteRawJSON(w http.ResponseWriter, status int, raw json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(raw); err != nil {
		slog.Error("failed to write raw response", "error", err)
	}
}
