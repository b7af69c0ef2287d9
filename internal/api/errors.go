package api

import "net/http"

// BadRequest writes a 400 error response.
func BadRequest(w http.ResponseWriter, detail string) {
	WriteJSON(w, http.StatusBadRequest, ErrorBody{Code: http.StatusBadRequest, Detail: detail})
}

// Unauthorized writes a 401 error response.
func Unauthorized(w http.ResponseWriter) {
	WriteJSON(w, http.StatusUnauthorized, ErrorBody{Code: http.StatusUnauthorized, Detail: "authentication required"})
}

// NotFound writes a 404 error response.
func NotFound(w http.ResponseWriter, detail string) {
	WriteJSON(w, http.StatusNotFound, ErrorBody{Code: http.StatusNotFound, Detail: detail})
}

// TooLarge writes a 413 error response.
func TooLarge(w http.ResponseWriter, detail string) {
	WriteJSON(w, http.StatusRequestEntityTooLarge, ErrorBody{Code: http.StatusRequestEntityTooLarge, Detail: detail})
}

// UnprocessableEntity writes a 422 error response.
func UnprocessableEntity(w http.ResponseWriter, detail string) {
	WriteJSON(w, http.StatusUnprocessableEntity, ErrorBody{Code: http.StatusUnprocessableEntity, Detail: detail})
}

// Internal writes a 500 error response.
func Internal(w http.ResponseWriter, detail string) {
	WriteJSON(w, http.StatusInternalServerError, ErrorBody{Code: http.StatusInternalServerError, Detail: detail})
}

// BadGateway writes a 502 error response for upstream failures.
func BadGateway(w http.ResponseWriter, detail string) {
	WriteJSON(w, http.StatusBadGateway, ErrorBody{Code: http.StatusBadGateway, Detail: detail})
}
