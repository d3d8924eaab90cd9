package response

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// Response represents a standard API response.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// ErrorBody represents an error in the response.
type ErrorBody struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Meta contains metadata about list responses.
type Meta struct {
	Limit int `json:"limit,omitempty"`
	Total int `json:"total"`
}

// JSON writes a JSON response.
func JSON(w http.ResponseWriter, status int, data interface{}) {
	write(w, status, Response{
		Success: status >= 200 && status < 300,
		Data:    data,
	})
}

// JSONWithMeta writes a JSON response with metadata.
func JSONWithMeta(w http.ResponseWriter, status int, data interface{}, meta *Meta) {
	write(w, status, Response{
		Success: status >= 200 && status < 300,
		Data:    data,
		Meta:    meta,
	})
}

// Error writes an error response.
func Error(w http.ResponseWriter, status int, err interface{}) {
	var errBody *ErrorBody

	switch e := err.(type) {
	case *ErrorBody:
		errBody = e
	case interface{ Error() string }:
		errBody = &ErrorBody{
			Code:    "ERROR",
			Message: e.Error(),
		}
	case string:
		errBody = &ErrorBody{
			Code:    "ERROR",
			Message: e,
		}
	default:
		errBody = &ErrorBody{
			Code:    "UNKNOWN_ERROR",
			Message: "An unknown error occurred",
		}
	}

	write(w, status, Response{
		Success: false,
		Error:   errBody,
	})
}

// Audio writes raw audio bytes.
func Audio(w http.ResponseWriter, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// Created writes a 201 Created response.
func Created(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusCreated, data)
}

// BadRequest writes a 400 Bad Request response.
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, &ErrorBody{
		Code:    "BAD_REQUEST",
		Message: message,
	})
}

// Unauthorized writes a 401 Unauthorized response.
func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnauthorized, &ErrorBody{
		Code:    "UNAUTHORIZED",
		Message: message,
	})
}

// InternalError writes a 500 Internal Server Error response.
func InternalError(w http.ResponseWriter, message string) {
	Error(w, http.StatusInternalServerError, &ErrorBody{
		Code:    "INTERNAL_ERROR",
		Message: message,
	})
}

func write(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
