// Package http holds the REST handlers. Handlers only; routes stay in the
// cmd mains.
package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/mathia-edu/mathia/internal/apperr"
)

// All responses use one envelope: {"success": true, "data": ...} or
// {"success": false, "message": ..., "errors": [...]}.

type envelope struct {
	Success bool                `json:"success"`
	Data    any                 `json:"data,omitempty"`
	Message string              `json:"message,omitempty"`
	Errors  []apperr.FieldError `json:"errors,omitempty"`
}

func respond(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Success: true, Data: data})
}

func respondErr(w http.ResponseWriter, err error) {
	status, msg := http.StatusInternalServerError, "internal server error"
	var e *apperr.Error
	if errors.As(err, &e) {
		switch e.Code {
		case apperr.CodeInvalid:
			status, msg = http.StatusBadRequest, e.Message
		case apperr.CodeNotFound:
			status, msg = http.StatusNotFound, e.Message
		case apperr.CodeUnauthorized:
			status, msg = http.StatusUnauthorized, e.Message
		case apperr.CodeForbidden:
			status, msg = http.StatusForbidden, e.Message
		case apperr.CodeConflict:
			status, msg = http.StatusConflict, e.Message
		case apperr.CodeBadGateway:
			status, msg = http.StatusBadGateway, e.Message
		}
	}
	if status == http.StatusInternalServerError {
		// detail stays server-side
		log.Printf("internal error: %v", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Success: false, Message: msg, Errors: apperr.FieldsOf(err)})
}

// decodeJSON rejects malformed bodies with a 400-shaped error.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.Invalid("malformed JSON body")
	}
	return nil
}

// pagination is the meta block for listing endpoints.
type pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	TotalPages int `json:"total_pages"`
	Limit      int `json:"limit"`
}

func newPagination(total, page, limit int) pagination {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	tp := total / limit
	if total%limit != 0 {
		tp++
	}
	return pagination{Total: total, Page: page, TotalPages: tp, Limit: limit}
}
