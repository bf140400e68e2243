package handlers

import (
	"errors"
	"net/http"

	"gitlab.com/equivcheck-2025.net/internal/handlers/response"
	"gitlab.com/equivcheck-2025.net/internal/static/errs"
)

func ResponseWithJson(w http.ResponseWriter, statusCode int, data interface{}) {
	response.WriteJSON(w, statusCode, data)
}

func ResponseError(w http.ResponseWriter, message string, code int) {
	response.WriteError(w, response.ErrorMessage{
		Message:    message,
		StatusCode: code,
	})
}

// StatusCode maps service errors to HTTP status codes.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, errs.ErrContractNotFound),
		errors.Is(err, errs.ErrCandidateNotFound),
		errors.Is(err, errs.ErrRunNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrRunNotCancellable):
		return http.StatusConflict
	case errors.Is(err, errs.ErrConfiguration):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// ResponseServiceError writes err with its mapped status. Server errors keep
// their detail out of the body.
func ResponseServiceError(w http.ResponseWriter, message string, err error) {
	code := StatusCode(err)
	if code == http.StatusInternalServerError {
		ResponseError(w, message, code)
		return
	}
	ResponseError(w, err.Error(), code)
}
