package errors

import (
	"errors"
	"net/http"
)

// HTTPStatus maps an error chain to the status code the service layer should return.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case IsNotFound(err):
		return http.StatusNotFound
	case IsValidation(err):
		return http.StatusBadRequest
	case IsConflict(err):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// UserMessage returns a one-line message safe to render in the console.
// Internal details (SQL, addresses, driver errors) stay in logs only.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr.Message
	}
	return "Internal error"
}
