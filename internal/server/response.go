package server

import (
	"encoding/json"
	"net/http"

	"survey-sync/internal/common/errors"
)

// Response is the JSON envelope for every API reply.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
}

// ErrorBody carries the machine-readable error code alongside the message.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

func writeSuccess(w http.ResponseWriter, status int, message string, data interface{}) {
	writeJSON(w, status, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func writeError(w http.ResponseWriter, err error) {
	code := string(errors.CodeOf(err))
	if code == "" {
		code = "INTERNAL_ERROR"
	}
	writeJSON(w, errors.HTTPStatus(err), Response{
		Success: false,
		Error: &ErrorBody{
			Code:    code,
			Message: errors.UserMessage(err),
		},
	})
}
