package handler

import (
	"encoding/json"
	"net/http"

	dErrors "laurel/pkg/domain-errors"
)

type errorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps coded errors onto HTTP statuses. Uncoded errors are
// treated as internal.
func writeError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	writeJSON(w, statusFor(code), errorResponse{
		Error:            string(code),
		ErrorDescription: dErrors.Message(err),
	})
}

func statusFor(code dErrors.Code) int {
	switch code {
	case dErrors.CodeBadRequest:
		return http.StatusBadRequest
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
