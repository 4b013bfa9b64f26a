package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/park285/chess-session-server/pkg/chessdto"
)

// statusFor maps an error's kind onto the HTTP status it is reported with.
func statusFor(err error) int {
	switch chessdto.KindOf(err) {
	case chessdto.KindNotFound:
		return http.StatusNotFound
	case chessdto.KindPreconditionFailed, chessdto.KindConflict:
		return http.StatusConflict
	case chessdto.KindBadRequest:
		return http.StatusBadRequest
	case chessdto.KindValidationFailed:
		return http.StatusUnprocessableEntity
	case chessdto.KindEngineUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// respondError writes {"error","code"}. Errors outside the domain taxonomy are not echoed.
func respondError(w http.ResponseWriter, err error) {
	body := chessdto.ErrorResponse{Error: "internal server error", Code: string(chessdto.KindInternal)}
	var de chessdto.DomainError
	if errors.As(err, &de) {
		body.Error = de.Error()
		body.Code = string(chessdto.KindOf(err))
	}
	respondJSON(w, statusFor(err), body)
}
