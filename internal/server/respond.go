package server

import (
	"encoding/json"
	"net/http"

	"github.com/labelsmith/labelsmith/pkg/errors"
)

type errorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(payload)
}

// writeError maps an error's code to an HTTP status. Errors without a
// code are treated as internal.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	status := statusForCode(code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "code", code, "err", err)
	}
	writeJSON(w, status, errorResponse{Code: string(code), Error: errors.UserMessage(err)})
}

func statusForCode(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidAction, errors.ErrCodeInvalidItemType, errors.ErrCodeInvalidTarget,
		errors.ErrCodeInvalidPayload, errors.ErrCodeInvalidMedia, errors.ErrCodeInvalidFormat,
		errors.ErrCodeUnsupported:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeItemNotFound, errors.ErrCodeSessionNotFound,
		errors.ErrCodeLayoutNotFound:
		return http.StatusNotFound
	case errors.ErrCodeRenderUnavailable, errors.ErrCodeStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
