package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/rocketscienceinc/droptoken-backend/internal/apperror"
)

var statusByCode = map[string]int{
	apperror.ErrGameNotFound.Code:   http.StatusNotFound,
	apperror.ErrMoveNotFound.Code:   http.StatusNotFound,
	apperror.ErrInvalidColumn.Code:  http.StatusBadRequest,
	apperror.ErrInvalidPlayer.Code:  http.StatusNotFound,
	apperror.ErrNotPlayersTurn.Code: http.StatusConflict,
	apperror.ErrColumnFull.Code:     http.StatusBadRequest,
	apperror.ErrGameIsDone.Code:     http.StatusGone,
	apperror.ErrPlayerNotFound.Code: http.StatusNotFound,
	apperror.ErrBadRequest.Code:     http.StatusBadRequest,
	apperror.ErrConflict.Code:       http.StatusServiceUnavailable,
}

const codeInternal = "internal_error"

type errorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error,omitempty"`
}

// requestError is a malformed request. It unwraps to apperror.ErrBadRequest.
type requestError struct {
	message string
}

func (that *requestError) Error() string {
	return that.message
}

func (that *requestError) Unwrap() error {
	return apperror.ErrBadRequest
}

func validationError(field, kind string) error {
	return &requestError{message: fmt.Sprintf("Validation Error: %s must be of type %s", field, kind)}
}

func missingParamError(field string) error {
	return &requestError{message: "param is missing or the value is empty: " + field}
}

// statusOf maps an error to its response status and code.
func statusOf(err error) (int, string) {
	code := apperror.CodeOf(err)

	status, ok := statusByCode[code]
	if !ok {
		return http.StatusInternalServerError, codeInternal
	}

	return status, code
}

func (that *handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusOf(err)

	response := errorResponse{Code: code}

	var reqErr *requestError
	if errors.As(err, &reqErr) {
		response.Error = reqErr.message
	}

	log := that.logger.With("method", "writeError", "http_method", r.Method, "path", r.URL.Path, "status", status)
	if status >= http.StatusInternalServerError {
		log.Error("request failed", "error", err)
	} else {
		log.Debug("request rejected", "error", err)
	}

	writeJSON(w, status, response)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Default().Error("failed to write response", "error", err)
	}
}
