package httpx

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/alemt19/ats-sub001/internal/apperr"
	"github.com/alemt19/ats-sub001/internal/repository"
	"github.com/alemt19/ats-sub001/internal/validation"
)

const internalMessage = "Internal server error"

// fail is the error filter: every handler error ends up here and leaves as a
// failure envelope. Unknown errors are logged and reported as a generic 500.
func (r *Router) fail(w http.ResponseWriter, req *http.Request, err error) {
	status, message, fields := classify(err)
	if status >= http.StatusInternalServerError {
		r.logger.Error("request failed", "error", err, "path", req.URL.Path, "request_id", requestIDFrom(req.Context()))
	}
	if e, ok := apperr.As(err); ok && e.RetryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(e.RetryAfter))
	}
	writeFailure(w, req, status, message, fields)
}

func writeFailure(w http.ResponseWriter, req *http.Request, status int, message string, fields []fieldError) {
	writeJSON(w, status, envelope{
		Success:    false,
		StatusCode: status,
		Message:    message,
		Errors:     fields,
		Path:       req.URL.Path,
		RequestID:  requestIDFrom(req.Context()),
		Timestamp:  timestamp(),
	})
}

func classify(err error) (int, string, []fieldError) {
	var verr *validation.Errors
	if errors.As(err, &verr) {
		fields := make([]fieldError, 0, len(verr.Fields))
		for _, f := range verr.Fields {
			fields = append(fields, fieldError{Field: f.Field, Message: f.Message})
		}
		return verr.StatusCode(), verr.Summary(), fields
	}
	if e, ok := apperr.As(err); ok {
		return kindStatus(e.Kind), e.Message, nil
	}
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "Resource not found", nil
	case errors.Is(err, repository.ErrConflict):
		return http.StatusConflict, "Resource already exists", nil
	case errors.Is(err, repository.ErrInvalidArgument):
		return http.StatusBadRequest, "Invalid reference or value", nil
	}
	return http.StatusInternalServerError, internalMessage, nil
}

func kindStatus(kind apperr.Kind) int {
	switch kind {
	case apperr.KindInvalid:
		return http.StatusBadRequest
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindUnprocessable:
		return http.StatusUnprocessableEntity
	case apperr.KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// panicError carries a recovered panic value into the error filter.
type panicError struct {
	value any
}

func (p panicError) Error() string {
	return fmt.Sprintf("panic: %v", p.value)
}
