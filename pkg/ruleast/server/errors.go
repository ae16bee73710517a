package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/randalmurphal/ruleast/pkg/ruleast"
	"github.com/randalmurphal/ruleast/pkg/ruleast/store"
)

// requestError is a client error in the request itself: unreadable body,
// missing or mistyped fields.
type requestError struct {
	msg string
}

func (e *requestError) Error() string {
	return e.msg
}

func badRequest(format string, args ...any) error {
	return &requestError{msg: fmt.Sprintf(format, args...)}
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	var reqErr *requestError
	switch {
	case errors.As(err, &reqErr):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case ruleast.IsRuleError(err):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// handlerFunc is an http handler that reports failures as errors.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// handle adapts fn, writing {"error": "..."} with the mapped status.
// Internal error details are logged, not returned.
func (s *Server) handle(fn handlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := fn(w, r)
		if err == nil {
			return
		}
		status := statusFor(err)
		msg := err.Error()
		if status == http.StatusInternalServerError {
			s.logger.Error("request failed",
				"method", r.Method,
				"path", r.URL.Path,
				"error", err.Error(),
			)
			msg = http.StatusText(status)
		}
		writeJSON(w, status, errorResponse{Error: msg})
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
