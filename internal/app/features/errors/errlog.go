// internal/app/features/errors/errlog.go
package errors

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// ErrorLogger pairs structured logging with a user-facing error response.
// Handlers call one method instead of logging and rendering separately, so
// every failure path produces both a log line and a consistent page.
type ErrorLogger struct {
	log *zap.Logger
}

// NewErrorLogger constructs an ErrorLogger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{log: logger}
}

// LogServerError logs err at error level and shows a generic failure page.
// userMsg is what the visitor sees; internals stay in the log.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, what string, err error, userMsg, backURL string) {
	e.log.Error(what,
		zap.Error(err),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path))

	if wantsJSON(r) {
		writeJSONError(w, http.StatusInternalServerError, userMsg)
		return
	}
	w.WriteHeader(http.StatusInternalServerError)
	RenderForbidden(w, r, userMsg, backURL)
}

// LogBadRequest logs err at warn level and responds 400.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, what string, err error, userMsg, backURL string) {
	e.log.Warn(what,
		zap.Error(err),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path))

	if wantsJSON(r) {
		writeJSONError(w, http.StatusBadRequest, userMsg)
		return
	}
	w.WriteHeader(http.StatusBadRequest)
	RenderForbidden(w, r, userMsg, backURL)
}

// LogNotFound logs at info level and responds 404.
func (e *ErrorLogger) LogNotFound(w http.ResponseWriter, r *http.Request, what string, userMsg, backURL string) {
	e.log.Info(what,
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path))

	if wantsJSON(r) {
		writeJSONError(w, http.StatusNotFound, userMsg)
		return
	}
	w.WriteHeader(http.StatusNotFound)
	RenderForbidden(w, r, userMsg, backURL)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// wantsJSON reports whether the client is an API caller rather than a
// browser navigation.
func wantsJSON(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	if strings.Contains(accept, "application/json") {
		return true
	}
	return strings.HasPrefix(strings.ToLower(r.Header.Get("Content-Type")), "application/json")
}
