// internal/app/features/errors/logger.go
package errors

import (
	"net/http"

	"github.com/dalemusser/venuehub/internal/app/system/httpjson"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// ErrorLogger turns handler errors into JSON responses and logs the ones
// that are not the client's fault.
type ErrorLogger struct {
	Log *zap.Logger
}

// NewErrorLogger constructs an ErrorLogger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ErrorLogger{Log: logger}
}

// Respond writes the mapped status for known errors and a logged 500 for
// everything else.
func (e *ErrorLogger) Respond(w http.ResponseWriter, r *http.Request, err error) {
	if m, ok := StatusFor(err); ok {
		httpjson.Error(w, m.Status, m.Code, m.Message)
		return
	}
	e.LogServerError(w, r, "unhandled error", err, "Something went wrong. Please try again.")
}

// LogServerError logs err with request context and writes a 500.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg string) {
	e.Log.Error(msg,
		zap.Error(err),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("request_id", middleware.GetReqID(r.Context())))
	httpjson.Error(w, http.StatusInternalServerError, "internal", userMsg)
}

// RenderBadRequest writes a 400 validation error.
func RenderBadRequest(w http.ResponseWriter, msg string) {
	httpjson.Error(w, http.StatusBadRequest, "validation", msg)
}

// RenderNotFound writes a 404.
func RenderNotFound(w http.ResponseWriter, msg string) {
	httpjson.Error(w, http.StatusNotFound, "not_found", msg)
}
