// internal/app/features/errors/logger.go
package errors

import (
	"net/http"

	"github.com/dalemusser/twfhub/internal/app/system/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrorLogger logs unexpected errors with request context and renders the
// matching page. Server errors get a reference id that appears both in the
// log line and on the page.
type ErrorLogger struct {
	log *zap.Logger
}

func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{log: logger}
}

func (l *ErrorLogger) fields(r *http.Request, err error) []zap.Field {
	fs := []zap.Field{
		zap.Error(err),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	}
	if u, ok := auth.CurrentUser(r); ok {
		fs = append(fs, zap.String("user_id", u.ID))
	}
	return fs
}

// LogServerError logs err at error level and renders a 500 page carrying a
// fresh reference id.
func (l *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	ref := uuid.NewString()
	l.log.Error(logMsg, append(l.fields(r, err), zap.String("error_ref", ref))...)
	renderServerError(w, r, userMsg, backURL, ref)
}

// LogBadRequest logs err at warn level and renders a 400 page.
func (l *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	l.log.Warn(logMsg, l.fields(r, err)...)
	RenderBadRequest(w, r, userMsg, backURL)
}
