// internal/app/features/errors/logger.go
package errors

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/metacode22/study-somoim/internal/app/backend"
	"github.com/metacode22/study-somoim/internal/app/system/auth"
	"go.uber.org/zap"
)

// ErrorLogger logs a failure with request context and renders the matching
// error page in one call.
type ErrorLogger struct {
	Log *zap.Logger
}

// NewErrorLogger returns an ErrorLogger. A nil logger discards output.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ErrorLogger{Log: logger}
}

func (e *ErrorLogger) fields(r *http.Request, err error) []zap.Field {
	fields := []zap.Field{
		zap.Error(err),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	}
	if id := middleware.GetReqID(r.Context()); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	if u, ok := auth.CurrentUser(r); ok {
		fields = append(fields, zap.String("user_id", u.ID))
	}
	return fields
}

// LogServerError logs at error level and renders the 500 page.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	e.Log.Error(logMsg, e.fields(r, err)...)
	RenderServerError(w, r, userMsg, backURL)
}

// LogBadRequest logs at warn level and renders the 400 page.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	e.Log.Warn(logMsg, e.fields(r, err)...)
	RenderBadRequest(w, r, userMsg, backURL)
}

// LogForbidden logs a refused action and renders the 403 page.
func (e *ErrorLogger) LogForbidden(w http.ResponseWriter, r *http.Request, logMsg, userMsg, backURL string) {
	e.Log.Warn(logMsg, e.fields(r, nil)...)
	RenderForbidden(w, r, userMsg, backURL)
}

// LogBackendError handles a failed backend call: a 404 renders the
// not-found page, anything else is logged and rendered as 502.
func (e *ErrorLogger) LogBackendError(w http.ResponseWriter, r *http.Request, logMsg string, err error, backURL string) {
	if backend.StatusOf(err) == http.StatusNotFound {
		RenderNotFound(w, r, backend.MessageOf(err, "요청한 항목을 찾을 수 없습니다."), backURL)
		return
	}
	fields := append(e.fields(r, err), zap.Int("backend_status", backend.StatusOf(err)))
	e.Log.Error(logMsg, fields...)
	RenderBackendError(w, r, "서버와 통신하는 중 문제가 발생했습니다. 잠시 후 다시 시도해 주세요.", backURL)
}
