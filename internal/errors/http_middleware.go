package errors

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"brain2-conceptmap/pkg/api"
)

// WriteHTTPError writes a standardized error response. Internal causes are
// logged but never sent to the client.
func WriteHTTPError(w http.ResponseWriter, r *http.Request, err error, logger *zap.Logger) {
	if err == nil {
		return
	}

	appErr, ok := asAppError(err)
	if !ok {
		appErr = NewInternal("an unexpected error occurred", err)
	}
	status := HTTPStatus(appErr)
	requestID := middleware.GetReqID(r.Context())

	message := appErr.Message
	if status >= http.StatusInternalServerError && appErr.Type == ErrorTypeInternal {
		message = "an unexpected error occurred"
	}

	LogError(logger, err, "HTTP error response",
		zap.String("request_id", requestID),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status_code", status),
	)

	api.Error(w, r, status, api.ErrorDetail{
		Type:    string(appErr.Type),
		Code:    appErr.Code.String(),
		Message: message,
	})
}

// RecoveryMiddleware turns a panic into a logged 500 response.
func RecoveryMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					logger.Error("Panic recovered",
						zap.String("request_id", middleware.GetReqID(r.Context())),
						zap.String("method", r.Method),
						zap.String("path", r.URL.Path),
						zap.Any("panic", rec),
						zap.String("stack_trace", string(debug.Stack())),
					)
					WriteHTTPError(w, r, NewInternal("panic recovered", nil), logger)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// RequestLoggingMiddleware logs every request once it completes.
func RequestLoggingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(wrapped, r)

			fields := []zap.Field{
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", wrapped.Status()),
				zap.Int("bytes_written", wrapped.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("remote_addr", r.RemoteAddr),
			}
			if r.URL.RawQuery != "" {
				fields = append(fields, zap.String("query", r.URL.RawQuery))
			}

			switch {
			case wrapped.Status() >= 500:
				logger.Error("Request failed", fields...)
			case wrapped.Status() >= 400:
				logger.Warn("Request client error", fields...)
			default:
				logger.Debug("Request completed", fields...)
			}
		})
	}
}

func asAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if ok := As(err, &appErr); ok {
		return appErr, true
	}
	return nil, false
}
