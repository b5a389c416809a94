package httphandler

import (
	"log/slog"
	"net/http"
	"time"
)

// RequestObserver receives one call per finished request. route is the
// matched mux pattern, or "" when nothing matched.
type RequestObserver interface {
	ObserveHTTPRequest(method, route string, status int, elapsed time.Duration)
}

// statusWriter wraps http.ResponseWriter to capture the response status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

// WriteHeader captures the status code and delegates to the embedded writer.
func (sw *statusWriter) WriteHeader(status int) {
	sw.status = status
	sw.ResponseWriter.WriteHeader(status)
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (sw *statusWriter) Unwrap() http.ResponseWriter {
	return sw.ResponseWriter
}

// ApplyMiddleware wraps next with recovery (innermost), then logging and,
// when observer is non-nil, request metrics.
func ApplyMiddleware(next http.Handler, logger *slog.Logger, observer RequestObserver) http.Handler {
	wrapped := recoveryMiddleware(logger, next)
	return loggingMiddleware(logger, observer, wrapped)
}

// loggingMiddleware logs each HTTP request with method, path, status, and
// duration, and reports it to observer.
func loggingMiddleware(logger *slog.Logger, observer RequestObserver, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		elapsed := time.Since(start)
		logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"duration", elapsed.Round(time.Microsecond),
		)
		if observer != nil {
			// ServeMux records the matched pattern on the request it was given.
			observer.ObserveHTTPRequest(r.Method, r.Pattern, sw.status, elapsed)
		}
	})
}

// recoveryMiddleware recovers from panics in HTTP handlers, logs the error,
// and returns a 500 response.
func recoveryMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				logger.Error("panic recovered",
					"panic", v,
					"path", r.URL.Path,
				)
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()

		next.ServeHTTP(w, r)
	})
}
