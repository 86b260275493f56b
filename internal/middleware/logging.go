// Package middleware holds HTTP middleware shared by every route.
//
// WHAT IS MIDDLEWARE?
// Middleware wraps an http.Handler to add cross-cutting behaviour (logging,
// session resolution, panic recovery) without touching the handler itself:
//
//	func Wrap(next http.Handler) http.Handler {
//	    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
//	        // before the handler
//	        next.ServeHTTP(w, r)
//	        // after the handler
//	    })
//	}
//
// chi's router.Use takes exactly this shape, so our middleware composes with
// chi's own RequestID, RealIP and Recoverer. The auth package's SyncUser and
// RequireUser follow the same pattern.
package middleware

import (
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// responseWriter remembers the status code and byte count so they can be
// logged after the handler returns.
//
// http.ResponseWriter does not expose the status once WriteHeader has been
// called, so we embed it and override the two methods that matter. Every
// other method is promoted from the embedded writer unchanged.
type responseWriter struct {
	http.ResponseWriter       // embedded: Header() and friends pass straight through
	statusCode          int   // defaults to 200; a handler that only calls Write never sets it
	written             int64 // response body bytes
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

// Logger logs one line per request with zap.
//
// LEVELS:
// 5xx responses log at error level, 4xx at warn, the rest at info. A
// validation failure is the client's mistake, so it shows up as a warning
// line here and never as an error in the handler logs.
//
// FIELDS:
// method, path, status, duration, bytes and request_id. The id comes from
// chi's RequestID middleware, so Logger must be registered after it.
func Logger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			// Wrap so the status and size are visible after the handler returns.
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			level := zapcore.InfoLevel
			switch {
			case wrapped.statusCode >= 500:
				level = zapcore.ErrorLevel
			case wrapped.statusCode >= 400:
				level = zapcore.WarnLevel
			}

			logger.Log(level, "request completed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", wrapped.statusCode),
				zap.Duration("duration", time.Since(start)),
				zap.Int64("bytes", wrapped.written),
				zap.String("request_id", chimiddleware.GetReqID(r.Context())),
			)
		})
	}
}
