package middleware

import (
	"net/http"
	"time"

	"github.com/shashiranjanraj/cubeshop/pkg/logger"
	"github.com/shashiranjanraj/cubeshop/pkg/reqid"
)

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Logger logs each request with method, path, status, duration and client
// IP, tagged with the request_id injected by reqid.Middleware. Wire
// reqid.Middleware() before it. trustProxy has the same meaning as in
// NewRateLimiter.
func Logger(trustProxy bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			reqLog := logger.L.With("request_id", reqid.FromCtx(r.Context()))
			r = r.WithContext(logger.InjectLogger(r.Context(), reqLog))

			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rw, r)

			reqLog.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rw.statusCode,
				"duration", time.Since(start).String(),
				"ip", clientIP(r, trustProxy),
			)
		})
	}
}
