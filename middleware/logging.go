package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/upb/semantic-retrieval/internal/observability"
	"go.uber.org/zap"
)

// RequestLogger writes one access log line per request after it completes.
// 5xx responses log at error, 4xx at warn, everything else at info.
func RequestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
				}

				fields := []zap.Field{
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", status),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
					zap.String("remote_addr", r.RemoteAddr),
				}

				l := observability.LoggerFromContext(r.Context(), logger)
				switch {
				case status >= http.StatusInternalServerError:
					l.Error("http request", fields...)
				case status >= http.StatusBadRequest:
					l.Warn("http request", fields...)
				default:
					l.Info("http request", fields...)
				}
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
