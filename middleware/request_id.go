package middleware

import (
	"context"
	"net/http"
	"strings"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/upb/semantic-retrieval/internal/observability"
	"go.uber.org/zap"
)

// maxRequestIDLength bounds caller-supplied ids before they reach logs
const maxRequestIDLength = 128

// EnsureRequestID reuses the caller's X-Request-ID or generates a UUIDv4,
// echoes it on the response and stores it on the context together with a
// logger carrying a request_id field.
func EnsureRequestID(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := strings.TrimSpace(r.Header.Get(RequestIDHeader))
			if requestID == "" || len(requestID) > maxRequestIDLength {
				requestID = uuid.New().String()
			}

			w.Header().Set(RequestIDHeader, requestID)

			ctx := WithRequestID(r.Context(), requestID)
			ctx = observability.WithLogger(ctx, logger.With(zap.String("request_id", requestID)))
			// chi's helpers (GetReqID, the Recoverer) read their own key
			ctx = context.WithValue(ctx, chimw.RequestIDKey, requestID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
