package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

type requestIdKey struct{}

// RequestID tags every request with an id, minting one when the caller
// did not supply X-Request-Id.
func RequestID(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if len(id) == 0 {
			id = uuid.New().String()
		}

		w.Header().Set("X-Request-Id", id)

		ctx := context.WithValue(r.Context(), requestIdKey{}, id)

		h.ServeHTTP(w, r.WithContext(ctx))
	})
}

func RequestIdFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIdKey{}).(string)
	return id, ok
}

// Logger returns request-logging middleware that writes through the
// given logger. A nil logger falls back to slog.Default().
func Logger(logger *slog.Logger) func(h http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			h.ServeHTTP(w, r)

			id, _ := RequestIdFrom(r.Context())

			logger.InfoContext(
				r.Context(),
				"request handled",
				"method", r.Method,
				"path", r.URL.Path,
				"request_id", id,
				"duration", time.Since(start).String(),
			)
		})
	}
}
