package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

// Logger attaches logger to every request context and writes one access line per request.
func Logger(logger zerolog.Logger) func(http.Handler) http.Handler {
	withLogger := hlog.NewHandler(logger)
	access := hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Stringer("url", r.URL).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	})

	return func(next http.Handler) http.Handler {
		return withLogger(requestID(access(next)))
	}
}

// requestID copies chi's request id into the request logger.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := middleware.GetReqID(r.Context()); id != "" {
			logger := zerolog.Ctx(r.Context())
			logger.UpdateContext(func(c zerolog.Context) zerolog.Context {
				return c.Str("req_id", id)
			})
		}
		next.ServeHTTP(w, r)
	})
}
