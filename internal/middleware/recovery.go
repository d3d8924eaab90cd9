package middleware

import (
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/windfall/vocal_service/pkg/response"
)

// Recovery turns a handler panic into a 500 envelope, logged with the request id and matched route.
// http.ErrAbortHandler is re-raised.
func Recovery(log zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}

				route := r.URL.Path
				if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
					route = rctx.RoutePattern()
				}
				log.Error().
					Interface("panic", rec).
					Str("stack", string(debug.Stack())).
					Str("request_id", middleware.GetReqID(r.Context())).
					Str("method", r.Method).
					Str("route", route).
					Msg("Panic recovered")
				response.InternalError(w, "internal server error")
			}()
			next.ServeHTTP(w, r)
		})
	}
}
