package api

import (
	"fmt"
	"net/http"
	"runtime"

	"github.com/felixge/httpsnoop"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// RequestLogger logs one line per request with its status and latency
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := httpsnoop.CaptureMetrics(next, w, r)

		var evt *zerolog.Event
		switch {
		case m.Code >= 500:
			evt = log.Error()
		case m.Code >= 400:
			evt = log.Warn()
		default:
			evt = log.Info()
		}

		evt.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", m.Code).
			Dur("latency", m.Duration).
			Int64("bytes", m.Written).
			Str("remote_addr", r.RemoteAddr).
			Msg("request")
	})
}

// Recovery turns a panic in any handler into the 500 envelope
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				var stack [4096]byte
				n := runtime.Stack(stack[:], false)

				log.Error().
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Str("panic", fmt.Sprintf("%v", rec)).
					Str("stack", string(stack[:n])).
					Msg("panic recovered")

				writeJSON(w, http.StatusInternalServerError, ErrorResponse{
					Message: msgInternalError,
					Error:   fmt.Sprintf("%v", rec),
				})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func notFoundHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, ErrorResponse{
		Message: fmt.Sprintf("Route %s %s not found", r.Method, r.URL.Path),
	})
}

func methodNotAllowedHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{
		Message: fmt.Sprintf("Method %s not allowed on %s", r.Method, r.URL.Path),
	})
}
