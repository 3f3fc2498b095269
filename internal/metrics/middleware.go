package metrics

import (
	"net/http"

	"github.com/felixge/httpsnoop"
	"github.com/gorilla/mux"
)

// endpointLabel uses the matched route template so that ids in the path do
// not explode label cardinality
func endpointLabel(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}

// MetricsMiddleware records HTTP metrics for all requests
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		IncActiveConnections()
		defer DecActiveConnections()

		m := httpsnoop.CaptureMetrics(next, w, r)

		RecordHTTPRequest(r.Method, endpointLabel(r), m.Code, m.Duration)
	})
}
