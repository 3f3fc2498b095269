package api

import (
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"stealthcompany.com/care-vitals/internal/metrics"
)

func registerRoutes(r *mux.Router, h *Handlers) {
	r.HandleFunc("/", h.RootHandler).Methods("GET")
	r.HandleFunc("/health", h.HealthHandler).Methods("GET")

	r.HandleFunc("/patients", h.ListPatientsHandler).Methods("GET")
	r.HandleFunc("/patients", h.CreatePatientHandler).Methods("POST")
	r.HandleFunc("/patients/{id}", h.GetPatientHandler).Methods("GET")

	// latest must be registered before the {patientId} catch-all
	r.HandleFunc("/vitals/latest/{patientId}", h.LatestVitalHandler).Methods("GET")
	r.HandleFunc("/vitals/{patientId}", h.ListVitalsHandler).Methods("GET")
	r.HandleFunc("/vitals/{patientId}", h.CreateVitalHandler).Methods("POST")
}

// SetupRoutes configures the router. Every route is served both at the
// root and under /api.
func SetupRoutes(h *Handlers, corsOrigins []string) http.Handler {
	r := mux.NewRouter()
	r.StrictSlash(true)

	// Add middleware to all routes
	r.Use(metrics.MetricsMiddleware)
	r.Use(RequestLogger)

	r.NotFoundHandler = http.HandlerFunc(notFoundHandler)
	r.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowedHandler)

	// Prometheus metrics endpoint
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	registerRoutes(r.PathPrefix("/api").Subrouter(), h)
	registerRoutes(r, h)

	cors := handlers.CORS(
		handlers.AllowedOrigins(corsOrigins),
		handlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)

	return Recovery(cors(r))
}
