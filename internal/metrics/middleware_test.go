package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsMiddlewareUsesRouteTemplate(t *testing.T) {
	r := mux.NewRouter()
	r.Use(MetricsMiddleware)
	r.HandleFunc("/patients/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}).Methods("GET")

	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/patients/{id}", "404"))

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest("GET", "/patients/abc", nil))
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest("GET", "/patients/def", nil))

	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/patients/{id}", "404"))
	assert.Equal(t, before+2, after)
}

func TestEndpointLabelUnmatched(t *testing.T) {
	req := httptest.NewRequest("GET", "/anything", nil)
	assert.Equal(t, "unmatched", endpointLabel(req))
}

func TestRecordVitalWrite(t *testing.T) {
	before := testutil.ToFloat64(VitalsRecordedTotal.WithLabelValues(VitalStored))
	RecordVitalWrite(VitalStored)
	assert.Equal(t, before+1, testutil.ToFloat64(VitalsRecordedTotal.WithLabelValues(VitalStored)))
}

func TestRecordSequenceValue(t *testing.T) {
	RecordSequenceValue("patientId", 1042)
	assert.Equal(t, float64(1042), testutil.ToFloat64(SequenceLastValue.WithLabelValues("patientId")))
}
