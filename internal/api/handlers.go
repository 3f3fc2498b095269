package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"stealthcompany.com/care-vitals/internal/dal"
	"stealthcompany.com/care-vitals/internal/metrics"
	"stealthcompany.com/care-vitals/internal/validation"
)

// maxBodyBytes caps request bodies; payloads here are a handful of fields
const maxBodyBytes = 1 << 20

// Pinger is satisfied by every dal.Store
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handlers serves the patient and vital endpoints
type Handlers struct {
	patients *dal.PatientModel
	vitals   *dal.VitalModel
	store    Pinger
}

// NewHandlers creates the HTTP handlers over the given models
func NewHandlers(patients *dal.PatientModel, vitals *dal.VitalModel, store Pinger) *Handlers {
	return &Handlers{patients: patients, vitals: vitals, store: store}
}

func readBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, validation.FieldErrors{{
			Field:   validation.BodyField,
			Message: "Request body could not be read",
		}}
	}
	return body, nil
}

// RootHandler answers the liveness probe
func (h *Handlers) RootHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Care Vitals API is running",
	})
}

// HealthHandler reports whether the store answers a ping
func (h *Handlers) HealthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		log.Warn().Err(err).Msg("Health check failed")
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{
			Message: "Storage unavailable",
			Error:   err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, SuccessResponse{
		Success: true,
		Message: "healthy",
	})
}

// ListPatientsHandler handles GET /patients?page=&limit=&search=
func (h *Handlers) ListPatientsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := dal.ParsePageRequest(q.Get("page"), q.Get("limit"), q.Get("search"))

	page, err := h.patients.List(r.Context(), req)
	if err != nil {
		writeError(w, r, err, "Failed to fetch patients")
		return
	}

	writeJSON(w, http.StatusOK, SuccessResponse{
		Success:    true,
		Data:       page.Data,
		Pagination: &page.Pagination,
	})
}

// GetPatientHandler handles GET /patients/{id}
func (h *Handlers) GetPatientHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	p, err := h.patients.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err, "Failed to fetch patient")
		return
	}
	writeData(w, http.StatusOK, p)
}

// CreatePatientHandler handles POST /patients
func (h *Handlers) CreatePatientHandler(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		metrics.RecordValidationFailure("patient")
		writeError(w, r, err, msgInternalError)
		return
	}

	payload, errs := validation.ValidatePatient(body)
	if len(errs) > 0 {
		log.Debug().
			Str("errors", errs.Error()).
			Msg("Patient payload rejected")
		metrics.RecordValidationFailure("patient")
		writeError(w, r, errs, msgValidationFailed)
		return
	}

	p, err := h.patients.Create(r.Context(), payload)
	if err != nil {
		writeError(w, r, err, "Failed to create patient")
		return
	}

	metrics.RecordPatientCreated()
	writeData(w, http.StatusCreated, p)
}

// ListVitalsHandler handles GET /vitals/{patientId}
func (h *Handlers) ListVitalsHandler(w http.ResponseWriter, r *http.Request) {
	ref := mux.Vars(r)["patientId"]

	vitals, err := h.vitals.ListForPatient(r.Context(), ref)
	if err != nil {
		writeError(w, r, err, "Failed to fetch vitals")
		return
	}
	writeData(w, http.StatusOK, vitals)
}

// LatestVitalHandler handles GET /vitals/latest/{patientId}
func (h *Handlers) LatestVitalHandler(w http.ResponseWriter, r *http.Request) {
	ref := mux.Vars(r)["patientId"]

	v, err := h.vitals.LatestForPatient(r.Context(), ref)
	if err != nil {
		writeError(w, r, err, "Failed to fetch latest vital")
		return
	}
	if v == nil {
		writeJSON(w, http.StatusOK, SuccessResponse{
			Success: true,
			Data:    nil,
			Message: msgNoVitals,
		})
		return
	}
	writeData(w, http.StatusOK, v)
}

// CreateVitalHandler handles POST /vitals/{patientId}
func (h *Handlers) CreateVitalHandler(w http.ResponseWriter, r *http.Request) {
	ref := mux.Vars(r)["patientId"]

	body, err := readBody(r)
	if err != nil {
		metrics.RecordValidationFailure("vital")
		writeError(w, r, err, msgInternalError)
		return
	}

	payload, errs := validation.ValidateVital(body)
	if len(errs) > 0 {
		log.Debug().
			Str("patient_ref", ref).
			Str("errors", errs.Error()).
			Msg("Vital payload rejected")
		metrics.RecordValidationFailure("vital")
		writeError(w, r, errs, msgValidationFailed)
		return
	}

	v, err := h.vitals.Create(r.Context(), ref, payload)
	switch {
	case err == nil:
		metrics.RecordVitalWrite(metrics.VitalStored)
		writeData(w, http.StatusCreated, v)
	case errors.Is(err, dal.ErrNotFound):
		metrics.RecordVitalWrite(metrics.VitalPatientNotFound)
		writeError(w, r, err, "Failed to create vital")
	default:
		metrics.RecordVitalWrite(metrics.VitalFailed)
		writeError(w, r, err, "Failed to create vital")
	}
}
