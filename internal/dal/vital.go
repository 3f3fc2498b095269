package dal

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"stealthcompany.com/care-vitals/internal/model"
	"stealthcompany.com/care-vitals/internal/validation"
)

// VitalModel handles vital reading operations. Every entry point checks
// the referenced patient first since the store enforces no foreign keys.
type VitalModel struct {
	store    Store
	patients *PatientModel
	now      func() time.Time
}

// NewVitalModel creates a new vital model instance
func NewVitalModel(store Store, patients *PatientModel) *VitalModel {
	return &VitalModel{
		store:    store,
		patients: patients,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (vm *VitalModel) ensurePatient(ctx context.Context, patientRef string) error {
	exists, err := vm.patients.Exists(ctx, patientRef)
	if err != nil {
		return err
	}
	if !exists {
		log.Debug().
			Str("patient_ref", patientRef).
			Msg("Patient not found")
		return ErrNotFound
	}
	return nil
}

// ListForPatient returns every reading of a patient, newest timestamp first
func (vm *VitalModel) ListForPatient(ctx context.Context, patientRef string) ([]model.Vital, error) {
	if err := vm.ensurePatient(ctx, patientRef); err != nil {
		return nil, err
	}

	vitals, err := vm.store.FindVitals(ctx, patientRef, 0)
	if err != nil {
		return nil, storageErr("list vitals", err)
	}
	if vitals == nil {
		vitals = []model.Vital{}
	}
	return vitals, nil
}

// LatestForPatient returns the reading with the greatest timestamp, or nil
// when the patient has none yet
func (vm *VitalModel) LatestForPatient(ctx context.Context, patientRef string) (*model.Vital, error) {
	if err := vm.ensurePatient(ctx, patientRef); err != nil {
		return nil, err
	}

	vitals, err := vm.store.FindVitals(ctx, patientRef, 1)
	if err != nil {
		return nil, storageErr("latest vital", err)
	}
	if len(vitals) == 0 {
		return nil, nil
	}
	return &vitals[0], nil
}

// Create stores a validated reading. Without a supplied timestamp the
// reading is stamped with the current instant.
func (vm *VitalModel) Create(ctx context.Context, patientRef string, payload validation.VitalPayload) (*model.Vital, error) {
	if err := vm.ensurePatient(ctx, patientRef); err != nil {
		return nil, err
	}

	ts := vm.now()
	if payload.Timestamp != nil {
		ts = payload.Timestamp.UTC()
	}

	v := &model.Vital{
		ID:              uuid.NewString(),
		PatientRef:      patientRef,
		HeartRate:       payload.HeartRate,
		SpO2:            payload.SpO2,
		BodyTemperature: payload.BodyTemperature,
		Timestamp:       ts,
	}
	if err := vm.store.InsertVital(ctx, v); err != nil {
		return nil, storageErr("create vital", err)
	}

	log.Info().
		Str("id", v.ID).
		Str("patient_ref", patientRef).
		Time("timestamp", ts).
		Msg("Vital recorded")
	return v, nil
}
