package dal

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"stealthcompany.com/care-vitals/internal/model"
	"stealthcompany.com/care-vitals/internal/sequence"
	"stealthcompany.com/care-vitals/internal/validation"
)

// PatientModel handles patient-specific database operations
type PatientModel struct {
	store Store
	seq   *sequence.Generator
}

// NewPatientModel creates a new patient model instance
func NewPatientModel(store Store, seq *sequence.Generator) *PatientModel {
	return &PatientModel{store: store, seq: seq}
}

// List retrieves a page of patients, newest first. The request is clamped
// whatever the caller passed in.
func (pm *PatientModel) List(ctx context.Context, req PageRequest) (*model.PatientPage, error) {
	req = req.normalize()

	log.Debug().
		Int("page", req.Page).
		Int("limit", req.Limit).
		Str("search", req.Search).
		Msg("Listing patients")

	var (
		patients []model.Patient
		total    int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		patients, err = pm.store.FindPatients(gctx, PatientQuery{
			Search: req.Search,
			Offset: req.offset(),
			Limit:  req.Limit,
		})
		return err
	})
	g.Go(func() error {
		var err error
		total, err = pm.store.CountPatients(gctx, req.Search)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, storageErr("list patients", err)
	}

	if patients == nil {
		patients = []model.Patient{}
	}

	return &model.PatientPage{
		Data: patients,
		Pagination: model.Pagination{
			CurrentPage: req.Page,
			TotalPages:  totalPages(total, req.Limit),
			TotalCount:  total,
			Limit:       req.Limit,
		},
	}, nil
}

// GetByID retrieves a patient by ID
func (pm *PatientModel) GetByID(ctx context.Context, id string) (*model.Patient, error) {
	log.Debug().
		Str("id", id).
		Msg("Getting patient by ID")

	// ids are always UUIDs, anything else cannot exist
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	p, err := pm.store.GetPatient(ctx, id)
	if err != nil {
		return nil, storageErr("get patient", err)
	}
	return p, nil
}

// Create stores a validated patient. The patientId comes from the
// sequence and is never reassigned.
func (pm *PatientModel) Create(ctx context.Context, payload validation.PatientPayload) (*model.Patient, error) {
	patientID, err := pm.seq.Next(ctx, sequence.PatientCounter)
	if err != nil {
		return nil, storageErr("assign patient id", err)
	}

	p := &model.Patient{
		ID:        uuid.NewString(),
		PatientID: patientID,
		Name:      payload.Name,
		Age:       payload.Age,
		Gender:    payload.Gender,
	}
	if err := pm.store.InsertPatient(ctx, p); err != nil {
		return nil, storageErr("create patient", err)
	}

	log.Info().
		Str("id", p.ID).
		Int64("patient_id", p.PatientID).
		Msg("Patient created")
	return p, nil
}

// Exists reports whether a patient with id is stored
func (pm *PatientModel) Exists(ctx context.Context, id string) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, nil
	}
	ok, err := pm.store.PatientExists(ctx, id)
	if err != nil {
		return false, storageErr("check patient", err)
	}
	return ok, nil
}
