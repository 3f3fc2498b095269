package dal

import (
	"context"
	"errors"
	"fmt"

	"stealthcompany.com/care-vitals/internal/model"
	"stealthcompany.com/care-vitals/internal/sequence"
)

// ErrNotFound is returned when a referenced record does not exist
var ErrNotFound = errors.New("not found")

// StorageError wraps a failure of the underlying store with the operation
// that was attempted
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// storageErr wraps err unless it is nil or already classified
func storageErr(op string, err error) error {
	if err == nil || errors.Is(err, ErrNotFound) {
		return err
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

// PatientQuery selects a window of patients. Search is matched as a
// literal substring of the stored (lower-cased) name.
type PatientQuery struct {
	Search string
	Offset int
	Limit  int
}

// Store is the persistence backend used by the models. Implementations set
// CreatedAt/UpdatedAt on insert and must implement Increment atomically.
type Store interface {
	sequence.Counter

	InsertPatient(ctx context.Context, p *model.Patient) error
	GetPatient(ctx context.Context, id string) (*model.Patient, error)
	PatientExists(ctx context.Context, id string) (bool, error)
	// FindPatients returns patients ordered by creation time, newest first
	FindPatients(ctx context.Context, q PatientQuery) ([]model.Patient, error)
	CountPatients(ctx context.Context, search string) (int, error)

	InsertVital(ctx context.Context, v *model.Vital) error
	// FindVitals returns readings ordered by timestamp, newest first. A
	// limit of 0 returns every reading.
	FindVitals(ctx context.Context, patientRef string, limit int) ([]model.Vital, error)

	Ping(ctx context.Context) error
	Close() error
}
