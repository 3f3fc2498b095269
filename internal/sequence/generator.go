// Package sequence issues globally unique, strictly increasing integers
// from named counters kept in the store.
package sequence

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"stealthcompany.com/care-vitals/internal/metrics"
)

// PatientCounter is the counter that backs patient display codes
const PatientCounter = "patientId"

// Seed is the stored value of a fresh counter. The first value issued is
// Seed+1.
const Seed = 1000

// ErrStorageUnavailable is returned when the counter store cannot be reached
var ErrStorageUnavailable = errors.New("sequence storage unavailable")

// Counter is an atomic increment-and-fetch primitive. If the named counter
// is absent it must be created holding initial and initial returned, as
// part of the same indivisible operation.
type Counter interface {
	Increment(ctx context.Context, name string, initial uint64) (uint64, error)
}

// Generator hands out sequence values
type Generator struct {
	counter Counter
}

// NewGenerator creates a generator on top of counter
func NewGenerator(counter Counter) *Generator {
	return &Generator{counter: counter}
}

// Next atomically increments the named counter and returns the new value.
// It is not retried on failure.
func (g *Generator) Next(ctx context.Context, name string) (int64, error) {
	value, err := g.counter.Increment(ctx, name, Seed+1)
	if err != nil {
		log.Error().
			Err(err).
			Str("counter", name).
			Msg("Failed to increment sequence")
		return 0, fmt.Errorf("%w: counter %s: %w", ErrStorageUnavailable, name, err)
	}

	metrics.RecordSequenceValue(name, value)

	log.Debug().
		Str("counter", name).
		Uint64("value", value).
		Msg("Issued sequence value")
	return int64(value), nil
}
