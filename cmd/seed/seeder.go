package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog/log"
	"stealthcompany.com/care-vitals/internal/dal"
	"stealthcompany.com/care-vitals/internal/validation"
)

var (
	firstNames = []string{"Margaret", "Harold", "Edith", "Walter", "Dolores", "Frank", "Irene", "Arthur", "Gloria", "Stanley"}
	lastNames  = []string{"Okafor", "Lindqvist", "Moreau", "Tanaka", "Brennan", "Silva", "Novak", "Haddad", "Kowalski", "Reyes"}
	genders    = []string{"male", "female", "other"}
)

type seeder struct {
	patients *dal.PatientModel
	vitals   *dal.VitalModel
	rng      *rand.Rand
	now      time.Time
}

func mustJSON(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

func (s *seeder) patientBody() []byte {
	return mustJSON(map[string]any{
		"name":   fmt.Sprintf("%s %s", firstNames[s.rng.IntN(len(firstNames))], lastNames[s.rng.IntN(len(lastNames))]),
		"age":    60 + s.rng.IntN(35),
		"gender": genders[s.rng.IntN(len(genders))],
	})
}

// vitalBody returns the i-th reading, spaced an hour apart going back
// from now
func (s *seeder) vitalBody(i int) []byte {
	return mustJSON(map[string]any{
		"heartRate":       55 + s.rng.IntN(50),
		"spo2":            90 + s.rng.IntN(11),
		"bodyTemperature": 36.0 + float64(s.rng.IntN(25))/10,
		"timestamp":       s.now.Add(-time.Duration(i) * time.Hour).Format(time.RFC3339),
	})
}

// seed goes through the same validation and models as the API so seeded
// records are normalised and numbered identically
func (s *seeder) seed(ctx context.Context, nPatients, nVitals int) (int, int, error) {
	created, readings := 0, 0

	for i := 0; i < nPatients; i++ {
		if err := ctx.Err(); err != nil {
			return created, readings, err
		}

		payload, errs := validation.ValidatePatient(s.patientBody())
		if len(errs) > 0 {
			return created, readings, errs
		}
		p, err := s.patients.Create(ctx, payload)
		if err != nil {
			return created, readings, fmt.Errorf("create patient: %w", err)
		}
		created++

		for j := 0; j < nVitals; j++ {
			vp, errs := validation.ValidateVital(s.vitalBody(j))
			if len(errs) > 0 {
				return created, readings, errs
			}
			if _, err := s.vitals.Create(ctx, p.ID, vp); err != nil {
				return created, readings, fmt.Errorf("create vital: %w", err)
			}
			readings++
		}

		log.Debug().
			Str("id", p.ID).
			Int64("patient_id", p.PatientID).
			Int("vitals", nVitals).
			Msg("Seeded patient")
	}

	return created, readings, nil
}
