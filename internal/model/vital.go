package model

import "time"

// Vital is one timestamped observation of heart rate, SpO2 and body
// temperature for a patient. Readings are never mutated after creation.
type Vital struct {
	ID              string    `json:"id"`
	PatientRef      string    `json:"patientRef"`
	HeartRate       float64   `json:"heartRate"`
	SpO2            float64   `json:"spo2"`
	BodyTemperature float64   `json:"bodyTemperature"`
	Timestamp       time.Time `json:"timestamp"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}
