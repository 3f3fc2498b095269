package validation

import "time"

// VitalPayload is a vital-create request after validation. Timestamp is
// nil when the caller did not supply one.
type VitalPayload struct {
	HeartRate       float64
	SpO2            float64
	BodyTemperature float64
	Timestamp       *time.Time
}

type vitalInput struct {
	HeartRate       *float64 `json:"heartRate" validate:"required,gte=30,lte=250"`
	SpO2            *float64 `json:"spo2" validate:"required,gte=0,lte=100"`
	BodyTemperature *float64 `json:"bodyTemperature" validate:"required,gte=30,lte=45"`
	Timestamp       *string  `json:"timestamp" validate:"omitempty,iso8601"`
}

// ValidateVital checks a raw vital-create body. Range bounds are inclusive.
func ValidateVital(raw []byte) (VitalPayload, FieldErrors) {
	var in vitalInput
	errs := check(raw, &in, []schemaField{
		{name: "heartRate", target: &in.HeartRate, messages: map[string]string{
			"*":   "Heart rate is required and must be a number",
			"gte": "Heart rate must be at least 30 bpm",
			"lte": "Heart rate must be at most 250 bpm",
		}},
		{name: "spo2", target: &in.SpO2, messages: map[string]string{
			"*":   "SpO2 is required and must be a number",
			"gte": "SpO2 must be at least 0%",
			"lte": "SpO2 must be at most 100%",
		}},
		{name: "bodyTemperature", target: &in.BodyTemperature, messages: map[string]string{
			"*":   "Body temperature is required and must be a number",
			"gte": "Temperature must be at least 30°C",
			"lte": "Temperature must be at most 45°C",
		}},
		{name: "timestamp", target: &in.Timestamp, messages: map[string]string{
			"*": "Timestamp must be a valid ISO date string",
		}},
	})
	if len(errs) > 0 {
		return VitalPayload{}, errs
	}

	payload := VitalPayload{
		HeartRate:       *in.HeartRate,
		SpO2:            *in.SpO2,
		BodyTemperature: *in.BodyTemperature,
	}
	if in.Timestamp != nil {
		ts, err := parseInstant(*in.Timestamp)
		if err != nil {
			return VitalPayload{}, FieldErrors{{Field: "timestamp", Message: "Timestamp must be a valid ISO date string"}}
		}
		ts = ts.UTC()
		payload.Timestamp = &ts
	}
	return payload, nil
}
