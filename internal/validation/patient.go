package validation

import (
	"strings"

	"stealthcompany.com/care-vitals/internal/model"
)

// PatientPayload is a patient-create request after normalisation
type PatientPayload struct {
	Name   string
	Age    int
	Gender model.Gender
}

type patientInput struct {
	Name   *string  `json:"name" validate:"required,notblank"`
	Age    *float64 `json:"age" validate:"required,whole,gte=0,lte=150"`
	Gender *string  `json:"gender" validate:"required,oneof=male female other"`
}

// ValidatePatient checks a raw patient-create body. On success the name
// is trimmed and lower-cased; callers must persist the returned payload.
func ValidatePatient(raw []byte) (PatientPayload, FieldErrors) {
	var in patientInput
	errs := check(raw, &in, []schemaField{
		{name: "name", target: &in.Name, messages: map[string]string{
			"*":        "Name is required",
			"notblank": "Name cannot be empty",
		}},
		{name: "age", target: &in.Age, messages: map[string]string{
			"*":     "Age is required and must be a number",
			"whole": "Age must be a whole number",
			"gte":   "Age must be at least 0",
			"lte":   "Age must be at most 150",
		}},
		{name: "gender", target: &in.Gender, messages: map[string]string{
			"*": "Gender must be male, female, or other",
		}},
	})
	if len(errs) > 0 {
		return PatientPayload{}, errs
	}

	return PatientPayload{
		Name:   strings.ToLower(strings.TrimSpace(*in.Name)),
		Age:    int(*in.Age),
		Gender: model.Gender(*in.Gender),
	}, nil
}
