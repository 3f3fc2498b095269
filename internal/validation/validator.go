// Package validation checks and normalises inbound write payloads before
// they reach storage. It never touches storage.
package validation

import (
	"encoding/json"
	"errors"
	"math"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// FieldError is a single field-scoped validation failure
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FieldErrors is the list returned when a payload is rejected. A nil or
// empty list means the payload was accepted.
type FieldErrors []FieldError

func (fe FieldErrors) Error() string {
	parts := make([]string, 0, len(fe))
	for _, e := range fe {
		parts = append(parts, e.Field+": "+e.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// BodyField is the pseudo field reported when the body is not a JSON object
const BodyField = "body"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report json names so field errors match the wire payload
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	mustRegister(v, "notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	mustRegister(v, "whole", func(fl validator.FieldLevel) bool {
		f := fl.Field().Float()
		return f == math.Trunc(f)
	})
	mustRegister(v, "iso8601", func(fl validator.FieldLevel) bool {
		_, err := parseInstant(fl.Field().String())
		return err == nil
	})

	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

func parseInstant(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// schemaField binds a wire field to its decode target and messages. The
// "*" message is used for type mismatches, missing values and any tag
// without a dedicated message.
type schemaField struct {
	name     string
	target   any
	messages map[string]string
}

func (f schemaField) message(tag string) string {
	if msg, ok := f.messages[tag]; ok {
		return msg
	}
	return f.messages["*"]
}

// check decodes raw into the schema targets field by field, then runs the
// struct tags of input. Errors come back in schema order, one per field.
func check(raw []byte, input any, fields []schemaField) FieldErrors {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return FieldErrors{{Field: BodyField, Message: "Request body must be a JSON object"}}
	}

	failed := make(map[string]string, len(fields))
	for _, f := range fields {
		value, ok := obj[f.name]
		if !ok {
			continue
		}
		if err := json.Unmarshal(value, f.target); err != nil {
			failed[f.name] = f.message("*")
		}
	}

	if err := validate.Struct(input); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return FieldErrors{{Field: BodyField, Message: err.Error()}}
		}
		for _, fe := range verrs {
			if _, seen := failed[fe.Field()]; seen {
				continue
			}
			for _, f := range fields {
				if f.name == fe.Field() {
					failed[f.name] = f.message(fe.Tag())
				}
			}
		}
	}

	var out FieldErrors
	for _, f := range fields {
		if msg, ok := failed[f.name]; ok {
			out = append(out, FieldError{Field: f.name, Message: msg})
		}
	}
	return out
}
