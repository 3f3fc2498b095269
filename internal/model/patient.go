package model

import "time"

// Gender is the closed set of genders a patient can be registered with
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// Patient is a monitored person. Name is stored lower-cased; display
// layers are expected to title-case it.
type Patient struct {
	ID        string    `json:"id"`
	PatientID int64     `json:"patientId"`
	Name      string    `json:"name"`
	Age       int       `json:"age"`
	Gender    Gender    `json:"gender"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Pagination describes one page of a listing
type Pagination struct {
	CurrentPage int `json:"currentPage"`
	TotalPages  int `json:"totalPages"`
	TotalCount  int `json:"totalCount"`
	Limit       int `json:"limit"`
}

// PatientPage is a page of patients plus its pagination info
type PatientPage struct {
	Data       []Patient  `json:"data"`
	Pagination Pagination `json:"pagination"`
}
