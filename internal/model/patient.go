package model

import (
	"time"
)

type Gender string

const (
	GenderMale        Gender = "male"
	GenderFemale      Gender = "female"
	GenderOther       Gender = "other"
	GenderUnspecified Gender = "unspecified"

	// Portuguese values used by the clinic front desk.
	GenderMasculino    Gender = "masculino"
	GenderFeminino     Gender = "feminino"
	GenderOutro        Gender = "outro"
	GenderNaoInformado Gender = "nao informado"
)

// Genders lists every accepted gender value in display order.
var Genders = []Gender{
	GenderMale,
	GenderFemale,
	GenderOther,
	GenderUnspecified,
	GenderMasculino,
	GenderFeminino,
	GenderOutro,
	GenderNaoInformado,
}

// Patient is the persisted patient record.
type Patient struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Age       int       `db:"age" json:"age"`
	Gender    string    `db:"gender" json:"gender"`
	Phone     string    `db:"phone" json:"phone"`
	Email     string    `db:"email" json:"email"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// RawPatient is the inbound field-name-to-value mapping, as decoded from a
// request body.
type RawPatient map[string]any

// PatientCandidate holds sanitized field values of a patient that has not
// been persisted yet. Age is nil when absent or unparseable.
type PatientCandidate struct {
	Name   string
	Age    *int
	Gender string
	Phone  string
	Email  string
}

// Raw converts the candidate back into a RawPatient with the same keys.
func (c PatientCandidate) Raw() RawPatient {
	raw := RawPatient{
		"name":   c.Name,
		"age":    nil,
		"gender": c.Gender,
		"phone":  c.Phone,
		"email":  c.Email,
	}
	if c.Age != nil {
		raw["age"] = *c.Age
	}
	return raw
}

// ValidationResult carries every violated field rule in evaluation order.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// PatientPage is one page of patients plus its pagination metadata.
type PatientPage struct {
	Patients   []Patient  `json:"patients"`
	Pagination Pagination `json:"pagination"`
}
