package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRaw() RawPatient {
	return RawPatient{
		"name":   "Maria Silva Santos",
		"age":    32,
		"gender": "feminino",
		"phone":  "11987654321",
		"email":  "maria@x.com",
	}
}

func TestSanitizePatient(t *testing.T) {
	tests := []struct {
		name string
		raw  RawPatient
		want PatientCandidate
	}{
		{
			name: "trims and lower-cases",
			raw: RawPatient{
				"name":   "  Ana Souza ",
				"age":    "40",
				"gender": " FEMALE ",
				"phone":  " (11) 98765-4321 ",
				"email":  " ana@example.com ",
			},
			want: PatientCandidate{
				Name:   "Ana Souza",
				Age:    intPtr(40),
				Gender: "female",
				Phone:  "(11) 98765-4321",
				Email:  "ana@example.com",
			},
		},
		{
			name: "missing fields become empty",
			raw:  RawPatient{},
			want: PatientCandidate{},
		},
		{
			name: "nil input",
			raw:  nil,
			want: PatientCandidate{},
		},
		{
			name: "non-string text fields are absent",
			raw: RawPatient{
				"name":   json.Number("12345"),
				"gender": 1,
				"email":  12.0,
				"phone":  json.Number("11987654321"),
			},
			want: PatientCandidate{Phone: "11987654321"},
		},
		{
			name: "non-integral age is absent",
			raw:  RawPatient{"age": 32.5},
			want: PatientCandidate{},
		},
		{
			name: "unparseable age is absent",
			raw:  RawPatient{"age": "thirty"},
			want: PatientCandidate{},
		},
		{
			name: "json number age and phone",
			raw:  RawPatient{"age": json.Number("27"), "phone": json.Number("11987654321")},
			want: PatientCandidate{Age: intPtr(27), Phone: "11987654321"},
		},
		{
			name: "integral float age",
			raw:  RawPatient{"age": float64(60)},
			want: PatientCandidate{Age: intPtr(60)},
		},
		{
			name: "non-string name is absent",
			raw:  RawPatient{"name": []string{"x"}, "email": map[string]any{}},
			want: PatientCandidate{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizePatient(tt.raw))
		})
	}
}

func TestSanitizePatient_DoesNotMutateInput(t *testing.T) {
	raw := RawPatient{"name": "  Bob  ", "gender": "MALE"}
	SanitizePatient(raw)

	assert.Equal(t, "  Bob  ", raw["name"])
	assert.Equal(t, "MALE", raw["gender"])
}

func TestSanitizePatient_Idempotent(t *testing.T) {
	inputs := []RawPatient{
		validRaw(),
		{},
		{"name": "  x ", "age": "12", "gender": "OTHER", "phone": 11987654321.0, "email": " a@b.c "},
		{"age": "1e2", "gender": 5},
	}

	for _, raw := range inputs {
		once := SanitizePatient(raw)
		twice := SanitizePatient(once.Raw())
		assert.Equal(t, once, twice)
	}
}

func TestValidatePatient_Valid(t *testing.T) {
	genders := []string{"male", "female", "other", "unspecified", "masculino", "feminino", "outro", "nao informado"}
	for _, g := range genders {
		raw := validRaw()
		raw["gender"] = g

		result := ValidatePatient(SanitizePatient(raw))
		assert.True(t, result.Valid, g)
		assert.Empty(t, result.Errors, g)
	}
}

func TestValidatePatient_MissingFields(t *testing.T) {
	for _, field := range []string{"name", "age", "gender", "phone", "email"} {
		t.Run(field, func(t *testing.T) {
			raw := validRaw()
			delete(raw, field)

			result := ValidatePatient(SanitizePatient(raw))
			assert.False(t, result.Valid)
			require.Len(t, result.Errors, 1)
			assert.Contains(t, result.Errors[0], field)
		})
	}
}

func TestValidatePatient_NumericName(t *testing.T) {
	raw := validRaw()
	raw["name"] = json.Number("12345")

	result := ValidatePatient(SanitizePatient(raw))

	assert.False(t, result.Valid)
	assert.Equal(t, []string{"name is required"}, result.Errors)
}

func TestValidatePatient_ReportsAllInOrder(t *testing.T) {
	result := ValidatePatient(SanitizePatient(RawPatient{
		"name":   "A",
		"age":    151,
		"gender": "robot",
		"phone":  "123",
		"email":  "not-an-email",
	}))

	assert.False(t, result.Valid)
	assert.Equal(t, []string{
		"name must be at least 2 characters long",
		"age must be between 0 and 150",
		"gender must be one of: male, female, other, unspecified, masculino, feminino, outro, nao informado",
		"phone must contain 10 or 11 digits",
		"email must be a valid address",
	}, result.Errors)
}

func TestValidatePatient_EmptyCandidate(t *testing.T) {
	result := ValidatePatient(PatientCandidate{})

	assert.False(t, result.Valid)
	assert.Equal(t, []string{
		"name is required",
		"age is required and must be an integer",
		"gender is required",
		"phone is required",
		"email is required",
	}, result.Errors)
}

func TestValidatePatient_Boundaries(t *testing.T) {
	tests := []struct {
		name  string
		field string
		value any
		valid bool
	}{
		{"age zero", "age", 0, true},
		{"age max", "age", 150, true},
		{"age negative", "age", -1, false},
		{"phone ten digits", "phone", "1198765432", true},
		{"phone formatted", "phone", "+55 (11) 98765-4321", false},
		{"phone formatted eleven", "phone", "(11) 98765-4321", true},
		{"phone twelve digits", "phone", "119876543210", false},
		{"phone no digits", "phone", "call me", false},
		{"name two chars", "name", "Jo", true},
		{"email without tld", "email", "maria@x", false},
		{"email with space", "email", "ma ria@x.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := validRaw()
			raw[tt.field] = tt.value

			result := ValidatePatient(SanitizePatient(raw))
			assert.Equal(t, tt.valid, result.Valid, result.Errors)
		})
	}
}

func TestPhoneDigits(t *testing.T) {
	assert.Equal(t, "11987654321", PhoneDigits("(11) 98765-4321"))
	assert.Equal(t, "", PhoneDigits("n/a"))
}

func intPtr(i int) *int {
	return &i
}
