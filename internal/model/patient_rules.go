package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/jwalitptl/patient-registry/pkg/validator"
)

const (
	NameMinLength = 2
	AgeMin        = 0
	AgeMax        = 150
	PhoneMinDigit = 10
	PhoneMaxDigit = 11
)

// SanitizePatient returns the canonical candidate for raw. It never mutates
// raw and never fails: missing or mistyped fields become "" or nil.
func SanitizePatient(raw RawPatient) PatientCandidate {
	return PatientCandidate{
		Name:   trimmedString(raw["name"]),
		Age:    coerceAge(raw["age"]),
		Gender: strings.ToLower(trimmedString(raw["gender"])),
		Phone:  trimmed(raw["phone"]),
		Email:  trimmedString(raw["email"]),
	}
}

type fieldCheck func(v validator.Validator, c PatientCandidate) string

// patientChecks run in this order and are all evaluated for every candidate.
var patientChecks = []fieldCheck{
	checkName,
	checkAge,
	checkGender,
	checkPhone,
	checkEmail,
}

// ValidatePatient evaluates every field rule and reports all violations.
func ValidatePatient(c PatientCandidate) ValidationResult {
	v := validator.New()
	errs := make([]string, 0, len(patientChecks))
	for _, check := range patientChecks {
		if msg := check(v, c); msg != "" {
			errs = append(errs, msg)
		}
	}
	return ValidationResult{
		Valid:  len(errs) == 0,
		Errors: errs,
	}
}

func checkName(v validator.Validator, c PatientCandidate) string {
	if !v.Check(c.Name, "required") {
		return "name is required"
	}
	if !v.Check(c.Name, fmt.Sprintf("min=%d", NameMinLength)) {
		return fmt.Sprintf("name must be at least %d characters long", NameMinLength)
	}
	return ""
}

func checkAge(v validator.Validator, c PatientCandidate) string {
	if c.Age == nil {
		return "age is required and must be an integer"
	}
	if !v.Check(*c.Age, fmt.Sprintf("gte=%d,lte=%d", AgeMin, AgeMax)) {
		return fmt.Sprintf("age must be between %d and %d", AgeMin, AgeMax)
	}
	return ""
}

func checkGender(v validator.Validator, c PatientCandidate) string {
	if !v.Check(c.Gender, "required") {
		return "gender is required"
	}
	if !isGender(c.Gender) {
		names := make([]string, len(Genders))
		for i, g := range Genders {
			names[i] = string(g)
		}
		return "gender must be one of: " + strings.Join(names, ", ")
	}
	return ""
}

func checkPhone(v validator.Validator, c PatientCandidate) string {
	if !v.Check(c.Phone, "required") {
		return "phone is required"
	}
	digits := PhoneDigits(c.Phone)
	if !v.Check(digits, fmt.Sprintf("numeric,min=%d,max=%d", PhoneMinDigit, PhoneMaxDigit)) {
		return fmt.Sprintf("phone must contain %d or %d digits", PhoneMinDigit, PhoneMaxDigit)
	}
	return ""
}

func checkEmail(v validator.Validator, c PatientCandidate) string {
	if !v.Check(c.Email, "required") {
		return "email is required"
	}
	if !v.Check(c.Email, "simple_email") {
		return "email must be a valid address"
	}
	return ""
}

// PhoneDigits strips everything but decimal digits from phone.
func PhoneDigits(phone string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
}

func isGender(s string) bool {
	for _, g := range Genders {
		if string(g) == s {
			return true
		}
	}
	return false
}

// trimmedString accepts only strings; any other type is treated as absent.
func trimmedString(v any) string {
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

// trimmed returns strings trimmed and integral numbers in plain decimal form
// (phones often arrive as JSON numbers). Anything else is treated as absent.
func trimmed(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case json.Number:
		return strings.TrimSpace(s.String())
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case float64:
		if s == math.Trunc(s) && !math.IsInf(s, 0) {
			return strconv.FormatFloat(s, 'f', -1, 64)
		}
		return ""
	default:
		return ""
	}
}

func coerceAge(v any) *int {
	switch n := v.(type) {
	case int:
		return &n
	case int32:
		i := int(n)
		return &i
	case int64:
		if n > math.MaxInt32 || n < math.MinInt32 {
			return nil
		}
		i := int(n)
		return &i
	case float64:
		return fromFloat(n)
	case float32:
		return fromFloat(float64(n))
	case json.Number:
		return parseAge(n.String())
	case string:
		return parseAge(n)
	default:
		return nil
	}
}

func parseAge(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if i, err := strconv.Atoi(s); err == nil {
		return &i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !strings.ContainsFunc(s, unicode.IsLetter) {
		return fromFloat(f)
	}
	return nil
}

// fromFloat accepts only integral values; 32.5 is not an age.
func fromFloat(f float64) *int {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return nil
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return nil
	}
	i := int(f)
	return &i
}
