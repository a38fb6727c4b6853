package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/jwalitptl/patient-registry/internal/model"
	"github.com/jwalitptl/patient-registry/internal/repository"
	apperrors "github.com/jwalitptl/patient-registry/pkg/errors"
)

const patientColumns = "id, name, age, gender, phone, email, created_at, updated_at"

type patientRepository struct {
	db *DB
}

func NewPatientRepository(db *DB) repository.PatientRepository {
	return &patientRepository{db: db}
}

func (r *patientRepository) Create(ctx context.Context, candidate model.PatientCandidate) (*model.Patient, error) {
	if candidate.Age == nil {
		return nil, apperrors.NewValidation("age is required")
	}

	query := `
		INSERT INTO patients (name, age, gender, phone, email, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	now := time.Now().UTC()

	res, err := r.db.Execute(ctx, query,
		candidate.Name,
		*candidate.Age,
		candidate.Gender,
		candidate.Phone,
		candidate.Email,
		now,
		now,
	)
	if err != nil {
		if isUniqueEmailViolation(err) {
			return nil, apperrors.NewDuplicateEmail(err)
		}
		return nil, apperrors.NewStorage("failed to create patient", err)
	}

	patient, err := r.FindByID(ctx, res.InsertedID)
	if err != nil {
		return nil, err
	}
	if patient == nil {
		return nil, apperrors.NewStorage("failed to create patient",
			fmt.Errorf("patient %d not found after insert", res.InsertedID))
	}
	return patient, nil
}

func (r *patientRepository) FindByID(ctx context.Context, id int64) (*model.Patient, error) {
	return r.findOne(ctx, "id", id)
}

func (r *patientRepository) FindByEmail(ctx context.Context, email string) (*model.Patient, error) {
	return r.findOne(ctx, "email", email)
}

func (r *patientRepository) FindByPhone(ctx context.Context, phone string) (*model.Patient, error) {
	return r.findOne(ctx, "phone", phone)
}

// findOne looks a patient up by a single column. column is never user input.
func (r *patientRepository) findOne(ctx context.Context, column string, value interface{}) (*model.Patient, error) {
	query := fmt.Sprintf("SELECT %s FROM patients WHERE %s = ? LIMIT 1", patientColumns, column)

	var patient model.Patient
	found, err := r.db.QueryOne(ctx, &patient, query, value)
	if err != nil {
		return nil, apperrors.NewStorage("failed to get patient", err)
	}
	if !found {
		return nil, nil
	}
	return &patient, nil
}

func (r *patientRepository) FindAll(ctx context.Context, params model.PageParams) (*model.PatientPage, error) {
	var total int
	if _, err := r.db.QueryOne(ctx, &total, "SELECT COUNT(*) FROM patients"); err != nil {
		return nil, apperrors.NewStorage("failed to count patients", err)
	}

	query := `SELECT ` + patientColumns + ` FROM patients
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`

	patients := []model.Patient{}
	if err := r.db.QueryAll(ctx, &patients, query, params.Limit, params.Offset()); err != nil {
		return nil, apperrors.NewStorage("failed to list patients", err)
	}

	return &model.PatientPage{
		Patients:   patients,
		Pagination: params.Meta(total),
	}, nil
}

func (r *patientRepository) SearchByName(ctx context.Context, term string, params model.PageParams) ([]model.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients
		WHERE LOWER(name) LIKE LOWER(?)
		ORDER BY name
		LIMIT ? OFFSET ?`

	patients := []model.Patient{}
	if err := r.db.QueryAll(ctx, &patients, query, "%"+term+"%", params.Limit, params.Offset()); err != nil {
		return nil, apperrors.NewStorage("failed to search patients", err)
	}
	return patients, nil
}

func (r *patientRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	patient, err := r.FindByEmail(ctx, email)
	return patient != nil, err
}

func (r *patientRepository) PhoneExists(ctx context.Context, phone string) (bool, error) {
	patient, err := r.FindByPhone(ctx, phone)
	return patient != nil, err
}

// isUniqueEmailViolation reports whether err is the store rejecting a second
// row with the same email.
func isUniqueEmailViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code()
		if code != sqlite3.SQLITE_CONSTRAINT_UNIQUE && code&0xff != sqlite3.SQLITE_CONSTRAINT {
			return false
		}
		msg := sqliteErr.Error()
		return strings.Contains(msg, "UNIQUE") && strings.Contains(msg, "patients.email")
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code != "23505" {
			return false
		}
		return strings.Contains(pqErr.Constraint, "email") || strings.Contains(pqErr.Detail, "(email)")
	}

	return false
}
