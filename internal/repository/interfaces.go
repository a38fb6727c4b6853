package repository

import (
	"context"

	"github.com/jwalitptl/patient-registry/internal/model"
)

// All repository interfaces in one file
type (
	// PatientRepository persists patient records. Lookups return nil, nil
	// when no record matches.
	PatientRepository interface {
		Create(ctx context.Context, candidate model.PatientCandidate) (*model.Patient, error)
		FindByID(ctx context.Context, id int64) (*model.Patient, error)
		FindByEmail(ctx context.Context, email string) (*model.Patient, error)
		FindByPhone(ctx context.Context, phone string) (*model.Patient, error)
		FindAll(ctx context.Context, params model.PageParams) (*model.PatientPage, error)
		SearchByName(ctx context.Context, term string, params model.PageParams) ([]model.Patient, error)
		EmailExists(ctx context.Context, email string) (bool, error)
		PhoneExists(ctx context.Context, phone string) (bool, error)
	}

	// OrderRepository is read-only access to customer orders.
	OrderRepository interface {
		FindByID(ctx context.Context, id int) (*model.Order, error)
	}
)
