package patient

import (
	"context"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jwalitptl/patient-registry/internal/model"
	"github.com/jwalitptl/patient-registry/internal/repository"
	apperrors "github.com/jwalitptl/patient-registry/pkg/errors"
	"github.com/jwalitptl/patient-registry/pkg/metrics"
)

const (
	msgInvalidData        = "invalid patient data"
	msgEmailTaken         = "email already registered"
	msgEmailTakenDetail   = "email is already registered to another patient"
	msgPhoneTaken         = "phone already registered"
	msgPhoneTakenDetail   = "phone is already registered to another patient"
	msgInternal           = "internal server error"
	msgInvalidID          = "invalid patient id"
	msgInvalidIDDetail    = "id must be a positive integer"
	msgNotFound           = "patient not found"
	msgNotFoundDetail     = "no patient found with the given id"
	msgInvalidPage        = "invalid page"
	msgInvalidPageDetail  = "page must be a positive integer"
	msgInvalidLimit       = "invalid limit"
	msgInvalidLimitDetail = "limit must be an integer between 1 and 100"
	msgNameRequired       = "name is required for search"
	msgNameRequiredDetail = "name must be provided"
)

const maxPage = 1 << 31

// Registration outcomes as recorded in metrics.
const (
	outcomeCreated        = "created"
	outcomeInvalid        = "invalid"
	outcomeDuplicateEmail = "duplicate_email"
	outcomeDuplicatePhone = "duplicate_phone"
	outcomeError          = "error"
)

// Notifier is told about every newly registered patient. Implementations
// must not block the caller.
type Notifier interface {
	PatientRegistered(ctx context.Context, patient *model.Patient)
}

type PatientService interface {
	Register(ctx context.Context, raw model.RawPatient) model.Result
	GetByID(ctx context.Context, rawID string) model.Result
	List(ctx context.Context, rawPage, rawLimit string) model.Result
	SearchByName(ctx context.Context, name, rawPage, rawLimit string) model.Result
}

type Service struct {
	repo     repository.PatientRepository
	notifier Notifier
	metrics  *metrics.Metrics
	log      zerolog.Logger
}

// NewService builds the registration workflow. notifier and m may be nil.
func NewService(repo repository.PatientRepository, notifier Notifier, m *metrics.Metrics, log zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		notifier: notifier,
		metrics:  m,
		log:      log.With().Str("service", "patient").Logger(),
	}
}

// Register runs sanitize, validate, duplicate email check, duplicate phone
// check and persist, stopping at the first disqualifying step.
func (s *Service) Register(ctx context.Context, raw model.RawPatient) model.Result {
	candidate := model.SanitizePatient(raw)

	validation := model.ValidatePatient(candidate)
	if !validation.Valid {
		s.metrics.ObserveRegistration(outcomeInvalid)
		return model.Failed(model.ResultInvalid, msgInvalidData, validation.Errors...)
	}

	emailTaken, err := s.repo.EmailExists(ctx, candidate.Email)
	if err != nil {
		return s.internal(err, "register", outcomeError)
	}
	if emailTaken {
		s.metrics.ObserveRegistration(outcomeDuplicateEmail)
		return model.Failed(model.ResultConflict, msgEmailTaken, msgEmailTakenDetail)
	}

	phoneTaken, err := s.repo.PhoneExists(ctx, candidate.Phone)
	if err != nil {
		return s.internal(err, "register", outcomeError)
	}
	if phoneTaken {
		s.metrics.ObserveRegistration(outcomeDuplicatePhone)
		return model.Failed(model.ResultConflict, msgPhoneTaken, msgPhoneTakenDetail)
	}

	patient, err := s.repo.Create(ctx, candidate)
	if err != nil {
		// Another request may have taken the email between the check and the
		// insert; the store constraint catches it.
		if apperrors.Is(err, apperrors.ErrDuplicateEmail) {
			s.metrics.ObserveRegistration(outcomeDuplicateEmail)
			return model.Failed(model.ResultConflict, msgEmailTaken, msgEmailTakenDetail)
		}
		return s.internal(err, "register", outcomeError)
	}

	s.metrics.ObserveRegistration(outcomeCreated)
	s.log.Info().Int64("patient_id", patient.ID).Msg("patient registered")

	if s.notifier != nil {
		s.notifier.PatientRegistered(ctx, patient)
	}

	return model.Succeeded("patient registered successfully", patient)
}

// GetByID looks up one patient. rawID is checked before any query is issued.
func (s *Service) GetByID(ctx context.Context, rawID string) model.Result {
	id, ok := parsePositiveInt(rawID)
	if !ok {
		return model.Failed(model.ResultInvalid, msgInvalidID, msgInvalidIDDetail)
	}

	patient, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return s.internal(err, "get", "")
	}
	if patient == nil {
		return model.Failed(model.ResultNotFound, msgNotFound, msgNotFoundDetail)
	}

	return model.Succeeded("patient found", patient)
}

// List returns one page of patients, newest first.
func (s *Service) List(ctx context.Context, rawPage, rawLimit string) model.Result {
	params, failure := parsePageParams(rawPage, rawLimit)
	if failure != nil {
		return *failure
	}

	page, err := s.repo.FindAll(ctx, params)
	if err != nil {
		return s.internal(err, "list", "")
	}

	return model.Succeeded("patients listed successfully", page)
}

// SearchByName returns patients whose name contains name, ordered by name.
func (s *Service) SearchByName(ctx context.Context, name, rawPage, rawLimit string) model.Result {
	term := strings.TrimSpace(name)
	if term == "" {
		return model.Failed(model.ResultInvalid, msgNameRequired, msgNameRequiredDetail)
	}

	params, failure := parsePageParams(rawPage, rawLimit)
	if failure != nil {
		return *failure
	}

	patients, err := s.repo.SearchByName(ctx, term, params)
	if err != nil {
		return s.internal(err, "search", "")
	}

	return model.Succeeded("search completed successfully", patients)
}

// internal logs err and returns the generic failure. The error text never
// leaves this function.
func (s *Service) internal(err error, op, outcome string) model.Result {
	s.log.Error().Err(err).Str("operation", op).Msg("patient operation failed")
	if outcome != "" {
		s.metrics.ObserveRegistration(outcome)
	}
	return model.Failed(model.ResultInternal, msgInternal, "an unexpected error occurred while processing the request")
}

func parsePageParams(rawPage, rawLimit string) (model.PageParams, *model.Result) {
	params := model.PageParams{Page: model.DefaultPage, Limit: model.DefaultLimit}

	if strings.TrimSpace(rawPage) != "" {
		page, ok := parsePositiveInt(rawPage)
		if !ok || page > maxPage {
			r := model.Failed(model.ResultInvalid, msgInvalidPage, msgInvalidPageDetail)
			return params, &r
		}
		params.Page = int(page)
	}

	if strings.TrimSpace(rawLimit) != "" {
		limit, ok := parsePositiveInt(rawLimit)
		if !ok || limit > model.MaxLimit {
			r := model.Failed(model.ResultInvalid, msgInvalidLimit, msgInvalidLimitDetail)
			return params, &r
		}
		params.Limit = int(limit)
	}

	return params, nil
}

func parsePositiveInt(s string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
