package notification

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jwalitptl/patient-registry/internal/email"
	"github.com/jwalitptl/patient-registry/internal/model"
	"github.com/jwalitptl/patient-registry/pkg/messaging"
	"github.com/jwalitptl/patient-registry/pkg/metrics"
)

const (
	EventPatientRegistered = "patient.registered"

	channelEvent = "event"
	channelEmail = "email"

	defaultSendTimeout = 10 * time.Second
)

// PatientRegisteredEvent is the payload published for a new patient.
type PatientRegisteredEvent struct {
	PatientID    int64     `json:"patientId"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	RegisteredAt time.Time `json:"registeredAt"`
}

type Config struct {
	Topic       string
	SendTimeout time.Duration
}

// Service fans a registration out to the event broker and the welcome email
// in the background. Failures are logged and counted, never returned.
type Service struct {
	broker  messaging.Broker
	email   email.Service
	topic   string
	timeout time.Duration
	metrics *metrics.Metrics
	log     zerolog.Logger

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewService(cfg Config, broker messaging.Broker, emailSvc email.Service, m *metrics.Metrics, log zerolog.Logger) *Service {
	if broker == nil {
		broker = messaging.NewNoopBroker()
	}
	if cfg.Topic == "" {
		cfg.Topic = EventPatientRegistered
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = defaultSendTimeout
	}
	return &Service{
		broker:  broker,
		email:   emailSvc,
		topic:   cfg.Topic,
		timeout: cfg.SendTimeout,
		metrics: m,
		log:     log.With().Str("service", "notification").Logger(),
	}
}

// PatientRegistered schedules the notifications and returns immediately.
// Calls after Close are dropped.
func (s *Service) PatientRegistered(ctx context.Context, patient *model.Patient) {
	if patient == nil {
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.log.Warn().Int64("patient_id", patient.ID).Msg("notifier closed, dropping registration")
		return
	}
	s.wg.Add(1)
	s.mu.Unlock()

	// The request context ends with the response.
	ctx = context.WithoutCancel(ctx)
	p := *patient

	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		s.process(ctx, &p)
	}()
}

func (s *Service) process(ctx context.Context, patient *model.Patient) {
	event := messaging.NewMessage(EventPatientRegistered, PatientRegisteredEvent{
		PatientID:    patient.ID,
		Name:         patient.Name,
		Email:        patient.Email,
		RegisteredAt: patient.CreatedAt,
	})

	err := s.broker.Publish(ctx, s.topic, event)
	s.metrics.ObserveNotification(channelEvent, err)
	if err != nil {
		s.log.Error().Err(err).Int64("patient_id", patient.ID).Msg("failed to publish registration event")
	}

	if s.email == nil {
		return
	}
	err = s.email.SendWelcome(ctx, patient.Email, patient.Name)
	s.metrics.ObserveNotification(channelEmail, err)
	if err != nil {
		s.log.Error().Err(err).Int64("patient_id", patient.ID).Msg("failed to send welcome email")
	}
}

// Close stops accepting work, waits for in-flight notifications until ctx is
// done, then closes the broker. The broker is closed on timeout as well.
func (s *Service) Close(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		if err := s.broker.Close(); err != nil {
			s.log.Error().Err(err).Msg("failed to close broker")
		}
		return fmt.Errorf("notifications still in flight: %w", ctx.Err())
	}

	return s.broker.Close()
}
