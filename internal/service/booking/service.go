package booking

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/kientrank3/revita-scheduling-api/internal/model"
	"github.com/kientrank3/revita-scheduling-api/internal/repository"
	apperrors "github.com/kientrank3/revita-scheduling-api/pkg/errors"
	"github.com/kientrank3/revita-scheduling-api/pkg/lock"
	"github.com/kientrank3/revita-scheduling-api/pkg/metrics"
)

// Service runs the reservation transaction: the only writer of
// appointment rows and the only place the no-overlap invariant is
// enforced with finality.
type Service struct {
	appointments repository.AppointmentRepository
	services     repository.ServiceRepository
	locks        *lock.KeyedMutex
	dlock        lock.Locker
	lockTTL      time.Duration
	metrics      *metrics.Metrics
}

func NewService(
	appointments repository.AppointmentRepository,
	services repository.ServiceRepository,
	dlock lock.Locker,
	lockTTL time.Duration,
	m *metrics.Metrics,
) *Service {
	return &Service{
		appointments: appointments,
		services:     services,
		locks:        lock.NewKeyedMutex(),
		dlock:        dlock,
		lockTTL:      lockTTL,
		metrics:      m,
	}
}

// Reserve commits a candidate. Serialization is per doctor: the keyed
// mutex covers concurrent requests inside this process, the optional
// distributed lock covers other replicas, and the repository's own
// advisory lock is the final word either way.
func (s *Service) Reserve(ctx context.Context, candidate Candidate) (*model.Appointment, error) {
	if err := s.validateCandidate(ctx, candidate); err != nil {
		return nil, err
	}

	lockStart := time.Now()
	s.locks.Lock(candidate.DoctorID)
	defer s.locks.Unlock(candidate.DoctorID)

	if s.dlock != nil {
		acquired, err := s.acquireDistributed(ctx, candidate.DoctorID)
		if err != nil {
			return nil, apperrors.NewUnavailable("reservation lock unavailable", err)
		}
		if !acquired {
			return nil, apperrors.NewUnavailable("doctor schedule is busy, retry shortly", nil)
		}
		defer func() {
			if err := s.dlock.Unlock(ctx, candidate.DoctorID.String()); err != nil {
				log.Warn().Err(err).Str("doctor_id", candidate.DoctorID.String()).Msg("failed to release reservation lock")
			}
		}()
	}
	if s.metrics != nil {
		s.metrics.LockWaitDuration.WithLabelValues("reservation").Observe(time.Since(lockStart).Seconds())
	}

	now := time.Now()
	appointment := &model.Appointment{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Code:             generateCode(),
		PatientProfileID: candidate.PatientProfileID,
		DoctorID:         candidate.DoctorID,
		ServiceID:        candidate.ServiceID,
		Date:             candidate.Date,
		StartTime:        candidate.Slot.StartTime,
		EndTime:          candidate.Slot.EndTime,
		Status:           model.AppointmentStatusPending,
	}

	if err := s.appointments.Reserve(ctx, appointment); err != nil {
		if conflict, ok := apperrors.AsConflict(err); ok {
			if s.metrics != nil {
				s.metrics.ReservationConflicts.Inc()
			}
			log.Info().
				Str("doctor_id", candidate.DoctorID.String()).
				Time("start", conflict.StartTime).
				Time("end", conflict.EndTime).
				Msg("reservation rejected with conflict")
			return nil, err
		}
		return nil, fmt.Errorf("failed to reserve appointment: %w", err)
	}

	if s.metrics != nil {
		s.metrics.ReservationsCommitted.Inc()
	}
	log.Info().
		Str("appointment_id", appointment.ID.String()).
		Str("code", appointment.Code).
		Str("doctor_id", appointment.DoctorID.String()).
		Msg("reservation committed")
	return appointment, nil
}

// ConfirmFlow turns a completed wizard into a committed appointment and
// resets the flow on success.
func (s *Service) ConfirmFlow(ctx context.Context, flow *Flow, patientProfileID uuid.UUID) (*model.Appointment, error) {
	candidate, err := flow.Candidate(patientProfileID)
	if err != nil {
		return nil, err
	}

	appointment, err := s.Reserve(ctx, candidate)
	if err != nil {
		// Conflict and transport errors keep the flow state intact so
		// the user can pick another slot or retry.
		return nil, err
	}

	flow.Reset()
	if s.metrics != nil {
		s.metrics.BookingFlowsConfirmed.Inc()
	}
	return appointment, nil
}

// GetAppointment fetches one appointment.
func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	appointment, err := s.appointments.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NewNotFound("appointment", err)
	}
	return appointment, nil
}

// CancelAppointment moves an appointment to cancelled. Transitions are
// monotonic: completed and cancelled appointments stay where they are.
func (s *Service) CancelAppointment(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	appointment, err := s.appointments.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NewNotFound("appointment", err)
	}

	if !appointment.Status.CanTransitionTo(model.AppointmentStatusCancelled) {
		return nil, apperrors.NewValidation(
			fmt.Sprintf("appointment in status %q cannot be cancelled", appointment.Status), nil)
	}

	if err := s.appointments.UpdateStatus(ctx, id, model.AppointmentStatusCancelled); err != nil {
		return nil, err
	}
	appointment.Status = model.AppointmentStatusCancelled
	return appointment, nil
}

func (s *Service) validateCandidate(ctx context.Context, candidate Candidate) error {
	if candidate.PatientProfileID == uuid.Nil || candidate.DoctorID == uuid.Nil || candidate.ServiceID == uuid.Nil {
		return apperrors.NewValidation("patient, doctor and service are required", nil)
	}
	slotDuration := candidate.Slot.EndTime.Sub(candidate.Slot.StartTime)
	if slotDuration <= 0 {
		return apperrors.NewValidation("slot must have positive duration", nil)
	}

	service, err := s.services.Get(ctx, candidate.ServiceID)
	if err != nil {
		return apperrors.NewNotFound("service", err)
	}
	if slotDuration != service.Duration() {
		return apperrors.NewValidation(
			fmt.Sprintf("slot duration %s does not match service duration %s", slotDuration, service.Duration()), nil)
	}
	return nil
}

const distributedLockAttempts = 3

func (s *Service) acquireDistributed(ctx context.Context, doctorID uuid.UUID) (bool, error) {
	for attempt := 0; attempt < distributedLockAttempts; attempt++ {
		acquired, err := s.dlock.Lock(ctx, doctorID.String(), s.lockTTL)
		if err != nil || acquired {
			return acquired, err
		}
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
	}
	return false, nil
}

const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// generateCode builds a short human-readable appointment reference.
func generateCode() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing is unrecoverable for practical purposes;
		// fall back to a uuid-derived code rather than panicking.
		id := uuid.New()
		copy(buf, id[:8])
	}
	code := make([]byte, 8)
	for i, b := range buf {
		code[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return "APT-" + string(code)
}
