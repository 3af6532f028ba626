// Package availability resolves doctor and slot availability for the
// booking flow. It never writes: the appointment store is mutated only
// by the reservation transaction.
package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/kientrank3/revita-scheduling-api/internal/model"
	"github.com/kientrank3/revita-scheduling-api/internal/repository"
	"github.com/kientrank3/revita-scheduling-api/internal/schedule"
	"github.com/kientrank3/revita-scheduling-api/pkg/metrics"
)

// ErrAvailabilityUnknown marks an upstream fetch failure. Callers must
// not read it as "fully booked": no data is not zero availability.
var ErrAvailabilityUnknown = errors.New("availability unknown")

// IsUnknown reports whether err stems from an upstream fetch failure.
func IsUnknown(err error) bool {
	return errors.Is(err, ErrAvailabilityUnknown)
}

const (
	refDataTTL     = 5 * time.Minute
	refDataCleanup = 10 * time.Minute
)

type Service struct {
	specialties  repository.SpecialtyRepository
	doctors      repository.DoctorRepository
	services     repository.ServiceRepository
	workingDays  repository.WorkingDayRepository
	appointments repository.AppointmentRepository
	refCache     *cache.Cache
	metrics      *metrics.Metrics
}

func NewService(
	specialties repository.SpecialtyRepository,
	doctors repository.DoctorRepository,
	services repository.ServiceRepository,
	workingDays repository.WorkingDayRepository,
	appointments repository.AppointmentRepository,
	m *metrics.Metrics,
) *Service {
	return &Service{
		specialties:  specialties,
		doctors:      doctors,
		services:     services,
		workingDays:  workingDays,
		appointments: appointments,
		refCache:     cache.New(refDataTTL, refDataCleanup),
		metrics:      m,
	}
}

// Specialties returns the immutable specialty reference data, cached.
func (s *Service) Specialties(ctx context.Context) ([]*model.Specialty, error) {
	if cached, ok := s.refCache.Get("specialties"); ok {
		return cached.([]*model.Specialty), nil
	}
	specialties, err := s.specialties.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch specialties: %v", ErrAvailabilityUnknown, err)
	}
	s.refCache.SetDefault("specialties", specialties)
	return specialties, nil
}

// DoctorsInSpecialty returns the unfiltered roster, used by the
// BY_DOCTOR strategy where the date is chosen after the doctor.
func (s *Service) DoctorsInSpecialty(ctx context.Context, specialtyID uuid.UUID) ([]*model.Doctor, error) {
	key := "doctors:" + specialtyID.String()
	if cached, ok := s.refCache.Get(key); ok {
		return cached.([]*model.Doctor), nil
	}
	doctors, err := s.doctors.ListBySpecialty(ctx, specialtyID)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch doctors: %v", ErrAvailabilityUnknown, err)
	}
	s.refCache.SetDefault(key, doctors)
	return doctors, nil
}

// DoctorsAvailableOn filters the specialty roster to doctors with at
// least one bookable slot on the date, for any of their services.
func (s *Service) DoctorsAvailableOn(ctx context.Context, specialtyID uuid.UUID, date time.Time) ([]*model.Doctor, error) {
	doctors, err := s.DoctorsInSpecialty(ctx, specialtyID)
	if err != nil {
		return nil, err
	}

	var available []*model.Doctor
	for _, doctor := range doctors {
		ok, err := s.hasAnySlot(ctx, doctor.ID, date)
		if err != nil {
			return nil, err
		}
		if ok {
			available = append(available, doctor)
		}
	}
	return available, nil
}

// DatesAvailableFor returns the doctor's working days in the given month.
func (s *Service) DatesAvailableFor(ctx context.Context, doctorID uuid.UUID, month time.Time) ([]*model.WorkingDay, error) {
	days, err := s.workingDays.ListForMonth(ctx, doctorID, month)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch working days: %v", ErrAvailabilityUnknown, err)
	}
	return days, nil
}

// ServicesFor returns the doctor's services that still have at least one
// bookable slot on the date.
func (s *Service) ServicesFor(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]*model.Service, error) {
	services, err := s.services.ListForDoctor(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch services: %v", ErrAvailabilityUnknown, err)
	}

	working, booked, err := s.dayContext(ctx, doctorID, date)
	if err != nil {
		return nil, err
	}
	if len(working) == 0 {
		return nil, nil
	}

	var bookable []*model.Service
	for _, svc := range services {
		slots, err := schedule.ComputeSlots(working, svc.Duration(), booked, 0)
		if err != nil {
			return nil, err
		}
		if len(slots) > 0 {
			bookable = append(bookable, svc)
		}
	}
	return bookable, nil
}

// SlotsFor computes the bookable slots for one doctor, service and date,
// stepping at the service duration.
func (s *Service) SlotsFor(ctx context.Context, doctorID, serviceID uuid.UUID, date time.Time) ([]model.TimeSlot, error) {
	return s.SlotsForStep(ctx, doctorID, serviceID, date, 0)
}

// SlotsForStep is SlotsFor with a caller-chosen step between slot
// starts. A zero granularity falls back to the service duration.
func (s *Service) SlotsForStep(ctx context.Context, doctorID, serviceID uuid.UUID, date time.Time, granularity time.Duration) ([]model.TimeSlot, error) {
	svc, err := s.services.Get(ctx, serviceID)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch service: %v", ErrAvailabilityUnknown, err)
	}

	working, booked, err := s.dayContext(ctx, doctorID, date)
	if err != nil {
		return nil, err
	}
	if len(working) == 0 {
		return nil, nil
	}

	intervals, err := schedule.ComputeSlots(working, svc.Duration(), booked, granularity)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.SlotsComputed.Observe(float64(len(intervals)))
	}

	slots := make([]model.TimeSlot, 0, len(intervals))
	for _, ivl := range intervals {
		slots = append(slots, model.TimeSlot{StartTime: ivl.Start, EndTime: ivl.End})
	}
	return slots, nil
}

func (s *Service) hasAnySlot(ctx context.Context, doctorID uuid.UUID, date time.Time) (bool, error) {
	services, err := s.ServicesFor(ctx, doctorID, date)
	if err != nil {
		return false, err
	}
	return len(services) > 0, nil
}

// dayContext loads the working intervals and booked intervals for a
// doctor's day. A missing working day yields no intervals, which is a
// confirmed zero, not an unknown.
func (s *Service) dayContext(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]schedule.Interval, []schedule.Interval, error) {
	day, err := s.workingDays.GetForDate(ctx, doctorID, date)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: fetch working day: %v", ErrAvailabilityUnknown, err)
	}
	if day == nil {
		return nil, nil, nil
	}

	working := make([]schedule.Interval, 0, len(day.Intervals))
	for _, ivl := range day.Intervals {
		working = append(working, schedule.Interval{Start: ivl.StartTime, End: ivl.EndTime})
	}

	appointments, err := s.appointments.ListActiveForDate(ctx, doctorID, date)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: fetch appointments: %v", ErrAvailabilityUnknown, err)
	}

	booked := make([]schedule.Interval, 0, len(appointments))
	for _, apt := range appointments {
		booked = append(booked, schedule.Interval{Start: apt.StartTime, End: apt.EndTime})
	}
	return working, booked, nil
}
