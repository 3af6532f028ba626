package availability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kientrank3/revita-scheduling-api/internal/model"
)

type fixture struct {
	specialty   *model.Specialty
	doctor      *model.Doctor
	service     *model.Service
	date        time.Time
	workingDays map[string]*model.WorkingDay
	booked      []*model.Appointment

	doctorsErr     error
	workingDaysErr error
}

func (f *fixture) List(_ context.Context) ([]*model.Specialty, error) {
	return []*model.Specialty{f.specialty}, nil
}

func (f *fixture) Get(_ context.Context, id uuid.UUID) (*model.Specialty, error) {
	return f.specialty, nil
}

type doctorRepo fixture

func (f *doctorRepo) Get(_ context.Context, id uuid.UUID) (*model.Doctor, error) {
	return f.doctor, nil
}

func (f *doctorRepo) ListBySpecialty(_ context.Context, specialtyID uuid.UUID) ([]*model.Doctor, error) {
	if f.doctorsErr != nil {
		return nil, f.doctorsErr
	}
	if specialtyID != f.specialty.ID {
		return nil, nil
	}
	return []*model.Doctor{f.doctor}, nil
}

type serviceRepo fixture

func (f *serviceRepo) Get(_ context.Context, id uuid.UUID) (*model.Service, error) {
	return f.service, nil
}

func (f *serviceRepo) ListForDoctor(_ context.Context, doctorID uuid.UUID) ([]*model.Service, error) {
	if doctorID != f.doctor.ID {
		return nil, nil
	}
	return []*model.Service{f.service}, nil
}

type workingDayRepo fixture

func (f *workingDayRepo) GetForDate(_ context.Context, doctorID uuid.UUID, date time.Time) (*model.WorkingDay, error) {
	if f.workingDaysErr != nil {
		return nil, f.workingDaysErr
	}
	return f.workingDays[doctorID.String()+date.Format(model.DateLayout)], nil
}

func (f *workingDayRepo) ListForMonth(_ context.Context, doctorID uuid.UUID, month time.Time) ([]*model.WorkingDay, error) {
	if f.workingDaysErr != nil {
		return nil, f.workingDaysErr
	}
	var out []*model.WorkingDay
	for _, day := range f.workingDays {
		if day.DoctorID == doctorID && day.Date.Month() == month.Month() {
			out = append(out, day)
		}
	}
	return out, nil
}

type appointmentRepo fixture

func (f *appointmentRepo) Get(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	return nil, errors.New("not implemented")
}

func (f *appointmentRepo) ListActiveForDate(_ context.Context, doctorID uuid.UUID, date time.Time) ([]*model.Appointment, error) {
	var out []*model.Appointment
	for _, apt := range f.booked {
		if apt.DoctorID == doctorID && apt.Date.Equal(date) && !apt.Status.IsCancelled() {
			out = append(out, apt)
		}
	}
	return out, nil
}

func (f *appointmentRepo) Reserve(_ context.Context, _ *model.Appointment) error {
	return errors.New("not implemented")
}

func (f *appointmentRepo) UpdateStatus(_ context.Context, _ uuid.UUID, _ model.AppointmentStatus) error {
	return errors.New("not implemented")
}

// newFixture builds the cardiology scenario: working 09:00-11:00 on
// 2025-03-10, one 15-minute appointment at 09:00-09:30's leading half,
// a 30-minute consultation service.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	specialty := &model.Specialty{Base: model.Base{ID: uuid.New()}, Name: "Cardiology"}
	doctor := &model.Doctor{Base: model.Base{ID: uuid.New()}, DisplayName: "Dr. Tran", SpecialtyID: specialty.ID}
	service := &model.Service{Base: model.Base{ID: uuid.New()}, Name: "Consultation", DurationMinutes: 30, DoctorID: doctor.ID}

	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	day := &model.WorkingDay{
		Base:     model.Base{ID: uuid.New()},
		DoctorID: doctor.ID,
		Date:     date,
		Intervals: []model.WorkingInterval{{
			ID:        uuid.New(),
			StartTime: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
			EndTime:   time.Date(2025, 3, 10, 11, 0, 0, 0, time.UTC),
		}},
	}

	booked := []*model.Appointment{{
		Base:      model.Base{ID: uuid.New()},
		DoctorID:  doctor.ID,
		Date:      date,
		StartTime: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC),
		Status:    model.AppointmentStatusConfirmed,
	}}

	return &fixture{
		specialty:   specialty,
		doctor:      doctor,
		service:     service,
		date:        date,
		workingDays: map[string]*model.WorkingDay{doctor.ID.String() + date.Format(model.DateLayout): day},
		booked:      booked,
	}
}

func newResolver(f *fixture) *Service {
	return NewService(f, (*doctorRepo)(f), (*serviceRepo)(f), (*workingDayRepo)(f), (*appointmentRepo)(f), nil)
}

func TestSlotsForCardiologyScenario(t *testing.T) {
	f := newFixture(t)
	svc := newResolver(f)

	slots, err := svc.SlotsFor(context.Background(), f.doctor.ID, f.service.ID, f.date)
	require.NoError(t, err)
	require.Len(t, slots, 3)
	assert.Equal(t, time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC), slots[0].StartTime)
	assert.Equal(t, time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC), slots[1].StartTime)
	assert.Equal(t, time.Date(2025, 3, 10, 10, 30, 0, 0, time.UTC), slots[2].StartTime)
}

func TestDoctorsAvailableOn(t *testing.T) {
	f := newFixture(t)
	svc := newResolver(f)

	doctors, err := svc.DoctorsAvailableOn(context.Background(), f.specialty.ID, f.date)
	require.NoError(t, err)
	require.Len(t, doctors, 1)
	assert.Equal(t, f.doctor.ID, doctors[0].ID)

	// A day the doctor does not work at all: confirmed zero, no error.
	otherDate := f.date.AddDate(0, 0, 1)
	doctors, err = svc.DoctorsAvailableOn(context.Background(), f.specialty.ID, otherDate)
	require.NoError(t, err)
	assert.Empty(t, doctors)
}

func TestFetchFailureIsUnknownNotZero(t *testing.T) {
	f := newFixture(t)
	f.workingDaysErr = errors.New("upstream down")
	svc := newResolver(f)

	_, err := svc.SlotsFor(context.Background(), f.doctor.ID, f.service.ID, f.date)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAvailabilityUnknown,
		"a fetch failure must surface as unknown availability, never as fully booked")

	_, err = svc.DoctorsAvailableOn(context.Background(), f.specialty.ID, f.date)
	assert.ErrorIs(t, err, ErrAvailabilityUnknown)
}

func TestDoctorsInSpecialtyUnfiltered(t *testing.T) {
	f := newFixture(t)
	svc := newResolver(f)

	// The BY_DOCTOR roster ignores availability entirely.
	doctors, err := svc.DoctorsInSpecialty(context.Background(), f.specialty.ID)
	require.NoError(t, err)
	assert.Len(t, doctors, 1)
}

func TestServicesForFiltersFullyBooked(t *testing.T) {
	f := newFixture(t)
	// Book the whole working interval.
	f.booked = []*model.Appointment{{
		Base:      model.Base{ID: uuid.New()},
		DoctorID:  f.doctor.ID,
		Date:      f.date,
		StartTime: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2025, 3, 10, 11, 0, 0, 0, time.UTC),
		Status:    model.AppointmentStatusConfirmed,
	}}
	svc := newResolver(f)

	services, err := svc.ServicesFor(context.Background(), f.doctor.ID, f.date)
	require.NoError(t, err)
	assert.Empty(t, services, "a fully booked day offers no services")
}

func TestDatesAvailableFor(t *testing.T) {
	f := newFixture(t)
	svc := newResolver(f)

	days, err := svc.DatesAvailableFor(context.Background(), f.doctor.ID, f.date)
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.True(t, days[0].Date.Equal(f.date))
}
