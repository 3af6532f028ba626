package appointment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kientrank3/revita-scheduling-api/internal/model"
	"github.com/kientrank3/revita-scheduling-api/internal/schedule"
	"github.com/kientrank3/revita-scheduling-api/internal/service/booking"
	apperrors "github.com/kientrank3/revita-scheduling-api/pkg/errors"
)

type fakeAppointmentRepo struct {
	mu           sync.Mutex
	appointments map[uuid.UUID]*model.Appointment
}

func (r *fakeAppointmentRepo) Get(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	apt, ok := r.appointments[id]
	if !ok {
		return nil, apperrors.NewNotFound("appointment", nil)
	}
	copied := *apt
	return &copied, nil
}

func (r *fakeAppointmentRepo) ListActiveForDate(_ context.Context, doctorID uuid.UUID, date time.Time) ([]*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Appointment
	for _, apt := range r.appointments {
		if apt.DoctorID == doctorID && apt.Date.Equal(date) && !apt.Status.IsCancelled() {
			copied := *apt
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeAppointmentRepo) Reserve(_ context.Context, appointment *model.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var entries []schedule.Entry
	for _, apt := range r.appointments {
		if apt.DoctorID != appointment.DoctorID || !apt.Date.Equal(appointment.Date) {
			continue
		}
		entries = append(entries, schedule.Entry{
			ID:       apt.ID,
			Interval: schedule.Interval{Start: apt.StartTime, End: apt.EndTime},
			Active:   !apt.Status.IsCancelled(),
		})
	}

	candidate := schedule.Interval{Start: appointment.StartTime, End: appointment.EndTime}
	if conflicts := schedule.FindConflicts(candidate, entries, nil); len(conflicts) > 0 {
		return &apperrors.ConflictError{
			Date:      appointment.Date,
			StartTime: conflicts[0].Interval.Start,
			EndTime:   conflicts[0].Interval.End,
		}
	}
	r.appointments[appointment.ID] = appointment
	return nil
}

func (r *fakeAppointmentRepo) UpdateStatus(_ context.Context, id uuid.UUID, status model.AppointmentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	apt, ok := r.appointments[id]
	if !ok {
		return apperrors.NewNotFound("appointment", nil)
	}
	apt.Status = status
	return nil
}

type fakeServiceRepo struct {
	services map[uuid.UUID]*model.Service
}

func (r *fakeServiceRepo) Get(_ context.Context, id uuid.UUID) (*model.Service, error) {
	svc, ok := r.services[id]
	if !ok {
		return nil, apperrors.NewNotFound("service", nil)
	}
	return svc, nil
}

func (r *fakeServiceRepo) ListForDoctor(_ context.Context, doctorID uuid.UUID) ([]*model.Service, error) {
	var out []*model.Service
	for _, svc := range r.services {
		if svc.DoctorID == doctorID {
			out = append(out, svc)
		}
	}
	return out, nil
}

func setupRouter(t *testing.T) (*gin.Engine, uuid.UUID, uuid.UUID) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	doctorID := uuid.New()
	svc := &model.Service{
		Base:            model.Base{ID: uuid.New()},
		Name:            "Consultation",
		DurationMinutes: 30,
		DoctorID:        doctorID,
	}
	repo := &fakeAppointmentRepo{appointments: make(map[uuid.UUID]*model.Appointment)}
	services := &fakeServiceRepo{services: map[uuid.UUID]*model.Service{svc.ID: svc}}

	bookingSvc := booking.NewService(repo, services, nil, 10*time.Second, nil)

	engine := gin.New()
	NewHandler(bookingSvc).RegisterRoutes(engine.Group("/api/v1"))
	return engine, doctorID, svc.ID
}

func reservationBody(doctorID, serviceID uuid.UUID) []byte {
	body := fmt.Sprintf(`{
		"patient_profile_id": %q,
		"doctor_id": %q,
		"service_id": %q,
		"date": "2025-03-10",
		"start_time": "2025-03-10T09:30:00Z",
		"end_time": "2025-03-10T10:00:00Z"
	}`, uuid.New(), doctorID, serviceID)
	return []byte(body)
}

func postAppointment(engine *gin.Engine, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/appointments", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestCreateAppointmentReturnsCreated(t *testing.T) {
	engine, doctorID, serviceID := setupRouter(t)

	w := postAppointment(engine, reservationBody(doctorID, serviceID))
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Success bool              `json:"success"`
		Data    model.Appointment `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, model.AppointmentStatusPending, resp.Data.Status)
	assert.NotEmpty(t, resp.Data.Code)
}

func TestCreateAppointmentConflictCarriesInterval(t *testing.T) {
	engine, doctorID, serviceID := setupRouter(t)

	w := postAppointment(engine, reservationBody(doctorID, serviceID))
	require.Equal(t, http.StatusCreated, w.Code)

	w = postAppointment(engine, reservationBody(doctorID, serviceID))
	require.Equal(t, http.StatusConflict, w.Code)

	var resp struct {
		Success bool `json:"success"`
		Error   struct {
			Code     string                   `json:"code"`
			Conflict *apperrors.ConflictError `json:"conflict"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, string(apperrors.CodeConflict), resp.Error.Code)
	require.NotNil(t, resp.Error.Conflict, "a 409 must name the conflicting interval")
	assert.Equal(t, time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC), resp.Error.Conflict.StartTime)
	assert.Equal(t, time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC), resp.Error.Conflict.EndTime)
}

func TestCreateAppointmentRejectsBadPayload(t *testing.T) {
	engine, doctorID, _ := setupRouter(t)

	// Missing service_id fails binding before the service is reached.
	body := []byte(fmt.Sprintf(`{"patient_profile_id": %q, "doctor_id": %q}`, uuid.New(), doctorID))
	w := postAppointment(engine, body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCancelAppointmentTransitions(t *testing.T) {
	engine, doctorID, serviceID := setupRouter(t)

	w := postAppointment(engine, reservationBody(doctorID, serviceID))
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Data model.Appointment `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	cancel := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/appointments/"+created.Data.ID.String()+"/cancel", nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		return w
	}

	w = cancel()
	require.Equal(t, http.StatusOK, w.Code)

	w = cancel()
	assert.NotEqual(t, http.StatusOK, w.Code, "cancelling twice must fail")
}
