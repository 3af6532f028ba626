// Package roster manages staff work sessions. Conflict detection reuses
// the shared schedule package: booking and rostering drifting apart on
// overlap semantics would be a correctness bug.
package roster

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/kientrank3/revita-scheduling-api/internal/model"
	"github.com/kientrank3/revita-scheduling-api/internal/repository"
	"github.com/kientrank3/revita-scheduling-api/internal/schedule"
	apperrors "github.com/kientrank3/revita-scheduling-api/pkg/errors"
	"github.com/kientrank3/revita-scheduling-api/pkg/lock"
	"github.com/kientrank3/revita-scheduling-api/pkg/metrics"
)

// ConflictResult is the advisory pre-check outcome. The authoritative
// decision is still made inside the repository's guarded write.
type ConflictResult struct {
	HasConflict bool             `json:"has_conflict"`
	Conflicts   []model.TimeSlot `json:"conflicts,omitempty"`
}

type Service struct {
	sessions repository.WorkSessionRepository
	locks    *lock.KeyedMutex
	metrics  *metrics.Metrics
}

func NewService(sessions repository.WorkSessionRepository, m *metrics.Metrics) *Service {
	return &Service{
		sessions: sessions,
		locks:    lock.NewKeyedMutex(),
		metrics:  m,
	}
}

// Validate runs the advisory conflict check for a candidate session
// against a staff member's existing sessions. excludeID skips the
// session being edited.
func (s *Service) Validate(candidate *model.WorkSession, existing []*model.WorkSession, excludeID *uuid.UUID) ConflictResult {
	entries := make([]schedule.Entry, 0, len(existing))
	for _, session := range existing {
		entries = append(entries, schedule.Entry{
			ID:       session.ID,
			Interval: schedule.Interval{Start: session.StartTime, End: session.EndTime},
			Active:   !session.Status.IsCanceled(),
		})
	}

	interval := schedule.Interval{Start: candidate.StartTime, End: candidate.EndTime}
	conflicts := schedule.FindConflicts(interval, entries, excludeID)

	result := ConflictResult{HasConflict: len(conflicts) > 0}
	for _, c := range conflicts {
		result.Conflicts = append(result.Conflicts, model.TimeSlot{
			StartTime: c.Interval.Start,
			EndTime:   c.Interval.End,
		})
	}
	return result
}

// CreateSession validates and persists a new work session, serialized
// per staff id.
func (s *Service) CreateSession(ctx context.Context, req *model.CreateWorkSessionRequest) (*model.WorkSession, error) {
	if !req.EndTime.After(req.StartTime) {
		return nil, apperrors.NewValidation("session must have positive duration", nil)
	}

	now := time.Now()
	session := &model.WorkSession{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		StaffID:    req.StaffID,
		BoothID:    req.BoothID,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		ServiceIDs: req.ServiceIDs,
		Status:     model.WorkSessionStatusPending,
	}

	lockStart := time.Now()
	s.locks.Lock(session.StaffID)
	defer s.locks.Unlock(session.StaffID)
	if s.metrics != nil {
		s.metrics.LockWaitDuration.WithLabelValues("work_session").Observe(time.Since(lockStart).Seconds())
	}

	if err := s.sessions.CreateGuarded(ctx, session); err != nil {
		if _, ok := apperrors.AsConflict(err); ok {
			if s.metrics != nil {
				s.metrics.WorkSessionConflicts.Inc()
			}
			return nil, err
		}
		return nil, fmt.Errorf("failed to create work session: %w", err)
	}

	log.Info().
		Str("session_id", session.ID.String()).
		Str("staff_id", session.StaffID.String()).
		Msg("work session created")
	return session, nil
}

// UpdateSession applies a partial update. Re-saving a session with its
// own unchanged time range never reports a conflict against itself.
func (s *Service) UpdateSession(ctx context.Context, id uuid.UUID, req *model.UpdateWorkSessionRequest) (*model.WorkSession, error) {
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NewNotFound("work session", err)
	}

	if req.StartTime != nil {
		session.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		session.EndTime = *req.EndTime
	}
	if req.ServiceIDs != nil {
		session.ServiceIDs = req.ServiceIDs
	}
	if req.Status != nil {
		if !session.Status.CanTransitionTo(*req.Status) {
			return nil, apperrors.NewValidation(
				fmt.Sprintf("work session cannot move from %q to %q", session.Status, *req.Status), nil)
		}
		session.Status = *req.Status
	}
	if !session.EndTime.After(session.StartTime) {
		return nil, apperrors.NewValidation("session must have positive duration", nil)
	}
	session.UpdatedAt = time.Now()

	lockStart := time.Now()
	s.locks.Lock(session.StaffID)
	defer s.locks.Unlock(session.StaffID)
	if s.metrics != nil {
		s.metrics.LockWaitDuration.WithLabelValues("work_session").Observe(time.Since(lockStart).Seconds())
	}

	if err := s.sessions.UpdateGuarded(ctx, session); err != nil {
		if _, ok := apperrors.AsConflict(err); ok {
			if s.metrics != nil {
				s.metrics.WorkSessionConflicts.Inc()
			}
			return nil, err
		}
		return nil, fmt.Errorf("failed to update work session: %w", err)
	}
	return session, nil
}

// GetSession fetches one work session.
func (s *Service) GetSession(ctx context.Context, id uuid.UUID) (*model.WorkSession, error) {
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NewNotFound("work session", err)
	}
	return session, nil
}

// ListSessions returns a staff member's sessions overlapping [from, to).
func (s *Service) ListSessions(ctx context.Context, staffID uuid.UUID, from, to time.Time) ([]*model.WorkSession, error) {
	if !to.After(from) {
		return nil, apperrors.NewValidation("time range must have positive duration", nil)
	}
	sessions, err := s.sessions.ListForStaff(ctx, staffID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list work sessions: %w", err)
	}
	return sessions, nil
}
