// Package booking holds the wizard state machine and the reservation
// transaction that commits its outcome.
package booking

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kientrank3/revita-scheduling-api/internal/model"
	apperrors "github.com/kientrank3/revita-scheduling-api/pkg/errors"
)

// Strategy fixes the order of the middle wizard steps. Step count is 6
// for both strategies.
type Strategy string

const (
	StrategyByDate   Strategy = "BY_DATE"   // specialty, date, doctor, service, slot, confirm
	StrategyByDoctor Strategy = "BY_DOCTOR" // specialty, doctor, date, service, slot, confirm
)

func (s Strategy) valid() bool {
	return s == StrategyByDate || s == StrategyByDoctor
}

// StepKind names what a wizard step selects.
type StepKind string

const (
	StepChooseSpecialty StepKind = "choose_specialty"
	StepChooseDate      StepKind = "choose_date"
	StepChooseDoctor    StepKind = "choose_doctor"
	StepChooseService   StepKind = "choose_service"
	StepChooseSlot      StepKind = "choose_slot"
	StepConfirm         StepKind = "confirm"
)

const stepCount = 6

func stepOrder(strategy Strategy) [stepCount]StepKind {
	if strategy == StrategyByDoctor {
		return [stepCount]StepKind{
			StepChooseSpecialty, StepChooseDoctor, StepChooseDate,
			StepChooseService, StepChooseSlot, StepConfirm,
		}
	}
	return [stepCount]StepKind{
		StepChooseSpecialty, StepChooseDate, StepChooseDoctor,
		StepChooseService, StepChooseSlot, StepConfirm,
	}
}

// Selections holds the partial choices accumulated by a flow.
type Selections struct {
	SpecialtyID *uuid.UUID      `json:"specialty_id,omitempty"`
	DoctorID    *uuid.UUID      `json:"doctor_id,omitempty"`
	Date        *time.Time      `json:"date,omitempty"`
	ServiceID   *uuid.UUID      `json:"service_id,omitempty"`
	Slot        *model.TimeSlot `json:"slot,omitempty"`
}

// Candidate is a fully-specified reservation request handed to the
// reservation transaction.
type Candidate struct {
	PatientProfileID uuid.UUID
	DoctorID         uuid.UUID
	ServiceID        uuid.UUID
	Date             time.Time
	Slot             model.TimeSlot
}

// Flow is one booking wizard instance. It is owned by a single booking
// session and never shared across users; the mutex only guards against
// a client retrying a request that is still in flight.
type Flow struct {
	mu sync.Mutex

	id         uuid.UUID
	strategy   Strategy
	step       int // 1-based
	revision   uint64
	selections Selections
	candidates map[StepKind]interface{}
}

// Snapshot is the externally visible flow state.
type Snapshot struct {
	ID         uuid.UUID  `json:"id"`
	Strategy   Strategy   `json:"strategy"`
	Step       int        `json:"step"`
	StepKind   StepKind   `json:"step_kind"`
	Revision   uint64     `json:"revision"`
	Selections Selections `json:"selections"`
}

// NewFlow starts a wizard at step 1 with the given strategy.
func NewFlow(strategy Strategy) (*Flow, error) {
	if !strategy.valid() {
		return nil, apperrors.NewValidation(fmt.Sprintf("unknown booking strategy %q", strategy), nil)
	}
	return &Flow{
		id:         uuid.New(),
		strategy:   strategy,
		step:       1,
		candidates: make(map[StepKind]interface{}),
	}, nil
}

func (f *Flow) ID() uuid.UUID {
	return f.id
}

// Snapshot returns a copy of the current state.
func (f *Flow) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	order := stepOrder(f.strategy)
	return Snapshot{
		ID:         f.id,
		Strategy:   f.strategy,
		Step:       f.step,
		StepKind:   order[f.step-1],
		Revision:   f.revision,
		Selections: f.selections,
	}
}

// SetStrategy re-selects the strategy, resetting the whole flow to
// step 1 with no selections.
func (f *Flow) SetStrategy(strategy Strategy) error {
	if !strategy.valid() {
		return apperrors.NewValidation(fmt.Sprintf("unknown booking strategy %q", strategy), nil)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.strategy = strategy
	f.reset()
	return nil
}

func (f *Flow) reset() {
	f.step = 1
	f.selections = Selections{}
	f.candidates = make(map[StepKind]interface{})
	f.revision++
}

// Reset discards all selections and returns to step 1.
func (f *Flow) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reset()
}

// SelectSpecialty applies a specialty choice.
func (f *Flow) SelectSpecialty(id uuid.UUID) error {
	return f.selectValue(StepChooseSpecialty, func() { f.selections.SpecialtyID = &id })
}

// SelectDoctor applies a doctor choice.
func (f *Flow) SelectDoctor(id uuid.UUID) error {
	return f.selectValue(StepChooseDoctor, func() { f.selections.DoctorID = &id })
}

// SelectDate applies a date choice.
func (f *Flow) SelectDate(date time.Time) error {
	return f.selectValue(StepChooseDate, func() { f.selections.Date = &date })
}

// SelectService applies a service choice.
func (f *Flow) SelectService(id uuid.UUID) error {
	return f.selectValue(StepChooseService, func() { f.selections.ServiceID = &id })
}

// SelectSlot applies a time-slot choice.
func (f *Flow) SelectSlot(slot model.TimeSlot) error {
	if !slot.EndTime.After(slot.StartTime) {
		return apperrors.NewValidation("slot must have positive duration", nil)
	}
	return f.selectValue(StepChooseSlot, func() { f.selections.Slot = &slot })
}

// selectValue records a choice for the step selecting kind. The step
// must be the current one or an already visited one. Choosing at step k
// clears every selection and cached candidate list for steps k+1..6, so
// stale combinations (a slot chosen for a since-changed doctor) cannot
// survive.
func (f *Flow) selectValue(kind StepKind, apply func()) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	order := stepOrder(f.strategy)
	position := 0
	for i, k := range order {
		if k == kind {
			position = i + 1
			break
		}
	}
	if position == 0 || position >= stepCount {
		return apperrors.NewValidation(fmt.Sprintf("step %q accepts no selection", kind), nil)
	}
	if position > f.step {
		return apperrors.NewValidation(fmt.Sprintf("cannot select %q before reaching its step", kind), nil)
	}

	apply()
	for i := position; i < stepCount; i++ {
		f.clearSelection(order[i])
		delete(f.candidates, order[i])
	}
	f.revision++
	return nil
}

func (f *Flow) clearSelection(kind StepKind) {
	switch kind {
	case StepChooseSpecialty:
		f.selections.SpecialtyID = nil
	case StepChooseDate:
		f.selections.Date = nil
	case StepChooseDoctor:
		f.selections.DoctorID = nil
	case StepChooseService:
		f.selections.ServiceID = nil
	case StepChooseSlot:
		f.selections.Slot = nil
	}
}

func (f *Flow) selected(kind StepKind) bool {
	switch kind {
	case StepChooseSpecialty:
		return f.selections.SpecialtyID != nil
	case StepChooseDate:
		return f.selections.Date != nil
	case StepChooseDoctor:
		return f.selections.DoctorID != nil
	case StepChooseService:
		return f.selections.ServiceID != nil
	case StepChooseSlot:
		return f.selections.Slot != nil
	default:
		return true
	}
}

// Next advances one step. The current step's selection must be made
// first; the handler disables "next" on validation errors rather than
// surfacing them as failures.
func (f *Flow) Next() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.step >= stepCount {
		return apperrors.NewValidation("flow is already at the confirmation step", nil)
	}
	order := stepOrder(f.strategy)
	current := order[f.step-1]
	if !f.selected(current) {
		return apperrors.NewValidation(fmt.Sprintf("step %q requires a selection before advancing", current), nil)
	}
	f.step++
	return nil
}

// Prev steps back without clearing selections, so the user can revise
// and return without losing later context. Changing a value on the
// revisited step still triggers the forward-clearing rule.
func (f *Flow) Prev() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step > 1 {
		f.step--
	}
}

// Revision is the stale-response guard token. Capture it before an
// availability fetch and pass it to PutCandidates when the response
// arrives.
func (f *Flow) Revision() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.revision
}

// PutCandidates caches a fetched candidate list for a step, unless the
// flow has moved on since the fetch started. Returns false when the
// response was stale and dropped.
func (f *Flow) PutCandidates(revision uint64, kind StepKind, data interface{}) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if revision != f.revision {
		return false
	}
	f.candidates[kind] = data
	return true
}

// Candidates returns the cached candidate list for a step, if present.
func (f *Flow) Candidates(kind StepKind) (interface{}, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.candidates[kind]
	return data, ok
}

// Candidate assembles the reservation candidate. The flow must be at
// the confirmation step with every selection in place.
func (f *Flow) Candidate(patientProfileID uuid.UUID) (Candidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.step != stepCount {
		return Candidate{}, apperrors.NewValidation("flow has not reached the confirmation step", nil)
	}
	sel := f.selections
	if sel.SpecialtyID == nil || sel.DoctorID == nil || sel.Date == nil || sel.ServiceID == nil || sel.Slot == nil {
		return Candidate{}, apperrors.NewValidation("flow selections are incomplete", nil)
	}
	if patientProfileID == uuid.Nil {
		return Candidate{}, apperrors.NewValidation("patient profile is required", nil)
	}
	return Candidate{
		PatientProfileID: patientProfileID,
		DoctorID:         *sel.DoctorID,
		ServiceID:        *sel.ServiceID,
		Date:             *sel.Date,
		Slot:             *sel.Slot,
	}, nil
}
