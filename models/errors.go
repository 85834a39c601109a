package models

import (
	"errors"
	"fmt"
)

var (
	ErrValidation           = errors.New("validation error")
	ErrBookingConflict      = errors.New("booking conflict")
	ErrInfeasibleDemand     = errors.New("infeasible demand")
	ErrSearchBudgetExceeded = errors.New("search budget exceeded")
	ErrGenerationInProgress = errors.New("timetable generation already in progress")
)

// ValidationError reports malformed input: unknown identifiers, a slot outside
// the universe, or a teacher/class/subject triple with no Demand.
type ValidationError struct {
	Detail string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Detail
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func Invalidf(format string, args ...any) error {
	return &ValidationError{Detail: fmt.Sprintf(format, args...)}
}

type ConflictSide string

const (
	ConflictTeacher ConflictSide = "teacher"
	ConflictClass   ConflictSide = "class"
)

// BookingConflict reports which side of a booking already occupies the slot.
type BookingConflict struct {
	Side     ConflictSide `json:"side"`
	EntityID int64        `json:"entity_id"`
	Name     string       `json:"name"`
	Day      string       `json:"day"`
	Time     string       `json:"time"`
}

func (e *BookingConflict) Error() string {
	return fmt.Sprintf("%s %q is already booked on %s at %s", e.Side, e.Name, e.Day, e.Time)
}

func (e *BookingConflict) Unwrap() error {
	return ErrBookingConflict
}

type StopReason string

const (
	StopNone       StopReason = ""
	StopExhausted  StopReason = "exhausted"   // every branch was tried
	StopStepBudget StopReason = "step_budget" // backtrack budget spent
	StopDeadline   StopReason = "deadline"    // context deadline or cancellation
)

// InfeasibleDemandError describes a partial schedule. It matches
// ErrInfeasibleDemand, and ErrSearchBudgetExceeded when the search was cut
// short rather than proven impossible.
type InfeasibleDemandError struct {
	Reason   StopReason
	Unplaced int
}

func (e *InfeasibleDemandError) Error() string {
	if e.BudgetExceeded() {
		return fmt.Sprintf("search budget exceeded (%s): %d lectures unplaced", e.Reason, e.Unplaced)
	}
	return fmt.Sprintf("infeasible demand: %d lectures unplaced", e.Unplaced)
}

func (e *InfeasibleDemandError) BudgetExceeded() bool {
	return e.Reason == StopStepBudget || e.Reason == StopDeadline
}

func (e *InfeasibleDemandError) Is(target error) bool {
	switch target {
	case ErrInfeasibleDemand:
		return true
	case ErrSearchBudgetExceeded:
		return e.BudgetExceeded()
	}
	return false
}

// ErrorKind names the error category exposed to API clients.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation_error"
	case errors.Is(err, ErrBookingConflict):
		return "booking_conflict"
	case errors.Is(err, ErrSearchBudgetExceeded):
		return "search_budget_exceeded"
	case errors.Is(err, ErrInfeasibleDemand):
		return "infeasible_demand"
	case errors.Is(err, ErrGenerationInProgress):
		return "generation_in_progress"
	default:
		return "internal_error"
	}
}
