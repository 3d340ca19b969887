package schedule

import (
	"context"
	"time"

	"apptbook/internal/timeutil"
)

// Reason classifies why a candidate was rejected. Rejections are expected,
// user-correctable outcomes and travel as data, never as errors.
type Reason string

const (
	ReasonInvalidOrdering      Reason = "invalid_ordering"
	ReasonInPast               Reason = "in_past"
	ReasonCrossesDay           Reason = "crosses_day"
	ReasonOutsideBusinessHours Reason = "outside_business_hours"
	ReasonUserConflict         Reason = "user_conflict"
	ReasonCustomerConflict     Reason = "customer_conflict"
)

// Candidate is a proposed, not-yet-persisted appointment. Start and End are
// wall-clock values whose zone rides in the time.Time location (the transport
// parses naive timestamps into the caller's zone before building one).
// ExcludeID is the id of the appointment being edited so it does not conflict
// with its own prior version; zero when creating.
type Candidate struct {
	UserID     int64
	CustomerID int64
	Start      time.Time
	End        time.Time
	ExcludeID  int64
}

type Result struct {
	OK     bool
	Reason Reason
}

func accepted() Result         { return Result{OK: true} }
func rejected(r Reason) Result { return Result{Reason: r} }

// InputError marks a contract violation in the candidate itself, detected
// before any store access is attempted.
type InputError struct {
	msg string
}

func (e *InputError) Error() string { return e.msg }

func inputError(msg string) error {
	return &InputError{msg: msg}
}

// Source supplies the existing appointments a candidate is checked against.
// Both calls are point-in-time snapshots. Errors are infrastructure
// failures; Validate returns them untouched rather than folding them into a
// rejection.
type Source interface {
	ByUser(ctx context.Context, userID int64) ([]Interval, error)
	ByCustomer(ctx context.Context, customerID int64) ([]Interval, error)
}

type Validator struct {
	src   Source
	hours BusinessHours
	now   func() time.Time
}

func NewValidator(src Source, hours BusinessHours) *Validator {
	return NewValidatorAt(src, hours, time.Now)
}

// NewValidatorAt pins the clock used for the not-in-the-past check.
func NewValidatorAt(src Source, hours BusinessHours, now func() time.Time) *Validator {
	return &Validator{src: src, hours: hours, now: now}
}

// Validate runs the ordered checks, cheapest first, stopping at the first
// failure:
//
//  1. end after start
//  2. start not in the past (compared in UTC)
//  3. start and end on the same calendar day, as seen in the start's zone
//  4. inside the business-hours window (reference zone)
//  5. no overlap with the user's other appointments
//  6. no overlap with the customer's other appointments
//
// It never persists anything; on success the caller converts to UTC and
// writes through the store.
func (v *Validator) Validate(ctx context.Context, c Candidate) (Result, error) {
	if c.UserID <= 0 {
		return Result{}, inputError("user id must be positive")
	}
	if c.CustomerID <= 0 {
		return Result{}, inputError("customer id must be positive")
	}
	if c.Start.IsZero() || c.End.IsZero() {
		return Result{}, inputError("start and end are required")
	}
	if c.ExcludeID < 0 {
		return Result{}, inputError("exclude id must not be negative")
	}

	if !c.End.After(c.Start) {
		return rejected(ReasonInvalidOrdering), nil
	}

	startUTC := c.Start.UTC()
	endUTC := c.End.UTC()

	now := v.now
	if now == nil {
		now = time.Now
	}
	if startUTC.Before(now().UTC()) {
		return rejected(ReasonInPast), nil
	}

	// Both endpoints are read in the start's zone, so input whose endpoints
	// carry two different offsets still gets a single answer.
	if !timeutil.SameDate(c.Start, c.End.In(c.Start.Location())) {
		return rejected(ReasonCrossesDay), nil
	}

	if !v.hours.Covers(c.Start, c.End) {
		return rejected(ReasonOutsideBusinessHours), nil
	}

	forUser, err := v.src.ByUser(ctx, c.UserID)
	if err != nil {
		return Result{}, err
	}
	if AnyOverlap(startUTC, endUTC, forUser, c.ExcludeID) {
		return rejected(ReasonUserConflict), nil
	}

	forCustomer, err := v.src.ByCustomer(ctx, c.CustomerID)
	if err != nil {
		return Result{}, err
	}
	if AnyOverlap(startUTC, endUTC, forCustomer, c.ExcludeID) {
		return rejected(ReasonCustomerConflict), nil
	}

	return accepted(), nil
}
