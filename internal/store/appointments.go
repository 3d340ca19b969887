package store

import (
	"context"
	"time"

	"apptbook/internal/domain"
)

// TypeCount is one row of the appointment-distribution report: how many
// appointments of a given type start in a given month.
type TypeCount struct {
	Month time.Time
	Type  string
	Count int
}

// CustomerCount is one row of the per-customer report: how many appointments
// a customer has on the books.
type CustomerCount struct {
	CustomerID int64
	Count      int
}

// AppointmentRepository is the persistence surface for appointments. Reads
// return UTC-stamped snapshots. Writes that affect zero rows report
// ErrNotFound as a value, so callers can tell "legitimately absent" from an
// infrastructure failure.
type AppointmentRepository interface {
	GetByID(ctx context.Context, id int64) (domain.Appointment, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Appointment, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]domain.Appointment, error)
	ListByDay(ctx context.Context, dayStart, dayEnd time.Time) ([]domain.Appointment, error)
	ListAll(ctx context.Context) ([]domain.Appointment, error)
	Delete(ctx context.Context, id int64) error

	TypeCountsByMonth(ctx context.Context) ([]TypeCount, error)
	CountsByCustomer(ctx context.Context) ([]CustomerCount, error)

	// InSchedulingTransaction runs fn in one transaction holding both the
	// user's and the customer's calendar locks, so a validate-then-write
	// sequence cannot interleave with a competing save for the same slot.
	InSchedulingTransaction(ctx context.Context, userID, customerID int64, fn func(ctx context.Context, tx ScheduleTx) error) error
}

// ScheduleTx is the read-validate-write surface available inside a
// scheduling transaction.
type ScheduleTx interface {
	ListByUser(ctx context.Context, userID int64) ([]domain.Appointment, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]domain.Appointment, error)
	Insert(ctx context.Context, appt domain.Appointment) (domain.Appointment, error)
	Update(ctx context.Context, appt domain.Appointment) (domain.Appointment, error)
}
