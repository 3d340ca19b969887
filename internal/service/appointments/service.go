package appointments

import (
	"context"
	"strings"
	"time"

	"apptbook/internal/domain"
	"apptbook/internal/schedule"
	"apptbook/internal/store"
)

type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func validationError(msg string) error {
	return &ValidationError{msg: msg}
}

type Service struct {
	repo  store.AppointmentRepository
	hours schedule.BusinessHours
	now   func() time.Time
}

func NewService(repo store.AppointmentRepository, hours schedule.BusinessHours) *Service {
	return &Service{repo: repo, hours: hours, now: time.Now}
}

// SaveInput carries one proposed appointment. Start and End are wall-clock
// values whose zone rides in the time.Time location. Actor identifies who is
// saving, for the audit columns; it is always passed explicitly, never read
// from ambient state.
type SaveInput struct {
	UserID      int64
	CustomerID  int64
	Title       string
	Description string
	Location    string
	Contact     string
	Type        string
	URL         string
	Start       time.Time
	End         time.Time
	Actor       string
}

func (in SaveInput) candidate(excludeID int64) schedule.Candidate {
	return schedule.Candidate{
		UserID:     in.UserID,
		CustomerID: in.CustomerID,
		Start:      in.Start,
		End:        in.End,
		ExcludeID:  excludeID,
	}
}

func (in SaveInput) record() (domain.Appointment, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return domain.Appointment{}, validationError("title is required")
	}
	kind := strings.TrimSpace(in.Type)
	if kind == "" {
		return domain.Appointment{}, validationError("type is required")
	}
	actor := strings.TrimSpace(in.Actor)
	if actor == "" {
		return domain.Appointment{}, validationError("actor is required")
	}

	return domain.Appointment{
		UserID:      in.UserID,
		CustomerID:  in.CustomerID,
		Title:       title,
		Description: in.Description,
		Location:    in.Location,
		Contact:     in.Contact,
		Type:        kind,
		URL:         in.URL,
		StartTime:   in.Start.UTC(),
		EndTime:     in.End.UTC(),
		CreatedBy:   actor,
		UpdatedBy:   actor,
	}, nil
}

// Schedule validates the candidate and, when accepted, persists it. The
// snapshot reads and the insert run in one scheduling transaction, so a
// competing save for the same user or customer cannot slip between decision
// and write. A rejection comes back as a Result, never as an error.
func (s *Service) Schedule(ctx context.Context, in SaveInput) (domain.Appointment, schedule.Result, error) {
	record, err := in.record()
	if err != nil {
		return domain.Appointment{}, schedule.Result{}, err
	}

	var (
		out domain.Appointment
		res schedule.Result
	)
	err = s.repo.InSchedulingTransaction(ctx, in.UserID, in.CustomerID, func(ctx context.Context, tx store.ScheduleTx) error {
		v := schedule.NewValidatorAt(txSource{tx: tx}, s.hours, s.now)
		r, err := v.Validate(ctx, in.candidate(0))
		if err != nil {
			return err
		}
		res = r
		if !r.OK {
			return nil
		}

		saved, err := tx.Insert(ctx, record)
		if err != nil {
			return err
		}
		out = saved
		return nil
	})
	if err != nil {
		return domain.Appointment{}, schedule.Result{}, err
	}
	return out, res, nil
}

// Reschedule re-validates an edited appointment, excluding its own prior
// version from the overlap checks, and updates it in place. Audit creation
// columns are left untouched.
func (s *Service) Reschedule(ctx context.Context, id int64, in SaveInput) (domain.Appointment, schedule.Result, error) {
	if id <= 0 {
		return domain.Appointment{}, schedule.Result{}, validationError("appointment id must be positive")
	}
	record, err := in.record()
	if err != nil {
		return domain.Appointment{}, schedule.Result{}, err
	}
	record.ID = id

	var (
		out domain.Appointment
		res schedule.Result
	)
	err = s.repo.InSchedulingTransaction(ctx, in.UserID, in.CustomerID, func(ctx context.Context, tx store.ScheduleTx) error {
		v := schedule.NewValidatorAt(txSource{tx: tx}, s.hours, s.now)
		r, err := v.Validate(ctx, in.candidate(id))
		if err != nil {
			return err
		}
		res = r
		if !r.OK {
			return nil
		}

		saved, err := tx.Update(ctx, record)
		if err != nil {
			return err
		}
		out = saved
		return nil
	})
	if err != nil {
		return domain.Appointment{}, schedule.Result{}, err
	}
	return out, res, nil
}

// Validate is the dry-run the editor uses before offering a save: the same
// decision, but against plain snapshot reads with no lock held, so the
// answer is best-effort.
func (s *Service) Validate(ctx context.Context, in SaveInput, excludeID int64) (schedule.Result, error) {
	v := schedule.NewValidatorAt(repoSource{repo: s.repo}, s.hours, s.now)
	return v.Validate(ctx, in.candidate(excludeID))
}

func (s *Service) Get(ctx context.Context, id int64) (domain.Appointment, error) {
	if id <= 0 {
		return domain.Appointment{}, validationError("appointment id must be positive")
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Cancel(ctx context.Context, id int64) error {
	if id <= 0 {
		return validationError("appointment id must be positive")
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListByUser(ctx context.Context, userID int64) ([]domain.Appointment, error) {
	if userID <= 0 {
		return nil, validationError("user id must be positive")
	}
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) ListByCustomer(ctx context.Context, customerID int64) ([]domain.Appointment, error) {
	if customerID <= 0 {
		return nil, validationError("customer id must be positive")
	}
	return s.repo.ListByCustomer(ctx, customerID)
}

// ListByDay returns the appointments starting on the given calendar day as
// seen in loc. The day bounds follow the zone's own clock, so a DST day is
// 23 or 25 hours long rather than a fixed 24.
func (s *Service) ListByDay(ctx context.Context, year int, month time.Month, day int, loc *time.Location) ([]domain.Appointment, error) {
	dayStart := time.Date(year, month, day, 0, 0, 0, 0, loc)
	dayEnd := dayStart.AddDate(0, 0, 1)
	return s.repo.ListByDay(ctx, dayStart.UTC(), dayEnd.UTC())
}

// TypeCountsByMonth is the appointment-distribution report.
func (s *Service) TypeCountsByMonth(ctx context.Context) ([]store.TypeCount, error) {
	return s.repo.TypeCountsByMonth(ctx)
}

// CountsByCustomer reports how many appointments each customer holds.
func (s *Service) CountsByCustomer(ctx context.Context) ([]store.CustomerCount, error) {
	return s.repo.CountsByCustomer(ctx)
}

// UserSchedule returns every appointment grouped by user then start time,
// the raw rows behind the per-user schedule report.
func (s *Service) UserSchedule(ctx context.Context) ([]domain.Appointment, error) {
	return s.repo.ListAll(ctx)
}

type txSource struct {
	tx store.ScheduleTx
}

func (a txSource) ByUser(ctx context.Context, userID int64) ([]schedule.Interval, error) {
	rows, err := a.tx.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toIntervals(rows), nil
}

func (a txSource) ByCustomer(ctx context.Context, customerID int64) ([]schedule.Interval, error) {
	rows, err := a.tx.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return toIntervals(rows), nil
}

type repoSource struct {
	repo store.AppointmentRepository
}

func (a repoSource) ByUser(ctx context.Context, userID int64) ([]schedule.Interval, error) {
	rows, err := a.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toIntervals(rows), nil
}

func (a repoSource) ByCustomer(ctx context.Context, customerID int64) ([]schedule.Interval, error) {
	rows, err := a.repo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return toIntervals(rows), nil
}

func toIntervals(rows []domain.Appointment) []schedule.Interval {
	out := make([]schedule.Interval, 0, len(rows))
	for _, a := range rows {
		out = append(out, schedule.Interval{
			ID:    a.ID,
			Start: a.StartTime.UTC(),
			End:   a.EndTime.UTC(),
		})
	}
	return out
}
