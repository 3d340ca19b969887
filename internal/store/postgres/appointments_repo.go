package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun"

	"apptbook/internal/domain"
	"apptbook/internal/store"
)

type AppointmentRepo struct {
	db *bun.DB
}

func NewAppointmentRepo(db *bun.DB) *AppointmentRepo {
	return &AppointmentRepo{db: db}
}

type scheduleTx struct {
	tx bun.Tx
}

func (r *AppointmentRepo) GetByID(ctx context.Context, id int64) (domain.Appointment, error) {
	var row domain.Appointment
	err := r.db.NewSelect().
		Model(&row).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Appointment{}, store.ErrNotFound
	}
	if err != nil {
		return domain.Appointment{}, err
	}
	return row, nil
}

func (r *AppointmentRepo) ListByUser(ctx context.Context, userID int64) ([]domain.Appointment, error) {
	return listAppointments(ctx, r.db, "user_id = ?", userID)
}

func (r *AppointmentRepo) ListByCustomer(ctx context.Context, customerID int64) ([]domain.Appointment, error) {
	return listAppointments(ctx, r.db, "customer_id = ?", customerID)
}

func (r *AppointmentRepo) ListByDay(ctx context.Context, dayStart, dayEnd time.Time) ([]domain.Appointment, error) {
	var rows []domain.Appointment
	err := r.db.NewSelect().
		Model(&rows).
		Where("start_time >= ?", dayStart).
		Where("start_time < ?", dayEnd).
		OrderExpr("start_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *AppointmentRepo) ListAll(ctx context.Context) ([]domain.Appointment, error) {
	var rows []domain.Appointment
	err := r.db.NewSelect().
		Model(&rows).
		OrderExpr("user_id ASC, start_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *AppointmentRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.NewDelete().
		Model((*domain.Appointment)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *AppointmentRepo) TypeCountsByMonth(ctx context.Context) ([]store.TypeCount, error) {
	var rows []store.TypeCount
	err := r.db.NewSelect().
		Model((*domain.Appointment)(nil)).
		ColumnExpr("date_trunc('month', start_time) AS month").
		ColumnExpr("type").
		ColumnExpr("count(*) AS count").
		GroupExpr("date_trunc('month', start_time), type").
		OrderExpr("month ASC, type ASC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *AppointmentRepo) CountsByCustomer(ctx context.Context) ([]store.CustomerCount, error) {
	var rows []store.CustomerCount
	err := r.db.NewSelect().
		Model((*domain.Appointment)(nil)).
		ColumnExpr("customer_id").
		ColumnExpr("count(*) AS count").
		GroupExpr("customer_id").
		OrderExpr("customer_id ASC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// InSchedulingTransaction serializes saves that touch the same user or
// customer calendar: both advisory locks are taken, in a stable order, before
// fn runs its snapshot reads and writes.
func (r *AppointmentRepo) InSchedulingTransaction(ctx context.Context, userID, customerID int64, fn func(ctx context.Context, tx store.ScheduleTx) error) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, key := range calendarLockKeys(userID, customerID) {
			if _, err := tx.NewRaw("SELECT pg_advisory_xact_lock(hashtext(?))", key).Exec(ctx); err != nil {
				return err
			}
		}
		return fn(ctx, scheduleTx{tx: tx})
	})
}

// calendarLockKeys returns the advisory-lock keys for a save in a fixed
// order, so two saves touching the same pair cannot deadlock.
func calendarLockKeys(userID, customerID int64) []string {
	a := fmt.Sprintf("user:%d", userID)
	b := fmt.Sprintf("customer:%d", customerID)
	if b < a {
		return []string{b, a}
	}
	return []string{a, b}
}

func (r scheduleTx) ListByUser(ctx context.Context, userID int64) ([]domain.Appointment, error) {
	return listAppointments(ctx, r.tx, "user_id = ?", userID)
}

func (r scheduleTx) ListByCustomer(ctx context.Context, customerID int64) ([]domain.Appointment, error) {
	return listAppointments(ctx, r.tx, "customer_id = ?", customerID)
}

func (r scheduleTx) Insert(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
	m := appt
	_, err := r.tx.NewInsert().Model(&m).Exec(ctx)
	if err != nil {
		return domain.Appointment{}, mapConstraintError(err)
	}
	return m, nil
}

func (r scheduleTx) Update(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
	m := appt
	res, err := r.tx.NewUpdate().
		Model(&m).
		Column("user_id", "customer_id", "title", "description", "location", "contact", "type", "url", "start_time", "end_time", "updated_at", "updated_by").
		Where("id = ?", m.ID).
		Exec(ctx)
	if err != nil {
		return domain.Appointment{}, mapConstraintError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Appointment{}, err
	}
	if affected == 0 {
		return domain.Appointment{}, store.ErrNotFound
	}
	return m, nil
}

func listAppointments(ctx context.Context, db bun.IDB, cond string, arg any) ([]domain.Appointment, error) {
	var rows []domain.Appointment
	err := db.NewSelect().
		Model(&rows).
		Where(cond, arg).
		OrderExpr("start_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// mapConstraintError turns a violated no-overlap exclusion constraint into
// store.ErrConflict. The constraints are the last line of defense behind the
// validator's own overlap checks.
func mapConstraintError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23P01" {
		switch pgErr.ConstraintName {
		case "appointments_user_no_overlap", "appointments_customer_no_overlap":
			return store.ErrConflict
		}
	}
	return err
}
