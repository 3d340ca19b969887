package domain

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// Appointment is the persisted record. Start and end are absolute instants
// stored in UTC; end_time > start_time holds for every accepted row.
type Appointment struct {
	bun.BaseModel `bun:"table:appointments"`

	ID          int64     `bun:"id,pk,autoincrement"`
	UserID      int64     `bun:"user_id,notnull"`
	CustomerID  int64     `bun:"customer_id,notnull"`
	Title       string    `bun:"title,notnull"`
	Description string    `bun:"description"`
	Location    string    `bun:"location"`
	Contact     string    `bun:"contact"`
	Type        string    `bun:"type,notnull"`
	URL         string    `bun:"url"`
	StartTime   time.Time `bun:"start_time,notnull"`
	EndTime     time.Time `bun:"end_time,notnull"`
	CreatedAt   time.Time `bun:"created_at,notnull"`
	CreatedBy   string    `bun:"created_by,notnull"`
	UpdatedAt   time.Time `bun:"updated_at,notnull"`
	UpdatedBy   string    `bun:"updated_by,notnull"`
}

func (a *Appointment) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	a.StartTime = a.StartTime.UTC()
	a.EndTime = a.EndTime.UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if a.CreatedAt.IsZero() {
			a.CreatedAt = now
		}
		if a.UpdatedAt.IsZero() {
			a.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		a.UpdatedAt = now
	}
	return nil
}
