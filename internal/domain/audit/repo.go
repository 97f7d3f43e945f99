package audit

import (
	"context"
	"time"

	"github.com/mariodiaz1375/consultorio-supabase/pkg/pagination"
)

// AppointmentFilter narrows an appointment audit listing. Zero values are
// ignored.
type AppointmentFilter struct {
	TurnoNumber *int64
	PatientDNI  string
	Action      string
	From        *time.Time
	To          *time.Time
}

type PaymentFilter struct {
	HistoryNumber *int64
	PatientDNI    string
	Action        string
	From          *time.Time
	To            *time.Time
}

// Audit repositories are insert-only.

type AppointmentRepository interface {
	Insert(ctx context.Context, r *AppointmentRecord) error
	GetByID(ctx context.Context, id int64) (*AppointmentRecord, error)
	Search(ctx context.Context, f AppointmentFilter, page pagination.Page) ([]*AppointmentRecord, int, error)
}

type PaymentRepository interface {
	Insert(ctx context.Context, r *PaymentRecord) error
	GetByID(ctx context.Context, id int64) (*PaymentRecord, error)
	Search(ctx context.Context, f PaymentFilter, page pagination.Page) ([]*PaymentRecord, int, error)
}
