package payment

import (
	"context"
	"time"

	"github.com/mariodiaz1375/consultorio-supabase/internal/domain/audit"
	"github.com/mariodiaz1375/consultorio-supabase/internal/domain/staff"
	"github.com/mariodiaz1375/consultorio-supabase/internal/platform/apierr"
	"github.com/mariodiaz1375/consultorio-supabase/internal/platform/auth"
	"github.com/mariodiaz1375/consultorio-supabase/internal/platform/db"
)

// StaffLookup finds the staff record behind a login. staff.Service satisfies it.
type StaffLookup interface {
	GetByUserID(ctx context.Context, userID int64) (*staff.Member, error)
}

type Service struct {
	repo   Repository
	tx     db.Transactor
	staff  StaffLookup
	events *audit.Dispatcher[Payment]
	now    func() time.Time
}

func NewService(repo Repository, tx db.Transactor, staff StaffLookup, events *audit.Dispatcher[Payment]) *Service {
	return &Service{repo: repo, tx: tx, staff: staff, events: events, now: time.Now}
}

// Create stores a payment. Without registrado_por_id it is attributed to
// the caller's staff record, when there is one.
func (s *Service) Create(ctx context.Context, p *Payment) (*audit.PaymentRecord, error) {
	if err := validate(p); err != nil {
		return nil, err
	}
	if p.RegisteredByID == nil {
		p.RegisteredByID = s.callerStaffID(ctx)
	}
	derivePaidAt(p, s.now())

	var rec *audit.PaymentRecord
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, p); err != nil {
			return err
		}
		after, err := s.repo.GetByID(ctx, p.ID)
		if err != nil {
			return err
		}
		*p = *after
		rec = s.dispatch(ctx, audit.OpCreate, nil, after)
		return nil
	})
	return rec, err
}

func (s *Service) Get(ctx context.Context, id int64) (*Payment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Payment, int, error) {
	return s.repo.Search(ctx, params, limit, offset)
}

// Update writes every field of p. A payment that stays paid keeps its
// stored fecha_pago unless a new one is given.
func (s *Service) Update(ctx context.Context, p *Payment) (*audit.PaymentRecord, error) {
	if err := validate(p); err != nil {
		return nil, err
	}
	var rec *audit.PaymentRecord
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		before, err := s.repo.GetByID(ctx, p.ID)
		if err != nil {
			return err
		}
		if p.PaidAt == nil {
			p.PaidAt = before.PaidAt
		}
		derivePaidAt(p, s.now())
		if err := s.repo.Update(ctx, p); err != nil {
			return err
		}
		after, err := s.repo.GetByID(ctx, p.ID)
		if err != nil {
			return err
		}
		*p = *after
		rec = s.dispatch(ctx, audit.OpUpdate, before, after)
		return nil
	})
	return rec, err
}

func (s *Service) Delete(ctx context.Context, id int64) (*audit.PaymentRecord, error) {
	var rec *audit.PaymentRecord
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		before, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := s.repo.Delete(ctx, id); err != nil {
			return err
		}
		rec = s.dispatch(ctx, audit.OpDelete, before, nil)
		return nil
	})
	return rec, err
}

func (s *Service) dispatch(ctx context.Context, op audit.Op, before, after *Payment) *audit.PaymentRecord {
	ev := audit.Event[Payment]{Op: op, Before: before, After: after, ActorID: auth.ActorID(ctx), At: s.now()}
	if s.events != nil && s.events.Dispatch(ctx, ev) > 0 {
		// The audit row was rolled back; report nothing rather than a
		// record that was never stored.
		return nil
	}
	return Classify(ev)
}

func (s *Service) callerStaffID(ctx context.Context) *int64 {
	uid := auth.ActorID(ctx)
	if uid == nil || s.staff == nil {
		return nil
	}
	m, err := s.staff.GetByUserID(ctx, *uid)
	if err != nil {
		return nil
	}
	return &m.ID
}

func validate(p *Payment) error {
	v := &apierr.ValidationError{}
	if p.PaymentTypeID <= 0 {
		v.Add("tipo_pago_id", "tipo_pago_id is required")
	}
	if p.HistoryID <= 0 {
		v.Add("hist_clin_id", "hist_clin_id is required")
	}
	if p.RegisteredByID != nil && *p.RegisteredByID <= 0 {
		v.Add("registrado_por_id", "registrado_por_id must be a positive integer")
	}
	if p.Amount < 0 {
		v.Add("monto", "monto must not be negative")
	}
	return v.OrNil()
}
