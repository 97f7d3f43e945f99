package appointment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mariodiaz1375/consultorio-supabase/internal/domain/audit"
	"github.com/mariodiaz1375/consultorio-supabase/internal/domain/catalog"
	"github.com/mariodiaz1375/consultorio-supabase/internal/platform/apierr"
	"github.com/mariodiaz1375/consultorio-supabase/internal/platform/auth"
	"github.com/mariodiaz1375/consultorio-supabase/internal/platform/cache"
	"github.com/mariodiaz1375/consultorio-supabase/internal/platform/db"
	"github.com/mariodiaz1375/consultorio-supabase/pkg/civil"
)

const (
	msgSlotTaken = "this dentist already has an appointment at that date and time slot"
	msgSlotBusy  = "this time slot is being booked by another request, try again"
)

// CatalogLookup resolves catalog entries by name. catalog.Service satisfies it.
type CatalogLookup interface {
	FindByName(ctx context.Context, slug, name string) (*catalog.Item, error)
}

type Service struct {
	repo    Repository
	tx      db.Transactor
	locker  cache.Locker
	catalog CatalogLookup
	events  *audit.Dispatcher[Appointment]
	now     func() time.Time
}

func NewService(repo Repository, tx db.Transactor, locker cache.Locker, lookup CatalogLookup, events *audit.Dispatcher[Appointment]) *Service {
	if locker == nil {
		locker = cache.NoopLocker{}
	}
	return &Service{repo: repo, tx: tx, locker: locker, catalog: lookup, events: events, now: time.Now}
}

// Create books an appointment and returns the audit row it produced, or
// nil when none was stored.
func (s *Service) Create(ctx context.Context, a *Appointment) (*audit.AppointmentRecord, error) {
	if err := validate(a); err != nil {
		return nil, err
	}
	if a.StatusID == 0 {
		st, err := s.catalog.FindByName(ctx, catalog.KindStatuses, catalog.StatusScheduled)
		if err != nil {
			return nil, fmt.Errorf("resolve default status: %w", err)
		}
		a.StatusID = st.ID
	}

	var rec *audit.AppointmentRecord
	err := s.withSlot(ctx, a, func(ctx context.Context) error {
		return s.tx.InTx(ctx, func(ctx context.Context) error {
			if err := s.checkSlot(ctx, a, 0); err != nil {
				return err
			}
			if err := s.repo.Create(ctx, a); err != nil {
				return err
			}
			after, err := s.repo.GetByID(ctx, a.ID)
			if err != nil {
				return err
			}
			*a = *after
			rec = s.dispatch(ctx, audit.OpCreate, nil, after)
			return nil
		})
	})
	if err != nil {
		return nil, bookingError(err)
	}
	return rec, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Appointment, int, error) {
	return s.repo.Search(ctx, params, limit, offset)
}

// Update replaces the appointment. The prior state is read inside the same
// transaction and handed to the audit hooks together with the new one. A
// zero estado_id keeps the stored status.
func (s *Service) Update(ctx context.Context, a *Appointment) (*audit.AppointmentRecord, error) {
	if err := validate(a); err != nil {
		return nil, err
	}
	var rec *audit.AppointmentRecord
	err := s.withSlot(ctx, a, func(ctx context.Context) error {
		return s.tx.InTx(ctx, func(ctx context.Context) error {
			before, err := s.repo.GetByID(ctx, a.ID)
			if err != nil {
				return err
			}
			if a.StatusID == 0 {
				a.StatusID = before.StatusID
			}
			if err := s.checkSlot(ctx, a, a.ID); err != nil {
				return err
			}
			if err := s.repo.Update(ctx, a); err != nil {
				return err
			}
			after, err := s.repo.GetByID(ctx, a.ID)
			if err != nil {
				return err
			}
			*a = *after
			rec = s.dispatch(ctx, audit.OpUpdate, before, after)
			return nil
		})
	})
	if err != nil {
		return nil, bookingError(err)
	}
	return rec, nil
}

// ChangeStatus moves an appointment to another status, leaving the rest
// of it untouched.
func (s *Service) ChangeStatus(ctx context.Context, id, statusID int64) (*Appointment, *audit.AppointmentRecord, error) {
	if statusID <= 0 {
		return nil, nil, apierr.NewValidation("estado_id", "estado_id is required")
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	a.StatusID = statusID
	rec, err := s.Update(ctx, a)
	if err != nil {
		return nil, nil, err
	}
	return a, rec, nil
}

// StatusByName resolves a status name such as "Atendido" to its id.
func (s *Service) StatusByName(ctx context.Context, name string) (int64, error) {
	st, err := s.catalog.FindByName(ctx, catalog.KindStatuses, strings.TrimSpace(name))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return 0, apierr.NewValidation("estado", fmt.Sprintf("unknown status %q", name))
		}
		return 0, err
	}
	return st.ID, nil
}

// Delete removes the appointment, freeing its slot. The audit row is built
// from the state read just before removal.
func (s *Service) Delete(ctx context.Context, id int64) (*audit.AppointmentRecord, error) {
	var rec *audit.AppointmentRecord
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

func (s *Service) Availability(ctx context.Context, dentistID int64, date civil.Date) ([]*SlotAvailability, error) {
	return s.repo.Availability(ctx, dentistID, date)
}

func (s *Service) ListNotes(ctx context.Context, appointmentID int64) ([]*Note, error) {
	if _, err := s.repo.GetByID(ctx, appointmentID); err != nil {
		return nil, err
	}
	return s.repo.ListNotes(ctx, appointmentID)
}

// AddNote appends a follow-up note authored by the caller.
func (s *Service) AddNote(ctx context.Context, n *Note) error {
	n.Description = strings.TrimSpace(n.Description)
	if n.Description == "" {
		return apierr.NewValidation("descripcion", "descripcion is required")
	}
	if _, err := s.repo.GetByID(ctx, n.AppointmentID); err != nil {
		return err
	}
	n.AuthorID = auth.ActorID(ctx)
	return s.repo.AddNote(ctx, n)
}

func (s *Service) dispatch(ctx context.Context, op audit.Op, before, after *Appointment) *audit.AppointmentRecord {
	ev := audit.Event[Appointment]{Op: op, Before: before, After: after, ActorID: auth.ActorID(ctx), At: s.now()}
	if s.events != nil && s.events.Dispatch(ctx, ev) > 0 {
		// The audit row was rolled back; report nothing rather than a
		// record that was never stored.
		return nil
	}
	return Classify(ev)
}

// withSlot serialises writers of the same agenda cell. Unscheduled
// appointments need no lock.
func (s *Service) withSlot(ctx context.Context, a *Appointment, fn func(ctx context.Context) error) error {
	if a.SlotID == nil {
		return fn(ctx)
	}
	key := cache.SlotKey{StaffID: a.DentistID, Date: a.Date.Time, SlotID: *a.SlotID}
	return s.locker.WithSlotLock(ctx, key, fn)
}

// checkSlot is the advisory pre-check; the unique index on turnos has the
// final word.
func (s *Service) checkSlot(ctx context.Context, a *Appointment, excludeID int64) error {
	if a.SlotID == nil {
		return nil
	}
	taken, err := s.repo.ExistsBooking(ctx, a.DentistID, a.Date, *a.SlotID, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return apierr.NewValidation("horario_id", msgSlotTaken)
	}
	return nil
}

func bookingError(err error) error {
	switch {
	case errors.Is(err, cache.ErrLockNotAcquired):
		return apierr.NewValidation("horario_id", msgSlotBusy)
	case errors.Is(err, db.ErrConflict):
		return apierr.NewValidation("horario_id", msgSlotTaken)
	}
	return err
}

func validate(a *Appointment) error {
	a.Reason = strings.TrimSpace(a.Reason)
	v := &apierr.ValidationError{}
	if a.DentistID <= 0 {
		v.Add("odontologo_id", "odontologo_id is required")
	}
	if a.PatientID <= 0 {
		v.Add("paciente_id", "paciente_id is required")
	}
	if a.Date.IsZero() {
		v.Add("fecha", "fecha is required")
	}
	if a.SlotID != nil && *a.SlotID <= 0 {
		v.Add("horario_id", "horario_id must be a positive integer")
	}
	if a.StatusID < 0 {
		v.Add("estado_id", "estado_id must be a positive integer")
	}
	return v.OrNil()
}
