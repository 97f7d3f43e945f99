package clinicalhistory

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mariodiaz1375/consultorio-supabase/internal/domain/staff"
	"github.com/mariodiaz1375/consultorio-supabase/internal/platform/apierr"
	"github.com/mariodiaz1375/consultorio-supabase/internal/platform/auth"
	"github.com/mariodiaz1375/consultorio-supabase/internal/platform/db"
)

const (
	maxDescription         = 200
	maxFollowUpDescription = 100
)

// StaffLookup finds the staff record behind a login. staff.Service satisfies it.
type StaffLookup interface {
	GetByUserID(ctx context.Context, userID int64) (*staff.Member, error)
}

type Service struct {
	repo  Repository
	tx    db.Transactor
	staff StaffLookup
	now   func() time.Time
}

func NewService(repo Repository, tx db.Transactor, staff StaffLookup) *Service {
	return &Service{repo: repo, tx: tx, staff: staff, now: time.Now}
}

func (s *Service) Create(ctx context.Context, h *History) error {
	if err := validateHistory(h); err != nil {
		return err
	}
	h.EndedAt = nil
	deriveEnd(h, s.now())
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		return s.repo.Create(ctx, h)
	})
	if err != nil {
		return err
	}
	return s.reload(ctx, h)
}

func (s *Service) Get(ctx context.Context, id int64) (*History, error) {
	return s.repo.GetByID(ctx, id)
}

// Update writes every field of h. Closing a history keeps the closing date
// it already had; reopening clears it.
func (s *Service) Update(ctx context.Context, h *History) error {
	if err := validateHistory(h); err != nil {
		return err
	}
	prev, err := s.repo.GetByID(ctx, h.ID)
	if err != nil {
		return err
	}
	h.EndedAt = prev.EndedAt
	deriveEnd(h, s.now())

	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		return s.repo.Update(ctx, h)
	})
	if err != nil {
		return err
	}
	return s.reload(ctx, h)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*History, int, error) {
	return s.repo.Search(ctx, params, limit, offset)
}

func (s *Service) ListFollowUps(ctx context.Context, historyID int64) ([]*FollowUp, error) {
	if _, err := s.repo.GetByID(ctx, historyID); err != nil {
		return nil, err
	}
	return s.repo.ListFollowUps(ctx, historyID)
}

// AddFollowUp appends a note. Without odontologo_id the note is signed by
// the caller's staff record, when there is one.
func (s *Service) AddFollowUp(ctx context.Context, f *FollowUp) error {
	f.Description = strings.TrimSpace(f.Description)
	v := &apierr.ValidationError{}
	switch {
	case f.Description == "":
		v.Add("descripcion", "descripcion is required")
	case utf8.RuneCountInString(f.Description) > maxFollowUpDescription:
		v.Add("descripcion", fmt.Sprintf("descripcion must be at most %d characters", maxFollowUpDescription))
	}
	if f.DentistID != nil && *f.DentistID <= 0 {
		v.Add("odontologo_id", "odontologo_id must be a positive integer")
	}
	if err := v.OrNil(); err != nil {
		return err
	}
	if _, err := s.repo.GetByID(ctx, f.HistoryID); err != nil {
		return err
	}
	if f.DentistID == nil {
		f.DentistID = s.callerStaffID(ctx)
	}
	return s.repo.AddFollowUp(ctx, f)
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

func (s *Service) reload(ctx context.Context, h *History) error {
	fresh, err := s.repo.GetByID(ctx, h.ID)
	if err != nil {
		return err
	}
	*h = *fresh
	return nil
}

func validateHistory(h *History) error {
	h.Description = strings.TrimSpace(h.Description)
	v := &apierr.ValidationError{}
	if h.PatientID <= 0 {
		v.Add("paciente_id", "paciente_id is required")
	}
	if h.DentistID <= 0 {
		v.Add("odontologo_id", "odontologo_id is required")
	}
	if utf8.RuneCountInString(h.Description) > maxDescription {
		v.Add("descripcion", fmt.Sprintf("descripcion must be at most %d characters", maxDescription))
	}
	for i, d := range h.Details {
		if d.TreatmentID <= 0 {
			v.Add(fmt.Sprintf("detalles[%d].tratamiento_id", i), "tratamiento_id is required")
		}
	}
	return v.OrNil()
}
