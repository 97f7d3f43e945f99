package staff

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mariodiaz1375/consultorio-supabase/internal/platform/apierr"
	"github.com/mariodiaz1375/consultorio-supabase/internal/platform/db"
)

// UserActivator toggles the login account linked to a staff member.
// auth.UserRepository satisfies it.
type UserActivator interface {
	SetActive(ctx context.Context, id int64, active bool) error
}

type Service struct {
	repo  Repository
	users UserActivator
	tx    db.Transactor
}

func NewService(repo Repository, users UserActivator, tx db.Transactor) *Service {
	return &Service{repo: repo, users: users, tx: tx}
}

func (s *Service) Create(ctx context.Context, m *Member) error {
	if err := validateMember(m); err != nil {
		return err
	}
	if m.Active == nil {
		active := true
		m.Active = &active
	}
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, m); err != nil {
			return err
		}
		return s.syncUser(ctx, m)
	})
	if err != nil {
		return writeError(err)
	}
	return s.reload(ctx, m)
}

func (s *Service) Get(ctx context.Context, id int64) (*Member, error) {
	return s.repo.GetByID(ctx, id)
}

// GetByUserID finds the staff record of a login account.
func (s *Service) GetByUserID(ctx context.Context, userID int64) (*Member, error) {
	return s.repo.GetByUserID(ctx, userID)
}

// Update replaces the member. A nil activo keeps the stored value; any
// change is mirrored onto the linked user in the same transaction.
func (s *Service) Update(ctx context.Context, m *Member) error {
	if err := validateMember(m); err != nil {
		return err
	}
	prev, err := s.repo.GetByID(ctx, m.ID)
	if err != nil {
		return err
	}
	if m.Active == nil {
		m.Active = prev.Active
	}
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, m); err != nil {
			return err
		}
		if prev.IsActive() == m.IsActive() && sameUser(prev.UserID, m.UserID) {
			return nil
		}
		return s.syncUser(ctx, m)
	})
	if err != nil {
		return writeError(err)
	}
	return s.reload(ctx, m)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Member, int, error) {
	return s.repo.Search(ctx, params, limit, offset)
}

func (s *Service) syncUser(ctx context.Context, m *Member) error {
	if m.UserID == nil || s.users == nil {
		return nil
	}
	if err := s.users.SetActive(ctx, *m.UserID, m.IsActive()); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return apierr.NewValidation("usuario_id", "user does not exist")
		}
		return fmt.Errorf("sync user %d: %w", *m.UserID, err)
	}
	return nil
}

func (s *Service) reload(ctx context.Context, m *Member) error {
	fresh, err := s.repo.GetByID(ctx, m.ID)
	if err != nil {
		return err
	}
	*m = *fresh
	return nil
}

func sameUser(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func validateMember(m *Member) error {
	m.FirstName = strings.TrimSpace(m.FirstName)
	m.LastName = strings.TrimSpace(m.LastName)
	m.DNI = strings.TrimSpace(m.DNI)
	m.Email = strings.TrimSpace(m.Email)
	m.LicenseNumber = strings.TrimSpace(m.LicenseNumber)

	v := &apierr.ValidationError{}
	for _, f := range []struct {
		name, value string
		max         int
	}{
		{"nombre", m.FirstName, 100},
		{"apellido", m.LastName, 100},
		{"dni", m.DNI, 20},
	} {
		switch {
		case f.value == "":
			v.Add(f.name, f.name+" is required")
		case utf8.RuneCountInString(f.value) > f.max:
			v.Add(f.name, fmt.Sprintf("%s must be at most %d characters", f.name, f.max))
		}
	}
	if utf8.RuneCountInString(m.LicenseNumber) > 50 {
		v.Add("matricula", "matricula must be at most 50 characters")
	}
	if m.Email != "" {
		if _, err := mail.ParseAddress(m.Email); err != nil {
			v.Add("email", "email is not a valid address")
		}
	}
	if m.BirthDate != nil && m.BirthDate.After(time.Now()) {
		v.Add("fecha_nacimiento", "fecha_nacimiento cannot be in the future")
	}
	if m.UserID != nil && *m.UserID <= 0 {
		v.Add("usuario_id", "usuario_id must be a positive integer")
	}
	return v.OrNil()
}

func writeError(err error) error {
	var ce *db.ConstraintError
	if errors.As(err, &ce) && errors.Is(err, db.ErrConflict) {
		if strings.Contains(ce.Constraint, "usuario_id") {
			return apierr.NewValidation("usuario_id", "this user is already linked to another staff member")
		}
		return apierr.NewValidation("dni", "a staff member with this dni already exists")
	}
	return err
}
