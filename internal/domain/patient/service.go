package patient

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mariodiaz1375/consultorio-supabase/internal/domain/catalog"
	"github.com/mariodiaz1375/consultorio-supabase/internal/platform/apierr"
	"github.com/mariodiaz1375/consultorio-supabase/internal/platform/db"
)

// CatalogLookup resolves catalog entries by name. catalog.Service satisfies it.
type CatalogLookup interface {
	FindByName(ctx context.Context, slug, name string) (*catalog.Item, error)
}

type Service struct {
	repo    Repository
	tx      db.Transactor
	catalog CatalogLookup
	now     func() time.Time
}

func NewService(repo Repository, tx db.Transactor, lookup CatalogLookup) *Service {
	return &Service{repo: repo, tx: tx, catalog: lookup, now: time.Now}
}

func (s *Service) Create(ctx context.Context, p *Patient) error {
	if err := validatePatient(p); err != nil {
		return err
	}
	if p.GenderID == nil {
		g, err := s.catalog.FindByName(ctx, catalog.KindGenders, catalog.DefaultGender)
		if err != nil {
			return fmt.Errorf("resolve default gender: %w", err)
		}
		p.GenderID = &g.ID
	}
	if p.Active == nil {
		active := true
		p.Active = &active
	}

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		return s.repo.Create(ctx, p)
	})
	if err != nil {
		return writeError(err)
	}
	return s.reload(ctx, p)
}

func (s *Service) Get(ctx context.Context, id int64) (*Patient, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Age = p.AgeAt(s.now())
	return p, nil
}

// Update replaces every writable field of the patient. A nil activo or
// genero_id keeps the stored value.
func (s *Service) Update(ctx context.Context, p *Patient) error {
	if err := validatePatient(p); err != nil {
		return err
	}
	prev, err := s.repo.GetByID(ctx, p.ID)
	if err != nil {
		return err
	}
	if p.Active == nil {
		p.Active = prev.Active
	}
	if p.GenderID == nil {
		p.GenderID = prev.GenderID
	}

	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		return s.repo.Update(ctx, p)
	})
	if err != nil {
		return writeError(err)
	}
	return s.reload(ctx, p)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Patient, int, error) {
	items, total, err := s.repo.Search(ctx, params, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	now := s.now()
	for _, p := range items {
		p.Age = p.AgeAt(now)
	}
	return items, total, nil
}

func (s *Service) reload(ctx context.Context, p *Patient) error {
	fresh, err := s.Get(ctx, p.ID)
	if err != nil {
		return err
	}
	*p = *fresh
	return nil
}

func validatePatient(p *Patient) error {
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	p.DNI = strings.TrimSpace(p.DNI)
	p.Email = strings.TrimSpace(p.Email)

	v := &apierr.ValidationError{}
	required(v, "nombre", p.FirstName, 100)
	required(v, "apellido", p.LastName, 100)
	required(v, "dni", p.DNI, 20)
	if utf8.RuneCountInString(p.Address) > 200 {
		v.Add("domicilio", "domicilio must be at most 200 characters")
	}
	if utf8.RuneCountInString(p.Phone) > 30 {
		v.Add("telefono", "telefono must be at most 30 characters")
	}
	if p.Email != "" {
		if _, err := mail.ParseAddress(p.Email); err != nil {
			v.Add("email", "email is not a valid address")
		}
	}
	if p.BirthDate != nil && p.BirthDate.After(time.Now()) {
		v.Add("fecha_nacimiento", "fecha_nacimiento cannot be in the future")
	}
	p.MedicalHistoryIDs = dedupe(p.MedicalHistoryIDs)
	p.FunctionalTestIDs = dedupe(p.FunctionalTestIDs)
	return v.OrNil()
}

func required(v *apierr.ValidationError, field, value string, max int) {
	switch {
	case value == "":
		v.Add(field, field+" is required")
	case utf8.RuneCountInString(value) > max:
		v.Add(field, fmt.Sprintf("%s must be at most %d characters", field, max))
	}
}

func dedupe(ids []int64) []int64 {
	out := make([]int64, 0, len(ids))
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func writeError(err error) error {
	if errors.Is(err, db.ErrConflict) {
		return apierr.NewValidation("dni", "a patient with this dni already exists")
	}
	return err
}
