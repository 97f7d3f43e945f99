package patient

import (
	"time"

	"github.com/mariodiaz1375/consultorio-supabase/pkg/civil"
)

// Patient maps to the pacientes table.
type Patient struct {
	ID                int64       `json:"id"`
	FirstName         string      `json:"nombre"`
	LastName          string      `json:"apellido"`
	DNI               string      `json:"dni"`
	BirthDate         *civil.Date `json:"fecha_nacimiento"`
	Address           string      `json:"domicilio"`
	Phone             string      `json:"telefono"`
	Email             string      `json:"email"`
	GenderID          *int64      `json:"genero_id"`
	GenderName        string      `json:"genero_nombre,omitempty"`
	InsurerID         *int64      `json:"obra_social_id"`
	InsurerName       string      `json:"obra_social_nombre,omitempty"`
	Active            *bool       `json:"activo"`
	MedicalHistoryIDs []int64     `json:"antecedentes_ids"`
	FunctionalTestIDs []int64     `json:"analisis_funcional_ids"`
	Age               *int        `json:"edad,omitempty"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

// FullName is how the patient is shown on appointments and audit rows.
func (p *Patient) FullName() string {
	return p.FirstName + " " + p.LastName
}

// AgeAt returns the age in whole years on the given day, or nil when the
// birth date is unknown.
func (p *Patient) AgeAt(now time.Time) *int {
	if p.BirthDate == nil || p.BirthDate.IsZero() {
		return nil
	}
	b := p.BirthDate
	age := now.Year() - b.Year()
	if now.Month() < b.Month() || (now.Month() == b.Month() && now.Day() < b.Day()) {
		age--
	}
	return &age
}

func (p *Patient) IsActive() bool {
	return p.Active == nil || *p.Active
}
