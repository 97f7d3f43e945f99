package staff

import (
	"time"

	"github.com/mariodiaz1375/consultorio-supabase/pkg/civil"
)

// Member maps to the personal table: dentists, receptionists and assistants.
type Member struct {
	ID             int64       `json:"id"`
	FirstName      string      `json:"nombre"`
	LastName       string      `json:"apellido"`
	DNI            string      `json:"dni"`
	BirthDate      *civil.Date `json:"fecha_nacimiento"`
	Address        string      `json:"domicilio"`
	Phone          string      `json:"telefono"`
	Email          string      `json:"email"`
	LicenseNumber  string      `json:"matricula"`
	Active         *bool       `json:"activo"`
	UserID         *int64      `json:"usuario_id"`
	PositionIDs    []int64     `json:"puestos_ids"`
	SpecialtyIDs   []int64     `json:"especialidades_ids"`
	PositionNames  []string    `json:"puestos,omitempty"`
	SpecialtyNames []string    `json:"especialidades,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

func (m *Member) FullName() string {
	return m.FirstName + " " + m.LastName
}

func (m *Member) IsActive() bool {
	return m.Active == nil || *m.Active
}
