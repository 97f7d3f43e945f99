package appointment

import (
	"time"

	"github.com/mariodiaz1375/consultorio-supabase/pkg/civil"
)

// Appointment maps to the turnos table. The *_nombre, dni and display
// fields are read-only and filled from the referenced rows.
type Appointment struct {
	ID          int64      `json:"id"`
	DentistID   int64      `json:"odontologo_id"`
	DentistName string     `json:"odontologo_nombre,omitempty"`
	PatientID   int64      `json:"paciente_id"`
	PatientName string     `json:"paciente_nombre,omitempty"`
	PatientDNI  string     `json:"paciente_dni,omitempty"`
	Date        civil.Date `json:"fecha"`
	SlotID      *int64     `json:"horario_id"`
	SlotTime    string     `json:"horario_display,omitempty"`
	StatusID    int64      `json:"estado_id"`
	StatusName  string     `json:"estado_nombre,omitempty"`
	Reason      string     `json:"motivo"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Note is a follow-up entry on an appointment.
type Note struct {
	ID            int64     `json:"id"`
	AppointmentID int64     `json:"turno_id"`
	AuthorID      *int64    `json:"autor_id"`
	AuthorName    string    `json:"autor_nombre,omitempty"`
	Description   string    `json:"descripcion"`
	Date          time.Time `json:"fecha"`
}

// SlotAvailability reports whether a fixed slot is free for a dentist on a day.
type SlotAvailability struct {
	SlotID        int64  `json:"horario_id"`
	Time          string `json:"hora"`
	Available     bool   `json:"disponible"`
	AppointmentID *int64 `json:"turno_id,omitempty"`
}

func (a *Appointment) slotKey() int64 {
	if a.SlotID == nil {
		return 0
	}
	return *a.SlotID
}

func (a *Appointment) slotDisplay() string {
	if a.SlotID == nil || a.SlotTime == "" {
		return "N/A"
	}
	return a.SlotTime
}
