package clinicalhistory

import "time"

// History maps to historias_clinicas. FechaFin is derived from Finished on
// every write and is never taken from the request.
type History struct {
	ID          int64      `json:"id"`
	PatientID   int64      `json:"paciente_id"`
	PatientName string     `json:"paciente_nombre,omitempty"`
	PatientDNI  string     `json:"paciente_dni,omitempty"`
	DentistID   int64      `json:"odontologo_id"`
	DentistName string     `json:"odontologo_nombre,omitempty"`
	Description string     `json:"descripcion"`
	StartedAt   time.Time  `json:"fecha_inicio"`
	EndedAt     *time.Time `json:"fecha_fin"`
	Finished    bool       `json:"finalizado"`
	Details     []Detail   `json:"detalles"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Detail is one treatment applied to a tooth face.
type Detail struct {
	ID            int64  `json:"id"`
	HistoryID     int64  `json:"historia_id"`
	TreatmentID   int64  `json:"tratamiento_id"`
	TreatmentName string `json:"tratamiento_nombre,omitempty"`
	ToothID       *int64 `json:"pieza_id"`
	ToothCode     string `json:"pieza_codigo,omitempty"`
	FaceID        *int64 `json:"cara_id"`
	FaceName      string `json:"cara_nombre,omitempty"`
}

// FollowUp is a dated progress note on a history.
type FollowUp struct {
	ID          int64     `json:"id"`
	HistoryID   int64     `json:"historia_id"`
	DentistID   *int64    `json:"odontologo_id"`
	DentistName string    `json:"odontologo_nombre,omitempty"`
	Description string    `json:"descripcion"`
	Date        time.Time `json:"fecha"`
}

// deriveEnd keeps fecha_fin in step with finalizado: closing stamps now
// unless already set, reopening clears it.
func deriveEnd(h *History, now time.Time) {
	if !h.Finished {
		h.EndedAt = nil
		return
	}
	if h.EndedAt == nil || h.EndedAt.IsZero() {
		t := now
		h.EndedAt = &t
	}
}
