package payment

import "time"

// Payment is a charge against a clinical history.
type Payment struct {
	ID               int64      `json:"id"`
	PaymentTypeID    int64      `json:"tipo_pago_id"`
	PaymentTypeName  string     `json:"tipo_pago_nombre,omitempty"`
	HistoryID        int64      `json:"hist_clin_id"`
	PatientName      string     `json:"paciente_nombre,omitempty"`
	PatientDNI       string     `json:"paciente_dni,omitempty"`
	RegisteredByID   *int64     `json:"registrado_por_id"`
	RegisteredByName string     `json:"registrado_por_nombre,omitempty"`
	Amount           float64    `json:"monto"`
	Paid             bool       `json:"pagado"`
	PaidAt           *time.Time `json:"fecha_pago"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// derivePaidAt keeps fecha_pago in step with pagado. Marking a payment as
// paid stamps now unless a date was given; unmarking always clears it.
func derivePaidAt(p *Payment, now time.Time) {
	if !p.Paid {
		p.PaidAt = nil
		return
	}
	if p.PaidAt == nil || p.PaidAt.IsZero() {
		t := now
		p.PaidAt = &t
	}
}
