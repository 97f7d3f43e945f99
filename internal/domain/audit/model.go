package audit

import (
	"time"

	"github.com/mariodiaz1375/consultorio-supabase/pkg/civil"
)

// Action kinds stored in the accion column.
const (
	ActionCreate       = "CREACION"
	ActionStatusChange = "CAMBIO_ESTADO"
	ActionModify       = "MODIFICACION"
	ActionDelete       = "ELIMINACION"
	ActionRegister     = "REGISTRO"
	ActionCancel       = "CANCELACION"
)

var appointmentActions = map[string]bool{
	ActionCreate: true, ActionStatusChange: true, ActionModify: true, ActionDelete: true,
}

var paymentActions = map[string]bool{
	ActionRegister: true, ActionCancel: true,
}

// AppointmentRecord maps to auditoria_turnos. The snapshot fields are copied
// at write time so the row outlives the turno.
type AppointmentRecord struct {
	ID              int64       `json:"id"`
	TurnoID         *int64      `json:"turno_id"`
	Action          string      `json:"accion"`
	UserID          *int64      `json:"usuario_id"`
	ActionAt        time.Time   `json:"fecha_accion"`
	TurnoNumber     int64       `json:"turno_numero"`
	PatientName     string      `json:"paciente_nombre"`
	PatientDNI      string      `json:"paciente_dni"`
	DentistName     string      `json:"odontologo_nombre"`
	AppointmentDate *civil.Date `json:"fecha_turno"`
	AppointmentTime *string     `json:"horario_turno"`
	PreviousStatus  *string     `json:"estado_anterior"`
	NewStatus       *string     `json:"estado_nuevo"`
	Observations    string      `json:"observaciones"`
}

// PaymentRecord maps to auditoria_pagos.
type PaymentRecord struct {
	ID              int64      `json:"id"`
	PagoID          *int64     `json:"pago_id"`
	Action          string     `json:"accion"`
	UserID          *int64     `json:"usuario_id"`
	ActionAt        time.Time  `json:"fecha_accion"`
	PagoNumber      int64      `json:"pago_numero"`
	HistoryNumber   int64      `json:"hist_clin_numero"`
	PaymentTypeName string     `json:"tipo_pago_nombre"`
	PatientName     string     `json:"paciente_nombre"`
	PatientDNI      string     `json:"paciente_dni"`
	Amount          float64    `json:"monto"`
	Paid            bool       `json:"estado_pagado"`
	PaidAt          *time.Time `json:"fecha_pago"`
	Observations    string     `json:"observaciones"`
}
