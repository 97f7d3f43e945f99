package audit

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mariodiaz1375/consultorio-supabase/internal/platform/db"
	"github.com/mariodiaz1375/consultorio-supabase/pkg/pagination"
)

// whereBuilder accumulates AND conditions with numbered placeholders.
type whereBuilder struct {
	conds []string
	args  []interface{}
}

func (w *whereBuilder) add(cond string, arg interface{}) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, fmt.Sprintf(cond, len(w.args)))
}

func (w *whereBuilder) sql() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// =========== Appointment audit ===========

type appointmentRepoPG struct{ pool *pgxpool.Pool }

func NewAppointmentRepoPG(pool *pgxpool.Pool) AppointmentRepository {
	return &appointmentRepoPG{pool: pool}
}

const apptAuditCols = `id, turno_id, accion, usuario_id, fecha_accion, turno_numero,
	paciente_nombre, paciente_dni, odontologo_nombre, fecha_turno, horario_turno,
	estado_anterior, estado_nuevo, observaciones`

func scanAppointmentRecord(row pgx.Row) (*AppointmentRecord, error) {
	var r AppointmentRecord
	err := row.Scan(&r.ID, &r.TurnoID, &r.Action, &r.UserID, &r.ActionAt, &r.TurnoNumber,
		&r.PatientName, &r.PatientDNI, &r.DentistName, &r.AppointmentDate, &r.AppointmentTime,
		&r.PreviousStatus, &r.NewStatus, &r.Observations)
	if err != nil {
		return nil, db.Translate(err)
	}
	return &r, nil
}

func (r *appointmentRepoPG) Insert(ctx context.Context, rec *AppointmentRecord) error {
	err := db.From(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO auditoria_turnos (turno_id, accion, usuario_id, turno_numero,
			paciente_nombre, paciente_dni, odontologo_nombre, fecha_turno, horario_turno,
			estado_anterior, estado_nuevo, observaciones)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING id, fecha_accion`,
		rec.TurnoID, rec.Action, rec.UserID, rec.TurnoNumber,
		rec.PatientName, rec.PatientDNI, rec.DentistName, rec.AppointmentDate, rec.AppointmentTime,
		rec.PreviousStatus, rec.NewStatus, rec.Observations,
	).Scan(&rec.ID, &rec.ActionAt)
	return db.Translate(err)
}

func (r *appointmentRepoPG) GetByID(ctx context.Context, id int64) (*AppointmentRecord, error) {
	return scanAppointmentRecord(db.From(ctx, r.pool).QueryRow(ctx,
		`SELECT `+apptAuditCols+` FROM auditoria_turnos WHERE id = $1`, id))
}

func (r *appointmentRepoPG) Search(ctx context.Context, f AppointmentFilter, page pagination.Page) ([]*AppointmentRecord, int, error) {
	var w whereBuilder
	if f.TurnoNumber != nil {
		w.add("turno_numero = $%d", *f.TurnoNumber)
	}
	if f.PatientDNI != "" {
		w.add("paciente_dni = $%d", f.PatientDNI)
	}
	if f.Action != "" {
		w.add("accion = $%d", f.Action)
	}
	if f.From != nil {
		w.add("fecha_accion >= $%d", *f.From)
	}
	if f.To != nil {
		w.add("fecha_accion <= $%d", *f.To)
	}

	q := db.From(ctx, r.pool)
	var total int
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM auditoria_turnos`+w.sql(), w.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	n := len(w.args)
	query := `SELECT ` + apptAuditCols + ` FROM auditoria_turnos` + w.sql() +
		fmt.Sprintf(` ORDER BY fecha_accion DESC, id DESC LIMIT $%d OFFSET $%d`, n+1, n+2)
	rows, err := q.Query(ctx, query, append(w.args, page.Size, page.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := []*AppointmentRecord{}
	for rows.Next() {
		rec, err := scanAppointmentRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, rec)
	}
	return items, total, rows.Err()
}

// =========== Payment audit ===========

type paymentRepoPG struct{ pool *pgxpool.Pool }

func NewPaymentRepoPG(pool *pgxpool.Pool) PaymentRepository {
	return &paymentRepoPG{pool: pool}
}

const payAuditCols = `id, pago_id, accion, usuario_id, fecha_accion, pago_numero, hist_clin_numero,
	tipo_pago_nombre, paciente_nombre, paciente_dni, monto::float8, estado_pagado, fecha_pago, observaciones`

func scanPaymentRecord(row pgx.Row) (*PaymentRecord, error) {
	var r PaymentRecord
	err := row.Scan(&r.ID, &r.PagoID, &r.Action, &r.UserID, &r.ActionAt, &r.PagoNumber, &r.HistoryNumber,
		&r.PaymentTypeName, &r.PatientName, &r.PatientDNI, &r.Amount, &r.Paid, &r.PaidAt, &r.Observations)
	if err != nil {
		return nil, db.Translate(err)
	}
	return &r, nil
}

func (r *paymentRepoPG) Insert(ctx context.Context, rec *PaymentRecord) error {
	err := db.From(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO auditoria_pagos (pago_id, accion, usuario_id, pago_numero, hist_clin_numero,
			tipo_pago_nombre, paciente_nombre, paciente_dni, monto, estado_pagado, fecha_pago, observaciones)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING id, fecha_accion`,
		rec.PagoID, rec.Action, rec.UserID, rec.PagoNumber, rec.HistoryNumber,
		rec.PaymentTypeName, rec.PatientName, rec.PatientDNI, rec.Amount, rec.Paid, rec.PaidAt, rec.Observations,
	).Scan(&rec.ID, &rec.ActionAt)
	return db.Translate(err)
}

func (r *paymentRepoPG) GetByID(ctx context.Context, id int64) (*PaymentRecord, error) {
	return scanPaymentRecord(db.From(ctx, r.pool).QueryRow(ctx,
		`SELECT `+payAuditCols+` FROM auditoria_pagos WHERE id = $1`, id))
}

func (r *paymentRepoPG) Search(ctx context.Context, f PaymentFilter, page pagination.Page) ([]*PaymentRecord, int, error) {
	var w whereBuilder
	if f.HistoryNumber != nil {
		w.add("hist_clin_numero = $%d", *f.HistoryNumber)
	}
	if f.PatientDNI != "" {
		w.add("paciente_dni = $%d", f.PatientDNI)
	}
	if f.Action != "" {
		w.add("accion = $%d", f.Action)
	}
	if f.From != nil {
		w.add("fecha_accion >= $%d", *f.From)
	}
	if f.To != nil {
		w.add("fecha_accion <= $%d", *f.To)
	}

	q := db.From(ctx, r.pool)
	var total int
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM auditoria_pagos`+w.sql(), w.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	n := len(w.args)
	query := `SELECT ` + payAuditCols + ` FROM auditoria_pagos` + w.sql() +
		fmt.Sprintf(` ORDER BY fecha_accion DESC, id DESC LIMIT $%d OFFSET $%d`, n+1, n+2)
	rows, err := q.Query(ctx, query, append(w.args, page.Size, page.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := []*PaymentRecord{}
	for rows.Next() {
		rec, err := scanPaymentRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, rec)
	}
	return items, total, rows.Err()
}
