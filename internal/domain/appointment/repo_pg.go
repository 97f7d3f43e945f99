package appointment

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mariodiaz1375/consultorio-supabase/internal/platform/db"
	"github.com/mariodiaz1375/consultorio-supabase/pkg/civil"
)

type appointmentRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &appointmentRepoPG{pool: pool} }

const appointmentSelect = `SELECT t.id, t.odontologo_id, s.nombre || ' ' || s.apellido,
	t.paciente_id, p.nombre || ' ' || p.apellido, p.dni,
	t.fecha, t.horario_id, COALESCE(to_char(h.hora, 'HH24:MI'), ''),
	t.estado_id, e.nombre, t.motivo, t.created_at, t.updated_at
	FROM turnos t
	JOIN personal s ON s.id = t.odontologo_id
	JOIN pacientes p ON p.id = t.paciente_id
	JOIN estados_turnos e ON e.id = t.estado_id
	LEFT JOIN horarios_fijos h ON h.id = t.horario_id`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.DentistID, &a.DentistName,
		&a.PatientID, &a.PatientName, &a.PatientDNI,
		&a.Date, &a.SlotID, &a.SlotTime,
		&a.StatusID, &a.StatusName, &a.Reason, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, db.Translate(err)
	}
	return &a, nil
}

func (r *appointmentRepoPG) Create(ctx context.Context, a *Appointment) error {
	err := db.From(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO turnos (odontologo_id, paciente_id, fecha, horario_id, estado_id, motivo)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`,
		a.DentistID, a.PatientID, a.Date, a.SlotID, a.StatusID, a.Reason,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	return db.Translate(err)
}

func (r *appointmentRepoPG) GetByID(ctx context.Context, id int64) (*Appointment, error) {
	return scanAppointment(db.From(ctx, r.pool).QueryRow(ctx, appointmentSelect+` WHERE t.id = $1`, id))
}

func (r *appointmentRepoPG) Update(ctx context.Context, a *Appointment) error {
	err := db.From(ctx, r.pool).QueryRow(ctx, `
		UPDATE turnos SET odontologo_id=$2, paciente_id=$3, fecha=$4, horario_id=$5,
			estado_id=$6, motivo=$7, updated_at=NOW()
		WHERE id = $1
		RETURNING updated_at`,
		a.ID, a.DentistID, a.PatientID, a.Date, a.SlotID, a.StatusID, a.Reason,
	).Scan(&a.UpdatedAt)
	return db.Translate(err)
}

func (r *appointmentRepoPG) Delete(ctx context.Context, id int64) error {
	tag, err := db.From(ctx, r.pool).Exec(ctx, `DELETE FROM turnos WHERE id = $1`, id)
	if err != nil {
		return db.Translate(err)
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}

func (r *appointmentRepoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Appointment, int, error) {
	where := ` WHERE 1=1`
	var args []interface{}
	idx := 1

	for _, f := range []struct{ param, cond string }{
		{"fecha", "t.fecha = $%d::date"},
		{"fecha_desde", "t.fecha >= $%d::date"},
		{"fecha_hasta", "t.fecha <= $%d::date"},
		{"odontologo_id", "t.odontologo_id = $%d"},
		{"paciente_id", "t.paciente_id = $%d"},
		{"estado_id", "t.estado_id = $%d"},
		{"paciente_dni", "p.dni = $%d"},
	} {
		if v, ok := params[f.param]; ok {
			where += ` AND ` + fmt.Sprintf(f.cond, idx)
			args = append(args, v)
			idx++
		}
	}

	q := db.From(ctx, r.pool)
	var total int
	countSQL := `SELECT COUNT(*) FROM turnos t JOIN pacientes p ON p.id = t.paciente_id` + where
	if err := q.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := appointmentSelect + where + fmt.Sprintf(` ORDER BY t.fecha, h.hora NULLS LAST, t.id LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items := []*Appointment{}
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, rows.Err()
}

func (r *appointmentRepoPG) ExistsBooking(ctx context.Context, dentistID int64, date civil.Date, slotID, excludeID int64) (bool, error) {
	var exists bool
	err := db.From(ctx, r.pool).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM turnos
			WHERE odontologo_id = $1 AND fecha = $2 AND horario_id = $3 AND id <> $4
		)`, dentistID, date, slotID, excludeID).Scan(&exists)
	return exists, err
}

func (r *appointmentRepoPG) Availability(ctx context.Context, dentistID int64, date civil.Date) ([]*SlotAvailability, error) {
	rows, err := db.From(ctx, r.pool).Query(ctx, `
		SELECT h.id, to_char(h.hora, 'HH24:MI'), t.id
		FROM horarios_fijos h
		LEFT JOIN turnos t ON t.horario_id = h.id AND t.odontologo_id = $1 AND t.fecha = $2
		ORDER BY h.hora`, dentistID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []*SlotAvailability{}
	for rows.Next() {
		var s SlotAvailability
		if err := rows.Scan(&s.SlotID, &s.Time, &s.AppointmentID); err != nil {
			return nil, err
		}
		s.Available = s.AppointmentID == nil
		items = append(items, &s)
	}
	return items, rows.Err()
}

func (r *appointmentRepoPG) ListNotes(ctx context.Context, appointmentID int64) ([]*Note, error) {
	rows, err := db.From(ctx, r.pool).Query(ctx, `
		SELECT n.id, n.turno_id, n.autor_id, COALESCE(u.username, ''), n.descripcion, n.fecha
		FROM turnos_seguimientos n
		LEFT JOIN usuarios u ON u.id = n.autor_id
		WHERE n.turno_id = $1
		ORDER BY n.fecha, n.id`, appointmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []*Note{}
	for rows.Next() {
		var n Note
		if err := rows.Scan(&n.ID, &n.AppointmentID, &n.AuthorID, &n.AuthorName, &n.Description, &n.Date); err != nil {
			return nil, err
		}
		items = append(items, &n)
	}
	return items, rows.Err()
}

func (r *appointmentRepoPG) AddNote(ctx context.Context, n *Note) error {
	err := db.From(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO turnos_seguimientos (turno_id, autor_id, descripcion)
		VALUES ($1, $2, $3)
		RETURNING id, fecha`,
		n.AppointmentID, n.AuthorID, n.Description,
	).Scan(&n.ID, &n.Date)
	return db.Translate(err)
}
