package clinicalhistory

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mariodiaz1375/consultorio-supabase/internal/platform/db"
)

type historyRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &historyRepoPG{pool: pool} }

const historySelect = `SELECT h.id, h.paciente_id, p.nombre || ' ' || p.apellido, p.dni,
	h.odontologo_id, s.nombre || ' ' || s.apellido, h.descripcion,
	h.fecha_inicio, h.fecha_fin, h.finalizado, h.created_at, h.updated_at
	FROM historias_clinicas h
	JOIN pacientes p ON p.id = h.paciente_id
	JOIN personal s ON s.id = h.odontologo_id`

func scanHistory(row pgx.Row) (*History, error) {
	var h History
	err := row.Scan(&h.ID, &h.PatientID, &h.PatientName, &h.PatientDNI,
		&h.DentistID, &h.DentistName, &h.Description,
		&h.StartedAt, &h.EndedAt, &h.Finished, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return nil, db.Translate(err)
	}
	return &h, nil
}

func (r *historyRepoPG) Create(ctx context.Context, h *History) error {
	q := db.From(ctx, r.pool)
	err := q.QueryRow(ctx, `
		INSERT INTO historias_clinicas (paciente_id, odontologo_id, descripcion, fecha_fin, finalizado)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, fecha_inicio, created_at, updated_at`,
		h.PatientID, h.DentistID, h.Description, h.EndedAt, h.Finished,
	).Scan(&h.ID, &h.StartedAt, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return db.Translate(err)
	}
	return r.insertDetails(ctx, q, h)
}

func (r *historyRepoPG) insertDetails(ctx context.Context, q db.Querier, h *History) error {
	for i := range h.Details {
		d := &h.Details[i]
		d.HistoryID = h.ID
		err := q.QueryRow(ctx, `
			INSERT INTO detalles_hc (historia_id, tratamiento_id, pieza_id, cara_id)
			VALUES ($1, $2, $3, $4) RETURNING id`,
			h.ID, d.TreatmentID, d.ToothID, d.FaceID,
		).Scan(&d.ID)
		if err != nil {
			return db.Translate(err)
		}
	}
	return nil
}

func (r *historyRepoPG) GetByID(ctx context.Context, id int64) (*History, error) {
	q := db.From(ctx, r.pool)
	h, err := scanHistory(q.QueryRow(ctx, historySelect+` WHERE h.id = $1`, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadDetails(ctx, q, []*History{h}); err != nil {
		return nil, err
	}
	return h, nil
}

// loadDetails fills Details of every history with a single query.
func (r *historyRepoPG) loadDetails(ctx context.Context, q db.Querier, hs []*History) error {
	if len(hs) == 0 {
		return nil
	}
	byID := make(map[int64]*History, len(hs))
	ids := make([]int64, 0, len(hs))
	for _, h := range hs {
		h.Details = []Detail{}
		byID[h.ID] = h
		ids = append(ids, h.ID)
	}
	rows, err := q.Query(ctx, `
		SELECT d.id, d.historia_id, d.tratamiento_id, t.nombre,
			d.pieza_id, COALESCE(pd.nombre, ''), d.cara_id, COALESCE(cd.nombre, '')
		FROM detalles_hc d
		JOIN tratamientos t ON t.id = d.tratamiento_id
		LEFT JOIN piezas_dentales pd ON pd.id = d.pieza_id
		LEFT JOIN caras_dentales cd ON cd.id = d.cara_id
		WHERE d.historia_id = ANY($1)
		ORDER BY d.historia_id, d.id`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var d Detail
		if err := rows.Scan(&d.ID, &d.HistoryID, &d.TreatmentID, &d.TreatmentName,
			&d.ToothID, &d.ToothCode, &d.FaceID, &d.FaceName); err != nil {
			return err
		}
		if h, ok := byID[d.HistoryID]; ok {
			h.Details = append(h.Details, d)
		}
	}
	return rows.Err()
}

func (r *historyRepoPG) Update(ctx context.Context, h *History) error {
	q := db.From(ctx, r.pool)
	err := q.QueryRow(ctx, `
		UPDATE historias_clinicas SET paciente_id=$2, odontologo_id=$3, descripcion=$4,
			fecha_fin=$5, finalizado=$6, updated_at=NOW()
		WHERE id = $1
		RETURNING updated_at`,
		h.ID, h.PatientID, h.DentistID, h.Description, h.EndedAt, h.Finished,
	).Scan(&h.UpdatedAt)
	if err != nil {
		return db.Translate(err)
	}
	if h.Details == nil {
		return nil
	}
	if _, err := q.Exec(ctx, `DELETE FROM detalles_hc WHERE historia_id = $1`, h.ID); err != nil {
		return db.Translate(err)
	}
	return r.insertDetails(ctx, q, h)
}

func (r *historyRepoPG) Delete(ctx context.Context, id int64) error {
	tag, err := db.From(ctx, r.pool).Exec(ctx, `DELETE FROM historias_clinicas WHERE id = $1`, id)
	if err != nil {
		return db.Translate(err)
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}

func (r *historyRepoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*History, int, error) {
	where := ` WHERE 1=1`
	var args []interface{}
	idx := 1

	if v, ok := params["paciente_id"]; ok {
		where += fmt.Sprintf(` AND h.paciente_id = $%d`, idx)
		args = append(args, v)
		idx++
	}
	if v, ok := params["odontologo_id"]; ok {
		where += fmt.Sprintf(` AND h.odontologo_id = $%d`, idx)
		args = append(args, v)
		idx++
	}
	if v, ok := params["finalizado"]; ok {
		where += fmt.Sprintf(` AND h.finalizado = $%d`, idx)
		args = append(args, v == "true")
		idx++
	}

	q := db.From(ctx, r.pool)
	var total int
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM historias_clinicas h`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := historySelect + where + fmt.Sprintf(` ORDER BY h.fecha_inicio DESC, h.id DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	items := []*History{}
	for rows.Next() {
		h, err := scanHistory(rows)
		if err != nil {
			rows.Close()
			return nil, 0, err
		}
		items = append(items, h)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if err := r.loadDetails(ctx, q, items); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *historyRepoPG) ListFollowUps(ctx context.Context, historyID int64) ([]*FollowUp, error) {
	rows, err := db.From(ctx, r.pool).Query(ctx, `
		SELECT f.id, f.historia_id, f.odontologo_id, COALESCE(s.nombre || ' ' || s.apellido, ''),
			f.descripcion, f.fecha
		FROM seguimientos_hc f
		LEFT JOIN personal s ON s.id = f.odontologo_id
		WHERE f.historia_id = $1
		ORDER BY f.fecha, f.id`, historyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []*FollowUp{}
	for rows.Next() {
		var f FollowUp
		if err := rows.Scan(&f.ID, &f.HistoryID, &f.DentistID, &f.DentistName, &f.Description, &f.Date); err != nil {
			return nil, err
		}
		items = append(items, &f)
	}
	return items, rows.Err()
}

func (r *historyRepoPG) AddFollowUp(ctx context.Context, f *FollowUp) error {
	err := db.From(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO seguimientos_hc (historia_id, odontologo_id, descripcion)
		VALUES ($1, $2, $3)
		RETURNING id, fecha`,
		f.HistoryID, f.DentistID, f.Description,
	).Scan(&f.ID, &f.Date)
	return db.Translate(err)
}
