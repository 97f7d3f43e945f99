package patient

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mariodiaz1375/consultorio-supabase/internal/platform/db"
)

type patientRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &patientRepoPG{pool: pool} }

const patientSelect = `SELECT p.id, p.nombre, p.apellido, p.dni, p.fecha_nacimiento, p.domicilio,
	p.telefono, p.email, p.genero_id, COALESCE(g.nombre, ''), p.obra_social_id, COALESCE(os.nombre, ''),
	p.activo,
	COALESCE((SELECT array_agg(antecedente_id ORDER BY antecedente_id) FROM pacientes_antecedentes WHERE paciente_id = p.id), '{}'),
	COALESCE((SELECT array_agg(analisis_id ORDER BY analisis_id) FROM pacientes_analisis_funcional WHERE paciente_id = p.id), '{}'),
	p.created_at, p.updated_at
	FROM pacientes p
	LEFT JOIN generos g ON g.id = p.genero_id
	LEFT JOIN obras_sociales os ON os.id = p.obra_social_id`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	var active bool
	var address, phone, email *string
	err := row.Scan(&p.ID, &p.FirstName, &p.LastName, &p.DNI, &p.BirthDate, &address,
		&phone, &email, &p.GenderID, &p.GenderName, &p.InsurerID, &p.InsurerName,
		&active, &p.MedicalHistoryIDs, &p.FunctionalTestIDs, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, db.Translate(err)
	}
	p.Active = &active
	p.Address, p.Phone, p.Email = deref(address), deref(phone), deref(email)
	return &p, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (r *patientRepoPG) Create(ctx context.Context, p *Patient) error {
	q := db.From(ctx, r.pool)
	err := q.QueryRow(ctx, `
		INSERT INTO pacientes (nombre, apellido, dni, fecha_nacimiento, domicilio, telefono, email,
			genero_id, obra_social_id, activo)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING id, created_at, updated_at`,
		p.FirstName, p.LastName, p.DNI, p.BirthDate, p.Address, p.Phone, p.Email,
		p.GenderID, p.InsurerID, p.IsActive(),
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return db.Translate(err)
	}
	return r.replaceLinks(ctx, q, p)
}

func (r *patientRepoPG) GetByID(ctx context.Context, id int64) (*Patient, error) {
	return scanPatient(db.From(ctx, r.pool).QueryRow(ctx, patientSelect+` WHERE p.id = $1`, id))
}

func (r *patientRepoPG) GetByDNI(ctx context.Context, dni string) (*Patient, error) {
	return scanPatient(db.From(ctx, r.pool).QueryRow(ctx, patientSelect+` WHERE p.dni = $1`, dni))
}

func (r *patientRepoPG) Update(ctx context.Context, p *Patient) error {
	q := db.From(ctx, r.pool)
	err := q.QueryRow(ctx, `
		UPDATE pacientes SET nombre=$2, apellido=$3, dni=$4, fecha_nacimiento=$5, domicilio=$6,
			telefono=$7, email=$8, genero_id=$9, obra_social_id=$10, activo=$11, updated_at=NOW()
		WHERE id = $1
		RETURNING updated_at`,
		p.ID, p.FirstName, p.LastName, p.DNI, p.BirthDate, p.Address,
		p.Phone, p.Email, p.GenderID, p.InsurerID, p.IsActive(),
	).Scan(&p.UpdatedAt)
	if err != nil {
		return db.Translate(err)
	}
	return r.replaceLinks(ctx, q, p)
}

// replaceLinks rewrites both many-to-many sets of p.
func (r *patientRepoPG) replaceLinks(ctx context.Context, q db.Querier, p *Patient) error {
	if _, err := q.Exec(ctx, `DELETE FROM pacientes_antecedentes WHERE paciente_id = $1`, p.ID); err != nil {
		return db.Translate(err)
	}
	if len(p.MedicalHistoryIDs) > 0 {
		if _, err := q.Exec(ctx, `
			INSERT INTO pacientes_antecedentes (paciente_id, antecedente_id)
			SELECT $1, unnest($2::bigint[]) ON CONFLICT DO NOTHING`, p.ID, p.MedicalHistoryIDs); err != nil {
			return db.Translate(err)
		}
	}
	if _, err := q.Exec(ctx, `DELETE FROM pacientes_analisis_funcional WHERE paciente_id = $1`, p.ID); err != nil {
		return db.Translate(err)
	}
	if len(p.FunctionalTestIDs) > 0 {
		if _, err := q.Exec(ctx, `
			INSERT INTO pacientes_analisis_funcional (paciente_id, analisis_id)
			SELECT $1, unnest($2::bigint[]) ON CONFLICT DO NOTHING`, p.ID, p.FunctionalTestIDs); err != nil {
			return db.Translate(err)
		}
	}
	return nil
}

func (r *patientRepoPG) Delete(ctx context.Context, id int64) error {
	tag, err := db.From(ctx, r.pool).Exec(ctx, `DELETE FROM pacientes WHERE id = $1`, id)
	if err != nil {
		return db.Translate(err)
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}

func (r *patientRepoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Patient, int, error) {
	where := ` WHERE 1=1`
	var args []interface{}
	idx := 1

	if v, ok := params["dni"]; ok {
		where += fmt.Sprintf(` AND p.dni = $%d`, idx)
		args = append(args, v)
		idx++
	}
	if v, ok := params["q"]; ok {
		where += fmt.Sprintf(` AND (p.nombre ILIKE $%d OR p.apellido ILIKE $%d OR p.dni LIKE $%d)`, idx, idx, idx)
		args = append(args, "%"+v+"%")
		idx++
	}
	if v, ok := params["activo"]; ok {
		where += fmt.Sprintf(` AND p.activo = $%d`, idx)
		args = append(args, v == "true")
		idx++
	}
	if v, ok := params["genero_id"]; ok {
		where += fmt.Sprintf(` AND p.genero_id = $%d`, idx)
		args = append(args, v)
		idx++
	}

	q := db.From(ctx, r.pool)
	var total int
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM pacientes p`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := patientSelect + where + fmt.Sprintf(` ORDER BY p.apellido, p.nombre, p.id LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items := []*Patient{}
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}
