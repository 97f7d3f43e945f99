package staff

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mariodiaz1375/consultorio-supabase/internal/platform/db"
)

type staffRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &staffRepoPG{pool: pool} }

const staffSelect = `SELECT s.id, s.nombre, s.apellido, s.dni, s.fecha_nacimiento,
	COALESCE(s.domicilio, ''), COALESCE(s.telefono, ''), COALESCE(s.email, ''), COALESCE(s.matricula, ''),
	s.activo, s.usuario_id,
	COALESCE((SELECT array_agg(pp.puesto_id ORDER BY pp.puesto_id) FROM personal_puestos pp WHERE pp.personal_id = s.id), '{}'),
	COALESCE((SELECT array_agg(pe.especialidad_id ORDER BY pe.especialidad_id) FROM personal_especialidades pe WHERE pe.personal_id = s.id), '{}'),
	COALESCE((SELECT array_agg(p.nombre ORDER BY p.nombre) FROM personal_puestos pp JOIN puestos p ON p.id = pp.puesto_id WHERE pp.personal_id = s.id), '{}'),
	COALESCE((SELECT array_agg(e.nombre ORDER BY e.nombre) FROM personal_especialidades pe JOIN especialidades e ON e.id = pe.especialidad_id WHERE pe.personal_id = s.id), '{}'),
	s.created_at, s.updated_at
	FROM personal s`

func scanMember(row pgx.Row) (*Member, error) {
	var m Member
	var active bool
	err := row.Scan(&m.ID, &m.FirstName, &m.LastName, &m.DNI, &m.BirthDate,
		&m.Address, &m.Phone, &m.Email, &m.LicenseNumber,
		&active, &m.UserID, &m.PositionIDs, &m.SpecialtyIDs, &m.PositionNames, &m.SpecialtyNames,
		&m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, db.Translate(err)
	}
	m.Active = &active
	return &m, nil
}

func (r *staffRepoPG) Create(ctx context.Context, m *Member) error {
	q := db.From(ctx, r.pool)
	err := q.QueryRow(ctx, `
		INSERT INTO personal (nombre, apellido, dni, fecha_nacimiento, domicilio, telefono, email,
			matricula, activo, usuario_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING id, created_at, updated_at`,
		m.FirstName, m.LastName, m.DNI, m.BirthDate, m.Address, m.Phone, m.Email,
		m.LicenseNumber, m.IsActive(), m.UserID,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return db.Translate(err)
	}
	return r.replaceLinks(ctx, q, m)
}

func (r *staffRepoPG) GetByID(ctx context.Context, id int64) (*Member, error) {
	return scanMember(db.From(ctx, r.pool).QueryRow(ctx, staffSelect+` WHERE s.id = $1`, id))
}

func (r *staffRepoPG) GetByUserID(ctx context.Context, userID int64) (*Member, error) {
	return scanMember(db.From(ctx, r.pool).QueryRow(ctx, staffSelect+` WHERE s.usuario_id = $1`, userID))
}

func (r *staffRepoPG) Update(ctx context.Context, m *Member) error {
	q := db.From(ctx, r.pool)
	err := q.QueryRow(ctx, `
		UPDATE personal SET nombre=$2, apellido=$3, dni=$4, fecha_nacimiento=$5, domicilio=$6,
			telefono=$7, email=$8, matricula=$9, activo=$10, usuario_id=$11, updated_at=NOW()
		WHERE id = $1
		RETURNING updated_at`,
		m.ID, m.FirstName, m.LastName, m.DNI, m.BirthDate, m.Address,
		m.Phone, m.Email, m.LicenseNumber, m.IsActive(), m.UserID,
	).Scan(&m.UpdatedAt)
	if err != nil {
		return db.Translate(err)
	}
	return r.replaceLinks(ctx, q, m)
}

func (r *staffRepoPG) replaceLinks(ctx context.Context, q db.Querier, m *Member) error {
	links := []struct {
		table, column string
		ids           []int64
	}{
		{"personal_puestos", "puesto_id", m.PositionIDs},
		{"personal_especialidades", "especialidad_id", m.SpecialtyIDs},
	}
	for _, l := range links {
		if _, err := q.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE personal_id = $1`, l.table), m.ID); err != nil {
			return db.Translate(err)
		}
		if len(l.ids) == 0 {
			continue
		}
		_, err := q.Exec(ctx, fmt.Sprintf(`
			INSERT INTO %s (personal_id, %s)
			SELECT $1, unnest($2::bigint[]) ON CONFLICT DO NOTHING`, l.table, l.column), m.ID, l.ids)
		if err != nil {
			return db.Translate(err)
		}
	}
	return nil
}

func (r *staffRepoPG) Delete(ctx context.Context, id int64) error {
	tag, err := db.From(ctx, r.pool).Exec(ctx, `DELETE FROM personal WHERE id = $1`, id)
	if err != nil {
		return db.Translate(err)
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}

func (r *staffRepoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Member, int, error) {
	where := ` WHERE 1=1`
	var args []interface{}
	idx := 1

	if v, ok := params["dni"]; ok {
		where += fmt.Sprintf(` AND s.dni = $%d`, idx)
		args = append(args, v)
		idx++
	}
	if v, ok := params["q"]; ok {
		where += fmt.Sprintf(` AND (s.nombre ILIKE $%d OR s.apellido ILIKE $%d)`, idx, idx)
		args = append(args, "%"+v+"%")
		idx++
	}
	if v, ok := params["activo"]; ok {
		where += fmt.Sprintf(` AND s.activo = $%d`, idx)
		args = append(args, v == "true")
		idx++
	}
	if v, ok := params["puesto_id"]; ok {
		where += fmt.Sprintf(` AND EXISTS (SELECT 1 FROM personal_puestos pp WHERE pp.personal_id = s.id AND pp.puesto_id = $%d)`, idx)
		args = append(args, v)
		idx++
	}
	if v, ok := params["puesto"]; ok {
		where += fmt.Sprintf(` AND EXISTS (SELECT 1 FROM personal_puestos pp JOIN puestos p ON p.id = pp.puesto_id
			WHERE pp.personal_id = s.id AND p.nombre ILIKE $%d)`, idx)
		args = append(args, v)
		idx++
	}
	if v, ok := params["especialidad_id"]; ok {
		where += fmt.Sprintf(` AND EXISTS (SELECT 1 FROM personal_especialidades pe WHERE pe.personal_id = s.id AND pe.especialidad_id = $%d)`, idx)
		args = append(args, v)
		idx++
	}

	q := db.From(ctx, r.pool)
	var total int
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM personal s`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := staffSelect + where + fmt.Sprintf(` ORDER BY s.apellido, s.nombre, s.id LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items := []*Member{}
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, m)
	}
	return items, total, rows.Err()
}
