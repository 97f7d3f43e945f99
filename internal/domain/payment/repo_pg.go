package payment

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mariodiaz1375/consultorio-supabase/internal/platform/db"
)

type paymentRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &paymentRepoPG{pool: pool} }

const paymentSelect = `SELECT pg.id, pg.tipo_pago_id, tp.nombre, pg.hist_clin_id,
	p.nombre || ' ' || p.apellido, p.dni,
	pg.registrado_por_id, COALESCE(s.nombre || ' ' || s.apellido, ''),
	pg.monto::float8, pg.pagado, pg.fecha_pago, pg.created_at, pg.updated_at
	FROM pagos pg
	JOIN tipos_pagos tp ON tp.id = pg.tipo_pago_id
	JOIN historias_clinicas h ON h.id = pg.hist_clin_id
	JOIN pacientes p ON p.id = h.paciente_id
	LEFT JOIN personal s ON s.id = pg.registrado_por_id`

func scanPayment(row pgx.Row) (*Payment, error) {
	var p Payment
	err := row.Scan(&p.ID, &p.PaymentTypeID, &p.PaymentTypeName, &p.HistoryID,
		&p.PatientName, &p.PatientDNI, &p.RegisteredByID, &p.RegisteredByName,
		&p.Amount, &p.Paid, &p.PaidAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, db.Translate(err)
	}
	return &p, nil
}

func (r *paymentRepoPG) Create(ctx context.Context, p *Payment) error {
	err := db.From(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO pagos (tipo_pago_id, hist_clin_id, registrado_por_id, monto, pagado, fecha_pago)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`,
		p.PaymentTypeID, p.HistoryID, p.RegisteredByID, p.Amount, p.Paid, p.PaidAt,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	return db.Translate(err)
}

func (r *paymentRepoPG) GetByID(ctx context.Context, id int64) (*Payment, error) {
	return scanPayment(db.From(ctx, r.pool).QueryRow(ctx, paymentSelect+` WHERE pg.id = $1`, id))
}

func (r *paymentRepoPG) Update(ctx context.Context, p *Payment) error {
	err := db.From(ctx, r.pool).QueryRow(ctx, `
		UPDATE pagos SET tipo_pago_id=$2, hist_clin_id=$3, registrado_por_id=$4,
			monto=$5, pagado=$6, fecha_pago=$7, updated_at=NOW()
		WHERE id = $1
		RETURNING updated_at`,
		p.ID, p.PaymentTypeID, p.HistoryID, p.RegisteredByID, p.Amount, p.Paid, p.PaidAt,
	).Scan(&p.UpdatedAt)
	return db.Translate(err)
}

func (r *paymentRepoPG) Delete(ctx context.Context, id int64) error {
	tag, err := db.From(ctx, r.pool).Exec(ctx, `DELETE FROM pagos WHERE id = $1`, id)
	if err != nil {
		return db.Translate(err)
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}

func (r *paymentRepoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Payment, int, error) {
	where := ` WHERE 1=1`
	var args []interface{}
	idx := 1

	for _, f := range []struct{ param, col string }{
		{"hist_clin_id", "pg.hist_clin_id"},
		{"paciente_id", "h.paciente_id"},
		{"tipo_pago_id", "pg.tipo_pago_id"},
	} {
		if v, ok := params[f.param]; ok {
			where += fmt.Sprintf(` AND %s = $%d`, f.col, idx)
			args = append(args, v)
			idx++
		}
	}
	if v, ok := params["paciente_dni"]; ok {
		where += fmt.Sprintf(` AND p.dni = $%d`, idx)
		args = append(args, v)
		idx++
	}
	if v, ok := params["pagado"]; ok {
		where += fmt.Sprintf(` AND pg.pagado = $%d`, idx)
		args = append(args, v == "true")
		idx++
	}

	q := db.From(ctx, r.pool)
	var total int
	countSQL := `SELECT COUNT(*) FROM pagos pg
		JOIN historias_clinicas h ON h.id = pg.hist_clin_id
		JOIN pacientes p ON p.id = h.paciente_id` + where
	if err := q.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := paymentSelect + where + fmt.Sprintf(` ORDER BY pg.id DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items := []*Payment{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}
