package catalog

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mariodiaz1375/consultorio-supabase/internal/platform/db"
)

// Table names come from the kinds registry, never from the request.

type itemRepoPG struct{ pool *pgxpool.Pool }

func NewItemRepoPG(pool *pgxpool.Pool) ItemRepository { return &itemRepoPG{pool: pool} }

func scanItem(row pgx.Row) (*Item, error) {
	var it Item
	if err := row.Scan(&it.ID, &it.Name); err != nil {
		return nil, db.Translate(err)
	}
	return &it, nil
}

func (r *itemRepoPG) List(ctx context.Context, k Kind) ([]*Item, error) {
	rows, err := db.From(ctx, r.pool).Query(ctx, `SELECT id, nombre FROM `+k.Table+` ORDER BY nombre`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []*Item{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *itemRepoPG) GetByID(ctx context.Context, k Kind, id int64) (*Item, error) {
	return scanItem(db.From(ctx, r.pool).QueryRow(ctx, `SELECT id, nombre FROM `+k.Table+` WHERE id = $1`, id))
}

func (r *itemRepoPG) GetByName(ctx context.Context, k Kind, name string) (*Item, error) {
	return scanItem(db.From(ctx, r.pool).QueryRow(ctx, `SELECT id, nombre FROM `+k.Table+` WHERE nombre = $1`, name))
}

func (r *itemRepoPG) Create(ctx context.Context, k Kind, it *Item) error {
	err := db.From(ctx, r.pool).QueryRow(ctx,
		`INSERT INTO `+k.Table+` (nombre) VALUES ($1) RETURNING id`, it.Name).Scan(&it.ID)
	return db.Translate(err)
}

func (r *itemRepoPG) Update(ctx context.Context, k Kind, it *Item) error {
	tag, err := db.From(ctx, r.pool).Exec(ctx, `UPDATE `+k.Table+` SET nombre = $2 WHERE id = $1`, it.ID, it.Name)
	if err != nil {
		return db.Translate(err)
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}

func (r *itemRepoPG) Delete(ctx context.Context, k Kind, id int64) error {
	tag, err := db.From(ctx, r.pool).Exec(ctx, `DELETE FROM `+k.Table+` WHERE id = $1`, id)
	if err != nil {
		return db.Translate(err)
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}

// =========== Time slots ===========

type timeSlotRepoPG struct{ pool *pgxpool.Pool }

func NewTimeSlotRepoPG(pool *pgxpool.Pool) TimeSlotRepository { return &timeSlotRepoPG{pool: pool} }

const slotCols = `id, to_char(hora, 'HH24:MI')`

func scanTimeSlot(row pgx.Row) (*TimeSlot, error) {
	var ts TimeSlot
	if err := row.Scan(&ts.ID, &ts.Time); err != nil {
		return nil, db.Translate(err)
	}
	return &ts, nil
}

func (r *timeSlotRepoPG) List(ctx context.Context) ([]*TimeSlot, error) {
	rows, err := db.From(ctx, r.pool).Query(ctx, `SELECT `+slotCols+` FROM horarios_fijos ORDER BY hora`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []*TimeSlot{}
	for rows.Next() {
		ts, err := scanTimeSlot(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, ts)
	}
	return items, rows.Err()
}

func (r *timeSlotRepoPG) GetByID(ctx context.Context, id int64) (*TimeSlot, error) {
	return scanTimeSlot(db.From(ctx, r.pool).QueryRow(ctx, `SELECT `+slotCols+` FROM horarios_fijos WHERE id = $1`, id))
}

func (r *timeSlotRepoPG) Create(ctx context.Context, ts *TimeSlot) error {
	err := db.From(ctx, r.pool).QueryRow(ctx,
		`INSERT INTO horarios_fijos (hora) VALUES ($1::time) RETURNING id`, ts.Time).Scan(&ts.ID)
	return db.Translate(err)
}

func (r *timeSlotRepoPG) Update(ctx context.Context, ts *TimeSlot) error {
	tag, err := db.From(ctx, r.pool).Exec(ctx, `UPDATE horarios_fijos SET hora = $2::time WHERE id = $1`, ts.ID, ts.Time)
	if err != nil {
		return db.Translate(err)
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}

func (r *timeSlotRepoPG) Delete(ctx context.Context, id int64) error {
	tag, err := db.From(ctx, r.pool).Exec(ctx, `DELETE FROM horarios_fijos WHERE id = $1`, id)
	if err != nil {
		return db.Translate(err)
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}

// =========== Weekdays ===========

type weekdayRepoPG struct{ pool *pgxpool.Pool }

func NewWeekdayRepoPG(pool *pgxpool.Pool) WeekdayRepository { return &weekdayRepoPG{pool: pool} }

func scanWeekday(row pgx.Row) (*Weekday, error) {
	var d Weekday
	if err := row.Scan(&d.ID, &d.Number); err != nil {
		return nil, db.Translate(err)
	}
	d.Name = WeekdayName(d.Number)
	return &d, nil
}

func (r *weekdayRepoPG) List(ctx context.Context) ([]*Weekday, error) {
	rows, err := db.From(ctx, r.pool).Query(ctx, `SELECT id, numero_dia FROM dias_semana ORDER BY numero_dia`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []*Weekday{}
	for rows.Next() {
		d, err := scanWeekday(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	return items, rows.Err()
}

func (r *weekdayRepoPG) GetByID(ctx context.Context, id int64) (*Weekday, error) {
	return scanWeekday(db.From(ctx, r.pool).QueryRow(ctx, `SELECT id, numero_dia FROM dias_semana WHERE id = $1`, id))
}

func (r *weekdayRepoPG) Create(ctx context.Context, d *Weekday) error {
	err := db.From(ctx, r.pool).QueryRow(ctx,
		`INSERT INTO dias_semana (numero_dia) VALUES ($1) RETURNING id`, d.Number).Scan(&d.ID)
	return db.Translate(err)
}

func (r *weekdayRepoPG) Update(ctx context.Context, d *Weekday) error {
	tag, err := db.From(ctx, r.pool).Exec(ctx, `UPDATE dias_semana SET numero_dia = $2 WHERE id = $1`, d.ID, d.Number)
	if err != nil {
		return db.Translate(err)
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}

func (r *weekdayRepoPG) Delete(ctx context.Context, id int64) error {
	tag, err := db.From(ctx, r.pool).Exec(ctx, `DELETE FROM dias_semana WHERE id = $1`, id)
	if err != nil {
		return db.Translate(err)
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}
