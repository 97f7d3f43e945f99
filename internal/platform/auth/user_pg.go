package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mariodiaz1375/consultorio-supabase/internal/platform/db"
)

type userRepoPG struct{ pool *pgxpool.Pool }

func NewUserRepoPG(pool *pgxpool.Pool) UserRepository { return &userRepoPG{pool: pool} }

const userCols = `id, username, email, password_hash, roles, activo, ultimo_login,
	password_cambiado_en, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Roles, &u.Active,
		&u.LastLogin, &u.PasswordChangedAt, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, db.Translate(err)
	}
	return &u, nil
}

func (r *userRepoPG) Create(ctx context.Context, u *User) error {
	if u.Roles == nil {
		u.Roles = []string{}
	}
	row := db.From(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO usuarios (username, email, password_hash, roles, activo)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, password_cambiado_en, created_at, updated_at`,
		u.Username, u.Email, u.PasswordHash, u.Roles, u.Active)
	if err := row.Scan(&u.ID, &u.PasswordChangedAt, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return fmt.Errorf("create user: %w", db.Translate(err))
	}
	return nil
}

func (r *userRepoPG) GetByID(ctx context.Context, id int64) (*User, error) {
	return scanUser(db.From(ctx, r.pool).QueryRow(ctx,
		`SELECT `+userCols+` FROM usuarios WHERE id = $1`, id))
}

func (r *userRepoPG) GetByUsername(ctx context.Context, username string) (*User, error) {
	return scanUser(db.From(ctx, r.pool).QueryRow(ctx,
		`SELECT `+userCols+` FROM usuarios WHERE username = $1`, username))
}

func (r *userRepoPG) GetByEmail(ctx context.Context, email string) (*User, error) {
	return scanUser(db.From(ctx, r.pool).QueryRow(ctx,
		`SELECT `+userCols+` FROM usuarios WHERE LOWER(email) = LOWER($1)`, email))
}

func (r *userRepoPG) UpdatePassword(ctx context.Context, id int64, hash string, changedAt time.Time) error {
	return r.exec(ctx, `UPDATE usuarios SET password_hash = $2, password_cambiado_en = $3, updated_at = NOW() WHERE id = $1`,
		id, hash, changedAt)
}

func (r *userRepoPG) SetActive(ctx context.Context, id int64, active bool) error {
	return r.exec(ctx, `UPDATE usuarios SET activo = $2, updated_at = NOW() WHERE id = $1`, id, active)
}

func (r *userRepoPG) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	return r.exec(ctx, `UPDATE usuarios SET ultimo_login = $2 WHERE id = $1`, id, at)
}

func (r *userRepoPG) exec(ctx context.Context, sql string, args ...interface{}) error {
	tag, err := db.From(ctx, r.pool).Exec(ctx, sql, args...)
	if err != nil {
		return db.Translate(err)
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}
