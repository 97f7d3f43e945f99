package auth

import (
	"context"
	"time"
)

// User is an account that can log in. Staff members link to one through
// personal.usuario_id.
type User struct {
	ID                int64      `db:"id" json:"id"`
	Username          string     `db:"username" json:"username"`
	Email             string     `db:"email" json:"email"`
	PasswordHash      string     `db:"password_hash" json:"-"`
	Roles             []string   `db:"roles" json:"roles"`
	Active            bool       `db:"activo" json:"activo"`
	LastLogin         *time.Time `db:"ultimo_login" json:"ultimo_login,omitempty"`
	PasswordChangedAt time.Time  `db:"password_cambiado_en" json:"-"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updated_at"`
}

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	UpdatePassword(ctx context.Context, id int64, hash string, changedAt time.Time) error
	SetActive(ctx context.Context, id int64, active bool) error
	TouchLastLogin(ctx context.Context, id int64, at time.Time) error
}
