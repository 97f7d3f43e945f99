package audit

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/mariodiaz1375/consultorio-supabase/internal/platform/db"
)

type Op int

const (
	OpCreate Op = iota + 1
	OpUpdate
	OpDelete
)

func (o Op) String() string {
	switch o {
	case OpCreate:
		return "create"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	}
	return "unknown"
}

// Event describes one completed write. Before is nil on create, After is nil
// on delete.
type Event[T any] struct {
	Op      Op
	Before  *T
	After   *T
	ActorID *int64
	At      time.Time
}

// Hook observes completed writes of T.
type Hook[T any] interface {
	Handle(ctx context.Context, ev Event[T]) error
}

type HookFunc[T any] func(ctx context.Context, ev Event[T]) error

func (f HookFunc[T]) Handle(ctx context.Context, ev Event[T]) error { return f(ctx, ev) }

// Dispatcher runs its hooks in order after a write. Each hook gets its own
// nested transaction: a failing hook is rolled back and logged, and neither
// the write nor the remaining hooks are affected.
type Dispatcher[T any] struct {
	entity string
	tx     db.Transactor
	logger zerolog.Logger
	hooks  []Hook[T]
}

func NewDispatcher[T any](entity string, tx db.Transactor, logger zerolog.Logger, hooks ...Hook[T]) *Dispatcher[T] {
	return &Dispatcher[T]{entity: entity, tx: tx, logger: logger, hooks: hooks}
}

// Dispatch returns how many hooks failed.
func (d *Dispatcher[T]) Dispatch(ctx context.Context, ev Event[T]) int {
	failed := 0
	for i, h := range d.hooks {
		err := d.tx.InTx(ctx, func(ctx context.Context) error {
			return h.Handle(ctx, ev)
		})
		if err != nil {
			failed++
			d.logger.Error().Err(err).
				Str("entity", d.entity).
				Str("op", ev.Op.String()).
				Int("hook", i).
				Msg("post-write hook failed")
		}
	}
	return failed
}
