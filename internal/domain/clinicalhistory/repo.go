package clinicalhistory

import "context"

type Repository interface {
	Create(ctx context.Context, h *History) error
	GetByID(ctx context.Context, id int64) (*History, error)
	// Update writes the history row. Details are replaced only when
	// h.Details is non-nil.
	Update(ctx context.Context, h *History) error
	Delete(ctx context.Context, id int64) error
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*History, int, error)

	ListFollowUps(ctx context.Context, historyID int64) ([]*FollowUp, error)
	AddFollowUp(ctx context.Context, f *FollowUp) error
}
