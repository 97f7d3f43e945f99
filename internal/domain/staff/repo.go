package staff

import "context"

type Repository interface {
	Create(ctx context.Context, m *Member) error
	GetByID(ctx context.Context, id int64) (*Member, error)
	GetByUserID(ctx context.Context, userID int64) (*Member, error)
	Update(ctx context.Context, m *Member) error
	Delete(ctx context.Context, id int64) error
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Member, int, error)
}
