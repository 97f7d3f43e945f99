package catalog

import "context"

type ItemRepository interface {
	List(ctx context.Context, k Kind) ([]*Item, error)
	GetByID(ctx context.Context, k Kind, id int64) (*Item, error)
	GetByName(ctx context.Context, k Kind, name string) (*Item, error)
	Create(ctx context.Context, k Kind, it *Item) error
	Update(ctx context.Context, k Kind, it *Item) error
	Delete(ctx context.Context, k Kind, id int64) error
}

type TimeSlotRepository interface {
	List(ctx context.Context) ([]*TimeSlot, error)
	GetByID(ctx context.Context, id int64) (*TimeSlot, error)
	Create(ctx context.Context, ts *TimeSlot) error
	Update(ctx context.Context, ts *TimeSlot) error
	Delete(ctx context.Context, id int64) error
}

type WeekdayRepository interface {
	List(ctx context.Context) ([]*Weekday, error)
	GetByID(ctx context.Context, id int64) (*Weekday, error)
	Create(ctx context.Context, d *Weekday) error
	Update(ctx context.Context, d *Weekday) error
	Delete(ctx context.Context, id int64) error
}
