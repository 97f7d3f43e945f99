package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mariodiaz1375/consultorio-supabase/internal/platform/apierr"
	"github.com/mariodiaz1375/consultorio-supabase/internal/platform/db"
)

// ErrUnknownKind is returned for a catalog slug that is not registered.
var ErrUnknownKind = errors.New("unknown catalog")

const maxNameLen = 100

type Service struct {
	items    ItemRepository
	slots    TimeSlotRepository
	weekdays WeekdayRepository
}

func NewService(items ItemRepository, slots TimeSlotRepository, weekdays WeekdayRepository) *Service {
	return &Service{items: items, slots: slots, weekdays: weekdays}
}

func (s *Service) kind(slug string) (Kind, error) {
	k, ok := LookupKind(slug)
	if !ok {
		return Kind{}, fmt.Errorf("%w: %s", ErrUnknownKind, slug)
	}
	return k, nil
}

// -- Named items --

func (s *Service) List(ctx context.Context, slug string) ([]*Item, error) {
	k, err := s.kind(slug)
	if err != nil {
		return nil, err
	}
	return s.items.List(ctx, k)
}

func (s *Service) Get(ctx context.Context, slug string, id int64) (*Item, error) {
	k, err := s.kind(slug)
	if err != nil {
		return nil, err
	}
	return s.items.GetByID(ctx, k, id)
}

// FindByName looks an item up by its exact name.
func (s *Service) FindByName(ctx context.Context, slug, name string) (*Item, error) {
	k, err := s.kind(slug)
	if err != nil {
		return nil, err
	}
	return s.items.GetByName(ctx, k, name)
}

func (s *Service) Create(ctx context.Context, slug string, it *Item) error {
	k, err := s.kind(slug)
	if err != nil {
		return err
	}
	if err := normalizeItem(it); err != nil {
		return err
	}
	return duplicateName(s.items.Create(ctx, k, it))
}

func (s *Service) Update(ctx context.Context, slug string, it *Item) error {
	k, err := s.kind(slug)
	if err != nil {
		return err
	}
	if err := normalizeItem(it); err != nil {
		return err
	}
	return duplicateName(s.items.Update(ctx, k, it))
}

func (s *Service) Delete(ctx context.Context, slug string, id int64) error {
	k, err := s.kind(slug)
	if err != nil {
		return err
	}
	return s.items.Delete(ctx, k, id)
}

func normalizeItem(it *Item) error {
	it.Name = strings.TrimSpace(it.Name)
	if it.Name == "" {
		return apierr.NewValidation("nombre", "nombre is required")
	}
	if utf8.RuneCountInString(it.Name) > maxNameLen {
		return apierr.NewValidation("nombre", fmt.Sprintf("nombre must be at most %d characters", maxNameLen))
	}
	return nil
}

func duplicateName(err error) error {
	if errors.Is(err, db.ErrConflict) {
		return apierr.NewValidation("nombre", "an item with this name already exists")
	}
	return err
}

// -- Time slots --

func (s *Service) ListTimeSlots(ctx context.Context) ([]*TimeSlot, error) {
	return s.slots.List(ctx)
}

func (s *Service) GetTimeSlot(ctx context.Context, id int64) (*TimeSlot, error) {
	return s.slots.GetByID(ctx, id)
}

func (s *Service) CreateTimeSlot(ctx context.Context, ts *TimeSlot) error {
	if err := normalizeSlot(ts); err != nil {
		return err
	}
	return duplicateSlot(s.slots.Create(ctx, ts))
}

func (s *Service) UpdateTimeSlot(ctx context.Context, ts *TimeSlot) error {
	if err := normalizeSlot(ts); err != nil {
		return err
	}
	return duplicateSlot(s.slots.Update(ctx, ts))
}

func (s *Service) DeleteTimeSlot(ctx context.Context, id int64) error {
	return s.slots.Delete(ctx, id)
}

// ParseSlotTime accepts "HH:MM" or "HH:MM:SS" and returns "HH:MM".
func ParseSlotTime(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("15:04"), nil
		}
	}
	return "", fmt.Errorf("invalid time %q, expected HH:MM", raw)
}

func normalizeSlot(ts *TimeSlot) error {
	if strings.TrimSpace(ts.Time) == "" {
		return apierr.NewValidation("hora", "hora is required")
	}
	hhmm, err := ParseSlotTime(ts.Time)
	if err != nil {
		return apierr.NewValidation("hora", err.Error())
	}
	ts.Time = hhmm
	return nil
}

func duplicateSlot(err error) error {
	if errors.Is(err, db.ErrConflict) {
		return apierr.NewValidation("hora", "a time slot with this time already exists")
	}
	return err
}

// -- Weekdays --

func (s *Service) ListWeekdays(ctx context.Context) ([]*Weekday, error) {
	return s.weekdays.List(ctx)
}

func (s *Service) GetWeekday(ctx context.Context, id int64) (*Weekday, error) {
	return s.weekdays.GetByID(ctx, id)
}

func (s *Service) CreateWeekday(ctx context.Context, d *Weekday) error {
	if err := validateWeekday(d); err != nil {
		return err
	}
	return duplicateWeekday(s.weekdays.Create(ctx, d))
}

func (s *Service) UpdateWeekday(ctx context.Context, d *Weekday) error {
	if err := validateWeekday(d); err != nil {
		return err
	}
	return duplicateWeekday(s.weekdays.Update(ctx, d))
}

func (s *Service) DeleteWeekday(ctx context.Context, id int64) error {
	return s.weekdays.Delete(ctx, id)
}

func validateWeekday(d *Weekday) error {
	if d.Number < 0 || d.Number >= len(weekdayNames) {
		return apierr.NewValidation("numero_dia", fmt.Sprintf("numero_dia must be between 0 and %d", len(weekdayNames)-1))
	}
	d.Name = WeekdayName(d.Number)
	return nil
}

func duplicateWeekday(err error) error {
	if errors.Is(err, db.ErrConflict) {
		return apierr.NewValidation("numero_dia", "this weekday already exists")
	}
	return err
}
