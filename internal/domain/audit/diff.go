package audit

import (
	"fmt"
	"strings"
)

// Field is one tracked attribute of T. Equal decides whether the attribute
// changed between two snapshots and Display renders it for observations.
type Field[T any] struct {
	Name    string
	Equal   func(a, b *T) bool
	Display func(v *T) string
}

// Track builds a Field from an accessor returning a comparable key. The key
// is what gets compared; display renders the snapshot for humans.
func Track[T any, V comparable](name string, key func(*T) V, display func(*T) string) Field[T] {
	return Field[T]{
		Name:    name,
		Equal:   func(a, b *T) bool { return key(a) == key(b) },
		Display: display,
	}
}

// Change is a single differing field.
type Change struct {
	Field string `json:"campo"`
	Old   string `json:"anterior"`
	New   string `json:"nuevo"`
}

func (c Change) String() string {
	return fmt.Sprintf("%s (%s → %s)", c.Field, c.Old, c.New)
}

// Diff compares before and after on every field in declaration order.
func Diff[T any](fields []Field[T], before, after *T) []Change {
	if before == nil || after == nil {
		return nil
	}
	var changes []Change
	for _, f := range fields {
		if f.Equal(before, after) {
			continue
		}
		changes = append(changes, Change{Field: f.Name, Old: f.Display(before), New: f.Display(after)})
	}
	return changes
}

// JoinChanges renders changes as "a (x → y), b (x → y)".
func JoinChanges(changes []Change) string {
	parts := make([]string, len(changes))
	for i, c := range changes {
		parts[i] = c.String()
	}
	return strings.Join(parts, ", ")
}
