package audit

import (
	"strconv"
	"testing"
)

type visit struct {
	Room  int
	Label string
}

var visitFields = []Field[visit]{
	Track("sala", func(v *visit) int { return v.Room }, func(v *visit) string { return strconv.Itoa(v.Room) }),
	Track("etiqueta", func(v *visit) string { return v.Label }, func(v *visit) string { return v.Label }),
}

func TestDiff_NoChanges(t *testing.T) {
	a := &visit{Room: 1, Label: "x"}
	b := &visit{Room: 1, Label: "x"}
	if changes := Diff(visitFields, a, b); len(changes) != 0 {
		t.Errorf("expected no changes, got %v", changes)
	}
}

func TestDiff_ListsEveryChangeInOrder(t *testing.T) {
	a := &visit{Room: 1, Label: "x"}
	b := &visit{Room: 2, Label: "y"}
	changes := Diff(visitFields, a, b)
	if len(changes) != 2 {
		t.Fatalf("expected 2 changes, got %d", len(changes))
	}
	if changes[0].Field != "sala" || changes[0].Old != "1" || changes[0].New != "2" {
		t.Errorf("unexpected first change %+v", changes[0])
	}
	if got := JoinChanges(changes); got != "sala (1 → 2), etiqueta (x → y)" {
		t.Errorf("unexpected rendering %q", got)
	}
}

func TestDiff_NilSnapshot(t *testing.T) {
	if changes := Diff(visitFields, nil, &visit{}); changes != nil {
		t.Errorf("expected nil changes without a before snapshot, got %v", changes)
	}
}
