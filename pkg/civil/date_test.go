package civil

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-05-01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Year() != 2024 || d.Month() != time.May || d.Day() != 1 {
		t.Errorf("unexpected date %v", d)
	}
	if _, err := ParseDate("01/05/2024"); err == nil {
		t.Error("expected error for dd/mm/yyyy input")
	}
}

func TestDate_JSON(t *testing.T) {
	type payload struct {
		Fecha Date  `json:"fecha"`
		Nac   *Date `json:"nac"`
	}
	var p payload
	if err := json.Unmarshal([]byte(`{"fecha":"2024-05-01","nac":null}`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !p.Fecha.Equal(NewDate(2024, time.May, 1)) {
		t.Errorf("unexpected fecha %v", p.Fecha)
	}
	if p.Nac != nil {
		t.Error("expected nil nac")
	}

	raw, _ := json.Marshal(p)
	if string(raw) != `{"fecha":"2024-05-01","nac":null}` {
		t.Errorf("unexpected json %s", raw)
	}

	if err := json.Unmarshal([]byte(`{"fecha":"mañana"}`), &p); err == nil {
		t.Error("expected error for invalid date")
	}
}

func TestDate_Display(t *testing.T) {
	if got := NewDate(2024, time.May, 1).Display(); got != "01/05/2024" {
		t.Errorf("expected 01/05/2024, got %s", got)
	}
	if got := (Date{}).Display(); got != "N/A" {
		t.Errorf("expected N/A for zero date, got %s", got)
	}
}

func TestDate_StartEnd(t *testing.T) {
	loc := time.FixedZone("ART", -3*60*60)
	d := NewDate(2024, time.May, 1)

	start := d.Start(loc)
	if start.Hour() != 0 || start.Location() != loc {
		t.Errorf("unexpected start %v", start)
	}
	end := d.End(loc)
	if end.Day() != 1 || end.Hour() != 23 || end.Minute() != 59 {
		t.Errorf("unexpected end %v", end)
	}
	if !end.Add(time.Nanosecond).Equal(NewDate(2024, time.May, 2).Start(loc)) {
		t.Error("expected end to be the instant before the next day")
	}
}

func TestDate_ScanValue(t *testing.T) {
	var d Date
	if err := d.Scan(time.Date(2024, 5, 1, 15, 4, 5, 0, time.UTC)); err != nil {
		t.Fatalf("scan: %v", err)
	}
	v, _ := d.Value()
	if v.(time.Time).Format(DateLayout) != "2024-05-01" {
		t.Errorf("expected 2024-05-01, got %v", v)
	}

	if err := d.Scan(nil); err != nil || !d.IsZero() {
		t.Error("expected nil to scan into the zero date")
	}
	if err := d.Scan(42); err == nil {
		t.Error("expected error for unsupported source")
	}
}
