package timeutil

import (
	"testing"
	"time"
)

// A Wednesday.
var now = time.Date(2024, 1, 3, 14, 30, 0, 0, time.UTC)

func TestParseDay(t *testing.T) {
	cases := map[string]string{
		"":           "2024-01-03",
		"today":      "2024-01-03",
		"Yesterday":  "2024-01-02",
		"tomorrow":   "2024-01-04",
		"friday":     "2024-01-05",
		"wed":        "2024-01-03",
		"monday":     "2024-01-08",
		"2023-12-25": "2023-12-25",
	}
	for in, want := range cases {
		got, err := ParseDay(in, now)
		if err != nil {
			t.Fatalf("ParseDay(%q): %v", in, err)
		}
		if got.String() != want {
			t.Fatalf("ParseDay(%q) = %s, want %s", in, got, want)
		}
	}
	if _, err := ParseDay("someday", now); err == nil {
		t.Fatalf("expected error")
	}
}

func TestParseMonth(t *testing.T) {
	got, err := ParseMonth("2024-02", now)
	if err != nil || got.String() != "2024-02-01" {
		t.Fatalf("unexpected %s (%v)", got, err)
	}
	got, _ = ParseMonth("", now)
	if got.String() != "2024-01-01" {
		t.Fatalf("unexpected default month %s", got)
	}
	if _, err := ParseMonth("Feb", now); err == nil {
		t.Fatalf("expected error")
	}
}

func TestParseWhen(t *testing.T) {
	cases := map[string]time.Time{
		"2024-01-10 09:15":     time.Date(2024, 1, 10, 9, 15, 0, 0, time.UTC),
		"2024-01-10T09:15:00Z": time.Date(2024, 1, 10, 9, 15, 0, 0, time.UTC),
		"16:00":                time.Date(2024, 1, 3, 16, 0, 0, 0, time.UTC),
		"09:00":                time.Date(2024, 1, 4, 9, 0, 0, 0, time.UTC),
		"tomorrow 08:30":       time.Date(2024, 1, 4, 8, 30, 0, 0, time.UTC),
		"fri 18:00":            time.Date(2024, 1, 5, 18, 0, 0, 0, time.UTC),
	}
	for in, want := range cases {
		got, err := ParseWhen(in, now)
		if err != nil {
			t.Fatalf("ParseWhen(%q): %v", in, err)
		}
		if !got.Equal(want) {
			t.Fatalf("ParseWhen(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := ParseWhen("soon", now); err == nil {
		t.Fatalf("expected error")
	}
}

func TestParseDuration(t *testing.T) {
	d, label, err := ParseDuration("90m")
	if err != nil {
		t.Fatalf("ParseDuration: %v", err)
	}
	if d != 90*time.Minute || label != "1h30m" {
		t.Fatalf("unexpected %v %s", d, label)
	}
	if _, _, err := ParseDuration(""); err == nil {
		t.Fatalf("expected error for empty duration")
	}
}
