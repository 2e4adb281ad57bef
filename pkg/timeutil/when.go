package timeutil

import (
	"fmt"
	"strings"
	"time"

	"tableflip.dev/diary/pkg/entry"
)

var dayWords = map[string]int{
	"yesterday": -1,
	"today":     0,
	"tomorrow":  1,
}

// ParseDay reads an entry date: "today", "yesterday", "tomorrow", a
// weekday name (the next one, or today), or YYYY-MM-DD.
func ParseDay(input string, now time.Time) (entry.Date, error) {
	s := strings.ToLower(strings.TrimSpace(input))
	if s == "" {
		return entry.DateOf(now), nil
	}
	if offset, ok := dayWords[s]; ok {
		return entry.DateOf(now.AddDate(0, 0, offset)), nil
	}
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		name := strings.ToLower(wd.String())
		if s == name || s == name[:3] {
			ahead := (int(wd) - int(now.Weekday()) + 7) % 7
			return entry.DateOf(now.AddDate(0, 0, ahead)), nil
		}
	}
	d, err := entry.ParseDate(s)
	if err != nil {
		return entry.Date{}, fmt.Errorf("timeutil: unrecognized day %q", input)
	}
	return d, nil
}

// ParseMonth reads YYYY-MM and returns the first day of that month. An
// empty input means the month containing now.
func ParseMonth(input string, now time.Time) (entry.Date, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return entry.NewDate(now.Year(), now.Month(), 1), nil
	}
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return entry.Date{}, fmt.Errorf("timeutil: unrecognized month %q, want YYYY-MM", input)
	}
	return entry.NewDate(t.Year(), t.Month(), 1), nil
}

var whenLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseWhen reads a reminder time in now's location. A bare HH:MM is the
// next occurrence of that clock time; a day word or weekday may precede it
// ("tomorrow 09:00").
func ParseWhen(input string, now time.Time) (time.Time, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return time.Time{}, fmt.Errorf("timeutil: empty time")
	}
	loc := now.Location()
	for _, layout := range whenLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}

	fields := strings.Fields(s)
	clock := fields[len(fields)-1]
	hm, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("timeutil: unrecognized time %q", input)
	}
	if len(fields) == 1 {
		t := time.Date(now.Year(), now.Month(), now.Day(), hm.Hour(), hm.Minute(), 0, 0, loc)
		if !t.After(now) {
			t = t.AddDate(0, 0, 1)
		}
		return t, nil
	}
	d, err := ParseDay(strings.Join(fields[:len(fields)-1], " "), now)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(d.Year(), d.Month(), d.Day(), hm.Hour(), hm.Minute(), 0, 0, loc), nil
}
