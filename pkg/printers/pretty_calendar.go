package printers

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"

	"tableflip.dev/diary/pkg/entry"
)

const width = len("11 12 13 14 15 16 17") // an example week

// Calendar prints the month grid of month with days that hold entries in
// bold, today underlined.
func (pp *PrettyPrint) Calendar(month entry.Date, counts map[int]int, today entry.Date) {
	days := DaysIn(month.Time)
	count := make([]int, days)
	for day, n := range counts {
		if day >= 1 && day <= days {
			count[day-1] = n
		}
	}
	todayIndex := 0
	if today.SameMonth(month) {
		todayIndex = today.Day()
	}
	pp.PrintMonthCount(month.Time, count, todayIndex)
}

// PrintMonthCount renders the grid. today is the 1-based day to underline,
// or zero.
func (pp *PrettyPrint) PrintMonthCount(then time.Time, count []int, today int) {
	w := pp.out()
	d := StartDay(then)

	tf := color.New(color.FgWhite, color.Italic)

	m := fmt.Sprintf("%s %d", then.Month(), then.Year())
	mid := (width - len(m)) / 2
	_, _ = tf.Fprintf(w, "%s%s%s\n", strings.Repeat(" ", mid), m, strings.Repeat(" ", width-mid-len(m)))
	_, _ = tf.Fprintln(w, "Su Mo Tu We Th Fr Sa")

	days := DaysIn(then)

	// Pad out the start of the month.
	for i := time.Sunday; i < d; i++ {
		_, _ = fmt.Fprint(w, "   ")
	}

	l1 := color.New(color.Faint, color.FgWhite)
	l2 := color.New(color.Bold, color.FgHiWhite)

	for i := 0; i < days; i++ {
		printer := l1
		if i < len(count) && count[i] > 0 {
			printer = l2
		}
		if today == i+1 {
			printer = color.New(color.Underline, color.Bold)
		}
		_, _ = printer.Fprintf(w, "%2d", i+1)
		_, _ = fmt.Fprint(w, " ")

		d++
		if d > time.Saturday {
			d = time.Sunday
			_, _ = fmt.Fprint(w, "\n")
		}
	}
	_, _ = fmt.Fprint(w, "\n\n")
}

func NextMonth(then time.Time) time.Time {
	return time.Date(then.Year(), then.Month()+1, 1, 0, 0, 0, 0, then.Location())
}

func PrevMonth(then time.Time) time.Time {
	return time.Date(then.Year(), then.Month()-1, 1, 0, 0, 0, 0, then.Location())
}

func DaysIn(then time.Time) int {
	return time.Date(then.Year(), then.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func StartDay(then time.Time) time.Weekday {
	return time.Date(then.Year(), then.Month(), 1, 1, 0, 0, 0, time.UTC).Weekday()
}
