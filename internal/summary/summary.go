// Package summary aggregates cached day entries into day, week and
// multi-week views. It only reads pair snapshots; days the cache never
// loaded count as empty.
package summary

import (
	"fmt"
	"time"

	"github.com/ponto-app/registro/internal/models"
	"github.com/ponto-app/registro/internal/timecalc"
)

const dayLayout = "2006-01-02"

// ParseDay parses a "YYYY-MM-DD" calendar-day string.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(dayLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", timecalc.ErrInvalidTimeValue, s)
	}
	return t, nil
}

// AddDays shifts a day string by n calendar days.
func AddDays(day string, n int) (string, error) {
	t, err := ParseDay(day)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, n).Format(dayLayout), nil
}

// WeekStart returns the Monday of the week containing day.
func WeekStart(day string) (string, error) {
	t, err := ParseDay(day)
	if err != nil {
		return "", err
	}
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7
	}
	return t.AddDate(0, 0, -(wd - 1)).Format(dayLayout), nil
}

// Day is one day of a week view.
type Day struct {
	Date  string
	Total int
	Pairs int
}

// Week aggregates seven days.
type Week struct {
	Start      string
	End        string
	Days       []Day
	Total      int
	DaysWorked int
	AvgPerDay  float64
}

// WeekOf builds the week view containing day from an entries snapshot.
func WeekOf(entries map[string][]models.Pair, day string) (Week, error) {
	start, err := WeekStart(day)
	if err != nil {
		return Week{}, err
	}
	return weekFrom(entries, start)
}

func weekFrom(entries map[string][]models.Pair, start string) (Week, error) {
	w := Week{Start: start, Days: make([]Day, 0, 7)}
	for i := 0; i < 7; i++ {
		date, err := AddDays(start, i)
		if err != nil {
			return Week{}, err
		}
		pairs := entries[date]
		total := timecalc.TotalMinutes(pairs)
		w.Days = append(w.Days, Day{Date: date, Total: total, Pairs: len(pairs)})
		w.Total += total
		if total > 0 {
			w.DaysWorked++
		}
		if i == 6 {
			w.End = date
		}
	}
	if w.DaysWorked > 0 {
		w.AvgPerDay = float64(w.Total) / float64(w.DaysWorked)
	}
	return w, nil
}

// History builds the weekly history: weeks descending from the week
// containing day, at least one.
func History(entries map[string][]models.Pair, day string, weeks int) ([]Week, error) {
	if weeks < 1 {
		weeks = 1
	}
	base, err := WeekStart(day)
	if err != nil {
		return nil, err
	}
	out := make([]Week, 0, weeks)
	for i := 0; i < weeks; i++ {
		start, err := AddDays(base, -7*i)
		if err != nil {
			return nil, err
		}
		w, err := weekFrom(entries, start)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, nil
}

// IncompleteCount counts pairs of a day that still miss an in or an out.
func IncompleteCount(pairs []models.Pair) int {
	n := 0
	for _, p := range pairs {
		if p.In == "" || p.Out == "" {
			n++
		}
	}
	return n
}

// InvalidCount counts filled pairs that cannot be right: unparsable times,
// zero length, or longer than sixteen hours.
func InvalidCount(pairs []models.Pair) int {
	n := 0
	for _, p := range pairs {
		if p.In == "" || p.Out == "" {
			continue
		}
		a, errIn := timecalc.ToMinutes(p.In)
		b, errOut := timecalc.ToMinutes(p.Out)
		if errIn != nil || errOut != nil {
			n++
			continue
		}
		diff := (b - a + 24*60) % (24 * 60)
		if diff == 0 || diff > 16*60 {
			n++
		}
	}
	return n
}
