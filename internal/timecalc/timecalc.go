// Package timecalc implements duration arithmetic over "HH:mm" time-of-day
// strings. Dates and times stay opaque strings everywhere else; this is the
// only place that looks inside them.
package timecalc

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/ponto-app/registro/internal/models"
)

// ErrInvalidTimeValue reports an unparsable time or date input.
var ErrInvalidTimeValue = errors.New("invalid time value")

var hhmm = regexp.MustCompile(`^\d{2}:\d{2}$`)

// ToMinutes converts an "HH:mm" string to minutes since midnight.
func ToMinutes(s string) (int, error) {
	if !hhmm.MatchString(s) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeValue, s)
	}
	h := int(s[0]-'0')*10 + int(s[1]-'0')
	m := int(s[3]-'0')*10 + int(s[4]-'0')
	return h*60 + m, nil
}

// PairMinutes returns the duration of one in/out pair in minutes. An out
// before the in is treated as crossing midnight. Unparsable pairs count as
// zero so a half-typed punch never corrupts a day total.
func PairMinutes(p models.Pair) int {
	a, errIn := ToMinutes(p.In)
	b, errOut := ToMinutes(p.Out)
	if errIn != nil || errOut != nil {
		return 0
	}
	diff := b - a
	if diff < 0 {
		diff += 24 * 60
	}
	if diff < 0 {
		return 0
	}
	return diff
}

// TotalMinutes sums the durations of all pairs of a day.
func TotalMinutes(pairs []models.Pair) int {
	total := 0
	for _, p := range pairs {
		total += PairMinutes(p)
	}
	return total
}

// FormatMinutes renders a minute count as "H:MM" for display.
func FormatMinutes(min int) string {
	return fmt.Sprintf("%d:%02d", min/60, min%60)
}
