package core

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Duration is an elapsed time split into whole hours and remaining minutes.
type Duration struct {
	Hours   int
	Minutes int // 0-59
}

// DurationFromMinutes splits a minute total. Negative totals clamp to zero.
func DurationFromMinutes(total int) Duration {
	if total < 0 {
		total = 0
	}
	return Duration{Hours: total / 60, Minutes: total % 60}
}

// DurationOf truncates d to whole minutes.
func DurationOf(d time.Duration) Duration {
	return DurationFromMinutes(int(d / time.Minute))
}

// IsZero reports whether no time elapsed.
func (d Duration) IsZero() bool {
	return d.Hours == 0 && d.Minutes == 0
}

// String renders the duration for people, e.g. "1 hour, 10 minutes".
// Zero clauses are omitted; a zero duration renders as "".
func (d Duration) String() string {
	if d.IsZero() {
		return ""
	}
	parts := make([]string, 0, 2)
	if d.Hours != 0 {
		parts = append(parts, plural(d.Hours, "hour"))
	}
	if d.Minutes != 0 {
		parts = append(parts, plural(d.Minutes, "minute"))
	}
	return strings.Join(parts, ", ")
}

// Scalar returns hours as a chart value: hours + minutes/60 rounded to two decimals.
func (d Duration) Scalar() float64 {
	return RoundTo2(float64(d.Hours) + float64(d.Minutes)/60.0)
}

// RoundTo2 rounds half away from zero to two decimal places.
func RoundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}

func plural(n int, unit string) string {
	s := strconv.Itoa(n) + " " + unit
	if n > 1 {
		s += "s"
	}
	return s
}
