package core

import (
	"testing"
	"time"
)

func TestDurationString(t *testing.T) {
	cases := []struct {
		d    Duration
		want string
	}{
		{Duration{}, ""},
		{Duration{Hours: 1, Minutes: 10}, "1 hour, 10 minutes"},
		{Duration{Minutes: 10}, "10 minutes"},
		{Duration{Minutes: 1}, "1 minute"},
		{Duration{Hours: 2}, "2 hours"},
		{Duration{Hours: 1}, "1 hour"},
		{Duration{Hours: 3, Minutes: 1}, "3 hours, 1 minute"},
	}
	for _, tc := range cases {
		if got := tc.d.String(); got != tc.want {
			t.Fatalf("%+v: expected %q, got %q", tc.d, tc.want, got)
		}
	}
}

func TestDurationScalar(t *testing.T) {
	cases := []struct {
		d    Duration
		want float64
	}{
		{Duration{}, 0},
		{Duration{Hours: 1, Minutes: 10}, 1.17},
		{Duration{Minutes: 30}, 0.5},
		{Duration{Hours: 2, Minutes: 20}, 2.33},
		{Duration{Minutes: 59}, 0.98},
	}
	for _, tc := range cases {
		if got := tc.d.Scalar(); got != tc.want {
			t.Fatalf("%+v: expected %v, got %v", tc.d, tc.want, got)
		}
	}
}

func TestDurationFromMinutes(t *testing.T) {
	if d := DurationFromMinutes(70); d != (Duration{Hours: 1, Minutes: 10}) {
		t.Fatalf("unexpected %+v", d)
	}
	if d := DurationFromMinutes(-5); !d.IsZero() {
		t.Fatalf("negative totals must clamp to zero, got %+v", d)
	}
	if d := DurationOf(90*time.Minute + 59*time.Second); d != (Duration{Hours: 1, Minutes: 30}) {
		t.Fatalf("expected truncation to minutes, got %+v", d)
	}
}
