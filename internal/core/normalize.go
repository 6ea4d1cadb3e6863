package core

import (
	"fmt"
	"strings"
	"time"
)

// zonedLayouts carry their own offset; localLayouts are read in the caller's location.
var (
	zonedLayouts = []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05.000Z0700",
		"2006-01-02T15:04:05Z0700",
	}
	localLayouts = []string{
		"2006-01-02T15:04:05.999999999",
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"2006-01-02",
	}
)

// Rejection records a raw entry that could not be normalized.
type Rejection struct {
	Index int
	Err   error
}

func (r Rejection) Error() string {
	return fmt.Sprintf("entry %d: %v", r.Index, r.Err)
}

// ParseTime parses an ISO-8601 style timestamp. Timestamps without an
// offset are interpreted in loc (UTC when loc is nil).
func ParseTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrMissingTime
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTime, s)
}

// Normalize validates a raw entry and shapes it into a TimeEntry.
// Text fields are trimmed; the time must parse to an instant.
func Normalize(raw RawTimeEntry, loc *time.Location) (TimeEntry, error) {
	if raw.decodeErr != nil {
		return TimeEntry{}, raw.decodeErr
	}
	t, err := ParseTime(raw.Time, loc)
	if err != nil {
		return TimeEntry{}, err
	}
	return TimeEntry{
		ProjectID:    ProjectID(strings.TrimSpace(string(raw.ProjectID))),
		EmployeeName: strings.TrimSpace(raw.EmployeeName),
		CostCenter:   strings.TrimSpace(raw.CostCenter),
		Station:      strings.TrimSpace(raw.Station),
		JobType:      strings.TrimSpace(raw.JobType),
		PartCount:    int(raw.PartCount),
		Time:         t,
	}, nil
}

// NormalizeAll normalizes a snapshot. Invalid entries are left out of the
// result and reported as rejections; they never fail the batch.
func NormalizeAll(raws []RawTimeEntry, loc *time.Location) ([]TimeEntry, []Rejection) {
	entries := make([]TimeEntry, 0, len(raws))
	var rejected []Rejection
	for i, raw := range raws {
		e, err := Normalize(raw, loc)
		if err != nil {
			rejected = append(rejected, Rejection{Index: i, Err: err})
			continue
		}
		entries = append(entries, e)
	}
	return entries, rejected
}
