package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

type (
	// ProjectID identifies a project. The backend sends it either as a JSON
	// number or as a string; both decode to the same value.
	ProjectID string

	// Count is a non-negative integer that tolerates numeric strings and null.
	Count int

	// RawTimeEntry is a time entry as it arrives from the backend, before
	// validation. Time is kept as text until Normalize parses it. Decoding
	// never fails on a single record: a malformed one is kept and rejected
	// by Normalize.
	RawTimeEntry struct {
		ProjectID    ProjectID `json:"projectId"`
		EmployeeName string    `json:"employeeName,omitempty"`
		CostCenter   string    `json:"costCenter"`
		Station      string    `json:"station"`
		JobType      string    `json:"jobType"`
		PartCount    Count     `json:"partCount"`
		Time         string    `json:"time"`

		decodeErr error
	}

	// TimeEntry is a validated clock event. Values are never mutated after
	// Normalize returns them.
	TimeEntry struct {
		ProjectID    ProjectID
		EmployeeName string // empty when the scan was not tied to an employee
		CostCenter   string
		Station      string
		JobType      string
		PartCount    int
		Time         time.Time
	}
)

var (
	ErrMissingTime  = errors.New("missing time")
	ErrInvalidTime  = errors.New("invalid time")
	ErrInvalidID    = errors.New("invalid project id")
	ErrInvalidCount = errors.New("invalid count")
	ErrMalformed    = errors.New("malformed entry")
)

// maxEpochMillis is the largest magnitude a JavaScript Date accepts.
const maxEpochMillis = 8.64e15

// HasEmployee reports whether the entry takes part in per-employee grouping.
func (e TimeEntry) HasEmployee() bool {
	return e.EmployeeName != ""
}

// Raw converts the entry back to its wire shape, with the time in RFC 3339.
func (e TimeEntry) Raw() RawTimeEntry {
	return RawTimeEntry{
		ProjectID:    e.ProjectID,
		EmployeeName: e.EmployeeName,
		CostCenter:   e.CostCenter,
		Station:      e.Station,
		JobType:      e.JobType,
		PartCount:    Count(e.PartCount),
		Time:         e.Time.Format(time.RFC3339Nano),
	}
}

// DecodeErr returns the error met while decoding the entry, if any.
func (r RawTimeEntry) DecodeErr() error {
	return r.decodeErr
}

func (r *RawTimeEntry) UnmarshalJSON(data []byte) error {
	var wire struct {
		ProjectID    json.RawMessage `json:"projectId"`
		EmployeeName json.RawMessage `json:"employeeName"`
		CostCenter   json.RawMessage `json:"costCenter"`
		Station      json.RawMessage `json:"station"`
		JobType      json.RawMessage `json:"jobType"`
		PartCount    json.RawMessage `json:"partCount"`
		Time         json.RawMessage `json:"time"`
	}
	*r = RawTimeEntry{}
	if err := json.Unmarshal(data, &wire); err != nil {
		r.decodeErr = fmt.Errorf("%w: %v", ErrMalformed, err)
		return nil
	}

	var errs []error
	if len(wire.ProjectID) > 0 {
		errs = append(errs, r.ProjectID.UnmarshalJSON(wire.ProjectID))
	}
	if len(wire.PartCount) > 0 {
		errs = append(errs, r.PartCount.UnmarshalJSON(wire.PartCount))
	}
	for _, f := range []struct {
		name string
		raw  json.RawMessage
		dst  *string
	}{
		{"employeeName", wire.EmployeeName, &r.EmployeeName},
		{"costCenter", wire.CostCenter, &r.CostCenter},
		{"station", wire.Station, &r.Station},
		{"jobType", wire.JobType, &r.JobType},
	} {
		errs = append(errs, decodeText(f.name, f.raw, f.dst))
	}
	errs = append(errs, decodeTime(wire.Time, &r.Time))
	r.decodeErr = errors.Join(errs...)
	return nil
}

func decodeText(name string, raw json.RawMessage, dst *string) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: %s is not text", ErrMalformed, name)
	}
	return nil
}

// decodeTime accepts text, or a number of milliseconds since the Unix epoch.
func decodeTime(raw json.RawMessage, dst *string) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, dst); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidTime, err)
		}
		return nil
	}
	ms, err := strconv.ParseFloat(string(raw), 64)
	if err != nil || math.Abs(ms) > maxEpochMillis {
		return fmt.Errorf("%w: %s", ErrInvalidTime, raw)
	}
	*dst = time.UnixMilli(int64(ms)).UTC().Format(time.RFC3339Nano)
	return nil
}

func (p *ProjectID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidID, err)
		}
		*p = ProjectID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidID, data)
	}
	*p = ProjectID(n.String())
	return nil
}

func (p ProjectID) String() string {
	return string(p)
}

func (c *Count) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidCount, err)
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*c = 0
			return nil
		}
		data = []byte(s)
	}
	n, err := ParseCount(string(data))
	if err != nil {
		return err
	}
	*c = n
	return nil
}

// ParseCount parses a non-negative count. Fractions are truncated; values
// beyond math.MaxInt32 are rejected.
func ParseCount(s string) (Count, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || f < 0 || f > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %s", ErrInvalidCount, s)
	}
	return Count(int(f)), nil
}
