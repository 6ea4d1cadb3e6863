package core

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestRawTimeEntryUnmarshal(t *testing.T) {
	cases := []struct {
		name      string
		in        string
		projectID ProjectID
		parts     Count
		time      string
		wantErr   error
	}{
		{"numeric id", `{"projectId": 42, "partCount": 3, "time": "2024-01-01T09:00:00Z"}`, "42", 3, "2024-01-01T09:00:00Z", nil},
		{"string id", `{"projectId": " P-7 ", "partCount": "12", "time": "x"}`, "P-7", 12, "x", nil},
		{"null count", `{"projectId": 1, "partCount": null}`, "1", 0, "", nil},
		{"empty count string", `{"projectId": 1, "partCount": ""}`, "1", 0, "", nil},
		{"epoch millis", `{"projectId": 1, "time": 1709542800000}`, "1", 0, "2024-03-04T09:00:00Z", nil},
		{"bad count", `{"projectId": 1, "partCount": "many"}`, "1", 0, "", ErrInvalidCount},
		{"negative count", `{"projectId": 1, "partCount": -2}`, "1", 0, "", ErrInvalidCount},
		{"huge count", `{"projectId": 1, "partCount": 1e300}`, "1", 0, "", ErrInvalidCount},
		{"bad id", `{"projectId": true}`, "", 0, "", ErrInvalidID},
		{"time out of range", `{"projectId": 1, "time": 1e300}`, "1", 0, "", ErrInvalidTime},
		{"station not text", `{"projectId": 1, "station": 5}`, "1", 0, "", ErrMalformed},
		{"not an object", `42`, "", 0, "", ErrMalformed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var raw RawTimeEntry
			if err := json.Unmarshal([]byte(tc.in), &raw); err != nil {
				t.Fatalf("a single record must not fail decoding: %v", err)
			}
			if tc.wantErr != nil {
				if !errors.Is(raw.DecodeErr(), tc.wantErr) {
					t.Fatalf("DecodeErr() = %v, want %v", raw.DecodeErr(), tc.wantErr)
				}
				if _, err := Normalize(raw, time.UTC); !errors.Is(err, tc.wantErr) {
					t.Fatalf("Normalize() error = %v, want %v", err, tc.wantErr)
				}
				return
			}
			if raw.DecodeErr() != nil {
				t.Fatalf("unexpected decode error: %v", raw.DecodeErr())
			}
			if raw.ProjectID != tc.projectID || raw.PartCount != tc.parts || raw.Time != tc.time {
				t.Fatalf("got id=%q parts=%d time=%q", raw.ProjectID, raw.PartCount, raw.Time)
			}
		})
	}
}

func TestSnapshotSurvivesMalformedRecord(t *testing.T) {
	body := `[
		{"projectId": 1, "time": "2024-03-04T09:00:00Z"},
		{"projectId": 1, "partCount": "n/a", "time": "2024-03-04T09:05:00Z"},
		{"projectId": 1, "time": 1709542800000},
		{"projectId": 2, "time": "2024-03-04T09:30:00Z"}
	]`
	var raws []RawTimeEntry
	if err := json.Unmarshal([]byte(body), &raws); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	entries, rejected := NormalizeAll(raws, time.UTC)
	if len(entries) != 3 || len(rejected) != 1 {
		t.Fatalf("entries=%d rejected=%v", len(entries), rejected)
	}
	if rejected[0].Index != 1 || !errors.Is(rejected[0].Err, ErrInvalidCount) {
		t.Fatalf("unexpected rejection %v", rejected[0])
	}
}

func TestParseCount(t *testing.T) {
	tests := []struct {
		in   string
		want Count
		ok   bool
	}{
		{"4", 4, true},
		{" 2.9 ", 2, true},
		{"2147483647", 2147483647, true},
		{"2147483648", 0, false},
		{"-1", 0, false},
		{"x", 0, false},
		{"NaN", 0, false},
	}
	for _, tt := range tests {
		got, err := ParseCount(tt.in)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("ParseCount(%q) = %d, %v", tt.in, got, err)
		}
	}
}

func TestTimeEntryRaw(t *testing.T) {
	e := TimeEntry{
		ProjectID:    "9",
		EmployeeName: "Ada",
		CostCenter:   "APC",
		Station:      "Blast",
		JobType:      "Coating",
		PartCount:    4,
		Time:         time.Date(2024, 3, 5, 9, 30, 0, 0, time.UTC),
	}
	back, err := Normalize(e.Raw(), time.UTC)
	if err != nil {
		t.Fatalf("normalize raw: %v", err)
	}
	if !back.Time.Equal(e.Time) {
		t.Fatalf("time: expected %v, got %v", e.Time, back.Time)
	}
	back.Time = e.Time
	if back != e {
		t.Fatalf("expected %+v, got %+v", e, back)
	}
	if !e.HasEmployee() || (TimeEntry{}).HasEmployee() {
		t.Fatalf("HasEmployee mismatch")
	}
}

func TestErrorsAreDistinct(t *testing.T) {
	if errors.Is(ErrMissingTime, ErrInvalidTime) {
		t.Fatalf("missing and invalid time must differ")
	}
}
