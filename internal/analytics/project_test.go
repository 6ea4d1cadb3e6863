package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"shopfloor/internal/core"
)

func TestProjectTimeSpent(t *testing.T) {
	mk := func(id core.ProjectID, emp, clock string) core.TimeEntry {
		e := entry(emp, "Saw", "APC", clock)
		e.ProjectID = id
		return e
	}
	entries := []core.TimeEntry{
		mk("7", "ana", "10:00"),
		mk("7", "bo", "08:00"),
		mk("8", "ana", "08:30"),
		mk("7", "", "09:30"),
		mk("7", "ana", "10:45"),
		mk("7", "ana", "11:00"),
	}

	got := ProjectTimeSpent(entries, "7")
	assert.Equal(t, core.ProjectID("7"), got.ProjectID)
	assert.Equal(t, 5, got.Entries)
	// 08:00-09:30 and 10:00-10:45; 11:00 is still open.
	assert.Equal(t, "2 hours, 15 minutes", got.TimeSpent)
	assert.Equal(t, 2.25, got.Hours)

	none := ProjectTimeSpent(entries, "99")
	assert.Zero(t, none.Entries)
	assert.Empty(t, none.TimeSpent)
	assert.True(t, none.Duration.IsZero())
}
