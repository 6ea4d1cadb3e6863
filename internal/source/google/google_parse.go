package google

import (
	"fmt"
	"strings"

	"shopfloor/internal/core"
)

// Header names, matched case-insensitively.
const (
	colProjectID    = "projectId"
	colEmployeeName = "employeeName"
	colCostCenter   = "costCenter"
	colStation      = "station"
	colJobType      = "jobType"
	colPartCount    = "partCount"
	colTime         = "time"
)

// parseTimeEntries converts a values matrix (as returned by the Sheets API)
// into raw entries. projectId and time columns are required; the others may
// be absent. Fully blank rows are skipped. Unreadable part counts become 0.
func parseTimeEntries(values [][]interface{}) ([]core.RawTimeEntry, error) {
	out := make([]core.RawTimeEntry, 0)
	if len(values) == 0 {
		return out, nil
	}

	headers := toStrings(values[0])
	cols := map[string]int{}
	for _, name := range []string{colProjectID, colEmployeeName, colCostCenter, colStation, colJobType, colPartCount, colTime} {
		cols[name] = indexOf(headers, name)
	}
	var missing []string
	for _, required := range []string{colProjectID, colTime} {
		if cols[required] == -1 {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("unexpected header: missing %s; got headers=%v", strings.Join(missing, ","), headers)
	}

	for i := 1; i < len(values); i++ {
		row := toStrings(values[i])
		if isBlank(row) {
			continue
		}
		out = append(out, core.RawTimeEntry{
			ProjectID:    core.ProjectID(safeGet(row, cols[colProjectID])),
			EmployeeName: safeGet(row, cols[colEmployeeName]),
			CostCenter:   safeGet(row, cols[colCostCenter]),
			Station:      safeGet(row, cols[colStation]),
			JobType:      safeGet(row, cols[colJobType]),
			PartCount:    parseCount(safeGet(row, cols[colPartCount])),
			Time:         safeGet(row, cols[colTime]),
		})
	}
	return out, nil
}

func parseCount(s string) core.Count {
	n, err := core.ParseCount(strings.ReplaceAll(s, ",", "."))
	if err != nil {
		return 0
	}
	return n
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func isBlank(row []string) bool {
	for _, v := range row {
		if v != "" {
			return false
		}
	}
	return true
}

func indexOf(arr []string, target string) int {
	for i, v := range arr {
		if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(target)) {
			return i
		}
	}
	return -1
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}
