package logging

import "time"

// Console lines carry milliseconds so the ready delay and backend launch
// order can be read off the log.
const lineTimestampLayout = "2006-01-02 15:04:05.000"

func formatLineTimestamp(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.Local().Format(lineTimestampLayout)
}

// formatTimeValue renders time attributes (started_at, fired_at) in UTC,
// matching the status API.
func formatTimeValue(ts time.Time) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.UTC().Format(time.RFC3339)
}
