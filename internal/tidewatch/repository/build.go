package repository

import (
	"fmt"
	"strings"
	"time"
)

// RawJobRow holds the trimmed-to-text cell values of one spreadsheet row,
// in source order, before any parsing or status derivation.
type RawJobRow struct {
	JobName     string
	StartTime   string
	EndTime     string
	Dependency  string
	Description string
	Priority    string
}

// RowReader supplies the raw rows of the configured jobs sheet.
type RowReader interface {
	ReadRows() ([]RawJobRow, error)
}

// BuildJob derives a Job from a raw row. The identifier is synthesized from
// the job name, the zero based row index and the load timestamp, so ids are
// only stable within a single load.
func BuildJob(row RawJobRow, index int, loadTime time.Time) Job {
	jobName := strings.TrimSpace(row.JobName)
	startRaw := strings.TrimSpace(row.StartTime)
	endRaw := strings.TrimSpace(row.EndTime)

	priority := strings.TrimSpace(row.Priority)
	if priority == "" {
		priority = "normal"
	}

	start := ParseTimestamp(startRaw)
	end := ParseTimestamp(endRaw)

	return Job{
		Id:              fmt.Sprintf("%s_%d_%d", jobName, index, loadTime.UnixNano()),
		JobName:         jobName,
		StartTime:       startRaw,
		EndTime:         endRaw,
		Dependency:      strings.TrimSpace(row.Dependency),
		Description:     strings.TrimSpace(row.Description),
		Priority:        priority,
		Status:          DeriveStatus(start, end),
		Duration:        FormatDuration(start, end),
		StartTimeParsed: start,
		EndTimeParsed:   end,
	}
}

// DeriveStatus classifies a run from its parsed timestamps. A run with no
// start time never happened, one with no end time is still going, and a
// finished run is delayed only when it took strictly longer than
// DelayedThreshold.
func DeriveStatus(start *time.Time, end *time.Time) JobStatus {
	if start == nil {
		return JobStatusFailed
	}
	if end == nil {
		return JobStatusRunning
	}
	if end.Sub(*start) > DelayedThreshold {
		return JobStatusDelayed
	}
	return JobStatusCompleted
}

// FormatDuration renders the run time as whole minutes, switching to an
// "Xh Ym" form from one hour. It returns nil when the start time is unknown,
// "Running" while the run is open and "Invalid" when the end precedes the
// start.
func FormatDuration(start *time.Time, end *time.Time) *string {
	if start == nil {
		return nil
	}
	if end == nil {
		return pointerTo("Running")
	}
	if end.Before(*start) {
		return pointerTo("Invalid")
	}
	totalMinutes := int(end.Sub(*start).Minutes())
	hours := totalMinutes / 60
	minutes := totalMinutes % 60
	if hours > 0 {
		return pointerTo(fmt.Sprintf("%dh %dm", hours, minutes))
	}
	return pointerTo(fmt.Sprintf("%dm", minutes))
}

func pointerTo(s string) *string {
	return &s
}
