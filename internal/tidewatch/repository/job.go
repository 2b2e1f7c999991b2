package repository

import "time"

// JobStatus is the derived state of a scheduled job run.
type JobStatus string

const (
	JobStatusCompleted JobStatus = "completed"
	JobStatusRunning   JobStatus = "running"
	JobStatusDelayed   JobStatus = "delayed"
	JobStatusFailed    JobStatus = "failed"
)

// Runs that took longer than this are marked delayed.
const DelayedThreshold = 2 * time.Hour

// Runs still going after this long trip the long-running alert.
const LongRunningThreshold = 3 * time.Hour

// Job is one scheduled job run derived from a single spreadsheet row.
// The raw cell text is kept alongside the parsed timestamps so listings and
// exports can echo the source data exactly as it appeared.
type Job struct {
	Id          string    `json:"id"`
	JobName     string    `json:"jobName"`
	StartTime   string    `json:"startTime"`
	EndTime     string    `json:"endTime"`
	Dependency  string    `json:"dependency"`
	Description string    `json:"description"`
	Priority    string    `json:"priority"`
	Status      JobStatus `json:"status"`

	// Duration is the formatted run time, nil when no start time is known.
	Duration *string `json:"duration"`

	StartTimeParsed *time.Time `json:"startTimeParsed"`
	EndTimeParsed   *time.Time `json:"endTimeParsed"`
}
