package repository

import (
	"fmt"
	"time"
)

// Alert flags a group of jobs needing attention. One alert is emitted per
// condition, listing every affected job name.
type Alert struct {
	Type     string   `json:"type"`
	Message  string   `json:"message"`
	Jobs     []string `json:"jobs"`
	Severity string   `json:"severity"`
}

// EvaluateAlerts derives alerts from the current job collection. The three
// conditions are checked independently, so a job can appear in more than one
// alert, and the order is fixed: delayed runs, then failed runs, then runs
// still open after LongRunningThreshold. Conditions with no matching jobs
// emit nothing.
func EvaluateAlerts(jobs []Job, now time.Time) []Alert {
	alerts := []Alert{}

	var delayed []string
	var failed []string
	var longRunning []string
	for _, job := range jobs {
		switch job.Status {
		case JobStatusDelayed:
			delayed = append(delayed, job.JobName)
		case JobStatusFailed:
			failed = append(failed, job.JobName)
		case JobStatusRunning:
			if job.StartTimeParsed != nil && now.Sub(*job.StartTimeParsed) > LongRunningThreshold {
				longRunning = append(longRunning, job.JobName)
			}
		}
	}

	if len(delayed) > 0 {
		alerts = append(alerts, Alert{
			Type:     "warning",
			Message:  fmt.Sprintf("%d job(s) are running longer than expected", len(delayed)),
			Jobs:     delayed,
			Severity: "medium",
		})
	}
	if len(failed) > 0 {
		alerts = append(alerts, Alert{
			Type:     "error",
			Message:  fmt.Sprintf("%d job(s) have failed to start", len(failed)),
			Jobs:     failed,
			Severity: "high",
		})
	}
	if len(longRunning) > 0 {
		alerts = append(alerts, Alert{
			Type:     "info",
			Message:  fmt.Sprintf("%d job(s) have been running for more than 3 hours", len(longRunning)),
			Jobs:     longRunning,
			Severity: "low",
		})
	}
	return alerts
}
