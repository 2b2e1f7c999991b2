package repository

import (
	"encoding/csv"
	"io"

	"github.com/pkg/errors"
)

// ExportHeader is the fixed column order of job exports.
var ExportHeader = []string{
	"Job Name",
	"Start Time",
	"End Time",
	"Duration",
	"Status",
	"Dependencies",
	"Priority",
	"Description",
}

// ExportRow flattens a job into export column order. An unknown duration
// becomes an empty cell.
func ExportRow(job Job) []string {
	duration := ""
	if job.Duration != nil {
		duration = *job.Duration
	}
	return []string{
		job.JobName,
		job.StartTime,
		job.EndTime,
		duration,
		string(job.Status),
		job.Dependency,
		job.Priority,
		job.Description,
	}
}

// WriteCsv writes the given jobs as CSV, header first, in export column
// order.
func WriteCsv(w io.Writer, jobs []Job) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(ExportHeader); err != nil {
		return errors.WithStack(err)
	}
	for _, job := range jobs {
		if err := writer.Write(ExportRow(job)); err != nil {
			return errors.WithStack(err)
		}
	}
	writer.Flush()
	return errors.WithStack(writer.Error())
}
