package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	testCases := map[string]struct {
		value    string
		expected *time.Time
	}{
		"empty":              {"", nil},
		"whitespace only":    {"   ", nil},
		"iso with t":         {"2024-03-20T14:30:00", localTime(2024, 3, 20, 14, 30, 0)},
		"iso with space":     {"2024-03-20 14:30:00", localTime(2024, 3, 20, 14, 30, 0)},
		"date only":          {"2024-03-20", localTime(2024, 3, 20, 0, 0, 0)},
		"us datetime":        {"03/20/2024 14:30:00", localTime(2024, 3, 20, 14, 30, 0)},
		"us date":            {"03/20/2024", localTime(2024, 3, 20, 0, 0, 0)},
		"fallback parser":    {"May 8, 2009 5:57:51 PM", localTime(2009, 5, 8, 17, 57, 51)},
		"gibberish":          {"not a date", nil},
		"partial number":     {"12345x", nil},
		"unsupported layout": {"20|03|2024", nil},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			parsed := ParseTimestamp(tc.value)
			if tc.expected == nil {
				assert.Nil(t, parsed)
			} else {
				require.NotNil(t, parsed)
				assert.Equal(t, *tc.expected, *parsed)
			}
		})
	}
}

func TestDeriveStatus(t *testing.T) {
	start := localTime(2024, 3, 20, 0, 0, 0)

	testCases := map[string]struct {
		start    *time.Time
		end      *time.Time
		expected JobStatus
	}{
		"no start":           {nil, localTime(2024, 3, 20, 1, 0, 0), JobStatusFailed},
		"no timestamps":      {nil, nil, JobStatusFailed},
		"no end":             {start, nil, JobStatusRunning},
		"short run":          {start, localTime(2024, 3, 20, 0, 30, 0), JobStatusCompleted},
		"exactly two hours":  {start, localTime(2024, 3, 20, 2, 0, 0), JobStatusCompleted},
		"just over boundary": {start, localTime(2024, 3, 20, 2, 0, 1), JobStatusDelayed},
		"end before start":   {start, localTime(2024, 3, 19, 23, 0, 0), JobStatusCompleted},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.expected, DeriveStatus(tc.start, tc.end))
		})
	}
}

func TestFormatDuration(t *testing.T) {
	start := localTime(2024, 3, 20, 0, 0, 0)

	testCases := map[string]struct {
		start    *time.Time
		end      *time.Time
		expected *string
	}{
		"no start":          {nil, nil, nil},
		"open run":          {start, nil, pointerTo("Running")},
		"under an hour":     {start, localTime(2024, 3, 20, 0, 59, 0), pointerTo("59m")},
		"exactly one hour":  {start, localTime(2024, 3, 20, 1, 0, 0), pointerTo("1h 0m")},
		"over two hours":    {start, localTime(2024, 3, 20, 2, 5, 0), pointerTo("2h 5m")},
		"seconds truncated": {start, localTime(2024, 3, 20, 0, 59, 59), pointerTo("59m")},
		"zero minutes":      {start, start, pointerTo("0m")},
		"end before start":  {start, localTime(2024, 3, 19, 23, 0, 0), pointerTo("Invalid")},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			duration := FormatDuration(tc.start, tc.end)
			if tc.expected == nil {
				assert.Nil(t, duration)
			} else {
				require.NotNil(t, duration)
				assert.Equal(t, *tc.expected, *duration)
			}
		})
	}
}

func TestBuildJob(t *testing.T) {
	loadTime := time.Date(2024, 3, 21, 9, 0, 0, 0, time.Local)

	job := BuildJob(RawJobRow{
		JobName:     "  Daily_ETL ",
		StartTime:   "2024-03-20T00:00:00",
		EndTime:     " 2024-03-20T01:00:00",
		Dependency:  "upstream ",
		Description: " loads the warehouse",
		Priority:    "high",
	}, 3, loadTime)

	assert.Equal(t, fmt.Sprintf("Daily_ETL_3_%d", loadTime.UnixNano()), job.Id)
	assert.Equal(t, "Daily_ETL", job.JobName)
	assert.Equal(t, "2024-03-20T00:00:00", job.StartTime)
	assert.Equal(t, "2024-03-20T01:00:00", job.EndTime)
	assert.Equal(t, "upstream", job.Dependency)
	assert.Equal(t, "loads the warehouse", job.Description)
	assert.Equal(t, "high", job.Priority)
	assert.Equal(t, JobStatusCompleted, job.Status)
	require.NotNil(t, job.Duration)
	assert.Equal(t, "1h 0m", *job.Duration)
	require.NotNil(t, job.StartTimeParsed)
	assert.Equal(t, *localTime(2024, 3, 20, 0, 0, 0), *job.StartTimeParsed)
	require.NotNil(t, job.EndTimeParsed)
	assert.Equal(t, *localTime(2024, 3, 20, 1, 0, 0), *job.EndTimeParsed)
}

func TestBuildJob_Defaults(t *testing.T) {
	loadTime := time.Date(2024, 3, 21, 9, 0, 0, 0, time.Local)

	job := BuildJob(RawJobRow{JobName: "X"}, 0, loadTime)

	assert.Equal(t, "normal", job.Priority)
	assert.Equal(t, JobStatusFailed, job.Status)
	assert.Nil(t, job.Duration)
	assert.Nil(t, job.StartTimeParsed)
	assert.Nil(t, job.EndTimeParsed)
}

func localTime(year int, month time.Month, day, hour, minute, second int) *time.Time {
	t := time.Date(year, month, day, hour, minute, second, 0, time.Local)
	return &t
}
