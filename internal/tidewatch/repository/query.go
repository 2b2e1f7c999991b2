package repository

import "strings"

const DefaultPageSize = 50

// FilterAll disables a status or priority filter.
const FilterAll = "all"

// JobQuery selects and pages jobs out of a snapshot. Zero or negative Page
// and PageSize fall back to the first page and DefaultPageSize.
type JobQuery struct {
	Search   string
	Status   string
	Priority string
	Page     int
	PageSize int
}

// QueryResult is one page of matching jobs together with the total number of
// matches across all pages.
type QueryResult struct {
	Jobs       []Job
	TotalCount int
}

// QueryJobs applies the query's filters to the given jobs and returns the
// requested page. Pages start at 1 and a page beyond the last match is empty
// rather than an error.
func QueryJobs(jobs []Job, query JobQuery) QueryResult {
	page := query.Page
	if page < 1 {
		page = 1
	}
	pageSize := query.PageSize
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}

	filtered := FilterJobs(jobs, query)

	start := (page - 1) * pageSize
	if start >= len(filtered) {
		return QueryResult{Jobs: []Job{}, TotalCount: len(filtered)}
	}
	end := start + pageSize
	if end > len(filtered) {
		end = len(filtered)
	}
	return QueryResult{Jobs: filtered[start:end], TotalCount: len(filtered)}
}

// FilterJobs returns the jobs matching the query's search, status and
// priority filters, ignoring pagination. Exports use this to emit every
// matching job rather than a single page.
func FilterJobs(jobs []Job, query JobQuery) []Job {
	filtered := make([]Job, 0, len(jobs))
	for _, job := range jobs {
		if matchesQuery(job, query) {
			filtered = append(filtered, job)
		}
	}
	return filtered
}

func matchesQuery(job Job, query JobQuery) bool {
	if query.Status != "" && query.Status != FilterAll && string(job.Status) != query.Status {
		return false
	}
	if query.Priority != "" && query.Priority != FilterAll && job.Priority != query.Priority {
		return false
	}
	if query.Search != "" {
		term := strings.ToLower(query.Search)
		if strings.Contains(strings.ToLower(job.JobName), term) {
			return true
		}
		if strings.Contains(strings.ToLower(job.Dependency), term) {
			return true
		}
		if job.Description != "" && strings.Contains(strings.ToLower(job.Description), term) {
			return true
		}
		return false
	}
	return true
}
