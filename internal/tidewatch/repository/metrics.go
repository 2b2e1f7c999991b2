package repository

// PriorityDistribution counts jobs by their priority value. Only the three
// well known priorities are counted, anything else is left out.
type PriorityDistribution struct {
	High   int `json:"high"`
	Normal int `json:"normal"`
	Low    int `json:"low"`
}

// JobMetrics summarises the full job collection, unfiltered.
type JobMetrics struct {
	Total                int                  `json:"total"`
	Completed            int                  `json:"completed"`
	Running              int                  `json:"running"`
	Failed               int                  `json:"failed"`
	Delayed              int                  `json:"delayed"`
	AvgRunTimeMinutes    int                  `json:"avgRunTimeMinutes"`
	PriorityDistribution PriorityDistribution `json:"priorityDistribution"`
}

// ComputeMetrics aggregates status and priority counts over all jobs.
// AvgRunTimeMinutes is the truncated mean run time of completed jobs that
// carry both parsed timestamps, and 0 when there are none.
func ComputeMetrics(jobs []Job) JobMetrics {
	metrics := JobMetrics{Total: len(jobs)}

	totalMinutes := 0.0
	timedCompleted := 0
	for _, job := range jobs {
		switch job.Status {
		case JobStatusCompleted:
			metrics.Completed++
			if job.StartTimeParsed != nil && job.EndTimeParsed != nil {
				totalMinutes += job.EndTimeParsed.Sub(*job.StartTimeParsed).Minutes()
				timedCompleted++
			}
		case JobStatusRunning:
			metrics.Running++
		case JobStatusFailed:
			metrics.Failed++
		case JobStatusDelayed:
			metrics.Delayed++
		}

		switch job.Priority {
		case "high":
			metrics.PriorityDistribution.High++
		case "normal":
			metrics.PriorityDistribution.Normal++
		case "low":
			metrics.PriorityDistribution.Low++
		}
	}

	if timedCompleted > 0 {
		metrics.AvgRunTimeMinutes = int(totalMinutes / float64(timedCompleted))
	}
	return metrics
}
