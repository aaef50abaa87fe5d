package session

import (
	"time"

	"github.com/honeycarbs/job-hunter/internal/domain"
)

// Stats aggregates the sessions currently held in history
type Stats struct {
	TotalSessions   int           `json:"total_sessions"`
	Running         int           `json:"running"`
	Completed       int           `json:"completed"`
	Failed          int           `json:"failed"`
	Cancelled       int           `json:"cancelled"`
	JobsFound       int           `json:"jobs_found"`
	UniqueJobs      int           `json:"unique_jobs"`
	Duplicates      int           `json:"duplicates_removed"`
	JobsSaved       int           `json:"jobs_saved"`
	AverageDuration time.Duration `json:"average_duration"`
	// SuccessRate is completed / finished sessions
	SuccessRate float64 `json:"success_rate"`
	// JobsPerHour is unique jobs per hour of session wall time
	JobsPerHour float64 `json:"jobs_per_hour"`
}

// Stats computes aggregates over the retained history
func (t *Tracker) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()

	var st Stats
	var total time.Duration
	for _, id := range t.order {
		s := t.sessions[id]
		st.TotalSessions++

		switch s.Status {
		case domain.SessionRunning:
			st.Running++
			continue
		case domain.SessionCompleted:
			st.Completed++
		case domain.SessionFailed:
			st.Failed++
		case domain.SessionCancelled:
			st.Cancelled++
		}

		st.JobsFound += s.Counts.Found
		st.UniqueJobs += s.Counts.Unique
		st.Duplicates += s.Counts.Duplicates
		st.JobsSaved += s.Counts.Saved
		total += s.Duration()
	}

	finished := st.Completed + st.Failed + st.Cancelled
	if finished > 0 {
		st.AverageDuration = total / time.Duration(finished)
		st.SuccessRate = float64(st.Completed) / float64(finished)
	}
	if hours := total.Hours(); hours > 0 {
		st.JobsPerHour = float64(st.UniqueJobs) / hours
	}
	return st
}
