package job

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Report renders a plain-text performance summary
func (s *service) Report() string {
	return FormatReport(s.Stats(), s.clock())
}

// FormatReport renders stats as a plain-text report
func FormatReport(st Stats, now time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Job search performance report (%s)\n", now.UTC().Format(time.RFC3339))
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	ss := st.Sessions
	b.WriteString("Sessions\n")
	fmt.Fprintf(&b, "  total:            %d (running %d, completed %d, failed %d, cancelled %d)\n",
		ss.TotalSessions, ss.Running, ss.Completed, ss.Failed, ss.Cancelled)
	fmt.Fprintf(&b, "  jobs found:       %d\n", ss.JobsFound)
	fmt.Fprintf(&b, "  unique jobs:      %d\n", ss.UniqueJobs)
	fmt.Fprintf(&b, "  duplicates:       %d\n", ss.Duplicates)
	fmt.Fprintf(&b, "  saved:            %d\n", ss.JobsSaved)
	fmt.Fprintf(&b, "  success rate:     %.1f%%\n", ss.SuccessRate*100)
	fmt.Fprintf(&b, "  avg duration:     %s\n", ss.AverageDuration.Round(time.Millisecond))
	fmt.Fprintf(&b, "  jobs per hour:    %.1f\n", ss.JobsPerHour)

	if len(st.Sources) == 0 {
		b.WriteString("\nNo source has run yet\n")
		return b.String()
	}

	names := make([]string, 0, len(st.Sources))
	for name := range st.Sources {
		names = append(names, name)
	}
	sort.Strings(names)

	b.WriteString("\nSources\n")
	for _, name := range names {
		r := st.Sources[name]
		fmt.Fprintf(&b, "  %s\n", name)
		fmt.Fprintf(&b, "    runs: %d  results: %d  errors: %d  timeouts: %d\n",
			r.Invocations, r.ResultsFetched, r.Errors, r.Timeouts)
		fmt.Fprintf(&b, "    success rate: %.1f%%  avg latency: %s\n",
			r.SuccessRate()*100, r.AvgLatency.Round(time.Millisecond))
		if !r.LastRun.IsZero() {
			fmt.Fprintf(&b, "    last run: %s\n", r.LastRun.UTC().Format(time.RFC3339))
		}
		if r.LastError != "" {
			fmt.Fprintf(&b, "    last error: %s\n", r.LastError)
		}
	}
	return b.String()
}
