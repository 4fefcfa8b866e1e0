package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/amishk599/jobscout/internal/model"
)

func printJobs(w io.Writer, jobs []model.NormalizedJob) {
	fmt.Fprintf(w, "%-16s %-6s %-7s %-34s %-22s %s\n", "ID", "Score", "Tier", "Title", "Company", "Location")
	fmt.Fprintln(w, strings.Repeat("─", 110))
	for _, j := range jobs {
		location := j.Location
		if j.Remote && !strings.Contains(strings.ToLower(location), "remote") {
			location += " (remote)"
		}
		fmt.Fprintf(w, "%-16s %-6.2f %-7s %-34s %-22s %s\n",
			j.ID, j.MatchScore, j.MatchTier, truncate(j.Title, 34), truncate(j.Company, 22), truncate(location, 30))
	}
}

func printRuns(w io.Writer, runs []model.DiscoveryRun) {
	fmt.Fprintf(w, "%-36s %-19s %-9s %-19s %6s %5s  %s\n", "Run", "Started", "Trigger", "Status", "Found", "New", "Error")
	fmt.Fprintln(w, strings.Repeat("─", 110))
	for _, r := range runs {
		fmt.Fprintf(w, "%-36s %-19s %-9s %-19s %6d %5d  %s\n",
			r.ID, r.StartedAt.Local().Format("2006-01-02 15:04:05"), r.Source, r.Status, r.JobsFound, r.JobsNew, truncate(r.Error, 40))
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// truncate shortens s to n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
