package services

import (
	"fmt"
	"io"
	"strings"

	"job-trend-analyzer/models"
)

// View titles shared by every presentation of an AnalysisResult.
const (
	ViewTopTitles      = "Top Job Titles"
	ViewTopLocations   = "Top Locations"
	ViewPostingsPerDay = "Job Postings per Day"
)

const maxBar = 40

// PrintReport writes a terminal rendering of an Analysis to w.
func PrintReport(w io.Writer, a Analysis, source string) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  📊 REMOTE JOB TREND ANALYSIS\033[0m\n")
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	if a.Err != nil && a.Err.Kind == NotFound {
		fmt.Fprintf(w, "  No job data file (%s) found. Run \033[1mfetch\033[0m first.\n", source)
		fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
		return
	}
	if a.Err != nil {
		fmt.Fprintf(w, "  \033[1;33m⚠ Analysis could not be performed: %v\033[0m\n\n", a.Err.Err)
	}

	r := a.Result
	if r == nil {
		r = models.EmptyAnalysis()
	}

	fmt.Fprintf(w, "\033[1;33m  Overview\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Source         : %s\n", source)
	fmt.Fprintf(w, "  Total listings : \033[1m%d\033[0m\n\n", r.TotalRecords)

	printCounts(w, ViewTopTitles, r.TopTitles, "No title data to display.", thin)
	printCounts(w, ViewTopLocations, r.TopLocations, "No location data to display.", thin)

	fmt.Fprintf(w, "\033[1;33m  %s\033[0m\n", ViewPostingsPerDay)
	fmt.Fprintf(w, "  %s\n", thin)
	if len(r.PostingsPerDay) == 0 {
		fmt.Fprintf(w, "  No posting date data to display.\n")
	} else {
		peak := 0
		for _, d := range r.PostingsPerDay {
			if d.Count > peak {
				peak = d.Count
			}
		}
		for _, d := range r.PostingsPerDay {
			fmt.Fprintf(w, "  %-12s %s (%d)\n", d.Day, bar(d.Count, peak), d.Count)
		}
	}

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
}

func printCounts(w io.Writer, title string, entries []models.CountEntry, empty, thin string) {
	fmt.Fprintf(w, "\033[1;33m  %s\033[0m\n", title)
	fmt.Fprintf(w, "  %s\n", thin)
	if len(entries) == 0 {
		fmt.Fprintf(w, "  %s\n\n", empty)
		return
	}
	peak := entries[0].Count
	for i, e := range entries {
		fmt.Fprintf(w, "  \033[1m%2d.\033[0m %-32s %s (%d)\n",
			i+1, truncate(e.Key, 30), bar(e.Count, peak), e.Count)
	}
	fmt.Fprintln(w)
}

// bar scales count against peak so the longest bar is maxBar cells.
func bar(count, peak int) string {
	if peak <= 0 || count <= 0 {
		return ""
	}
	n := count * maxBar / peak
	if n == 0 {
		n = 1
	}
	return strings.Repeat("█", n)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
