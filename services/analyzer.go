package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"job-trend-analyzer/models"
	"job-trend-analyzer/storage"
	"job-trend-analyzer/utils"
)

// DefaultTopN is the size of the title and location views.
const DefaultTopN = 10

// FailureKind classifies why an analysis could not use the stored dataset.
type FailureKind int

const (
	// NotFound means no dataset has been written yet.
	NotFound FailureKind = iota + 1
	// Corrupt means the dataset exists but could not be read or processed.
	Corrupt
)

func (k FailureKind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case Corrupt:
		return "corrupt"
	default:
		return "unknown"
	}
}

// AnalysisError is the failure half of an Analysis.
type AnalysisError struct {
	Kind FailureKind
	Err  error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("analysis %s: %v", e.Kind, e.Err)
}

func (e *AnalysisError) Unwrap() error { return e.Err }

// Analysis is what AnalyzeStore returns. On success Err is nil. On NotFound
// Result is nil. On Corrupt both are set: Result holds empty views so callers
// that render unconditionally still have something to draw.
type Analysis struct {
	Result *models.AnalysisResult
	Err    *AnalysisError
}

func (a Analysis) clone() Analysis {
	return Analysis{Result: a.Result.Clone(), Err: a.Err}
}

// Analyzer computes the top-title, top-location and postings-per-day views.
type Analyzer struct {
	logger *utils.Logger
	topN   int
}

// NewAnalyzer creates an Analyzer. A non-positive topN falls back to DefaultTopN.
func NewAnalyzer(logger *utils.Logger, topN int) *Analyzer {
	if topN <= 0 {
		topN = DefaultTopN
	}
	return &Analyzer{logger: logger, topN: topN}
}

// Analyze is a pure transform of records into the three views. Records whose
// date does not parse are left out of the per-day view only.
func (a *Analyzer) Analyze(records []models.JobRecord) *models.AnalysisResult {
	result := models.EmptyAnalysis()
	result.TotalRecords = len(records)
	if len(records) == 0 {
		return result
	}

	titles := make([]string, len(records))
	locations := make([]string, len(records))
	perDay := make(map[time.Time]int)
	skipped := 0

	for i, r := range records {
		titles[i] = r.Title
		locations[i] = r.Location

		day, ok := ParseDay(r.Date)
		if !ok {
			skipped++
			continue
		}
		perDay[day]++
	}

	result.TopTitles = topCounts(titles, a.topN)
	result.TopLocations = topCounts(locations, a.topN)
	result.PostingsPerDay = sortedDays(perDay)

	if skipped > 0 {
		a.logger.Debug("[analyzer] %d/%d records had an unparseable date", skipped, len(records))
	}
	return result
}

// AnalyzeStore loads a snapshot from src and analyzes it.
func (a *Analyzer) AnalyzeStore(src storage.DatasetReader) (out Analysis) {
	defer func() {
		if rec := recover(); rec != nil {
			a.logger.Error("[analyzer] Unexpected failure during analysis: %v", rec)
			out = Analysis{
				Result: models.EmptyAnalysis(),
				Err:    &AnalysisError{Kind: Corrupt, Err: fmt.Errorf("panic: %v", rec)},
			}
		}
	}()

	records, err := src.Load()
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			a.logger.Warn("[analyzer] No dataset available: %v", err)
			return Analysis{Err: &AnalysisError{Kind: NotFound, Err: err}}
		}
		a.logger.Error("[analyzer] Could not read dataset: %v", err)
		return Analysis{
			Result: models.EmptyAnalysis(),
			Err:    &AnalysisError{Kind: Corrupt, Err: err},
		}
	}

	result := a.Analyze(records)
	a.logger.Info("[analyzer] Analyzed %d records: %d titles, %d locations, %d days",
		len(records), len(result.TopTitles), len(result.TopLocations), len(result.PostingsPerDay))
	return Analysis{Result: result}
}

// ParseDay parses a loosely formatted timestamp and returns its calendar date
// (midnight UTC of the date as written). Strings without any digit, including
// the "N/A" sentinel, never parse.
func ParseDay(raw string) (day time.Time, ok bool) {
	defer func() {
		if recover() != nil {
			day, ok = time.Time{}, false
		}
	}()

	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, models.NotAvailable) || !strings.ContainsAny(raw, "0123456789") {
		return time.Time{}, false
	}
	t, err := dateparse.ParseAny(raw)
	if err != nil {
		return time.Time{}, false
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
}

// topCounts counts occurrences, sorts by count descending with ties kept in
// first-appearance order, and keeps at most n entries.
func topCounts(values []string, n int) []models.CountEntry {
	index := make(map[string]int)
	entries := []models.CountEntry{}
	for _, v := range values {
		if i, ok := index[v]; ok {
			entries[i].Count++
			continue
		}
		index[v] = len(entries)
		entries = append(entries, models.CountEntry{Key: v, Count: 1})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

func sortedDays(counts map[time.Time]int) []models.DayCount {
	days := make([]models.DayCount, 0, len(counts))
	for day, n := range counts {
		days = append(days, models.DayCount{Date: day, Day: day.Format("2006-01-02"), Count: n})
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Date.Before(days[j].Date)
	})
	return days
}
