package models

import "time"

// NotAvailable is the placeholder stored for any field the source did not provide.
// Downstream grouping treats it as ordinary text.
const NotAvailable = "N/A"

// JobRecord is one remote-job listing as fetched and persisted.
type JobRecord struct {
	Title    string `json:"title"`
	Company  string `json:"company"`
	Location string `json:"location"`
	Date     string `json:"date"`
	URL      string `json:"url"`
	JobType  string `json:"job_type"`
	Salary   string `json:"salary"`
	Source   string `json:"source"`

	// Description is the plain-text job description. It lives only in memory
	// and is not part of the persisted dataset.
	Description string `json:"-"`
}

// Columns is the fixed column order of the persisted dataset.
var Columns = []string{
	"title", "company", "location", "date", "job_type", "salary", "url", "source",
}

// Row returns the record's fields in Columns order.
func (r JobRecord) Row() []string {
	return []string{r.Title, r.Company, r.Location, r.Date, r.JobType, r.Salary, r.URL, r.Source}
}

// CountEntry is one row of a frequency view.
type CountEntry struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// DayCount is one row of the per-day view.
type DayCount struct {
	Date  time.Time `json:"-"`
	Day   string    `json:"date"`
	Count int       `json:"count"`
}

// AnalysisResult holds the three derived views. The slices are never nil,
// so renderers only have to check for emptiness.
type AnalysisResult struct {
	TopTitles      []CountEntry `json:"top_titles"`
	TopLocations   []CountEntry `json:"top_locations"`
	PostingsPerDay []DayCount   `json:"postings_per_day"`
	TotalRecords   int          `json:"total_records"`
}

// EmptyAnalysis returns a result with all three views present and empty.
func EmptyAnalysis() *AnalysisResult {
	return &AnalysisResult{
		TopTitles:      []CountEntry{},
		TopLocations:   []CountEntry{},
		PostingsPerDay: []DayCount{},
	}
}

// IsEmpty reports whether none of the views has data.
func (a *AnalysisResult) IsEmpty() bool {
	return len(a.TopTitles) == 0 && len(a.TopLocations) == 0 && len(a.PostingsPerDay) == 0
}

// Clone returns a deep copy; a nil result clones to nil.
func (a *AnalysisResult) Clone() *AnalysisResult {
	if a == nil {
		return nil
	}
	return &AnalysisResult{
		TopTitles:      append([]CountEntry{}, a.TopTitles...),
		TopLocations:   append([]CountEntry{}, a.TopLocations...),
		PostingsPerDay: append([]DayCount{}, a.PostingsPerDay...),
		TotalRecords:   a.TotalRecords,
	}
}
