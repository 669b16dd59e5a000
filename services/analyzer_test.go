package services

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"testing"

	"job-trend-analyzer/models"
	"job-trend-analyzer/storage"
)

func exampleRecords() []models.JobRecord {
	return []models.JobRecord{
		{Title: "Engineer", Date: "2024-01-01", Location: "Remote"},
		{Title: "Engineer", Date: "2024-01-01", Location: "Remote"},
		{Title: "Analyst", Date: "bad-date", Location: "NYC"},
	}
}

func mixedRecords() []models.JobRecord {
	return []models.JobRecord{
		{Title: "Go Dev", Location: "Europe", Date: "2024-03-02T09:15:00"},
		{Title: "Data Engineer", Location: "USA", Date: "2024-03-01T23:59:59"},
		{Title: "Go Dev", Location: "Worldwide", Date: "2024-03-01 08:00:00"},
		{Title: "QA", Location: "USA", Date: models.NotAvailable},
		{Title: "Data Engineer", Location: "Europe", Date: "March 2, 2024"},
		{Title: "SRE", Location: models.NotAvailable, Date: "2024-02-28T10:00:00+05:00"},
	}
}

func newTestAnalyzer() *Analyzer { return NewAnalyzer(newTestLogger(), DefaultTopN) }

func TestAnalyzeExample(t *testing.T) {
	r := newTestAnalyzer().Analyze(exampleRecords())

	wantTitles := []models.CountEntry{{Key: "Engineer", Count: 2}, {Key: "Analyst", Count: 1}}
	if !reflect.DeepEqual(r.TopTitles, wantTitles) {
		t.Errorf("TopTitles: got %v, want %v", r.TopTitles, wantTitles)
	}
	wantLocs := []models.CountEntry{{Key: "Remote", Count: 2}, {Key: "NYC", Count: 1}}
	if !reflect.DeepEqual(r.TopLocations, wantLocs) {
		t.Errorf("TopLocations: got %v, want %v", r.TopLocations, wantLocs)
	}
	if len(r.PostingsPerDay) != 1 {
		t.Fatalf("PostingsPerDay len: got %d, want 1", len(r.PostingsPerDay))
	}
	if d := r.PostingsPerDay[0]; d.Day != "2024-01-01" || d.Count != 2 {
		t.Errorf("PostingsPerDay[0]: got %s=%d, want 2024-01-01=2", d.Day, d.Count)
	}
	if r.TotalRecords != 3 {
		t.Errorf("TotalRecords: got %d, want 3", r.TotalRecords)
	}
}

func TestAnalyzeEmptyInput(t *testing.T) {
	for _, in := range [][]models.JobRecord{nil, {}} {
		r := newTestAnalyzer().Analyze(in)
		if r.TopTitles == nil || r.TopLocations == nil || r.PostingsPerDay == nil {
			t.Fatalf("views must be empty, not nil: %+v", r)
		}
		if !r.IsEmpty() {
			t.Errorf("expected all views empty, got %+v", r)
		}
	}
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	a := newTestAnalyzer()
	first := a.Analyze(mixedRecords())
	second := a.Analyze(mixedRecords())
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Analyze not deterministic:\n%+v\n%+v", first, second)
	}
}

func TestAnalyzeTieBreakFirstAppearance(t *testing.T) {
	r := newTestAnalyzer().Analyze(mixedRecords())

	// Go Dev and Data Engineer both have 2; Go Dev appears first.
	wantTitles := []string{"Go Dev", "Data Engineer", "QA", "SRE"}
	for i, want := range wantTitles {
		if r.TopTitles[i].Key != want {
			t.Errorf("TopTitles[%d]: got %q, want %q", i, r.TopTitles[i].Key, want)
		}
	}

	wantLocs := []string{"Europe", "USA", "Worldwide", models.NotAvailable}
	for i, want := range wantLocs {
		if r.TopLocations[i].Key != want {
			t.Errorf("TopLocations[%d]: got %q, want %q", i, r.TopLocations[i].Key, want)
		}
	}
}

func TestAnalyzeCountsSortedDescending(t *testing.T) {
	r := newTestAnalyzer().Analyze(mixedRecords())
	for _, view := range [][]models.CountEntry{r.TopTitles, r.TopLocations} {
		for i := 1; i < len(view); i++ {
			if view[i].Count > view[i-1].Count {
				t.Errorf("view not sorted descending at %d: %v", i, view)
			}
		}
	}
}

func TestAnalyzePostingsPerDay(t *testing.T) {
	r := newTestAnalyzer().Analyze(mixedRecords())

	want := []struct {
		day   string
		count int
	}{
		{"2024-02-28", 1},
		{"2024-03-01", 2},
		{"2024-03-02", 2},
	}
	if len(r.PostingsPerDay) != len(want) {
		t.Fatalf("PostingsPerDay: got %v", r.PostingsPerDay)
	}
	total := 0
	for i, w := range want {
		got := r.PostingsPerDay[i]
		if got.Day != w.day || got.Count != w.count {
			t.Errorf("PostingsPerDay[%d]: got %s=%d, want %s=%d", i, got.Day, got.Count, w.day, w.count)
		}
		if i > 0 && !r.PostingsPerDay[i-1].Date.Before(got.Date) {
			t.Errorf("days not strictly ascending at %d", i)
		}
		total += got.Count
	}
	if total >= len(mixedRecords()) {
		t.Errorf("per-day total %d should exclude the N/A record", total)
	}
}

func TestAnalyzePerDayTotalEqualsInputWhenAllParse(t *testing.T) {
	records := []models.JobRecord{
		{Title: "A", Date: "2024-05-01"},
		{Title: "B", Date: "2024-05-01T12:00:00Z"},
		{Title: "C", Date: "2024-04-30"},
	}
	r := newTestAnalyzer().Analyze(records)
	total := 0
	for _, d := range r.PostingsPerDay {
		total += d.Count
	}
	if total != len(records) {
		t.Errorf("per-day total: got %d, want %d", total, len(records))
	}
}

func TestAnalyzeTruncatesToTopN(t *testing.T) {
	var records []models.JobRecord
	for i := 0; i < 15; i++ {
		// title-i appears i+1 times, so the top ten are title-14 .. title-5.
		for j := 0; j <= i; j++ {
			records = append(records, models.JobRecord{Title: fmt.Sprintf("title-%d", i), Location: "Remote"})
		}
	}

	r := newTestAnalyzer().Analyze(records)
	if len(r.TopTitles) != 10 {
		t.Fatalf("TopTitles len: got %d, want 10", len(r.TopTitles))
	}
	sum := 0
	for i, e := range r.TopTitles {
		want := fmt.Sprintf("title-%d", 14-i)
		if e.Key != want {
			t.Errorf("TopTitles[%d]: got %q, want %q", i, e.Key, want)
		}
		sum += e.Count
	}
	if sum > len(records) {
		t.Errorf("truncated sum %d exceeds record count %d", sum, len(records))
	}
	if len(r.TopLocations) != 1 || r.TopLocations[0].Count != len(records) {
		t.Errorf("TopLocations: got %v", r.TopLocations)
	}
}

func TestTopCountsSumEqualsInputBeforeTruncation(t *testing.T) {
	values := []string{"a", "b", "a", "c", "N/A", "N/A", "a"}
	entries := topCounts(values, len(values))
	sum := 0
	for _, e := range entries {
		sum += e.Count
	}
	if sum != len(values) {
		t.Errorf("sum: got %d, want %d", sum, len(values))
	}
}

func TestParseDay(t *testing.T) {
	tests := []struct {
		raw  string
		want string
		ok   bool
	}{
		{"2024-01-01", "2024-01-01", true},
		{"2024-01-01T10:30:00", "2024-01-01", true},
		{"2024-01-01 23:59:59", "2024-01-01", true},
		{"2024-01-01T23:30:00+05:00", "2024-01-01", true},
		{"Jan 2, 2024", "2024-01-02", true},
		{"bad-date", "", false},
		{"N/A", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseDay(tt.raw)
		if ok != tt.ok {
			t.Errorf("ParseDay(%q) ok = %v; want %v", tt.raw, ok, tt.ok)
			continue
		}
		if ok && got.Format("2006-01-02") != tt.want {
			t.Errorf("ParseDay(%q) = %s; want %s", tt.raw, got.Format("2006-01-02"), tt.want)
		}
	}
}

type memReader struct {
	records []models.JobRecord
	err     error
	fp      string
	loads   int
	panics  bool
}

func (m *memReader) Load() ([]models.JobRecord, error) {
	m.loads++
	if m.panics {
		panic("boom")
	}
	return m.records, m.err
}

func (m *memReader) Fingerprint() (string, error) {
	if m.err != nil && errors.Is(m.err, storage.ErrNotFound) {
		return "", m.err
	}
	return m.fp, nil
}

func TestAnalyzeStoreNotFound(t *testing.T) {
	src := &memReader{err: fmt.Errorf("csv: open: %w", storage.ErrNotFound)}
	a := newTestAnalyzer().AnalyzeStore(src)

	if a.Err == nil || a.Err.Kind != NotFound {
		t.Fatalf("expected NotFound, got %+v", a.Err)
	}
	if a.Result != nil {
		t.Errorf("NotFound should carry no result")
	}
}

func TestAnalyzeStoreCorruptReturnsEmptyResult(t *testing.T) {
	src := &memReader{err: &storage.SchemaError{Reason: "missing column \"title\""}}
	a := newTestAnalyzer().AnalyzeStore(src)

	if a.Err == nil || a.Err.Kind != Corrupt {
		t.Fatalf("expected Corrupt, got %+v", a.Err)
	}
	if a.Result == nil || !a.Result.IsEmpty() {
		t.Errorf("Corrupt should carry an empty result, got %+v", a.Result)
	}
	var schemaErr *storage.SchemaError
	if !errors.As(a.Err, &schemaErr) {
		t.Errorf("underlying error should unwrap to *SchemaError")
	}
}

func TestAnalyzeStoreRecoversPanic(t *testing.T) {
	a := newTestAnalyzer().AnalyzeStore(&memReader{panics: true})
	if a.Err == nil || a.Err.Kind != Corrupt {
		t.Fatalf("expected Corrupt after panic, got %+v", a.Err)
	}
	if a.Result == nil {
		t.Errorf("expected empty result after panic")
	}
}

func TestAnalyzeStoreSuccess(t *testing.T) {
	a := newTestAnalyzer().AnalyzeStore(&memReader{records: exampleRecords(), fp: "x"})
	if a.Err != nil {
		t.Fatalf("unexpected error: %v", a.Err)
	}
	if a.Result.TotalRecords != 3 {
		t.Errorf("TotalRecords: got %d, want 3", a.Result.TotalRecords)
	}
}

func TestAnalyzeStoreKeepsNearIdenticalTitlesApart(t *testing.T) {
	store, err := storage.NewCSVStore(filepath.Join(t.TempDir(), "jobs.csv"))
	if err != nil {
		t.Fatal(err)
	}
	records := append(exampleRecords(),
		models.JobRecord{Title: "Senior  Engineer", Location: "Remote", Date: "2024-01-02"},
		models.JobRecord{Title: "Senior Engineer", Location: "Remote ", Date: "2024-01-02"},
	)
	if err := store.Save(NewCleaner(newTestLogger()).Clean(records)); err != nil {
		t.Fatal(err)
	}

	a := newTestAnalyzer().AnalyzeStore(store)
	if a.Err != nil {
		t.Fatalf("unexpected error: %v", a.Err)
	}
	wantTitles := []models.CountEntry{
		{Key: "Engineer", Count: 2},
		{Key: "Analyst", Count: 1},
		{Key: "Senior  Engineer", Count: 1},
		{Key: "Senior Engineer", Count: 1},
	}
	if !reflect.DeepEqual(a.Result.TopTitles, wantTitles) {
		t.Errorf("TopTitles: got %v, want %v", a.Result.TopTitles, wantTitles)
	}
	wantLocs := []models.CountEntry{
		{Key: "Remote", Count: 3},
		{Key: "NYC", Count: 1},
		{Key: "Remote ", Count: 1},
	}
	if !reflect.DeepEqual(a.Result.TopLocations, wantLocs) {
		t.Errorf("TopLocations: got %v, want %v", a.Result.TopLocations, wantLocs)
	}
}
