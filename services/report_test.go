package services

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"job-trend-analyzer/models"
	"job-trend-analyzer/storage"
)

func TestPrintReport(t *testing.T) {
	var buf bytes.Buffer
	PrintReport(&buf, Analysis{Result: newTestAnalyzer().Analyze(exampleRecords())}, "jobs.csv")
	out := buf.String()

	for _, want := range []string{ViewTopTitles, ViewTopLocations, ViewPostingsPerDay, "Engineer", "2024-01-01"} {
		assert.Contains(t, out, want)
	}
}

func TestPrintReportNotFound(t *testing.T) {
	var buf bytes.Buffer
	PrintReport(&buf, Analysis{Err: &AnalysisError{Kind: NotFound, Err: storage.ErrNotFound}}, "jobs.csv")
	assert.Contains(t, buf.String(), "No job data file (jobs.csv) found")
}

func TestPrintReportCorruptShowsEmptyViews(t *testing.T) {
	var buf bytes.Buffer
	a := Analysis{Result: models.EmptyAnalysis(), Err: &AnalysisError{Kind: Corrupt, Err: fmt.Errorf("bad row")}}
	PrintReport(&buf, a, "jobs.csv")
	out := buf.String()

	assert.Contains(t, out, "Analysis could not be performed: bad row")
	assert.Contains(t, out, "No title data to display.")
	assert.Contains(t, out, "No posting date data to display.")
}

func TestBarScaling(t *testing.T) {
	assert.Equal(t, "", bar(0, 10))
	assert.Len(t, []rune(bar(10, 10)), maxBar)
	assert.Len(t, []rune(bar(1, 1000)), 1)
}
