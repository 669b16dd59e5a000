package dashboard

import (
	"fmt"
	"strings"

	"job-trend-analyzer/models"
)

const (
	chartWidth  = 640
	chartHeight = 220
	chartPad    = 24
)

// lineChart is a pre-computed SVG polyline for the per-day view.
type lineChart struct {
	Width, Height int
	Points        string
	Dots          []chartDot
	First, Last   string
	Peak          int
}

type chartDot struct {
	X, Y  float64
	Label string
}

func newLineChart(days []models.DayCount) lineChart {
	c := lineChart{Width: chartWidth, Height: chartHeight}
	if len(days) == 0 {
		return c
	}

	for _, d := range days {
		if d.Count > c.Peak {
			c.Peak = d.Count
		}
	}
	c.First, c.Last = days[0].Day, days[len(days)-1].Day

	innerW := float64(chartWidth - 2*chartPad)
	innerH := float64(chartHeight - 2*chartPad)
	step := 0.0
	if len(days) > 1 {
		step = innerW / float64(len(days)-1)
	}

	pts := make([]string, 0, len(days))
	for i, d := range days {
		x := float64(chartPad) + step*float64(i)
		if len(days) == 1 {
			x = float64(chartWidth) / 2
		}
		y := float64(chartPad) + innerH*(1-float64(d.Count)/float64(c.Peak))
		pts = append(pts, fmt.Sprintf("%.1f,%.1f", x, y))
		c.Dots = append(c.Dots, chartDot{X: x, Y: y, Label: fmt.Sprintf("%s: %d", d.Day, d.Count)})
	}
	c.Points = strings.Join(pts, " ")
	return c
}

// pct scales count against the largest count in entries as a CSS width percentage.
func pct(count int, entries []models.CountEntry) float64 {
	peak := 0
	for _, e := range entries {
		if e.Count > peak {
			peak = e.Count
		}
	}
	if peak == 0 {
		return 0
	}
	return float64(count) * 100 / float64(peak)
}

type countsView struct {
	Entries []models.CountEntry
	Empty   string
}

func newCountsView(entries []models.CountEntry, empty string) countsView {
	return countsView{Entries: entries, Empty: empty}
}
