package services

import (
	"strings"

	"job-trend-analyzer/models"
	"job-trend-analyzer/utils"
)

// Cleaner prepares fetched records for persistence. It never drops or merges
// records: duplicates across or within fetches are kept as-is.
type Cleaner struct {
	logger *utils.Logger
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

// Clean replaces empty or whitespace-only fields with the "N/A" sentinel.
// Every other value is kept byte-for-byte, since grouping is by exact string.
func (c *Cleaner) Clean(raw []models.JobRecord) []models.JobRecord {
	result := make([]models.JobRecord, 0, len(raw))
	filled := 0

	for _, r := range raw {
		fields := []*string{
			&r.Title, &r.Company, &r.Location, &r.Date,
			&r.URL, &r.JobType, &r.Salary, &r.Source,
		}
		for _, f := range fields {
			if strings.TrimSpace(*f) == "" {
				*f = models.NotAvailable
				filled++
			}
		}
		result = append(result, r)
	}

	if filled > 0 {
		c.logger.Debug("[cleaner] Filled %d missing fields with %q across %d records",
			filled, models.NotAvailable, len(result))
	}
	return result
}
