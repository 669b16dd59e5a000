package storage

import (
	"errors"

	"job-trend-analyzer/models"
)

// ErrNotFound is returned by a DatasetReader when nothing has been written yet.
var ErrNotFound = errors.New("dataset not found")

// DatasetWriter replaces the stored dataset with a new fetch.
type DatasetWriter interface {
	Save(records []models.JobRecord) error
}

// DatasetReader returns a full snapshot of the stored dataset.
type DatasetReader interface {
	Load() ([]models.JobRecord, error)
	// Fingerprint identifies the current contents; it changes on every overwrite.
	Fingerprint() (string, error)
}
