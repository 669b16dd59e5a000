package storage

import (
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"job-trend-analyzer/models"
)

// requiredColumns must be present in the header for the file to be analyzable.
var requiredColumns = []string{"title", "location", "date"}

// CSVStore keeps the most recent fetch in a single CSV file.
// Save replaces the whole file atomically; Load reads it back in full.
type CSVStore struct {
	mu   sync.Mutex
	path string
}

// NewCSVStore returns a store for path. Intermediate directories are created
// eagerly so an unwritable output location fails at startup.
func NewCSVStore(path string) (*CSVStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}
	return &CSVStore{path: path}, nil
}

// Path returns the file backing the store.
func (c *CSVStore) Path() string { return c.path }

// Exists reports whether a dataset has been written.
func (c *CSVStore) Exists() bool {
	_, err := os.Stat(c.path)
	return err == nil
}

// Save writes records to a temp file next to the target and renames it into place.
// Empty fields are written as the "N/A" sentinel. Saving an empty slice is a no-op.
func (c *CSVStore) Save(records []models.JobRecord) error {
	if len(records) == 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	tmp, err := os.CreateTemp(filepath.Dir(c.path), "."+filepath.Base(c.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("csv: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	w := csv.NewWriter(tmp)
	if err := w.Write(models.Columns); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("csv: write header: %w", err)
	}
	for _, r := range records {
		row := r.Row()
		for i, v := range row {
			if strings.TrimSpace(v) == "" {
				row[i] = models.NotAvailable
			}
		}
		if err := w.Write(row); err != nil {
			_ = tmp.Close()
			return fmt.Errorf("csv: write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("csv: flush: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("csv: sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("csv: close temp file: %w", err)
	}

	if err := os.Rename(tmpName, c.path); err != nil {
		return fmt.Errorf("csv: replace %q: %w", c.path, err)
	}
	return nil
}

// Load reads the whole file. Columns are matched by header name, so extra or
// reordered columns are tolerated; absent optional columns read as "N/A".
// A missing file yields ErrNotFound, anything unreadable a wrapped *SchemaError or I/O error.
func (c *CSVStore) Load() ([]models.JobRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	f, err := os.Open(c.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("csv: open %q: %w", c.path, ErrNotFound)
		}
		return nil, fmt.Errorf("csv: open %q: %w", c.path, err)
	}
	defer f.Close()

	return readRecords(f)
}

// Fingerprint hashes the file contents together with size and modification time.
func (c *CSVStore) Fingerprint() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	f, err := os.Open(c.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("csv: fingerprint: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("csv: fingerprint: %w", err)
	}

	h := sha256.New()
	fmt.Fprintf(h, "%d:%d:", info.Size(), info.ModTime().UnixNano())
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("csv: fingerprint: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// SchemaError reports a file that exists but does not have the expected shape.
type SchemaError struct {
	Reason string
}

func (e *SchemaError) Error() string {
	return "csv: unexpected schema: " + e.Reason
}

func readRecords(r io.Reader) ([]models.JobRecord, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err == io.EOF {
		return nil, &SchemaError{Reason: "file is empty"}
	}
	if err != nil {
		return nil, fmt.Errorf("csv: read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, &SchemaError{Reason: fmt.Sprintf("missing column %q", col)}
		}
	}

	field := func(row []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(row) {
			return models.NotAvailable
		}
		return row[i]
	}

	var records []models.JobRecord
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: read row %d: %w", len(records)+2, err)
		}
		records = append(records, models.JobRecord{
			Title:    field(row, "title"),
			Company:  field(row, "company"),
			Location: field(row, "location"),
			Date:     field(row, "date"),
			JobType:  field(row, "job_type"),
			Salary:   field(row, "salary"),
			URL:      field(row, "url"),
			Source:   field(row, "source"),
		})
	}
	if records == nil {
		records = []models.JobRecord{}
	}
	return records, nil
}
