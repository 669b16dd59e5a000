package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"job-trend-analyzer/models"
	"job-trend-analyzer/utils"
)

// PostgresStore mirrors the latest dataset into the job_listings table.
// Every Save replaces the table contents inside a single transaction.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection to PostgreSQL, retrying the ping, runs schema
// migrations, and returns a ready-to-use PostgresStore.
func NewPostgresStore(ctx context.Context, dsn string, retry *utils.RetryConfig) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	err = retry.Do(ctx, "postgres-ping", func() error {
		pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return db.PingContext(pctx)
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	ps := &PostgresStore{db: db}
	if err := ps.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return ps, nil
}

func (ps *PostgresStore) migrate(ctx context.Context) error {
	_, err := ps.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS job_listings (
			id         SERIAL PRIMARY KEY,
			title      TEXT        NOT NULL,
			company    TEXT        NOT NULL DEFAULT 'N/A',
			location   TEXT        NOT NULL DEFAULT 'N/A',
			date       TEXT        NOT NULL DEFAULT 'N/A',
			job_type   TEXT        NOT NULL DEFAULT 'N/A',
			salary     TEXT        NOT NULL DEFAULT 'N/A',
			url        TEXT        NOT NULL DEFAULT 'N/A',
			source     TEXT        NOT NULL DEFAULT 'N/A',
			fetched_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_job_listings_title    ON job_listings(title);
		CREATE INDEX IF NOT EXISTS idx_job_listings_location ON job_listings(location);
	`)
	return err
}

// Save replaces all rows with records. An empty slice leaves the table untouched.
func (ps *PostgresStore) Save(records []models.JobRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := ps.db.Begin()
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM job_listings"); err != nil {
		return fmt.Errorf("postgres: clear: %w", err)
	}

	const batchSize = 50
	for i := 0; i < len(records); i += batchSize {
		end := i + batchSize
		if end > len(records) {
			end = len(records)
		}
		if err := insertBatch(tx, records[i:end]); err != nil {
			return fmt.Errorf("postgres: insert: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	return nil
}

func insertBatch(tx *sql.Tx, batch []models.JobRecord) error {
	cols := len(models.Columns)
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*cols)

	for idx, r := range batch {
		base := idx * cols
		ph := make([]string, cols)
		for c := 0; c < cols; c++ {
			ph[c] = fmt.Sprintf("$%d", base+c+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(ph, ",")+")")
		for _, v := range r.Row() {
			if strings.TrimSpace(v) == "" {
				v = models.NotAvailable
			}
			valueArgs = append(valueArgs, v)
		}
	}

	query := fmt.Sprintf(`
		INSERT INTO job_listings (%s)
		VALUES %s
	`, strings.Join(models.Columns, ", "), strings.Join(valueStrings, ","))

	_, err := tx.Exec(query, valueArgs...)
	return err
}

// Load retrieves all stored rows in insertion order. An empty table means
// nothing has been mirrored yet and yields ErrNotFound.
func (ps *PostgresStore) Load() ([]models.JobRecord, error) {
	rows, err := ps.db.Query(`
		SELECT title, company, location, date, job_type, salary, url, source
		FROM job_listings
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch all: %w", err)
	}
	defer rows.Close()

	records := []models.JobRecord{}
	for rows.Next() {
		var r models.JobRecord
		if err := rows.Scan(
			&r.Title, &r.Company, &r.Location, &r.Date,
			&r.JobType, &r.Salary, &r.URL, &r.Source,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: rows: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("postgres: job_listings is empty: %w", ErrNotFound)
	}
	return records, nil
}

// Fingerprint combines the row count with the newest fetched_at timestamp.
func (ps *PostgresStore) Fingerprint() (string, error) {
	var (
		count int64
		last  sql.NullTime
	)
	err := ps.db.QueryRow(`SELECT COUNT(*), MAX(fetched_at) FROM job_listings`).Scan(&count, &last)
	if err != nil {
		return "", fmt.Errorf("postgres: fingerprint: %w", err)
	}
	if count == 0 {
		return "", ErrNotFound
	}
	return fmt.Sprintf("pg:%d:%d", count, last.Time.UnixNano()), nil
}

func (ps *PostgresStore) Close() error {
	return ps.db.Close()
}
