package pipeline

import (
	"context"
	"errors"
	"fmt"

	"job-trend-analyzer/models"
	"job-trend-analyzer/services"
	"job-trend-analyzer/storage"
	"job-trend-analyzer/utils"
)

// ErrNoRecords means the fetch produced nothing, so the stored dataset was left alone.
var ErrNoRecords = errors.New("no jobs found or fetch failed")

// Fetcher is the Record Source contract: all records or an error, never both.
type Fetcher interface {
	Fetch(ctx context.Context, keyword string) ([]models.JobRecord, error)
}

// Result summarises one fetch-and-persist cycle.
type Result struct {
	Keyword  string
	Fetched  int
	Mirrored bool
}

// Pipeline runs fetch, clean and save as one synchronous cycle.
type Pipeline struct {
	fetcher Fetcher
	cleaner *services.Cleaner
	store   storage.DatasetWriter
	mirror  storage.DatasetWriter
	cache   *services.AnalysisCache
	logger  *utils.Logger
}

// New creates a Pipeline. mirror and cache may be nil.
func New(fetcher Fetcher, store storage.DatasetWriter, mirror storage.DatasetWriter,
	cache *services.AnalysisCache, logger *utils.Logger) *Pipeline {
	return &Pipeline{
		fetcher: fetcher,
		cleaner: services.NewCleaner(logger),
		store:   store,
		mirror:  mirror,
		cache:   cache,
		logger:  logger,
	}
}

// Run fetches listings for keyword and overwrites the dataset with them.
// A failed or empty fetch returns ErrNoRecords (wrapping the fetch error, if any)
// and does not touch the stored dataset.
func (p *Pipeline) Run(ctx context.Context, keyword string) (Result, error) {
	res := Result{Keyword: keyword}

	records, err := p.fetcher.Fetch(ctx, keyword)
	if err != nil {
		p.logger.Warn("[pipeline] Fetch for %q failed: %v", keyword, err)
		return res, fmt.Errorf("%w: %w", ErrNoRecords, err)
	}
	if len(records) == 0 {
		p.logger.Warn("[pipeline] No jobs to save for %q", keyword)
		return res, ErrNoRecords
	}

	cleaned := p.cleaner.Clean(records)
	res.Fetched = len(cleaned)

	if err := p.store.Save(cleaned); err != nil {
		return res, fmt.Errorf("pipeline: save dataset: %w", err)
	}
	if p.cache != nil {
		p.cache.Invalidate()
	}
	p.logger.Info("[pipeline] Saved %d job listings", res.Fetched)

	if p.mirror != nil {
		if err := p.mirror.Save(cleaned); err != nil {
			p.logger.Error("[pipeline] PostgreSQL mirror write failed: %v", err)
		} else {
			res.Mirrored = true
			p.logger.Info("[pipeline] Mirrored %d listings to PostgreSQL (table: job_listings)", res.Fetched)
		}
	}

	return res, nil
}
