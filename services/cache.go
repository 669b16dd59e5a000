package services

import (
	"errors"
	"sync"

	"job-trend-analyzer/storage"
)

// AnalysisCache memoises the last Analysis keyed by the dataset fingerprint.
// A fetch that overwrites the dataset changes the fingerprint, and callers
// that know they just wrote can also Invalidate explicitly.
type AnalysisCache struct {
	analyzer *Analyzer
	src      storage.DatasetReader

	mu          sync.Mutex
	fingerprint string
	cached      Analysis
	hits        int
}

// NewAnalysisCache wraps analyzer for the dataset read from src.
func NewAnalysisCache(analyzer *Analyzer, src storage.DatasetReader) *AnalysisCache {
	return &AnalysisCache{analyzer: analyzer, src: src}
}

// Get returns the cached Analysis when the dataset is unchanged, otherwise recomputes it.
// Each caller gets its own copy of the Result.
func (c *AnalysisCache) Get() Analysis {
	c.mu.Lock()
	defer c.mu.Unlock()

	fp, err := c.src.Fingerprint()
	if err != nil {
		c.fingerprint = ""
		c.cached = Analysis{}
		if errors.Is(err, storage.ErrNotFound) {
			return Analysis{Err: &AnalysisError{Kind: NotFound, Err: err}}
		}
		// Could not fingerprint; analyze without caching.
		return c.analyzer.AnalyzeStore(c.src)
	}

	if fp == c.fingerprint && c.fingerprint != "" {
		c.hits++
		c.analyzer.logger.Debug("[cache] Analysis cache hit (%s)", shortFingerprint(fp))
		return c.cached.clone()
	}

	a := c.analyzer.AnalyzeStore(c.src)
	if a.Err == nil || a.Err.Kind == Corrupt {
		c.fingerprint = fp
		c.cached = a
	}
	return a.clone()
}

// Invalidate drops the cached Analysis.
func (c *AnalysisCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fingerprint = ""
	c.cached = Analysis{}
}

// Hits returns how many Get calls were served from the cache.
func (c *AnalysisCache) Hits() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits
}

func shortFingerprint(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}
