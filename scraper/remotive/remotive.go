package remotive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"job-trend-analyzer/config"
	"job-trend-analyzer/models"
	"job-trend-analyzer/services"
	"job-trend-analyzer/utils"
)

// SourceTag is the provenance written to every record fetched here.
const SourceTag = "Remotive API"

// maxBodyPreview bounds how much of an unexpected response body is logged.
const maxBodyPreview = 500

// Scraper fetches listings from the Remotive public API.
type Scraper struct {
	cfg    *config.Config
	logger *utils.Logger
	hc     *http.Client
}

// New creates a Scraper whose HTTP client enforces cfg.FetchTimeout.
func New(cfg *config.Config, logger *utils.Logger) *Scraper {
	return &Scraper{
		cfg:    cfg,
		logger: logger,
		hc:     &http.Client{Timeout: cfg.FetchTimeout},
	}
}

// Fetch returns every listing matching keyword. It is all-or-nothing: on any
// failure the slice is nil and the error says why.
func (s *Scraper) Fetch(ctx context.Context, keyword string) ([]models.JobRecord, error) {
	s.logger.Info("[remotive] Fetching jobs for keyword %q", keyword)

	apiURL, err := url.Parse(s.cfg.RemotiveAPIURL)
	if err != nil {
		return nil, fmt.Errorf("remotive: parse api url: %w", err)
	}
	q := apiURL.Query()
	q.Set("search", keyword)
	apiURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("remotive: build request: %w", err)
	}
	req.Header.Set("User-Agent", s.cfg.UserAgent)
	req.Header.Set("Accept", "application/json")

	res, err := s.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remotive: network error: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		s.logger.Debug("[remotive] Response body: %s", preview(res.Body))
		return nil, &StatusError{Code: res.StatusCode}
	}

	ct := res.Header.Get("Content-Type")
	if mt, _, err := mime.ParseMediaType(ct); err != nil || mt != "application/json" {
		s.logger.Debug("[remotive] Response body: %s", preview(res.Body))
		return nil, fmt.Errorf("remotive: expected JSON response, got %q", ct)
	}

	var envelope map[string]json.RawMessage
	if err := json.NewDecoder(res.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("remotive: decode response: %w", err)
	}
	rawJobs, ok := envelope["jobs"]
	if !ok {
		return nil, fmt.Errorf("remotive: %q key not found in response", "jobs")
	}

	var apiJobs []map[string]any
	if err := json.Unmarshal(rawJobs, &apiJobs); err != nil {
		return nil, fmt.Errorf("remotive: decode jobs: %w", err)
	}
	s.logger.Info("[remotive] Found %d jobs for keyword %q", len(apiJobs), keyword)

	records := make([]models.JobRecord, 0, len(apiJobs))
	for _, j := range apiJobs {
		records = append(records, models.JobRecord{
			Title:       field(j, "title"),
			Company:     field(j, "company_name"),
			Location:    field(j, "candidate_required_location"),
			Date:        field(j, "publication_date"),
			URL:         field(j, "url"),
			JobType:     field(j, "job_type"),
			Salary:      field(j, "salary"),
			Source:      SourceTag,
			Description: services.HTMLToText(rawString(j, "description")),
		})
	}

	s.logger.Info("[remotive] Processed %d jobs from API response", len(records))
	return records, nil
}

// StatusError is returned for a non-2xx API response.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("remotive: HTTP status %d", e.Code)
}

// field returns j[key] as text, or "N/A" when the key is absent or null.
func field(j map[string]any, key string) string {
	v, ok := j[key]
	if !ok || v == nil {
		return models.NotAvailable
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return models.NotAvailable
		}
		return string(b)
	}
}

func rawString(j map[string]any, key string) string {
	if s, ok := j[key].(string); ok {
		return s
	}
	return ""
}

func preview(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, maxBodyPreview))
	return strings.TrimSpace(string(b)) + "..."
}
