package dashboard

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"job-trend-analyzer/models"
	"job-trend-analyzer/pipeline"
	"job-trend-analyzer/services"
	"job-trend-analyzer/storage"
	"job-trend-analyzer/utils"
)

//go:embed templates/*.html
var templateFS embed.FS

// sampleRows is how many raw rows the dashboard shows under the charts.
const sampleRows = 10

// Runner is the fetch-and-persist cycle triggered from the dashboard.
type Runner interface {
	Run(ctx context.Context, keyword string) (pipeline.Result, error)
}

// Deps are the collaborators a Server renders and drives.
type Deps struct {
	Cache    *services.AnalysisCache
	Store    storage.DatasetReader
	DataPath string
	Runner   Runner
	Keyword  string
	Logger   *utils.Logger
}

// Server is the HTTP presentation layer.
type Server struct {
	deps    Deps
	tmpl    *template.Template
	fetchMu sync.Mutex
}

// New parses the embedded templates and returns a Server.
func New(deps Deps) (*Server, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"pct":    pct,
		"counts": newCountsView,
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Server{deps: deps, tmpl: tmpl}, nil
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.index)
	mux.HandleFunc("/fetch", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: s.fetchForm,
	}))
	mux.HandleFunc("/api/analysis", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: s.analysisJSON,
	}))
	mux.HandleFunc("/api/fetch", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: s.fetchJSON,
	}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	return Chain(mux, RequestID, AccessLog(s.deps.Logger), Recover(s.deps.Logger))
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.deps.Logger.Info("[dashboard] Listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.deps.Logger.Info("[dashboard] Shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

type pageData struct {
	Keyword   string
	DataPath  string
	Flash     string
	FlashKind string
	NotFound  bool
	Warning   string
	Result    *models.AnalysisResult
	Chart     lineChart
	Sample    []models.JobRecord
	SampleErr string
	Views     struct{ Titles, Locations, Days string }
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	data := pageData{
		Keyword:   s.keywordFrom(r.URL.Query().Get("keyword")),
		DataPath:  s.deps.DataPath,
		Flash:     r.URL.Query().Get("msg"),
		FlashKind: r.URL.Query().Get("kind"),
	}
	data.Views.Titles = services.ViewTopTitles
	data.Views.Locations = services.ViewTopLocations
	data.Views.Days = services.ViewPostingsPerDay

	a := s.deps.Cache.Get()
	switch {
	case a.Err != nil && a.Err.Kind == services.NotFound:
		data.NotFound = true
	default:
		if a.Err != nil {
			data.Warning = a.Err.Err.Error()
		}
		data.Result = a.Result
		data.Chart = newLineChart(a.Result.PostingsPerDay)
		data.Sample, data.SampleErr = s.sample()
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, "page", data); err != nil {
		s.deps.Logger.Error("[dashboard] render index: %v", err)
	}
}

func (s *Server) sample() ([]models.JobRecord, string) {
	records, err := s.deps.Store.Load()
	if err != nil {
		return nil, "Could not read or display raw data: " + err.Error()
	}
	if len(records) > sampleRows {
		records = records[:sampleRows]
	}
	return records, ""
}

type analysisResponse struct {
	Views   map[string]any `json:"views"`
	Total   int            `json:"total_records"`
	Warning string         `json:"warning,omitempty"`
}

func (s *Server) analysisJSON(w http.ResponseWriter, r *http.Request) {
	a := s.deps.Cache.Get()
	if a.Err != nil && a.Err.Kind == services.NotFound {
		WriteError(w, r, http.StatusNotFound, "not_found", "no data available, fetch first")
		return
	}

	res := analysisResponse{
		Views: map[string]any{
			services.ViewTopTitles:      a.Result.TopTitles,
			services.ViewTopLocations:   a.Result.TopLocations,
			services.ViewPostingsPerDay: a.Result.PostingsPerDay,
		},
		Total: a.Result.TotalRecords,
	}
	if a.Err != nil {
		res.Warning = a.Err.Err.Error()
	}
	WriteJSON(w, http.StatusOK, res)
}

type fetchRequest struct {
	Keyword string `json:"keyword"`
}

type fetchResponse struct {
	Keyword  string `json:"keyword"`
	Fetched  int    `json:"fetched"`
	Mirrored bool   `json:"mirrored"`
}

func (s *Server) fetchJSON(w http.ResponseWriter, r *http.Request) {
	var req fetchRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, r, http.StatusBadRequest, "bad_request", "invalid JSON body")
			return
		}
	} else {
		req.Keyword = r.FormValue("keyword")
	}

	res, err := s.runFetch(r.Context(), s.keywordFrom(req.Keyword))
	switch {
	case errors.Is(err, errFetchRunning):
		WriteError(w, r, http.StatusConflict, "fetch_running", err.Error())
	case errors.Is(err, pipeline.ErrNoRecords):
		WriteError(w, r, http.StatusBadGateway, "no_records", "No jobs found or scraping failed.")
	case err != nil:
		WriteError(w, r, http.StatusInternalServerError, "save_failed", err.Error())
	default:
		WriteJSON(w, http.StatusOK, fetchResponse{Keyword: res.Keyword, Fetched: res.Fetched, Mirrored: res.Mirrored})
	}
}

func (s *Server) fetchForm(w http.ResponseWriter, r *http.Request) {
	keyword := s.keywordFrom(r.FormValue("keyword"))
	res, err := s.runFetch(r.Context(), keyword)

	q := url.Values{"keyword": {keyword}}
	switch {
	case errors.Is(err, errFetchRunning):
		q.Set("kind", "warning")
		q.Set("msg", err.Error())
	case errors.Is(err, pipeline.ErrNoRecords):
		q.Set("kind", "warning")
		q.Set("msg", "No jobs found or scraping failed.")
	case err != nil:
		q.Set("kind", "error")
		q.Set("msg", err.Error())
	default:
		q.Set("kind", "success")
		q.Set("msg", "Job data scraped and saved to "+s.deps.DataPath+"! ("+strconv.Itoa(res.Fetched)+" listings)")
	}
	http.Redirect(w, r, "/?"+q.Encode(), http.StatusSeeOther)
}

var errFetchRunning = errors.New("a fetch is already running")

// runFetch allows one fetch at a time; concurrent requests are rejected, not queued.
func (s *Server) runFetch(ctx context.Context, keyword string) (pipeline.Result, error) {
	if !s.fetchMu.TryLock() {
		return pipeline.Result{}, errFetchRunning
	}
	defer s.fetchMu.Unlock()
	return s.deps.Runner.Run(ctx, keyword)
}

func (s *Server) keywordFrom(v string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return s.deps.Keyword
}
