// Package server exposes the sales dashboard over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/KaramelBytes/salesdash/internal/dashboard"
	"github.com/KaramelBytes/salesdash/internal/export"
	"github.com/KaramelBytes/salesdash/internal/ingest"
	"github.com/KaramelBytes/salesdash/internal/logging"
	"github.com/KaramelBytes/salesdash/internal/pipeline"
	"github.com/KaramelBytes/salesdash/internal/sales"
)

// Config wires a Server.
type Config struct {
	// Sources resolves the current source file list on every request.
	Sources   func() ([]string, error)
	Pipeline  pipeline.Options
	Dashboard dashboard.Options
	Logger    *slog.Logger
	// Registry defaults to a fresh registry.
	Registry *prometheus.Registry
}

// Server serves the dashboard API from a shared table cache.
type Server struct {
	sources   func() ([]string, error)
	dashboard dashboard.Options
	cache     *pipeline.Cache
	metrics   *Metrics
	registry  *prometheus.Registry
	logger    *slog.Logger
}

// New builds a server. The pipeline's OnLoad hook is chained with the
// ingestion metrics.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	reg := cfg.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	s := &Server{
		sources:   cfg.Sources,
		dashboard: cfg.Dashboard,
		registry:  reg,
		metrics:   NewMetrics(reg),
		logger:    logger.With("component", "server"),
	}
	popt := cfg.Pipeline
	next := popt.OnLoad
	popt.OnLoad = func(ds *sales.Dataset) {
		s.metrics.ObserveLoad(ds)
		if next != nil {
			next(ds)
		}
	}
	s.cache = pipeline.NewCache(popt, logger)
	return s
}

// Routes returns the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	r.Route("/api", func(r chi.Router) {
		r.Get("/dataset", s.handleDataset)
		r.Get("/dashboard", s.handleDashboard)
		r.Get("/export.csv", s.handleExport)
		r.Post("/reload", s.handleReload)
	})
	return r
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method, "path", r.URL.Path, "status", ww.Status(),
			"bytes", ww.BytesWritten(), "duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func (s *Server) table(ctx context.Context) (*sales.Table, error) {
	sources, err := s.sources()
	if err != nil {
		return nil, err
	}
	return s.cache.Get(ctx, sources)
}

// DatasetInfo describes the loaded table.
type DatasetInfo struct {
	ID       string            `json:"id"`
	Rows     int               `json:"rows"`
	Sources  []string          `json:"sources"`
	Skipped  []SkippedSource   `json:"skipped"`
	Months   []string          `json:"months"`
	Cities   []string          `json:"cities"`
	Products []string          `json:"products"`
	Colors   map[string]string `json:"colors"`
}

// SkippedSource is a source file that could not be read.
type SkippedSource struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// Describe summarizes t for clients building filter controls.
func Describe(t *sales.Table) DatasetInfo {
	info := DatasetInfo{
		ID:       t.ID,
		Rows:     t.Len(),
		Sources:  t.Sources,
		Skipped:  []SkippedSource{},
		Months:   make([]string, 0, len(t.Months)),
		Cities:   t.Cities,
		Products: t.Products,
		Colors:   t.Colors,
	}
	for _, m := range t.Months {
		info.Months = append(info.Months, sales.MonthName(m))
	}
	for _, se := range t.Skipped {
		info.Skipped = append(info.Skipped, SkippedSource{Path: se.Path, Error: se.Err.Error()})
	}
	return info
}

func (s *Server) handleDataset(w http.ResponseWriter, r *http.Request) {
	t, err := s.table(r.Context())
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	render.JSON(w, r, Describe(t))
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	t, err := s.table(r.Context())
	if err != nil {
		s.metrics.Requests.WithLabelValues("error").Inc()
		s.renderError(w, r, err)
		return
	}
	sel, err := SelectionFromQuery(r)
	if err != nil {
		s.metrics.Requests.WithLabelValues("error").Inc()
		s.renderError(w, r, badRequest{err})
		return
	}
	start := time.Now()
	v := dashboard.Compute(t, sel, s.dashboard)
	s.metrics.ComputeSeconds.Observe(time.Since(start).Seconds())
	outcome := "ok"
	if v.Empty {
		outcome = "empty"
	}
	s.metrics.Requests.WithLabelValues(outcome).Inc()
	render.JSON(w, r, v)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	t, err := s.table(r.Context())
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	sel, err := SelectionFromQuery(r)
	if err != nil {
		s.renderError(w, r, badRequest{err})
		return
	}
	rows := dashboard.Filter(t, sel)
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="filtered_sales.csv"`)
	if err := export.WriteCSV(w, rows); err != nil {
		s.logger.Error("export failed", "error", err)
	}
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	s.cache.Invalidate()
	t, err := s.table(r.Context())
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	render.JSON(w, r, Describe(t))
}

type badRequest struct{ error }

func (e badRequest) Unwrap() error { return e.error }

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	var br badRequest
	switch {
	case errors.As(err, &br):
		status = http.StatusBadRequest
	case errors.Is(err, ingest.ErrNoSources):
		status = http.StatusNotFound
	case errors.Is(err, ingest.ErrEmptyDataset):
		status = http.StatusUnprocessableEntity
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	}
	render.Status(r, status)
	render.JSON(w, r, errorResponse{Error: err.Error()})
}

// SelectionFromQuery reads repeatable month, city and product parameters.
// An absent parameter leaves the dimension unrestricted; a present but empty
// one selects nothing. Months may also be comma separated; city labels and
// product names can contain commas and are taken verbatim.
func SelectionFromQuery(r *http.Request) (dashboard.Selection, error) {
	q := r.URL.Query()
	var sel dashboard.Selection
	if vals, ok := q["month"]; ok {
		var months []string
		for _, v := range vals {
			months = append(months, strings.Split(v, ",")...)
		}
		c, err := dashboard.ParseMonths(months)
		if err != nil {
			return sel, err
		}
		sel.Months = c
	}
	if vals, ok := q["city"]; ok {
		sel.Cities = dashboard.OnlyStrings(vals)
	}
	if vals, ok := q["product"]; ok {
		sel.Products = dashboard.OnlyStrings(vals)
	}
	return sel, nil
}
