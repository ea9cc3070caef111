package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/dafmontenegro/neural-trend-hub/internal/config"
	"github.com/dafmontenegro/neural-trend-hub/internal/elasticsearch"
	"github.com/dafmontenegro/neural-trend-hub/internal/fetch"
	"github.com/dafmontenegro/neural-trend-hub/internal/logger"
	"github.com/dafmontenegro/neural-trend-hub/internal/scrape"
)

func main() {
	godotenv.Load()
	log := logger.New("api")

	cfg, err := config.LoadAPI()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	esClient, err := elasticsearch.New(cfg.ElasticsearchAddr, cfg.ElasticsearchIndex, log)
	if err != nil {
		log.Error("init elasticsearch", slog.Any("err", err))
		os.Exit(1)
	}

	fetcher := fetch.NewClient(fetch.WithTimeout(cfg.Timeout))
	scraper := scrape.New(fetcher, scrape.WithObserver(scrape.SlogObserver{Log: log}))

	srv := &server{log: log, cfg: cfg, es: esClient, scraper: scraper}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", srv.handleHealth)
	r.Get("/news", srv.handleNews)
	r.Get("/scrape", srv.handleScrape)

	httpServer := &http.Server{
		Addr:              cfg.BindAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      2 * time.Minute,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	go func() {
		log.Info("api server starting", slog.String("addr", cfg.BindAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", slog.Any("err", err))
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", slog.Any("err", err))
	}
}

type server struct {
	log     *slog.Logger
	cfg     *config.API
	es      *elasticsearch.Client
	scraper *scrape.Scraper
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.es.Health(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleNews serves previously indexed records out of Elasticsearch.
func (s *server) handleNews(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	q := r.URL.Query()
	params := elasticsearch.SearchParams{
		Query:    strings.TrimSpace(q.Get("q")),
		Term:     strings.TrimSpace(q.Get("term")),
		Source:   strings.TrimSpace(q.Get("source")),
		Keywords: parseCSV(q.Get("keywords")),
		From:     clampInt(q.Get("from"), 0, 10_000),
		Size:     clampInt(q.Get("size"), s.cfg.DefaultPage, s.cfg.MaxPage),
		Sort:     strings.TrimSpace(q.Get("sort")),
	}
	if start := parseTime(q.Get("start")); start != nil {
		params.Start = start
	}
	if end := parseTime(q.Get("end")); end != nil {
		params.End = end
	}

	result, err := s.es.SearchRecords(ctx, params)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleScrape runs a live adaptive-range extraction and returns the records
// plus the date range actually used. Worst case it blocks for one fetch
// timeout per candidate window.
func (s *server) handleScrape(w http.ResponseWriter, r *http.Request) {
	term := strings.TrimSpace(r.URL.Query().Get("term"))
	if term == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "term is required"})
		return
	}

	params := scrape.Params{
		Term:        term,
		Locale:      orDefault(r.URL.Query().Get("locale"), s.cfg.Locale),
		Language:    orDefault(r.URL.Query().Get("language"), s.cfg.Language),
		MinResults:  clampInt(r.URL.Query().Get("min_results"), s.cfg.MinResults, 1_000),
		ResultCount: clampInt(r.URL.Query().Get("result_count"), s.cfg.ResultCount, 1_000),
		Windows:     s.cfg.Windows,
	}

	// One fetch timeout per window plus slack.
	deadline := time.Duration(len(params.Windows))*s.cfg.Timeout + 5*time.Second
	ctx, cancel := context.WithTimeout(r.Context(), deadline)
	defer cancel()

	result, err := s.scraper.Search(ctx, params)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func orDefault(raw, fallback string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	return raw
}

func parseTime(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return &ts
	}
	return nil
}

func parseCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func clampInt(raw string, fallback, max int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	if value <= 0 {
		return fallback
	}
	if value > max {
		return max
	}
	return value
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// nothing better to do
	}
}
