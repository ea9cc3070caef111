// One-shot CLI: run a single adaptive-range extraction for a term, persist
// the records as JSON, and write the assembled trend-report prompt next to it.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/dafmontenegro/neural-trend-hub/internal/fetch"
	"github.com/dafmontenegro/neural-trend-hub/internal/logger"
	"github.com/dafmontenegro/neural-trend-hub/internal/report"
	"github.com/dafmontenegro/neural-trend-hub/internal/scrape"
)

func main() {
	godotenv.Load()
	log := logger.New("report")

	var (
		term        = flag.String("term", "", "search term (required)")
		locale      = flag.String("locale", "co", "geographic location code")
		language    = flag.String("language", "es", "language code")
		minResults  = flag.Int("min-results", 10, "minimum acceptable number of records")
		resultCount = flag.Int("result-count", 100, "requested results per page")
		windows     = flag.String("windows", "1,7,30,90", "comma-separated day counts, widening")
		outDir      = flag.String("out", ".", "output directory")
	)
	flag.Parse()

	if strings.TrimSpace(*term) == "" {
		log.Error("missing required -term flag")
		flag.Usage()
		os.Exit(2)
	}

	windowDays, err := parseWindows(*windows)
	if err != nil {
		log.Error("invalid -windows flag", slog.Any("err", err))
		os.Exit(2)
	}

	scraper := scrape.New(fetch.NewClient(), scrape.WithObserver(scrape.SlogObserver{Log: log}))

	result, err := scraper.Search(context.Background(), scrape.Params{
		Term:        *term,
		Locale:      *locale,
		Language:    *language,
		MinResults:  *minResults,
		ResultCount: *resultCount,
		Windows:     windowDays,
	})
	if err != nil {
		log.Error("search failed", slog.Any("err", err))
		os.Exit(1)
	}

	if len(result.Records) == 0 {
		log.Info("no news records were retrieved",
			slog.Time("range_start", result.Start),
			slog.Time("range_end", result.End),
		)
		return
	}

	jsonPath := filepath.Join(*outDir, report.Filename(*term, *result))
	if err := report.WriteJSON(jsonPath, result.Records); err != nil {
		log.Error("write records", slog.Any("err", err))
		os.Exit(1)
	}
	log.Info("records saved",
		slog.Int("records", len(result.Records)),
		slog.String("path", jsonPath),
	)

	prompt := report.Prompt(*result, report.Options{
		Term:     *term,
		Locale:   *locale,
		Language: *language,
	})

	promptPath := filepath.Join(*outDir, report.PromptFilename(*term, *result))
	if err := os.WriteFile(promptPath, []byte(prompt), 0o644); err != nil {
		log.Error("write prompt", slog.Any("err", err))
		os.Exit(1)
	}
	log.Info("report prompt saved", slog.String("path", promptPath))
}

func parseWindows(raw string) ([]int, error) {
	parts := strings.Split(raw, ",")
	out := make([]int, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		days, err := strconv.Atoi(trimmed)
		if err != nil {
			return nil, err
		}
		out = append(out, days)
	}
	return out, nil
}
