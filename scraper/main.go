package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/segmentio/kafka-go"

	"github.com/dafmontenegro/neural-trend-hub/internal/config"
	"github.com/dafmontenegro/neural-trend-hub/internal/fetch"
	"github.com/dafmontenegro/neural-trend-hub/internal/logger"
	"github.com/dafmontenegro/neural-trend-hub/internal/models"
	"github.com/dafmontenegro/neural-trend-hub/internal/scrape"
)

func main() {
	godotenv.Load()
	log := logger.New("scraper")

	cfg, err := config.LoadScraper()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	fetcher := fetch.NewClient(fetch.WithTimeout(cfg.Timeout))
	scraper := scrape.New(fetcher,
		scrape.WithObserver(scrape.SlogObserver{Log: log}),
	)

	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers:     cfg.KafkaBrokers,
		Topic:       cfg.KafkaTopic,
		MaxAttempts: 3,
	})
	defer writer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	log.Info("scraper started",
		slog.Any("terms", cfg.Terms),
		slog.Duration("interval", cfg.Interval),
		slog.String("topic", cfg.KafkaTopic),
	)

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	runOnce(ctx, log, scraper, writer, cfg)

	for {
		select {
		case <-ctx.Done():
			log.Info("shutdown signal received")
			return
		case <-ticker.C:
			runOnce(ctx, log, scraper, writer, cfg)
		}
	}
}

func runOnce(ctx context.Context, log *slog.Logger, scraper *scrape.Scraper, writer *kafka.Writer, cfg *config.Scraper) {
	for _, term := range cfg.Terms {
		if ctx.Err() != nil {
			return
		}

		result, err := scraper.Search(ctx, scrape.Params{
			Term:        term,
			Locale:      cfg.Locale,
			Language:    cfg.Language,
			MinResults:  cfg.MinResults,
			ResultCount: cfg.ResultCount,
			Windows:     cfg.Windows,
		})
		if err != nil {
			log.Error("search failed", slog.String("term", term), slog.Any("err", err))
			continue
		}

		published, err := publish(ctx, writer, term, result)
		if err != nil {
			log.Error("publish records", slog.String("term", term), slog.Any("err", err))
			continue
		}

		log.Info("run completed",
			slog.String("term", term),
			slog.Int("records", len(result.Records)),
			slog.Int("published", published),
			slog.Time("range_start", result.Start),
			slog.Time("range_end", result.End),
		)
	}
}

func publish(ctx context.Context, writer *kafka.Writer, term string, result *models.ExtractionResult) (int, error) {
	if len(result.Records) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	messages := make([]kafka.Message, 0, len(result.Records))
	for _, rec := range result.Records {
		raw := models.RawRecord{
			Term:           term,
			Link:           rec.Link,
			Title:          rec.Title,
			Snippet:        rec.Snippet,
			PublishedLabel: rec.PublishedLabel,
			Source:         rec.Source,
			FetchedAt:      now,
		}

		value, err := json.Marshal(raw)
		if err != nil {
			return 0, err
		}
		messages = append(messages, kafka.Message{
			Key:   []byte(rec.Link),
			Value: value,
		})
	}

	if err := writer.WriteMessages(ctx, messages...); err != nil {
		return 0, err
	}
	return len(messages), nil
}
