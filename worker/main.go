package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/segmentio/kafka-go"

	"github.com/dafmontenegro/neural-trend-hub/internal/config"
	"github.com/dafmontenegro/neural-trend-hub/internal/elasticsearch"
	"github.com/dafmontenegro/neural-trend-hub/internal/logger"
	"github.com/dafmontenegro/neural-trend-hub/internal/models"
	"github.com/dafmontenegro/neural-trend-hub/internal/processing"
)

type recordIndexer interface {
	IndexRecord(ctx context.Context, doc models.NewsDocument) error
}

func main() {
	godotenv.Load()
	log := logger.New("worker")

	cfg, err := config.LoadWorker()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	esClient, err := elasticsearch.New(cfg.ElasticsearchAddr, cfg.ElasticsearchIndex, log)
	if err != nil {
		log.Error("init elasticsearch", slog.Any("err", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.KafkaBrokers,
		Topic:          cfg.KafkaTopic,
		GroupID:        cfg.KafkaConsumer,
		MinBytes:       1e3,
		MaxBytes:       10e6,
		CommitInterval: 0, // Disable auto-commit; manual commit only
	})
	defer reader.Close()

	dlqWriter := kafka.NewWriter(kafka.WriterConfig{
		Brokers:     cfg.KafkaBrokers,
		Topic:       cfg.KafkaTopic + "_dlq",
		MaxAttempts: 3,
	})
	defer dlqWriter.Close()

	log.Info("worker started",
		slog.String("topic", cfg.KafkaTopic),
		slog.String("group", cfg.KafkaConsumer),
		slog.String("dlq_topic", cfg.KafkaTopic+"_dlq"),
	)

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				log.Info("context canceled, stopping")
				return
			}
			log.Error("fetch message", slog.Any("err", err))
			continue
		}

		if err := processMessage(ctx, log, esClient, cfg, msg); err != nil {
			log.Warn("process message failed, sending to DLQ",
				slog.Any("err", err),
				slog.Int("partition", msg.Partition),
				slog.Int64("offset", msg.Offset),
			)

			if sendToDLQ(ctx, log, dlqWriter, msg, err) {
				if err := reader.CommitMessages(ctx, msg); err != nil {
					log.Error("commit failed message to dlq", slog.Any("err", err))
				}
			}
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit message", slog.Any("err", err))
		}
	}
}

// sendToDLQ retries the dead-letter write with exponential backoff and
// reports whether the message landed there.
func sendToDLQ(ctx context.Context, log *slog.Logger, writer *kafka.Writer, msg kafka.Message, cause error) bool {
	dlqMsg := kafka.Message{
		Value: msg.Value,
		Headers: append(msg.Headers,
			kafka.Header{Key: "original_partition", Value: []byte(fmt.Sprintf("%d", msg.Partition))},
			kafka.Header{Key: "original_offset", Value: []byte(fmt.Sprintf("%d", msg.Offset))},
			kafka.Header{Key: "error", Value: []byte(cause.Error())},
			kafka.Header{Key: "timestamp", Value: []byte(time.Now().UTC().Format(time.RFC3339))},
		),
	}

	for attempt := 0; attempt < 5; attempt++ {
		if err := writer.WriteMessages(ctx, dlqMsg); err == nil {
			log.Info("message sent to DLQ",
				slog.Int("partition", msg.Partition),
				slog.Int64("offset", msg.Offset),
				slog.Int("attempt", attempt+1),
			)
			return true
		} else {
			backoff := time.Duration(1<<uint(attempt)) * time.Second
			log.Warn("DLQ write failed, retrying",
				slog.Any("err", err),
				slog.Int("attempt", attempt+1),
				slog.Duration("backoff", backoff),
			)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				log.Info("context canceled during DLQ retry")
				return false
			}
		}
	}

	log.Error("DLQ write exhausted retries, message may be lost if later messages commit",
		slog.Int("partition", msg.Partition),
		slog.Int64("offset", msg.Offset),
	)
	return false
}

func processMessage(ctx context.Context, log *slog.Logger, idx recordIndexer, cfg *config.Worker, msg kafka.Message) error {
	var raw models.RawRecord
	if err := json.Unmarshal(msg.Value, &raw); err != nil {
		return err
	}

	link := strings.TrimSpace(raw.Link)
	if link == "" {
		return errors.New("record without link")
	}

	fetchedAt := raw.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now().UTC()
	}

	source := strings.TrimSpace(raw.Source)
	if source == "" {
		source = "unknown"
	}

	title := strings.TrimSpace(raw.Title)
	snippet := strings.TrimSpace(raw.Snippet)
	keywords := processing.ExtractKeywords(title+" "+snippet, cfg.KeywordLimit, cfg.KeywordMinLength)

	doc := models.NewsDocument{
		ID:             processing.RecordID(link),
		Term:           strings.TrimSpace(raw.Term),
		Link:           link,
		Title:          title,
		Snippet:        snippet,
		PublishedLabel: strings.TrimSpace(raw.PublishedLabel),
		Source:         source,
		Keywords:       keywords,
		FetchedAt:      fetchedAt,
	}

	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}

	if err := idx.IndexRecord(ctx, doc); err != nil {
		return err
	}

	log.Info("indexed record", slog.String("id", doc.ID), slog.String("title", doc.Title))
	return nil
}
