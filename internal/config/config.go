package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Common contains Elasticsearch parameters shared by every service.
type Common struct {
	ElasticsearchAddr  string
	ElasticsearchIndex string
}

// Scrape holds the adaptive-search tunables shared by the scraper and API.
type Scrape struct {
	Locale      string
	Language    string
	MinResults  int
	ResultCount int
	Windows     []int
	Timeout     time.Duration
}

// Scraper configures the periodic scraping service.
type Scraper struct {
	Scrape
	Terms        []string
	Interval     time.Duration
	KafkaBrokers []string
	KafkaTopic   string
}

// Worker holds configuration for the Kafka -> Elasticsearch worker.
type Worker struct {
	Common
	KafkaBrokers     []string
	KafkaTopic       string
	KafkaConsumer    string
	KeywordLimit     int
	KeywordMinLength int
}

// API describes HTTP-layer configuration.
type API struct {
	Common
	Scrape
	BindAddr    string
	DefaultPage int
	MaxPage     int
}

// Retention configures the cleanup loop.
type Retention struct {
	Common
	Interval  time.Duration
	MaxAge    time.Duration
	BatchSize int
}

// LoadScraper builds the scraping service config from environment variables.
func LoadScraper() (*Scraper, error) {
	c := &Scraper{
		Scrape:       loadScrape(),
		Terms:        splitAndTrim(getEnv("SCRAPER_TERMS", "")),
		Interval:     getDuration("SCRAPER_INTERVAL", "1h"),
		KafkaBrokers: splitAndTrim(getEnv("KAFKA_BROKERS", "kafka:9092")),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "news_raw"),
	}

	if len(c.Terms) == 0 {
		return nil, fmt.Errorf("SCRAPER_TERMS must contain at least one search term")
	}
	if c.Interval <= 0 {
		return nil, fmt.Errorf("SCRAPER_INTERVAL must be positive")
	}
	if len(c.KafkaBrokers) == 0 {
		return nil, fmt.Errorf("KAFKA_BROKERS must contain at least one broker")
	}
	if err := c.Scrape.validate(); err != nil {
		return nil, err
	}

	return c, nil
}

// LoadWorker builds a Worker config from environment variables.
func LoadWorker() (*Worker, error) {
	c := &Worker{
		Common:           loadCommon(),
		KafkaBrokers:     splitAndTrim(getEnv("KAFKA_BROKERS", "kafka:9092")),
		KafkaTopic:       getEnv("KAFKA_TOPIC", "news_raw"),
		KafkaConsumer:    getEnv("KAFKA_CONSUMER_GROUP", "news-worker"),
		KeywordLimit:     getInt("WORKER_KEYWORD_LIMIT", 8),
		KeywordMinLength: getInt("WORKER_KEYWORD_MIN_LEN", 4),
	}

	if len(c.KafkaBrokers) == 0 {
		return nil, fmt.Errorf("KAFKA_BROKERS must contain at least one broker")
	}
	if c.KeywordLimit <= 0 {
		return nil, fmt.Errorf("WORKER_KEYWORD_LIMIT must be positive")
	}
	if c.KeywordMinLength < 0 {
		return nil, fmt.Errorf("WORKER_KEYWORD_MIN_LEN cannot be negative")
	}

	return c, nil
}

// LoadAPI builds an API config from environment variables.
func LoadAPI() (*API, error) {
	c := &API{
		Common:      loadCommon(),
		Scrape:      loadScrape(),
		BindAddr:    getEnv("API_BIND_ADDR", "0.0.0.0:8080"),
		DefaultPage: getInt("API_PAGE_SIZE", 20),
		MaxPage:     getInt("API_MAX_PAGE_SIZE", 100),
	}

	if c.DefaultPage <= 0 {
		return nil, fmt.Errorf("API_PAGE_SIZE must be positive")
	}
	if c.MaxPage <= 0 {
		return nil, fmt.Errorf("API_MAX_PAGE_SIZE must be positive")
	}
	if c.DefaultPage > c.MaxPage {
		return nil, fmt.Errorf("API_PAGE_SIZE cannot exceed API_MAX_PAGE_SIZE")
	}
	if err := c.Scrape.validate(); err != nil {
		return nil, err
	}

	return c, nil
}

// LoadRetention builds a Retention config from environment variables.
func LoadRetention() (*Retention, error) {
	c := &Retention{
		Common:    loadCommon(),
		Interval:  getDuration("RETENTION_CRON", "24h"),
		MaxAge:    getDuration("RETENTION_MAX_AGE", "720h"),
		BatchSize: getInt("RETENTION_BATCH_SIZE", 500),
	}

	if c.MaxAge <= 0 {
		return nil, fmt.Errorf("RETENTION_MAX_AGE must be positive")
	}
	if c.Interval <= 0 {
		return nil, fmt.Errorf("RETENTION_CRON must be positive")
	}
	if c.BatchSize <= 0 {
		return nil, fmt.Errorf("RETENTION_BATCH_SIZE must be positive")
	}

	return c, nil
}

func loadCommon() Common {
	return Common{
		ElasticsearchAddr:  getEnv("ELASTICSEARCH_ADDR", "http://elasticsearch:9200"),
		ElasticsearchIndex: getEnv("ELASTICSEARCH_INDEX", "news"),
	}
}

func loadScrape() Scrape {
	return Scrape{
		Locale:      getEnv("SCRAPE_LOCALE", "co"),
		Language:    getEnv("SCRAPE_LANGUAGE", "es"),
		MinResults:  getInt("SCRAPE_MIN_RESULTS", 10),
		ResultCount: getInt("SCRAPE_RESULT_COUNT", 100),
		Windows:     getIntList("SCRAPE_WINDOWS", "1,7,30,90"),
		Timeout:     getDuration("SCRAPE_TIMEOUT", "10s"),
	}
}

func (s Scrape) validate() error {
	if s.MinResults < 0 {
		return fmt.Errorf("SCRAPE_MIN_RESULTS cannot be negative")
	}
	if s.ResultCount <= 0 {
		return fmt.Errorf("SCRAPE_RESULT_COUNT must be positive")
	}
	if len(s.Windows) == 0 {
		return fmt.Errorf("SCRAPE_WINDOWS must contain at least one day count")
	}
	prev := 0
	for _, days := range s.Windows {
		if days <= 0 {
			return fmt.Errorf("SCRAPE_WINDOWS entries must be positive, got %d", days)
		}
		if days < prev {
			return fmt.Errorf("SCRAPE_WINDOWS must be non-decreasing, got %v", s.Windows)
		}
		prev = days
	}
	if s.Timeout <= 0 {
		return fmt.Errorf("SCRAPE_TIMEOUT must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getIntList(key, fallback string) []int {
	raw := getEnv(key, fallback)
	parts := splitAndTrim(raw)
	out := make([]int, 0, len(parts))
	for _, part := range parts {
		parsed, err := strconv.Atoi(part)
		if err != nil {
			return nil
		}
		out = append(out, parsed)
	}
	return out
}

func getDuration(key, fallback string) time.Duration {
	raw := getEnv(key, fallback)
	d, err := time.ParseDuration(raw)
	if err != nil {
		fd, ferr := time.ParseDuration(fallback)
		if ferr != nil {
			panic(fmt.Sprintf("invalid fallback duration %q: %v", fallback, ferr))
		}
		return fd
	}
	return d
}

func splitAndTrim(raw string) []string {
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
