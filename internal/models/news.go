package models

import "time"

// NewsRecord is one normalized item extracted from a search results page.
// Every field except Link may legitimately be empty.
type NewsRecord struct {
	Link           string `json:"link"`
	Title          string `json:"title"`
	Snippet        string `json:"snippet"`
	PublishedLabel string `json:"date"`
	Source         string `json:"source"`
}

// ExtractionResult is the terminal output of one adaptive-range search:
// the records found plus the date range that actually produced them.
type ExtractionResult struct {
	Records []NewsRecord `json:"records"`
	Start   time.Time    `json:"start_date"`
	End     time.Time    `json:"end_date"`
}

// RawRecord is the wire format the scraper publishes to Kafka, one message
// per extracted record.
type RawRecord struct {
	Term           string    `json:"term"`
	Link           string    `json:"link"`
	Title          string    `json:"title"`
	Snippet        string    `json:"snippet"`
	PublishedLabel string    `json:"published_label"`
	Source         string    `json:"source"`
	FetchedAt      time.Time `json:"fetched_at"`
}

// NewsDocument represents the canonical structure stored in Elasticsearch.
type NewsDocument struct {
	ID             string    `json:"id"`
	Term           string    `json:"term"`
	Link           string    `json:"link"`
	Title          string    `json:"title"`
	Snippet        string    `json:"snippet"`
	PublishedLabel string    `json:"published_label"`
	Source         string    `json:"source"`
	Keywords       []string  `json:"keywords"`
	FetchedAt      time.Time `json:"fetched_at"`
}
