// Package scrape drives adaptive-range news extraction: it widens the search
// window until enough records are found or the window sequence is exhausted.
package scrape

import (
	"context"
	"fmt"
	"time"

	"github.com/dafmontenegro/neural-trend-hub/internal/extract"
	"github.com/dafmontenegro/neural-trend-hub/internal/models"
	"github.com/dafmontenegro/neural-trend-hub/internal/query"
)

// DefaultWindows is the fallback widening sequence, in days back from today.
var DefaultWindows = []int{1, 7, 30, 90}

// Fetcher retrieves the raw body behind a search URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Params hold everything one adaptive search needs; there is no implicit
// global configuration.
type Params struct {
	Term        string
	Locale      string
	Language    string
	MinResults  int
	ResultCount int
	Windows     []int
}

func (p Params) validate() error {
	if len(p.Windows) == 0 {
		return fmt.Errorf("scrape: at least one candidate window is required")
	}
	prev := 0
	for _, days := range p.Windows {
		if days <= 0 {
			return fmt.Errorf("scrape: candidate window must be positive, got %d", days)
		}
		if days < prev {
			return fmt.Errorf("scrape: candidate windows must be non-decreasing, got %v", p.Windows)
		}
		prev = days
	}
	if p.MinResults < 0 {
		return fmt.Errorf("scrape: min results cannot be negative")
	}
	return nil
}

// Scraper orchestrates query building, fetching and extraction across the
// candidate windows. It holds no state between Search calls.
type Scraper struct {
	fetcher Fetcher
	obs     Observer
	now     func() time.Time
}

// Option customizes a Scraper.
type Option func(*Scraper)

// WithObserver installs a diagnostic event sink.
func WithObserver(obs Observer) Option {
	return func(s *Scraper) {
		if obs != nil {
			s.obs = obs
		}
	}
}

// WithClock overrides the "today" source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Scraper) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a Scraper around the given fetcher.
func New(fetcher Fetcher, opts ...Option) *Scraper {
	s := &Scraper{
		fetcher: fetcher,
		obs:     NopObserver{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search tries each candidate window in order and returns the records of the
// first window that meets the threshold, or whatever the widest window yields.
// Fetch and parse failures are absorbed as "zero results, try wider"; the only
// error path is malformed caller input. The returned range is always the one
// actually used, with its end date equal to today at the winning attempt.
func (s *Scraper) Search(ctx context.Context, p Params) (*models.ExtractionResult, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	for i, days := range p.Windows {
		last := i == len(p.Windows)-1

		end := dateOf(s.now())
		start := end.AddDate(0, 0, -days)

		desc, err := query.New(p.Term, start, end, p.ResultCount, p.Locale, p.Language)
		if err != nil {
			return nil, err
		}

		s.obs.AttemptStarted(p.Term, days, desc.URL())

		records, err := s.attempt(ctx, desc)
		if err != nil {
			s.obs.AttemptFailed(p.Term, days, err)
			if last {
				s.obs.Exhausted(p.Term, days, 0)
				return &models.ExtractionResult{Records: nil, Start: start, End: end}, nil
			}
			continue
		}

		if len(records) >= p.MinResults {
			s.obs.ThresholdMet(p.Term, days, len(records))
			return &models.ExtractionResult{Records: records, Start: start, End: end}, nil
		}

		if last {
			s.obs.Exhausted(p.Term, days, len(records))
			return &models.ExtractionResult{Records: records, Start: start, End: end}, nil
		}
	}

	// Unreachable: validate guarantees at least one window and the loop
	// always returns on the last one.
	return nil, fmt.Errorf("scrape: no candidate window attempted")
}

func (s *Scraper) attempt(ctx context.Context, desc query.Descriptor) ([]models.NewsRecord, error) {
	body, err := s.fetcher.Fetch(ctx, desc.URL())
	if err != nil {
		return nil, err
	}

	records, _, err := extract.News(body)
	if err != nil {
		return nil, err
	}
	return records, nil
}

// dateOf truncates a moment to its calendar date.
func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
