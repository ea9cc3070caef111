package scrape_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dafmontenegro/neural-trend-hub/internal/scrape"
)

var today = time.Date(2025, 3, 15, 10, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return today }

func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// resultsPage builds a body containing n extractable news items.
func resultsPage(n int) []byte {
	var b strings.Builder
	b.WriteString("<html><body>")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b,
			`<div class="SoaBEf"><a href="https://example.com/%d"><div class="MBeuO">t%d</div></a></div>`,
			i, i)
	}
	b.WriteString("</body></html>")
	return []byte(b.String())
}

// scriptedFetcher returns one canned response per call, in order.
type scriptedFetcher struct {
	bodies [][]byte
	errs   []error
	urls   []string
}

func (f *scriptedFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	i := len(f.urls)
	f.urls = append(f.urls, url)
	if i >= len(f.bodies) {
		return nil, fmt.Errorf("unexpected fetch #%d", i)
	}
	return f.bodies[i], f.errs[i]
}

type recordingObserver struct {
	events []string
}

func (o *recordingObserver) AttemptStarted(_ string, days int, _ string) {
	o.events = append(o.events, fmt.Sprintf("started:%d", days))
}

func (o *recordingObserver) AttemptFailed(_ string, days int, _ error) {
	o.events = append(o.events, fmt.Sprintf("failed:%d", days))
}

func (o *recordingObserver) ThresholdMet(_ string, days, records int) {
	o.events = append(o.events, fmt.Sprintf("met:%d:%d", days, records))
}

func (o *recordingObserver) Exhausted(_ string, days, records int) {
	o.events = append(o.events, fmt.Sprintf("exhausted:%d:%d", days, records))
}

func params(windows ...int) scrape.Params {
	return scrape.Params{
		Term:        "Gustavo Petro",
		Locale:      "co",
		Language:    "es",
		MinResults:  10,
		ResultCount: 100,
		Windows:     windows,
	}
}

func TestSearchWidensUntilThresholdMet(t *testing.T) {
	// Scenario: first window yields 3 records, second yields 12.
	fetcher := &scriptedFetcher{
		bodies: [][]byte{resultsPage(3), resultsPage(12)},
		errs:   []error{nil, nil},
	}
	obs := &recordingObserver{}
	s := scrape.New(fetcher, scrape.WithClock(fixedClock), scrape.WithObserver(obs))

	result, err := s.Search(context.Background(), params(1, 7, 30, 90))
	require.NoError(t, err)
	require.Len(t, result.Records, 12)

	// The returned range belongs to the 7-day attempt, not the 1-day one.
	require.True(t, result.End.Equal(day(today)))
	require.True(t, result.Start.Equal(day(today).AddDate(0, 0, -7)))

	require.Len(t, fetcher.urls, 2)
	require.Equal(t, []string{"started:1", "started:7", "met:7:12"}, obs.events)
}

func TestSearchFirstWindowSufficient(t *testing.T) {
	fetcher := &scriptedFetcher{
		bodies: [][]byte{resultsPage(10)},
		errs:   []error{nil},
	}
	s := scrape.New(fetcher, scrape.WithClock(fixedClock))

	result, err := s.Search(context.Background(), params(1, 7, 30, 90))
	require.NoError(t, err)
	require.Len(t, result.Records, 10)
	require.True(t, result.Start.Equal(day(today).AddDate(0, 0, -1)))
	require.Len(t, fetcher.urls, 1)
}

func TestSearchExhaustionReturnsWidestWindow(t *testing.T) {
	// Scenario: every fetch fails; the result is empty but carries the
	// widest window's range, and no error crosses the boundary.
	boom := errors.New("connection refused")
	fetcher := &scriptedFetcher{
		bodies: [][]byte{nil, nil, nil, nil},
		errs:   []error{boom, boom, boom, boom},
	}
	obs := &recordingObserver{}
	s := scrape.New(fetcher, scrape.WithClock(fixedClock), scrape.WithObserver(obs))

	result, err := s.Search(context.Background(), params(1, 7, 30, 90))
	require.NoError(t, err)
	require.Empty(t, result.Records)
	require.True(t, result.End.Equal(day(today)))
	require.True(t, result.Start.Equal(day(today).AddDate(0, 0, -90)))
	require.Equal(t, "exhausted:90:0", obs.events[len(obs.events)-1])
}

func TestSearchLastWindowWinsBelowThreshold(t *testing.T) {
	fetcher := &scriptedFetcher{
		bodies: [][]byte{resultsPage(3), resultsPage(4)},
		errs:   []error{nil, nil},
	}
	obs := &recordingObserver{}
	s := scrape.New(fetcher, scrape.WithClock(fixedClock), scrape.WithObserver(obs))

	result, err := s.Search(context.Background(), params(1, 7))
	require.NoError(t, err)
	require.Len(t, result.Records, 4)
	require.True(t, result.Start.Equal(day(today).AddDate(0, 0, -7)))
	require.Equal(t, []string{"started:1", "started:7", "exhausted:7:4"}, obs.events)
}

func TestSearchRecoversFromFailedAttempt(t *testing.T) {
	fetcher := &scriptedFetcher{
		bodies: [][]byte{nil, resultsPage(15)},
		errs:   []error{errors.New("timeout"), nil},
	}
	obs := &recordingObserver{}
	s := scrape.New(fetcher, scrape.WithClock(fixedClock), scrape.WithObserver(obs))

	result, err := s.Search(context.Background(), params(1, 7, 30))
	require.NoError(t, err)
	require.Len(t, result.Records, 15)
	require.Equal(t, []string{"started:1", "failed:1", "started:7", "met:7:15"}, obs.events)
}

func TestSearchZeroThresholdAcceptsEmptyPage(t *testing.T) {
	fetcher := &scriptedFetcher{
		bodies: [][]byte{[]byte("<html><body>no results</body></html>")},
		errs:   []error{nil},
	}
	s := scrape.New(fetcher, scrape.WithClock(fixedClock))

	p := params(1, 7)
	p.MinResults = 0
	result, err := s.Search(context.Background(), p)
	require.NoError(t, err)
	require.Empty(t, result.Records)
	require.True(t, result.Start.Equal(day(today).AddDate(0, 0, -1)))
	require.Len(t, fetcher.urls, 1)
}

func TestSearchInvalidParams(t *testing.T) {
	s := scrape.New(&scriptedFetcher{}, scrape.WithClock(fixedClock))

	tests := []struct {
		name   string
		mutate func(*scrape.Params)
	}{
		{name: "no windows", mutate: func(p *scrape.Params) { p.Windows = nil }},
		{name: "zero window", mutate: func(p *scrape.Params) { p.Windows = []int{0, 7} }},
		{name: "negative window", mutate: func(p *scrape.Params) { p.Windows = []int{-1} }},
		{name: "decreasing windows", mutate: func(p *scrape.Params) { p.Windows = []int{30, 7} }},
		{name: "negative threshold", mutate: func(p *scrape.Params) { p.MinResults = -1 }},
		{name: "empty term", mutate: func(p *scrape.Params) { p.Term = " " }},
		{name: "zero result count", mutate: func(p *scrape.Params) { p.ResultCount = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := params(1, 7)
			tt.mutate(&p)
			_, err := s.Search(context.Background(), p)
			require.Error(t, err)
		})
	}
}

func TestSearchTerminatesOnSingleWindow(t *testing.T) {
	fetcher := &scriptedFetcher{
		bodies: [][]byte{resultsPage(1)},
		errs:   []error{nil},
	}
	s := scrape.New(fetcher, scrape.WithClock(fixedClock))

	result, err := s.Search(context.Background(), params(30))
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	require.True(t, result.End.Equal(day(today)))
	require.Len(t, fetcher.urls, 1)
}
