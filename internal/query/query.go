// Package query builds Google News search URLs with an explicit date range.
package query

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const baseURL = "https://www.google.com/search"

// DateFormat is the layout Google expects inside the cdr (custom date range)
// filter: month/day/year.
const DateFormat = "01/02/2006"

// Descriptor is an immutable search request: one descriptor per attempt.
type Descriptor struct {
	Term        string
	Start       time.Time
	End         time.Time
	ResultCount int
	Locale      string
	Language    string
}

// New validates the inputs and returns a Descriptor. Invalid input is the only
// fatal error in the whole extraction path, so it is reported eagerly here and
// never retried.
func New(term string, start, end time.Time, resultCount int, locale, language string) (Descriptor, error) {
	if strings.TrimSpace(term) == "" {
		return Descriptor{}, fmt.Errorf("build query: term must not be empty")
	}
	if resultCount <= 0 {
		return Descriptor{}, fmt.Errorf("build query: result count must be positive, got %d", resultCount)
	}
	if start.After(end) {
		return Descriptor{}, fmt.Errorf("build query: start date %s is after end date %s",
			start.Format(DateFormat), end.Format(DateFormat))
	}

	return Descriptor{
		Term:        term,
		Start:       start,
		End:         end,
		ResultCount: resultCount,
		Locale:      locale,
		Language:    language,
	}, nil
}

// URL renders the descriptor as a news-only search request. The output is
// deterministic: identical descriptors always yield identical URLs.
func (d Descriptor) URL() string {
	params := url.Values{}
	params.Set("q", d.Term)
	params.Set("gl", d.Locale)
	params.Set("hl", d.Language)
	params.Set("tbm", "nws")
	params.Set("num", strconv.Itoa(d.ResultCount))
	params.Set("tbs", FormatRange(d.Start, d.End))

	return baseURL + "?" + params.Encode()
}

// FormatRange encodes the custom date-range filter value.
func FormatRange(start, end time.Time) string {
	return fmt.Sprintf("cdr:1,cd_min:%s,cd_max:%s", start.Format(DateFormat), end.Format(DateFormat))
}
