// Package extract parses news records out of a search results page.
package extract

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/dafmontenegro/neural-trend-hub/internal/models"
)

// Selectors for the news item container and its sub-fields. These track the
// markup Google currently serves for tbm=nws result pages.
const (
	containerSelector = "div.SoaBEf"
	titleSelector     = "div.MBeuO"
	snippetSelector   = ".GI74Re"
	dateSelector      = ".LfVVr"
	sourceSelector    = ".NUnG9d span"
)

// Stats counts per-item degradation during one extraction pass.
type Stats struct {
	Containers   int
	DroppedLinks int
	ParseErrors  int
}

// News extracts zero or more records from a document body. Missing sub-fields
// degrade to empty strings; an item without a link is dropped and counted.
// Bodies that are not markup simply yield no containers, never an error.
func News(body []byte) ([]models.NewsRecord, Stats, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, Stats{}, err
	}

	var (
		records []models.NewsRecord
		stats   Stats
	)

	doc.Find(containerSelector).Each(func(_ int, el *goquery.Selection) {
		stats.Containers++

		rec, ok := extractItem(el, &stats)
		if !ok {
			return
		}
		records = append(records, rec)
	})

	return records, stats, nil
}

// extractItem reads one container. A panic inside goquery traversal skips the
// item rather than aborting the batch.
func extractItem(el *goquery.Selection, stats *Stats) (rec models.NewsRecord, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			stats.ParseErrors++
			ok = false
		}
	}()

	link, exists := el.Find("a").First().Attr("href")
	link = strings.TrimSpace(link)
	if !exists || link == "" {
		stats.DroppedLinks++
		return models.NewsRecord{}, false
	}

	return models.NewsRecord{
		Link:           link,
		Title:          text(el, titleSelector),
		Snippet:        text(el, snippetSelector),
		PublishedLabel: text(el, dateSelector),
		Source:         text(el, sourceSelector),
	}, true
}

// text looks up the first match for selector and returns its trimmed text,
// or "" when the node is absent. Field lookups are independent: one missing
// sub-field never affects the others.
func text(el *goquery.Selection, selector string) string {
	node := el.Find(selector).First()
	if node.Length() == 0 {
		return ""
	}
	return strings.TrimSpace(node.Text())
}
