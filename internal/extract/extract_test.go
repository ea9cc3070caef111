package extract_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dafmontenegro/neural-trend-hub/internal/extract"
	"github.com/dafmontenegro/neural-trend-hub/internal/models"
)

type itemSpec struct {
	link    string
	title   string
	snippet string
	date    string
	source  string
}

// page renders a minimal results page with the markup shapes the extractor
// targets. Empty fields are omitted from the item entirely.
func page(items ...itemSpec) []byte {
	var b strings.Builder
	b.WriteString("<html><body><div id=\"search\">")
	for _, it := range items {
		b.WriteString(`<div class="SoaBEf">`)
		if it.link != "" {
			fmt.Fprintf(&b, `<a href="%s">`, it.link)
		}
		if it.title != "" {
			fmt.Fprintf(&b, `<div class="MBeuO">%s</div>`, it.title)
		}
		if it.snippet != "" {
			fmt.Fprintf(&b, `<div class="GI74Re">%s</div>`, it.snippet)
		}
		if it.date != "" {
			fmt.Fprintf(&b, `<span class="LfVVr">%s</span>`, it.date)
		}
		if it.source != "" {
			fmt.Fprintf(&b, `<div class="NUnG9d"><span>%s</span></div>`, it.source)
		}
		if it.link != "" {
			b.WriteString("</a>")
		}
		b.WriteString("</div>")
	}
	b.WriteString("</div></body></html>")
	return []byte(b.String())
}

func TestNewsExtractsAllFields(t *testing.T) {
	body := page(itemSpec{
		link:    "https://example.com/a",
		title:   "Petro anuncia reforma",
		snippet: "El presidente presentó...",
		date:    "hace 2 horas",
		source:  "El Tiempo",
	})

	records, stats, err := extract.News(body)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, 1, stats.Containers)
	require.Zero(t, stats.DroppedLinks)

	want := models.NewsRecord{
		Link:           "https://example.com/a",
		Title:          "Petro anuncia reforma",
		Snippet:        "El presidente presentó...",
		PublishedLabel: "hace 2 horas",
		Source:         "El Tiempo",
	}
	require.Equal(t, want, records[0])
}

func TestNewsMissingSnippetDegradesToEmpty(t *testing.T) {
	body := page(itemSpec{
		link:   "https://example.com/a",
		title:  "Titular",
		date:   "ayer",
		source: "Semana",
	})

	records, _, err := extract.News(body)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "", records[0].Snippet)
	require.Equal(t, "Titular", records[0].Title)
	require.Equal(t, "ayer", records[0].PublishedLabel)
	require.Equal(t, "Semana", records[0].Source)
}

func TestNewsMissingLinkDropsOnlyThatItem(t *testing.T) {
	body := page(
		itemSpec{title: "Sin enlace", snippet: "no link here"},
		itemSpec{link: "https://example.com/b", title: "Con enlace"},
	)

	records, stats, err := extract.News(body)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "https://example.com/b", records[0].Link)
	require.Equal(t, 2, stats.Containers)
	require.Equal(t, 1, stats.DroppedLinks)
}

func TestNewsEveryRecordHasLink(t *testing.T) {
	body := page(
		itemSpec{link: "https://example.com/a", title: "a"},
		itemSpec{title: "dropped"},
		itemSpec{link: "https://example.com/b"},
		itemSpec{snippet: "also dropped"},
	)

	records, stats, err := extract.News(body)
	require.NoError(t, err)
	require.LessOrEqual(t, len(records), stats.Containers)
	for _, rec := range records {
		require.NotEmpty(t, rec.Link)
	}
}

func TestNewsEmptyAndNonMarkupBodies(t *testing.T) {
	tests := []struct {
		name string
		body []byte
	}{
		{name: "empty", body: nil},
		{name: "no containers", body: []byte("<html><body><p>nothing here</p></body></html>")},
		{name: "plain text", body: []byte("HTTP 200 but definitely not a search page")},
		{name: "json body", body: []byte(`{"error":"unsupported client"}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, stats, err := extract.News(tt.body)
			require.NoError(t, err)
			require.Empty(t, records)
			require.Zero(t, stats.Containers)
		})
	}
}

func TestNewsIdempotent(t *testing.T) {
	body := page(
		itemSpec{link: "https://example.com/a", title: "uno", snippet: "s1", date: "hoy", source: "X"},
		itemSpec{link: "https://example.com/b", title: "dos"},
	)

	first, _, err := extract.News(body)
	require.NoError(t, err)
	second, _, err := extract.News(body)
	require.NoError(t, err)
	require.Equal(t, first, second)
}
