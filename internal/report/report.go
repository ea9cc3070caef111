// Package report turns an extraction result into a trend-report prompt and a
// persisted JSON snapshot. The language model that consumes the prompt is an
// external collaborator; this package only assembles its input.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/dafmontenegro/neural-trend-hub/internal/models"
	"github.com/dafmontenegro/neural-trend-hub/internal/processing"
)

const fileDateFormat = "2006_01_02"

// topArticles is how many records the prompt highlights.
const topArticles = 3

// Options describe the search whose results are being reported on.
type Options struct {
	Term     string
	Locale   string
	Language string
}

// Prompt assembles the full trend-report prompt. The report is addressed to
// the entity behind the search term and covers the date range actually used.
func Prompt(result models.ExtractionResult, opts Options) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Genera un informe de tendencia profesional en %s dirigido a %s.\n\n", opts.Language, opts.Term)
	fmt.Fprintf(&b, "Título del Informe: %s\n", opts.Term)
	fmt.Fprintf(&b, "Rango de Fechas: %s a %s\n",
		result.Start.Format("2006-01-02"), result.End.Format("2006-01-02"))
	fmt.Fprintf(&b, "Ubicación: %s\n", opts.Locale)
	fmt.Fprintf(&b, "Idioma de las Noticias: %s\n", opts.Language)
	fmt.Fprintf(&b, "Total de Noticias Analizadas: %d\n\n", len(result.Records))

	b.WriteString("Top 3 Noticias Más Relevantes:\n")
	top := result.Records
	if len(top) > topArticles {
		top = top[:topArticles]
	}
	for i, rec := range top {
		fmt.Fprintf(&b, "%d. Título: %s\n", i+1, rec.Title)
		fmt.Fprintf(&b, "   Fuente: %s\n", rec.Source)
		fmt.Fprintf(&b, "   Extracto: %s\n\n", rec.Snippet)
	}

	b.WriteString("Analiza las noticias anteriores y genera un informe detallado que resuma lo que se ha dicho sobre ti durante el período indicado. ")
	b.WriteString("El informe debe ser preciso, profesional y contener los siguientes detalles:\n")
	b.WriteString(" - Un resumen de las tendencias y opiniones predominantes.\n")
	b.WriteString(" - Las implicaciones potenciales de las noticias para tu imagen y acciones futuras.\n")
	b.WriteString(" - Cualquier otro detalle relevante basado en el análisis de las noticias.\n\n")
	b.WriteString("El informe se debe escribir de manera clara y dirigida a ti, explicando en detalle el análisis realizado con la información recopilada.")

	return b.String()
}

// Filename names the JSON snapshot after the term and the range used.
func Filename(term string, result models.ExtractionResult) string {
	return fmt.Sprintf("%s_%s_%s.json",
		processing.Slug(term),
		result.Start.Format(fileDateFormat),
		result.End.Format(fileDateFormat))
}

// PromptFilename names the text file the assembled prompt is written to.
func PromptFilename(term string, result models.ExtractionResult) string {
	return fmt.Sprintf("%s_trend_report_%s_%s.txt",
		processing.Slug(term),
		result.Start.Format(fileDateFormat),
		result.End.Format(fileDateFormat))
}

// WriteJSON persists the record sequence as indented UTF-8 JSON.
func WriteJSON(path string, records []models.NewsRecord) error {
	if records == nil {
		records = []models.NewsRecord{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal records: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	return nil
}
