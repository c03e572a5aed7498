package extract

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/lazypower/synapse/internal/graph"
)

// ErrNoText is returned when a PDF yields no meaningful text (scanned images,
// encrypted content). The caller skips the file and reports it per-item.
var ErrNoText = errors.New("no extractable text")

var pdfArtifacts = regexp.MustCompile(`[^\w\s.,!?;:()\-'"]+`)

// PDF normalizes one PDF document into a record.
func PDF(filename string, data []byte) (graph.Record, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return graph.Record{}, fmt.Errorf("open pdf %s: %w", filename, err)
	}

	var buf bytes.Buffer
	for pageIndex := 1; pageIndex <= reader.NumPage(); pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single broken page shouldn't lose the document.
			continue
		}
		buf.WriteString(text)
		buf.WriteString("\n")
	}

	text := cleanPDFText(buf.String())
	if len(text) < 10 {
		return graph.Record{}, fmt.Errorf("%s: %w", filename, ErrNoText)
	}

	title := pdfTitle(buf.String())
	if title == "" {
		title = strings.TrimSuffix(filename, ".pdf")
	}

	return graph.Record{
		SourceKind:      graph.KindPDF,
		SourceReference: filename,
		Title:           title,
		Content:         text,
		Keywords:        Keywords(text),
	}, nil
}

// cleanPDFText collapses whitespace and drops extraction artifacts.
func cleanPDFText(text string) string {
	text = pdfArtifacts.ReplaceAllString(text, " ")
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))
}

// pdfTitle guesses a title from the first non-empty line, if it looks like
// one rather than body text.
func pdfTitle(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if len(line) >= 3 && len(line) <= 100 {
			return line
		}
		return ""
	}
	return ""
}
