// Package extract normalizes raw sources — markdown notes, PDF documents,
// and saved-link lists — into the records the graph builder ingests. It is
// deliberately separate from the core: the builder never sees file formats.
package extract

import (
	"regexp"
	"strings"

	"github.com/lazypower/synapse/internal/graph"
)

var (
	atxHeading       = regexp.MustCompile(`(?m)^#\s+(.+)$`)
	underlineHeading = regexp.MustCompile(`(?m)^(.+)\n[=\-]+\s*$`)
	markdownSyntax   = regexp.MustCompile("[#*`_\\[\\]()>]+")
	whitespaceRun    = regexp.MustCompile(`\s+`)
)

// Markdown normalizes one markdown note into a record. The title comes from
// the first heading, falling back to the filename.
func Markdown(filename, content string) graph.Record {
	title := markdownTitle(content)
	if title == "" {
		title = filename
	}
	plain := markdownToText(content)
	return graph.Record{
		SourceKind:      graph.KindNote,
		SourceReference: filename,
		Title:           title,
		Content:         plain,
		Keywords:        Keywords(plain),
	}
}

// markdownTitle returns the first ATX (# Title) or setext (underlined)
// heading, or "" if the document has none.
func markdownTitle(content string) string {
	if m := atxHeading.FindStringSubmatch(content); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := underlineHeading.FindStringSubmatch(content); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// markdownToText strips markdown syntax down to plain text with collapsed
// whitespace.
func markdownToText(content string) string {
	text := markdownSyntax.ReplaceAllString(content, "")
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))
}
