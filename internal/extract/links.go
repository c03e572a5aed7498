package extract

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lazypower/synapse/internal/graph"
)

// Links normalizes a saved-links file (JSON array/object or CSV with a
// header row) into records. Entries without a recognizable URL are skipped.
func Links(filename string, data []byte) ([]graph.Record, error) {
	if strings.HasSuffix(strings.ToLower(filename), ".csv") {
		return linksFromCSV(data)
	}
	return linksFromJSON(data)
}

func linksFromJSON(data []byte) ([]graph.Record, error) {
	var entries []map[string]any
	if err := json.Unmarshal(data, &entries); err != nil {
		// A single object is also accepted.
		var single map[string]any
		if err2 := json.Unmarshal(data, &single); err2 != nil {
			return nil, fmt.Errorf("parse links json: %w", err)
		}
		entries = []map[string]any{single}
	}

	var records []graph.Record
	for _, entry := range entries {
		if rec, ok := linkRecord(entry); ok {
			records = append(records, rec)
		}
	}
	return records, nil
}

func linksFromCSV(data []byte) ([]graph.Record, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse links csv: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil
	}

	header := rows[0]
	var records []graph.Record
	for _, row := range rows[1:] {
		entry := make(map[string]any, len(header))
		for i, col := range header {
			if i < len(row) {
				entry[col] = row[i]
			}
		}
		if rec, ok := linkRecord(entry); ok {
			records = append(records, rec)
		}
	}
	return records, nil
}

// linkRecord builds a record from one link entry, tolerating the field-name
// variation found in exported bookmark files.
func linkRecord(entry map[string]any) (graph.Record, bool) {
	url := firstString(entry, "url", "link", "href", "URL")
	if url == "" {
		return graph.Record{}, false
	}

	title := firstString(entry, "title", "name")
	description := firstString(entry, "description", "notes", "content")
	if title == "" {
		title = description
	}
	if title == "" {
		segments := strings.Split(strings.TrimRight(url, "/"), "/")
		title = segments[len(segments)-1]
	}
	if title == "" {
		title = url
	}

	content := strings.TrimSpace(title + ". " + description)
	tags := entryTags(entry)

	return graph.Record{
		SourceKind:      graph.KindLink,
		SourceReference: url,
		Title:           title,
		Content:         content,
		Keywords:        Keywords(title + " " + description),
		Tags:            tags,
	}, true
}

func firstString(entry map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := entry[key].(string); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// entryTags reads tags as either a list or a comma-separated string.
func entryTags(entry map[string]any) []string {
	var tags []string
	switch v := entry["tags"].(type) {
	case string:
		for _, tag := range strings.Split(v, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				tags = append(tags, tag)
			}
		}
	case []any:
		for _, item := range v {
			if tag, ok := item.(string); ok && strings.TrimSpace(tag) != "" {
				tags = append(tags, strings.TrimSpace(tag))
			}
		}
	}
	return tags
}
