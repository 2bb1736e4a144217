// Package views imports pageview counts from an analytics CSV export.
package views

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"devblognews/internal/logger"
	"devblognews/internal/models"
	"devblognews/internal/normalizer"
)

// Row parsing errors.
var (
	ErrUnterminatedTitle = errors.New("malformed CSV line: missing closing quote for title")
	ErrMissingColumns    = errors.New("malformed CSV line: expected title, views and url columns")
)

// Importer parses an analytics CSV export into a view-count map keyed by
// normalized URL.
type Importer struct {
	log *logger.Logger
}

// NewImporter creates a new importer instance.
func NewImporter(log *logger.Logger) *Importer {
	return &Importer{log: log}
}

// ImportFile reads and imports the CSV export at the given path.
func (im *Importer) ImportFile(path string) (map[string]models.ViewRecord, models.ImportStats, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, models.ImportStats{}, fmt.Errorf("failed to read views CSV %s: %w", path, err)
	}

	records, stats := im.Import(string(content))

	return records, stats, nil
}

// Import parses raw CSV content with three positional columns
// (title, views, url) and no header row. A quoted title may contain commas.
// Rows with a malformed layout or a non-numeric views column are skipped and
// counted; duplicate URLs overwrite earlier rows (last occurrence wins).
//
// Keys are normalized URLs, so the fetcher's view lookup is a plain map read.
// Two distinct source URLs collapsing onto one normalized key is reported as
// a warning before the overwrite.
func (im *Importer) Import(content string) (map[string]models.ViewRecord, models.ImportStats) {
	records := make(map[string]models.ViewRecord)
	sourceURLs := make(map[string]string)

	var stats models.ImportStats

	for _, line := range strings.Split(strings.TrimSpace(content), "\n") {
		title, viewsField, url, err := splitRow(line)
		if err == nil {
			var views int

			views, err = strconv.Atoi(strings.TrimSpace(viewsField))
			if err == nil && views >= 0 {
				title = unquote(strings.TrimSpace(title))
				url = strings.TrimSuffix(unquote(strings.TrimSpace(url)), "/")

				key := normalizer.NormalizeURL(url)
				if prev, ok := sourceURLs[key]; ok && prev != url {
					im.log.Warn("distinct URLs normalize to the same key",
						"key", key, "previous", prev, "url", url)
				}

				sourceURLs[key] = url
				records[key] = models.ViewRecord{Title: title, Views: views}
				stats.Processed++

				continue
			}
		}

		stats.Skipped++
		im.log.Debug("skipped CSV row", "line", strings.TrimSpace(line))
	}

	im.log.Info("views import finished", "processed", stats.Processed, "skipped", stats.Skipped)

	return records, stats
}

// SaveJSON writes the imported view map as indented JSON for inspection and reuse.
func (im *Importer) SaveJSON(records map[string]models.ViewRecord, outputPath string) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal views data: %w", err)
	}

	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write views data: %w", err)
	}

	return nil
}

// splitRow splits one CSV line into its three positional columns. A title
// starting with a quote runs until the closing `",` so it may contain commas.
func splitRow(line string) (title, views, url string, err error) {
	if strings.HasPrefix(line, `"`) {
		titleEnd := strings.Index(line[1:], `",`)
		if titleEnd == -1 {
			return "", "", "", ErrUnterminatedTitle
		}

		title = line[1 : titleEnd+1]
		remainder := line[titleEnd+3:]

		views, url, ok := strings.Cut(remainder, ",")
		if !ok {
			return "", "", "", ErrMissingColumns
		}

		return title, views, url, nil
	}

	parts := strings.SplitN(line, ",", 3)
	if len(parts) != 3 {
		return "", "", "", ErrMissingColumns
	}

	return parts[0], parts[1], parts[2], nil
}

// unquote strips a single pair of surrounding quote characters.
func unquote(s string) string {
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		return s[1 : len(s)-1]
	}

	return s
}
