// Package report renders joined post entries into an aligned Markdown table.
package report

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"devblognews/internal/models"

	"github.com/mattn/go-runewidth"
)

var header = []string{"Date", "Title", "Author", "Type", "Views", "Post ID"}

var filenameStripper = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// Render produces the Markdown report for the given posts, sorted ascending
// by publication date. ISO dates sort correctly as strings; the sort is
// stable so same-day posts keep their fetched order. The label names the
// date filter in the report header ("all" when unfiltered).
//
// The caller is responsible for skipping the file write when posts is empty.
func Render(posts []models.Post, label string) string {
	sorted := make([]models.Post, len(posts))
	copy(sorted, posts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PublicationDate < sorted[j].PublicationDate
	})

	rows := [][]string{header}

	for _, post := range sorted {
		title := fmt.Sprintf("[%s](%s)", escapePipes(post.Title), post.URL)
		rows = append(rows, []string{
			post.PublicationDate,
			title,
			post.Author,
			post.Type,
			strconv.Itoa(post.Views),
			strconv.Itoa(post.ID),
		})
	}

	var sb strings.Builder

	sb.WriteString("# Dev Blog News\n")
	sb.WriteString(fmt.Sprintf("## Posts Published After %s\n\n", label))
	writeTable(&sb, rows)

	return sb.String()
}

// writeTable emits a header row, separator and body rows with every cell
// padded to the column's display width.
func writeTable(sb *strings.Builder, rows [][]string) {
	colWidths := make([]int, len(header))

	for _, row := range rows {
		for i, cell := range row {
			if width := runewidth.StringWidth(cell); width > colWidths[i] {
				colWidths[i] = width
			}
		}
	}

	// Separator needs at least "---".
	for i := range colWidths {
		if colWidths[i] < 3 {
			colWidths[i] = 3
		}
	}

	writeRow := func(cells []string) {
		sb.WriteString("|")

		for i, cell := range cells {
			sb.WriteString(" ")
			sb.WriteString(cell)

			if padding := colWidths[i] - runewidth.StringWidth(cell); padding > 0 {
				sb.WriteString(strings.Repeat(" ", padding))
			}

			sb.WriteString(" |")
		}

		sb.WriteString("\n")
	}

	writeRow(rows[0])

	sb.WriteString("|")

	for _, width := range colWidths {
		sb.WriteString(" ")
		sb.WriteString(strings.Repeat("-", width))
		sb.WriteString(" |")
	}

	sb.WriteString("\n")

	for _, row := range rows[1:] {
		writeRow(row)
	}
}

// escapePipes replaces literal pipes with their HTML entity so titles cannot
// break table column alignment.
func escapePipes(s string) string {
	return strings.ReplaceAll(s, "|", "&#124;")
}

// Filename builds the sanitized report file name for a date label.
func Filename(prefix, label string) string {
	return SanitizeFilename(prefix+"-"+label) + ".md"
}

// SanitizeFilename keeps alphanumerics, hyphens and underscores and drops
// every other character.
func SanitizeFilename(s string) string {
	return filenameStripper.ReplaceAllString(s, "")
}
