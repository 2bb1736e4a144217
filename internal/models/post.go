// Package models defines data structures shared by the importer, fetcher and renderer.
package models

// ViewRecord holds the pageview data imported for a single published URL.
type ViewRecord struct {
	Title string `json:"title"`
	Views int    `json:"views"`
}

// Post represents one reportable published item: REST API metadata merged
// with an imported view count. Views is 0 when no record matched the URL.
type Post struct {
	Title           string `json:"title"`
	PublicationDate string `json:"publication_date"`
	Author          string `json:"author"`
	URL             string `json:"url"`
	Type            string `json:"type"`
	ID              int    `json:"id"`
	Views           int    `json:"views"`
}

// ImportStats counts CSV import outcomes.
type ImportStats struct {
	Processed int
	Skipped   int
}
