// Package fetcher retrieves published-content metadata from a WordPress REST
// API and joins each entry with its imported view count.
package fetcher

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"devblognews/internal/config"
	"devblognews/internal/logger"
	"devblognews/internal/models"
	"devblognews/internal/normalizer"
)

// ErrUnexpectedStatusCode indicates an HTTP response with unexpected status.
var ErrUnexpectedStatusCode = errors.New("unexpected status code")

// errPastLastPage marks the API response for a page beyond the collection.
var errPastLastPage = errors.New("requested page is past the last page")

// unknownAuthor is used when a post carries no embedded author record.
const unknownAuthor = "Unknown"

// apiPost mirrors the fields consumed from a WordPress REST API post object.
type apiPost struct {
	Date  string `json:"date"`
	Link  string `json:"link"`
	Title struct {
		Rendered string `json:"rendered"`
	} `json:"title"`
	Embedded struct {
		Author []struct {
			Name string `json:"name"`
		} `json:"author"`
	} `json:"_embedded"`
	ID int `json:"id"`
}

// Fetcher issues paginated REST API requests for each configured post type.
type Fetcher struct {
	client *http.Client
	cfg    *config.APIConfig
	log    *logger.Logger
}

// NewFetcher creates a fetcher whose HTTP client uses the configured
// per-request timeout.
func NewFetcher(cfg *config.APIConfig, log *logger.Logger) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: cfg.GetTimeout(),
		},
		cfg: cfg,
		log: log,
	}
}

// FetchAll retrieves every page of every configured post type and joins each
// entry with its view count from viewsData (keyed by normalized URL). When a
// post type fails to fetch it contributes zero entries; the error is logged
// and the remaining post types are still processed.
func (f *Fetcher) FetchAll(after *time.Time, viewsData map[string]models.ViewRecord) []models.Post {
	var all []models.Post

	for _, postType := range f.cfg.PostTypes {
		posts, err := f.fetchType(postType, after, viewsData)
		if err != nil {
			f.log.Error("failed to fetch post type", "type", postType, "error", err)

			continue
		}

		f.log.Debug("fetched post type", "type", postType, "posts", len(posts))

		all = append(all, posts...)
	}

	return all
}

// fetchType pages through one post type until a short or empty page signals
// the end of the collection.
func (f *Fetcher) fetchType(postType string, after *time.Time, viewsData map[string]models.ViewRecord) ([]models.Post, error) {
	var posts []models.Post

	for page := 1; ; page++ {
		items, err := f.fetchPage(postType, page, after)
		if errors.Is(err, errPastLastPage) {
			break
		}

		if err != nil {
			return nil, err
		}

		for _, item := range items {
			posts = append(posts, f.buildPost(item, postType, viewsData))
		}

		if len(items) < f.cfg.PerPage {
			break
		}
	}

	return posts, nil
}

// fetchPage requests one page of one post type with embedded author data.
func (f *Fetcher) fetchPage(postType string, page int, after *time.Time) ([]apiPost, error) {
	endpoint := fmt.Sprintf("%s/wp-json/wp/v2/%s", strings.TrimSuffix(f.cfg.BaseURL, "/"), postType)

	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("per_page", strconv.Itoa(f.cfg.PerPage))
	params.Set("_embed", "true")

	if after != nil {
		params.Set("after", after.Format("2006-01-02T15:04:05"))
	}

	resp, err := f.client.Get(endpoint + "?" + params.Encode())
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	// WordPress rejects a page number past the last page with a 400 carrying
	// a dedicated error code. That terminates pagination, it is not a failure.
	if resp.StatusCode == http.StatusBadRequest && isPastLastPage(body) {
		return nil, errPastLastPage
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatusCode, resp.StatusCode)
	}

	var items []apiPost
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return items, nil
}

func isPastLastPage(body []byte) bool {
	var apiErr struct {
		Code string `json:"code"`
	}

	if err := json.Unmarshal(body, &apiErr); err != nil {
		return false
	}

	return apiErr.Code == "rest_post_invalid_page_number"
}

// buildPost merges one API item with at most one matched view record.
func (f *Fetcher) buildPost(item apiPost, postType string, viewsData map[string]models.ViewRecord) models.Post {
	author := unknownAuthor
	if len(item.Embedded.Author) > 0 && item.Embedded.Author[0].Name != "" {
		author = item.Embedded.Author[0].Name
	}

	views := 0
	if record, ok := viewsData[normalizer.NormalizeURL(item.Link)]; ok {
		views = record.Views
	}

	return models.Post{
		ID:              item.ID,
		Title:           item.Title.Rendered,
		PublicationDate: publicationDate(item.Date),
		Author:          author,
		URL:             item.Link,
		Type:            postType,
		Views:           views,
	}
}

// publicationDate reduces a WordPress ISO timestamp to its calendar date.
func publicationDate(raw string) string {
	trimmed := strings.TrimSuffix(raw, "Z")
	if t, err := time.Parse("2006-01-02T15:04:05", trimmed); err == nil {
		return t.Format("2006-01-02")
	}

	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.Format("2006-01-02")
	}

	if len(raw) >= 10 {
		return raw[:10]
	}

	return raw
}
