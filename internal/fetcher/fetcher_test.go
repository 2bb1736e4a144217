package fetcher

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"devblognews/internal/config"
	"devblognews/internal/logger"
	"devblognews/internal/models"
	"devblognews/internal/normalizer"
)

func newTestFetcher(baseURL string, postTypes []string, perPage int) *Fetcher {
	cfg := &config.APIConfig{
		BaseURL:    baseURL,
		PostTypes:  postTypes,
		PerPage:    perPage,
		TimeoutSec: 5,
	}

	return NewFetcher(cfg, logger.NewLogger("error"))
}

// postJSON builds one API response object in the WordPress REST shape.
func postJSON(id int, title, date, link, author string) map[string]any {
	post := map[string]any{
		"id":    id,
		"date":  date,
		"link":  link,
		"title": map[string]any{"rendered": title},
	}

	if author != "" {
		post["_embedded"] = map[string]any{
			"author": []map[string]any{{"name": author}},
		}
	}

	return post
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()

	// Runs inside handler goroutines, so Errorf rather than Fatalf.
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("Failed to encode response: %v", err)
	}
}

func TestFetchAll_JoinsViewCounts(t *testing.T) {
	var server *httptest.Server

	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/wp-json/wp/v2/posts" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}

		if r.URL.Query().Get("_embed") != "true" {
			t.Errorf("Expected _embed=true, got %q", r.URL.Query().Get("_embed"))
		}

		writeJSON(t, w, []map[string]any{
			postJSON(77, "Bridging the Gap", "2024-12-03T09:00:00",
				server.URL+"/news/2024/12/03/bridging-the-gap-hybrid-themes/", "Jane Doe"),
		})
	}))
	defer server.Close()

	viewsData := map[string]models.ViewRecord{
		normalizer.NormalizeURL(server.URL + "/news/2024/12/bridging-the-gap-hybrid-themes"): {
			Title: "Bridging the Gap",
			Views: 1975,
		},
	}

	f := newTestFetcher(server.URL, []string{"posts"}, 100)

	posts := f.FetchAll(nil, viewsData)
	if len(posts) != 1 {
		t.Fatalf("Expected 1 post, got %d", len(posts))
	}

	post := posts[0]
	if post.Views != 1975 {
		t.Errorf("Expected 1975 views from matched record, got %d", post.Views)
	}

	if post.ID != 77 {
		t.Errorf("Expected post ID 77, got %d", post.ID)
	}

	if post.PublicationDate != "2024-12-03" {
		t.Errorf("Expected publication date 2024-12-03, got %s", post.PublicationDate)
	}

	if post.Author != "Jane Doe" {
		t.Errorf("Expected author 'Jane Doe', got '%s'", post.Author)
	}

	if post.Type != "posts" {
		t.Errorf("Expected type 'posts', got '%s'", post.Type)
	}
}

func TestFetchAll_UnmatchedPostDefaultsToZeroViews(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, []map[string]any{
			postJSON(1, "No Views Here", "2024-11-05T12:00:00", "https://x.com/2024/11/05/no-views/", "Jane Doe"),
		})
	}))
	defer server.Close()

	f := newTestFetcher(server.URL, []string{"posts"}, 100)

	posts := f.FetchAll(nil, map[string]models.ViewRecord{})
	if len(posts) != 1 {
		t.Fatalf("Expected 1 post, got %d", len(posts))
	}

	if posts[0].Views != 0 {
		t.Errorf("Expected 0 views for unmatched post, got %d", posts[0].Views)
	}
}

func TestFetchAll_MissingAuthorDefaultsToUnknown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, []map[string]any{
			postJSON(2, "Anonymous Post", "2024-11-06T12:00:00", "https://x.com/2024/11/06/anon/", ""),
		})
	}))
	defer server.Close()

	f := newTestFetcher(server.URL, []string{"posts"}, 100)

	posts := f.FetchAll(nil, nil)
	if len(posts) != 1 {
		t.Fatalf("Expected 1 post, got %d", len(posts))
	}

	if posts[0].Author != "Unknown" {
		t.Errorf("Expected author 'Unknown', got '%s'", posts[0].Author)
	}
}

func TestFetchAll_PaginatesUntilShortPage(t *testing.T) {
	var requestedPages []string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		requestedPages = append(requestedPages, page)

		switch page {
		case "1":
			writeJSON(t, w, []map[string]any{
				postJSON(1, "One", "2024-10-01T00:00:00", "https://x.com/2024/10/01/one/", "A"),
				postJSON(2, "Two", "2024-10-02T00:00:00", "https://x.com/2024/10/02/two/", "A"),
			})
		case "2":
			writeJSON(t, w, []map[string]any{
				postJSON(3, "Three", "2024-10-03T00:00:00", "https://x.com/2024/10/03/three/", "A"),
			})
		default:
			t.Errorf("Unexpected page requested: %s", page)
		}
	}))
	defer server.Close()

	f := newTestFetcher(server.URL, []string{"posts"}, 2)

	posts := f.FetchAll(nil, nil)
	if len(posts) != 3 {
		t.Fatalf("Expected 3 posts across pages, got %d", len(posts))
	}

	if len(requestedPages) != 2 {
		t.Errorf("Expected 2 page requests, got %v", requestedPages)
	}
}

func TestFetchAll_StopsOnInvalidPageNumberResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "1":
			writeJSON(t, w, []map[string]any{
				postJSON(1, "One", "2024-10-01T00:00:00", "https://x.com/2024/10/01/one/", "A"),
				postJSON(2, "Two", "2024-10-02T00:00:00", "https://x.com/2024/10/02/two/", "A"),
			})
		default:
			// WordPress answers a page past the collection end with this code.
			w.WriteHeader(http.StatusBadRequest)
			writeJSON(t, w, map[string]any{"code": "rest_post_invalid_page_number"})
		}
	}))
	defer server.Close()

	f := newTestFetcher(server.URL, []string{"posts"}, 2)

	posts := f.FetchAll(nil, nil)
	if len(posts) != 2 {
		t.Fatalf("Expected 2 posts, got %d", len(posts))
	}
}

func TestFetchAll_FailingTypeIsIsolated(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/wp-json/wp/v2/snippets" {
			w.WriteHeader(http.StatusInternalServerError)

			return
		}

		writeJSON(t, w, []map[string]any{
			postJSON(9, "Still Here", "2024-10-04T00:00:00", "https://x.com/2024/10/04/still-here/", "A"),
		})
	}))
	defer server.Close()

	f := newTestFetcher(server.URL, []string{"snippets", "posts"}, 100)

	posts := f.FetchAll(nil, nil)
	if len(posts) != 1 {
		t.Fatalf("Expected failing type to yield zero entries without aborting, got %d posts", len(posts))
	}

	if posts[0].Title != "Still Here" {
		t.Errorf("Expected surviving post from healthy type, got %+v", posts[0])
	}
}

func TestFetchAll_ForwardsAfterFilter(t *testing.T) {
	var gotAfter string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAfter = r.URL.Query().Get("after")

		writeJSON(t, w, []map[string]any{})
	}))
	defer server.Close()

	f := newTestFetcher(server.URL, []string{"posts"}, 100)

	after := time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)

	f.FetchAll(&after, nil)

	if gotAfter != "2024-10-01T00:00:00" {
		t.Errorf("Expected after=2024-10-01T00:00:00, got %q", gotAfter)
	}
}

func TestPublicationDate(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"2024-12-03T09:15:00", "2024-12-03"},
		{"2024-12-03T09:15:00Z", "2024-12-03"},
		{"2024-12-03T09:15:00+02:00", "2024-12-03"},
		{"2024-12-03", "2024-12-03"},
		{"bad", "bad"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := publicationDate(tt.input); got != tt.expected {
				t.Errorf("publicationDate(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

