// Package normalizer canonicalizes published-content URLs so that the forms
// reported by the REST API and by the analytics export compare equal.
package normalizer

import "strings"

// NormalizeURL folds a URL's date path segments to year/month granularity.
// The API reports permalinks with a day-of-month segment while the analytics
// export omits it, so the day segment is dropped:
//
//	https://example.org/news/2024/12/10/post-title/
//	https://example.org/news/2024/12/post-title
//
// both normalize to "https://example.org/news/2024/12/post-title". The URL is
// lowercased and one trailing slash is stripped, so the result is a stable
// join key. Normalization is idempotent.
//
// Any 4-digit segment is treated as a year if the shape fits; a numeric slug
// can false-positive. That is a deliberate heuristic, not a date parser.
func NormalizeURL(rawURL string) string {
	url := strings.TrimSuffix(strings.ToLower(rawURL), "/")
	parts := strings.Split(url, "/")

	normalized := make([]string, 0, len(parts))

	for i := 0; i < len(parts); {
		part := parts[i]

		if isYearSegment(part) {
			normalized = append(normalized, part)

			if i+1 < len(parts) && isShortNumericSegment(parts[i+1]) {
				// Month segment, kept.
				normalized = append(normalized, parts[i+1])

				if i+2 < len(parts) && isShortNumericSegment(parts[i+2]) {
					// Day segment, dropped.
					i += 3
				} else {
					i += 2
				}

				continue
			}

			i++

			continue
		}

		normalized = append(normalized, part)
		i++
	}

	return strings.Join(normalized, "/")
}

// isYearSegment reports whether the segment is exactly four digits.
func isYearSegment(s string) bool {
	return len(s) == 4 && isDigits(s)
}

// isShortNumericSegment reports whether the segment is one or two digits.
func isShortNumericSegment(s string) bool {
	return len(s) >= 1 && len(s) <= 2 && isDigits(s)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}

	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}

	return true
}
