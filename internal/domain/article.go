package domain

import (
	"strings"
	"time"
)

// NotAvailable marks an article field the upstream provider did not supply.
const NotAvailable = "N/A"

// Article is a single search hit as returned by an article source.
// Fields are never empty-by-omission: missing values carry NotAvailable.
type Article struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	PublishedAt string `json:"published_at"`
	Source      string `json:"source"`
	Author      string `json:"author"`
	Description string `json:"description"`
}

// HasTitle reports whether the article carries a usable headline.
func (a Article) HasTitle() bool {
	return Present(a.Title)
}

// Present reports whether a field value is neither empty nor the sentinel.
func Present(value string) bool {
	return value != "" && value != NotAvailable
}

// OrNA returns value, or NotAvailable when value is blank.
func OrNA(value string) string {
	if strings.TrimSpace(value) == "" {
		return NotAvailable
	}
	return value
}

const publishedLayout = "2006-01-02 15:04:05"

// FormatPublished renders an ISO-8601 timestamp for display and returns the
// input unchanged when it cannot be parsed.
func FormatPublished(value string) string {
	if !Present(value) {
		return value
	}

	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.Format(publishedLayout)
		}
	}
	return value
}
