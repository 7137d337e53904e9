// Package feeds searches a fixed list of RSS/Atom feeds for matching items.
package feeds

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"NewsSearchEngine/internal/domain"
	"NewsSearchEngine/internal/infrastructure/markup"
	"NewsSearchEngine/internal/ports"
)

// Source filters configured feeds by query and language.
type Source struct {
	urls   []string
	parser *gofeed.Parser
	logger *slog.Logger
}

var _ ports.ArticleSource = (*Source)(nil)

// NewSource wires an HTTP client into a feed parser; client defaults to a 20s timeout.
func NewSource(urls []string, client *http.Client, log *slog.Logger) *Source {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	if log == nil {
		log = slog.Default()
	}
	parser := gofeed.NewParser()
	parser.Client = client
	parser.UserAgent = "NewsSearchEngine/1.0"

	return &Source{urls: urls, parser: parser, logger: log}
}

// Name identifies the source inside the registry.
func (s *Source) Name() string {
	return "rss"
}

// Search returns items whose title or description contains query. Feeds that
// declare a language must match the requested code. Unreachable feeds are skipped.
func (s *Source) Search(ctx context.Context, query, language string) ([]domain.Article, error) {
	if len(s.urls) == 0 {
		return nil, fmt.Errorf("no feeds configured")
	}

	needle := strings.ToLower(strings.TrimSpace(query))
	results := make([]domain.Article, 0)
	seen := map[string]struct{}{}

	for _, feedURL := range s.urls {
		feed, err := s.parser.ParseURLWithContext(feedURL, ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("parse feed %s: %w", feedURL, ctx.Err())
			}
			s.logger.Warn("skip feed", "url", feedURL, "error", err)
			continue
		}
		if !languageMatches(feed.Language, language) {
			s.logger.Debug("feed language mismatch", "url", feedURL, "feed_language", feed.Language, "want", language)
			continue
		}

		matched := 0
		for _, item := range feed.Items {
			article := toArticle(feed, item)
			if !matches(article, needle) {
				continue
			}
			key := article.URL
			if key == domain.NotAvailable {
				key = article.Title
			}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			results = append(results, article)
			matched++
		}
		s.logger.Debug("feed searched", "url", feedURL, "items", len(feed.Items), "matched", matched)
	}

	return results, nil
}

func languageMatches(feedLanguage, want string) bool {
	if feedLanguage == "" || want == "" {
		return true
	}
	return strings.HasPrefix(strings.ToLower(feedLanguage), strings.ToLower(want))
}

func matches(article domain.Article, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(article.Title), needle) ||
		strings.Contains(strings.ToLower(article.Description), needle)
}

func toArticle(feed *gofeed.Feed, item *gofeed.Item) domain.Article {
	published := item.Published
	if item.PublishedParsed != nil {
		published = item.PublishedParsed.UTC().Format(time.RFC3339)
	} else if item.UpdatedParsed != nil {
		published = item.UpdatedParsed.UTC().Format(time.RFC3339)
	}

	var author string
	if len(item.Authors) > 0 && item.Authors[0] != nil {
		author = item.Authors[0].Name
	}

	return domain.Article{
		Title:       domain.OrNA(strings.TrimSpace(item.Title)),
		URL:         domain.OrNA(item.Link),
		PublishedAt: domain.OrNA(published),
		Source:      domain.OrNA(feed.Title),
		Author:      domain.OrNA(author),
		Description: domain.OrNA(markup.PlainText(item.Description)),
	}
}
