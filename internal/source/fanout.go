package source

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"NewsSearchEngine/internal/domain"
	"NewsSearchEngine/internal/ports"
)

// Fanout queries several sources in order and concatenates their results,
// dropping repeated URLs.
type Fanout struct {
	sources []ports.ArticleSource
	logger  *slog.Logger
}

var _ ports.ArticleSource = (*Fanout)(nil)

// NewFanout combines sources; order decides which duplicate survives.
func NewFanout(sources []ports.ArticleSource, log *slog.Logger) *Fanout {
	return &Fanout{sources: sources, logger: log}
}

// Name joins the member names with "+".
func (f *Fanout) Name() string {
	names := make([]string, 0, len(f.sources))
	for _, src := range f.sources {
		names = append(names, src.Name())
	}
	return strings.Join(names, "+")
}

// Search fails only when every source fails.
func (f *Fanout) Search(ctx context.Context, query, language string) ([]domain.Article, error) {
	f.debug("fan out search", "sources", len(f.sources), "query", query, "language", language)

	var (
		aggregated []domain.Article
		failures   []string
		seen       = map[string]struct{}{}
	)
	for _, src := range f.sources {
		results, err := src.Search(ctx, query, language)
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", src.Name(), err))
			continue
		}
		for _, article := range results {
			if domain.Present(article.URL) {
				if _, ok := seen[article.URL]; ok {
					continue
				}
				seen[article.URL] = struct{}{}
			}
			aggregated = append(aggregated, article)
		}
		f.debug("source produced articles", "source", src.Name(), "count", len(results))
	}

	if len(failures) == len(f.sources) && len(f.sources) > 0 {
		return nil, fmt.Errorf("all sources failed: %s", strings.Join(failures, "; "))
	}
	return aggregated, nil
}

func (f *Fanout) debug(msg string, args ...any) {
	if f.logger != nil {
		f.logger.Debug(msg, args...)
	}
}
