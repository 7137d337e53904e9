// Package summary condenses a batch of headlines into one piece of prose.
package summary

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"NewsSearchEngine/internal/domain"
	"NewsSearchEngine/internal/i18n"
	"NewsSearchEngine/internal/ports"
)

const (
	// DefaultMaxLength caps a generated summary when callers pass no limit.
	DefaultMaxLength = 150
	// MinLength is the lower bound requested from the model.
	MinLength = 30
	// ShortInputWords is the word count under which headlines are echoed.
	ShortInputWords = 50
	// MaxInputRunes bounds the text handed to the model.
	MaxInputRunes = 1024
	// FallbackHeadlines is how many headlines the extraction fallback lists.
	FallbackHeadlines = 5

	combinedPrefix = "Combined Headlines: "

	// acquireTimeout bounds model acquisition, which outlives the triggering request.
	acquireTimeout = 2 * time.Minute
)

// Builder produces headline summaries, preferring an abstractive model and
// degrading to a numbered headline list.
type Builder struct {
	load      ports.SummarizerLoader
	localizer ports.Localizer
	logger    *slog.Logger

	once  sync.Once
	model ports.AbstractiveSummarizer
}

// Option customises a Builder.
type Option func(*Builder)

// WithLocalizer sets the canonical message catalog.
func WithLocalizer(l ports.Localizer) Option {
	return func(b *Builder) {
		if l != nil {
			b.localizer = l
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// NewBuilder creates a Builder. A nil loader means the model is never available.
func NewBuilder(load ports.SummarizerLoader, opts ...Option) *Builder {
	b := &Builder{
		load:      load,
		localizer: i18n.Default(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Builder) acquire(ctx context.Context) ports.AbstractiveSummarizer {
	b.once.Do(func() {
		if b.load == nil {
			return
		}
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), acquireTimeout)
		defer cancel()

		model, err := b.load(loadCtx)
		if err != nil {
			b.logger.Warn("summarization model unavailable, using headline fallback", "error", err)
			return
		}
		b.model = model
	})
	return b.model
}

// Summarize returns a summary of the article headlines. maxLength bounds the
// generated summary; values <= 0 select DefaultMaxLength. It never fails.
func (b *Builder) Summarize(ctx context.Context, articles []domain.Article, maxLength int) string {
	if len(articles) == 0 {
		return b.localizer.T("summarizer.no_articles")
	}

	headlines := make([]string, 0, len(articles))
	for _, article := range articles {
		if article.HasTitle() {
			headlines = append(headlines, article.Title)
		}
	}
	if len(headlines) == 0 {
		return b.localizer.T("summarizer.no_headlines")
	}

	combined := strings.Join(headlines, ". ") + "."
	if len(strings.Fields(combined)) < ShortInputWords {
		return combinedPrefix + combined
	}

	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}

	model := b.acquire(ctx)
	if model == nil {
		return b.fallback(headlines)
	}

	summary, err := model.Summarize(ctx, truncateAtSentence(combined, MaxInputRunes), ports.SummaryOptions{
		MaxLength:     maxLength,
		MinLength:     MinLength,
		Deterministic: true,
	})
	if err != nil {
		b.logger.Warn("summarization failed, using headline fallback", "error", err)
		return b.fallback(headlines)
	}
	if strings.TrimSpace(summary) == "" {
		b.logger.Warn("summarization returned empty text, using headline fallback")
		return b.fallback(headlines)
	}
	return summary
}

func (b *Builder) fallback(headlines []string) string {
	return Fallback(headlines, b.localizer)
}

// Fallback lists the first FallbackHeadlines headlines under the localized
// fallback title.
func Fallback(headlines []string, l ports.Localizer) string {
	if l == nil {
		l = i18n.Default()
	}

	n := min(FallbackHeadlines, len(headlines))

	var sb strings.Builder
	sb.WriteString(l.T("summarizer.fallback_title"))
	sb.WriteString("\n")
	for i, headline := range headlines[:n] {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, headline)
	}
	return strings.TrimSpace(sb.String())
}

// truncateAtSentence cuts text to limit runes and then back to the last
// period, keeping the raw cut when the window has no period past index 0.
func truncateAtSentence(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}

	cut := string(runes[:limit])
	if idx := strings.LastIndex(cut, "."); idx > 0 {
		return cut[:idx+1]
	}
	return cut
}
