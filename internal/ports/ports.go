package ports

import (
	"context"
	"time"

	"NewsSearchEngine/internal/domain"
)

// ArticleSource returns articles matching a query in a two-letter language.
type ArticleSource interface {
	Name() string
	Search(ctx context.Context, query, language string) ([]domain.Article, error)
}

// ArticleSink persists a search result and returns where it was written.
type ArticleSink interface {
	Save(ctx context.Context, articles []domain.Article, query, language string) (string, error)
}

// EntityRecognizer is an NLP model able to tag named entities in plain text.
type EntityRecognizer interface {
	Recognize(ctx context.Context, text string) ([]domain.Mention, error)
}

// RecognizerLoader acquires the NLP model for a language.
type RecognizerLoader func(ctx context.Context, language string) (EntityRecognizer, error)

// SummaryOptions bounds an abstractive summary.
type SummaryOptions struct {
	MaxLength     int
	MinLength     int
	Deterministic bool
}

// AbstractiveSummarizer condenses text into newly generated prose.
type AbstractiveSummarizer interface {
	Summarize(ctx context.Context, text string, opts SummaryOptions) (string, error)
}

// SummarizerLoader acquires the abstractive summarization model.
type SummarizerLoader func(ctx context.Context) (AbstractiveSummarizer, error)

// Localizer maps dotted keys to display strings in the active language.
type Localizer interface {
	T(key string, args ...any) string
}

// Notifier streams digests to Telegram or other channels.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// Scheduler controls when watch jobs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
