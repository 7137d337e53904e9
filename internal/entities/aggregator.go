// Package entities ranks the named entities mentioned across a batch of headlines.
package entities

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"NewsSearchEngine/internal/domain"
	"NewsSearchEngine/internal/i18n"
	"NewsSearchEngine/internal/ports"
)

const (
	trimSet          = ".,!?;:\"'-"
	minHeuristicLen  = 3
	maxEntityDisplay = 30
	ruleWidth        = 60

	// acquireTimeout bounds model acquisition, which outlives the triggering request.
	acquireTimeout = 2 * time.Minute
)

var stopwords = map[string]struct{}{
	"the":  {},
	"and":  {},
	"for":  {},
	"with": {},
	"from": {},
}

type strategyKind int

const (
	strategyHeuristic strategyKind = iota
	strategyModel
)

// strategy is chosen once per Aggregator and never re-checked.
type strategy struct {
	kind       strategyKind
	recognizer ports.EntityRecognizer
}

// Aggregator extracts entities with an NLP model when one can be acquired
// and with a capitalized-word heuristic otherwise.
type Aggregator struct {
	language  string
	load      ports.RecognizerLoader
	localizer ports.Localizer
	logger    *slog.Logger

	once     sync.Once
	strategy strategy
}

// Option customises an Aggregator.
type Option func(*Aggregator)

// WithLocalizer sets the display strings used by Format.
func WithLocalizer(l ports.Localizer) Option {
	return func(a *Aggregator) {
		if l != nil {
			a.localizer = l
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Aggregator) {
		if l != nil {
			a.logger = l
		}
	}
}

// NewAggregator builds an aggregator for language. A nil loader pins the
// heuristic strategy. The logger is expected to carry the language already.
func NewAggregator(language string, load ports.RecognizerLoader, opts ...Option) *Aggregator {
	a := &Aggregator{
		language:  language,
		load:      load,
		localizer: i18n.Default(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Language returns the language the aggregator was built for.
func (a *Aggregator) Language() string {
	return a.language
}

// ModelBacked reports whether the NLP model was acquired. It triggers
// acquisition when it has not happened yet.
func (a *Aggregator) ModelBacked(ctx context.Context) bool {
	return a.acquire(ctx).kind == strategyModel
}

func (a *Aggregator) acquire(ctx context.Context) strategy {
	a.once.Do(func() {
		a.strategy = strategy{kind: strategyHeuristic}
		if a.load == nil {
			return
		}

		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), acquireTimeout)
		defer cancel()

		recognizer, err := a.load(loadCtx, a.language)
		if err != nil || recognizer == nil {
			a.logger.Warn("nlp model unavailable, using heuristic extraction", "error", err)
			return
		}
		a.logger.Debug("nlp model acquired")
		a.strategy = strategy{kind: strategyModel, recognizer: recognizer}
	})
	return a.strategy
}

type entityKey struct {
	text string
	kind string
}

// Extract returns the entities of all headlines ordered by frequency, ties
// in first-seen order.
func (a *Aggregator) Extract(ctx context.Context, articles []domain.Article) []domain.Entity {
	if len(articles) == 0 {
		return nil
	}

	st := a.acquire(ctx)

	var (
		order  []entityKey
		counts = map[entityKey]int{}
	)
	add := func(key entityKey) {
		if _, seen := counts[key]; !seen {
			order = append(order, key)
		}
		counts[key]++
	}

	for _, article := range articles {
		if !article.HasTitle() {
			continue
		}

		if st.kind == strategyModel {
			mentions, err := st.recognizer.Recognize(ctx, article.Title)
			if err != nil {
				a.logger.Warn("entity recognition failed", "title", article.Title, "error", err)
				continue
			}
			for _, m := range mentions {
				text := strings.TrimSpace(m.Text)
				if utf8.RuneCountInString(text) <= 1 {
					continue
				}
				add(entityKey{text: text, kind: m.Label})
			}
			continue
		}

		for _, candidate := range heuristicCandidates(article.Title) {
			add(entityKey{text: candidate, kind: domain.UnknownEntityType})
		}
	}

	result := make([]domain.Entity, 0, len(order))
	for _, key := range order {
		result = append(result, domain.Entity{Text: key.text, Type: key.kind, Frequency: counts[key]})
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Frequency > result[j].Frequency
	})

	a.logger.Debug("entities extracted", "articles", len(articles), "entities", len(result),
		"model", st.kind == strategyModel)
	return result
}

// heuristicCandidates treats capitalized words as entities.
func heuristicCandidates(title string) []string {
	var out []string
	for _, word := range strings.Fields(title) {
		clean := strings.Trim(word, trimSet)
		if clean == "" {
			continue
		}
		first, _ := utf8.DecodeRuneInString(clean)
		if !unicode.IsUpper(first) {
			continue
		}
		if utf8.RuneCountInString(clean) < minHeuristicLen {
			continue
		}
		if _, stop := stopwords[strings.ToLower(clean)]; stop {
			continue
		}
		out = append(out, clean)
	}
	return out
}
