package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"NewsSearchEngine/internal/domain"
	"NewsSearchEngine/internal/entities"
	"NewsSearchEngine/internal/i18n"
	"NewsSearchEngine/internal/ports"
	"NewsSearchEngine/internal/summary"
)

const defaultTopN = 15

// PipelineDeps wires all driven adapters into the search pipeline.
type PipelineDeps struct {
	Source      ports.ArticleSource
	Sinks       []ports.ArticleSink
	Recognizers ports.RecognizerLoader
	Summarizer  ports.SummarizerLoader
	// Localize returns the catalog for a language; defaults to the embedded i18n catalogs.
	Localize         func(language string) ports.Localizer
	TopN             int
	SummaryMaxLength int
	Logger           *slog.Logger
}

// Report is the outcome of one search.
type Report struct {
	RunID        string           `json:"run_id"`
	Query        string           `json:"query"`
	Language     string           `json:"language"`
	Articles     []domain.Article `json:"-"`
	Total        int              `json:"total"`
	Top          []domain.Article `json:"top"`
	Summary      string           `json:"summary"`
	Entities     []domain.Entity  `json:"entities"`
	EntitiesText string           `json:"-"`
	Saved        []string         `json:"saved"`
	StartedAt    time.Time        `json:"started_at"`
	Duration     time.Duration    `json:"duration_ns"`
}

// Pipeline implements the search workflow.
type Pipeline struct {
	source      ports.ArticleSource
	sinks       []ports.ArticleSink
	recognizers ports.RecognizerLoader
	summarizer  *sharedSummarizer
	localize    func(language string) ports.Localizer
	topN        int
	maxLength   int
	logger      *slog.Logger

	mu          sync.Mutex
	aggregators map[string]*entities.Aggregator
	builders    map[string]*summary.Builder

	locMu      sync.Mutex
	localizers map[string]ports.Localizer
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	p := &Pipeline{
		source:      deps.Source,
		sinks:       deps.Sinks,
		recognizers: deps.Recognizers,
		summarizer:  &sharedSummarizer{load: deps.Summarizer},
		localize:    deps.Localize,
		topN:        deps.TopN,
		maxLength:   deps.SummaryMaxLength,
		logger:      deps.Logger,
		aggregators: map[string]*entities.Aggregator{},
		builders:    map[string]*summary.Builder{},
		localizers:  map[string]ports.Localizer{},
	}
	if p.localize == nil {
		p.localize = defaultLocalizer
	}
	if p.topN <= 0 {
		p.topN = defaultTopN
	}
	if p.maxLength <= 0 {
		p.maxLength = summary.DefaultMaxLength
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

func defaultLocalizer(language string) ports.Localizer {
	tr, err := i18n.ForLanguage(language)
	if err != nil {
		return i18n.Default()
	}
	return tr
}

// sharedSummarizer lets every per-language summary builder reuse one model acquisition.
type sharedSummarizer struct {
	load ports.SummarizerLoader

	once  sync.Once
	mu    sync.Mutex
	model ports.AbstractiveSummarizer
	err   error
}

func (s *sharedSummarizer) loader() ports.SummarizerLoader {
	if s.load == nil {
		return nil
	}
	return s.get
}

func (s *sharedSummarizer) get(ctx context.Context) (ports.AbstractiveSummarizer, error) {
	s.once.Do(func() {
		model, err := s.load(ctx)
		s.mu.Lock()
		s.model, s.err = model, err
		s.mu.Unlock()
	})
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model, s.err
}

// Close releases the acquired model when it holds a connection.
func (s *sharedSummarizer) Close() error {
	s.mu.Lock()
	model := s.model
	s.model = nil
	s.mu.Unlock()

	if closer, ok := model.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Close releases resources held by acquired models.
func (p *Pipeline) Close() error {
	if err := p.summarizer.Close(); err != nil {
		return fmt.Errorf("close summarizer: %w", err)
	}
	return nil
}

// Localizer returns the message catalog used for language. Catalogs are
// built once per language.
func (p *Pipeline) Localizer(language string) ports.Localizer {
	p.locMu.Lock()
	defer p.locMu.Unlock()

	if l, ok := p.localizers[language]; ok {
		return l
	}
	l := p.localize(language)
	p.localizers[language] = l
	return l
}

func (p *Pipeline) aggregatorFor(language string) *entities.Aggregator {
	p.mu.Lock()
	defer p.mu.Unlock()

	if agg, ok := p.aggregators[language]; ok {
		return agg
	}
	agg := entities.NewAggregator(language, p.recognizers,
		entities.WithLocalizer(p.Localizer(language)),
		entities.WithLogger(p.logger.With("component", "entities", "language", language)),
	)
	p.aggregators[language] = agg
	return agg
}

func (p *Pipeline) builderFor(language string) *summary.Builder {
	p.mu.Lock()
	defer p.mu.Unlock()

	if b, ok := p.builders[language]; ok {
		return b
	}
	b := summary.NewBuilder(p.summarizer.loader(),
		summary.WithLocalizer(p.Localizer(language)),
		summary.WithLogger(p.logger.With("component", "summary")),
	)
	p.builders[language] = b
	return b
}

// Search fetches articles, persists them to every sink and analyses the top
// results. Source and sink failures are logged; the report is always returned.
func (p *Pipeline) Search(ctx context.Context, query, language string) Report {
	started := time.Now()
	report := Report{
		RunID:     uuid.NewString(),
		Query:     query,
		Language:  language,
		StartedAt: started,
	}
	log := p.logger.With("run_id", report.RunID, "query", query, "language", language)

	report.Articles = p.fetch(ctx, log, query, language)
	report.Total = len(report.Articles)
	if report.Total == 0 {
		report.Duration = time.Since(started)
		log.Info("search finished without articles")
		return report
	}

	report.Saved = p.save(ctx, log, report.Articles, query, language)

	report.Top = report.Articles[:min(p.topN, len(report.Articles))]

	agg := p.aggregatorFor(language)
	builder := p.builderFor(language)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		report.Summary = builder.Summarize(ctx, report.Top, p.maxLength)
	}()
	go func() {
		defer wg.Done()
		report.Entities = agg.Extract(ctx, report.Top)
		report.EntitiesText = agg.Format(report.Entities)
	}()
	wg.Wait()

	report.Duration = time.Since(started)
	log.Info("search finished",
		"articles", report.Total,
		"entities", len(report.Entities),
		"saved", len(report.Saved),
		"duration", report.Duration,
	)
	return report
}

func (p *Pipeline) fetch(ctx context.Context, log *slog.Logger, query, language string) []domain.Article {
	if p.source == nil {
		log.Warn("no article source configured")
		return nil
	}
	articles, err := p.source.Search(ctx, query, language)
	if err != nil {
		log.Warn("fetch articles failed", "source", p.source.Name(), "error", err)
		return nil
	}
	log.Debug("articles fetched", "source", p.source.Name(), "count", len(articles))
	return articles
}

func (p *Pipeline) save(ctx context.Context, log *slog.Logger, articles []domain.Article, query, language string) []string {
	var saved []string
	for _, sink := range p.sinks {
		location, err := sink.Save(ctx, articles, query, language)
		if err != nil {
			log.Warn("save articles failed", "sink", fmt.Sprintf("%T", sink), "error", err)
			continue
		}
		if location != "" {
			saved = append(saved, location)
		}
	}
	return saved
}

// Digest renders a plain-text message for notifiers.
func (p *Pipeline) Digest(report Report) string {
	l := p.Localizer(report.Language)

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s (%s)\n", l.T("app.title"), report.Query, report.Language)
	if report.Total == 0 {
		sb.WriteString(l.T("search.no_results"))
		return sb.String()
	}
	sb.WriteString(l.T("search.found", "count", report.Total))
	sb.WriteString("\n\n")

	sb.WriteString(l.T("display.summary"))
	sb.WriteString("\n")
	sb.WriteString(report.Summary)
	sb.WriteString("\n\n")

	sb.WriteString(l.T("display.top_articles"))
	sb.WriteString("\n")
	for i, article := range report.Top {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, domain.OrNA(article.Title))
		if domain.Present(article.URL) {
			fmt.Fprintf(&sb, "   %s\n", article.URL)
		}
	}

	if len(report.Entities) > 0 {
		sb.WriteString("\n")
		sb.WriteString(l.T("display.entities"))
		sb.WriteString("\n")
		names := make([]string, 0, len(report.Entities))
		for _, e := range report.Entities[:min(10, len(report.Entities))] {
			names = append(names, fmt.Sprintf("%s (%d)", e.Text, e.Frequency))
		}
		sb.WriteString(strings.Join(names, ", "))
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}
