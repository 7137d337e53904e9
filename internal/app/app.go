package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"NewsSearchEngine/internal/config"
	"NewsSearchEngine/internal/i18n"
	"NewsSearchEngine/internal/infrastructure/feeds"
	"NewsSearchEngine/internal/infrastructure/llm"
	"NewsSearchEngine/internal/infrastructure/ml"
	"NewsSearchEngine/internal/infrastructure/newsapi"
	"NewsSearchEngine/internal/infrastructure/scheduler"
	"NewsSearchEngine/internal/infrastructure/storage"
	"NewsSearchEngine/internal/infrastructure/telegram"
	"NewsSearchEngine/internal/logging"
	"NewsSearchEngine/internal/ports"
	"NewsSearchEngine/internal/source"
	"NewsSearchEngine/internal/transport/httpapi"
	"NewsSearchEngine/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	pipeline *usecase.Pipeline
	history  *storage.SQLSink
}

// New builds a runnable application instance.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	registry := source.NewRegistry()
	if client, err := newsapi.NewClient(cfg.NewsAPI, nil); err == nil {
		registry.Register(client)
	} else {
		baseLogger.Debug("newsapi source disabled", "error", err)
	}
	if len(cfg.Feeds.URLs) > 0 {
		registry.Register(feeds.NewSource(cfg.Feeds.URLs, nil, baseLogger.With("component", "source.rss")))
	}
	src, err := registry.Select(cfg.Sources()...)
	if err != nil {
		return nil, fmt.Errorf("select source: %w", err)
	}

	app := &Application{cfg: cfg, logger: baseLogger}

	sinks := []ports.ArticleSink{storage.NewCSVSink(cfg.Output.Dir)}
	if db := cfg.Output.Database; db.DSN != "" {
		sink, err := storage.Open(db.Driver, db.DSN)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		if err := sink.Migrate(ctx); err != nil {
			_ = sink.Close()
			return nil, fmt.Errorf("migrate database: %w", err)
		}
		sinks = append(sinks, sink)
		app.history = sink
	}

	var recognizers ports.RecognizerLoader
	if cfg.NLP.InferenceURL != "" {
		nlp := ml.NewClient(cfg.NLP.InferenceURL, cfg.NLP.APIKey, ml.WithNERModels(cfg.NLP.Models))
		recognizers = nlp.LoadRecognizer
	}

	app.pipeline = usecase.NewPipeline(usecase.PipelineDeps{
		Source:           src,
		Sinks:            sinks,
		Recognizers:      recognizers,
		Summarizer:       llm.NewSummarizer(cfg.Summarizer),
		TopN:             cfg.Display.TopN,
		SummaryMaxLength: cfg.Display.SummaryMaxLength,
		Logger:           baseLogger.With("component", "pipeline"),
	})

	baseLogger.Debug("application wired",
		"source", src.Name(),
		"sinks", len(sinks),
		"summarizer", cfg.Summarizer.Provider,
		"nlp", cfg.NLP.InferenceURL,
	)
	return app, nil
}

// Pipeline exposes the search use case to drivers such as the CLI.
func (a *Application) Pipeline() *usecase.Pipeline {
	return a.pipeline
}

// Languages lists the languages searches may use.
func (a *Application) Languages() []string {
	return i18n.Default().Languages()
}

// Serve runs the HTTP API until ctx is cancelled.
func (a *Application) Serve(ctx context.Context) error {
	opts := httpapi.Options{
		AllowedOrigins: a.cfg.Server.AllowedOrigins,
		Languages:      a.Languages(),
		Logger:         a.logger.With("component", "httpapi"),
	}
	if a.history != nil {
		opts.History = a.history
	}

	srv := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           httpapi.NewRouter(a.pipeline, opts),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

// Watch runs the configured recurring searches until ctx is cancelled.
func (a *Application) Watch(ctx context.Context, runNow bool) error {
	if len(a.cfg.Watch.Queries) == 0 {
		return fmt.Errorf("watch mode needs at least one entry in watch.queries")
	}

	driver := scheduler.NewCronScheduler(a.cfg.Watch.CronExpression, a.cfg.Watch.Location(), runNow)
	if err := driver.Validate(); err != nil {
		return err
	}

	var notifier ports.Notifier
	if a.cfg.Telegram.BotToken != "" {
		n, err := telegram.Dial(a.cfg.Telegram.BotToken, a.cfg.Telegram.ChatID)
		if err != nil {
			return fmt.Errorf("telegram notifier: %w", err)
		}
		notifier = n
	} else {
		a.logger.Warn("telegram not configured, digests are only logged")
	}

	queries := make([]usecase.WatchQuery, 0, len(a.cfg.Watch.Queries))
	for _, q := range a.cfg.Watch.Queries {
		lang := q.Language
		if lang == "" {
			lang = a.cfg.Display.Language
		}
		queries = append(queries, usecase.WatchQuery{Query: q.Query, Language: lang})
	}

	watch := usecase.NewScheduler(driver, a.pipeline, notifier, queries, a.logger.With("component", "watch"))
	if err := watch.Start(ctx); err != nil {
		return fmt.Errorf("start watch: %w", err)
	}
	if next, err := driver.Next(time.Now()); err == nil {
		a.logger.Info("watch scheduled", "cron", a.cfg.Watch.CronExpression, "next", next, "queries", len(queries))
	}

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return watch.Stop(stopCtx)
}

// Close releases the acquired summarization model and the database pool.
func (a *Application) Close() error {
	errs := []error{a.pipeline.Close()}
	if a.history != nil {
		errs = append(errs, a.history.Close())
	}
	return errors.Join(errs...)
}
