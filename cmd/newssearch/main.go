package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"NewsSearchEngine/internal/app"
	"NewsSearchEngine/internal/config"
	"NewsSearchEngine/internal/logging"
)

const usage = `usage: newssearch [interactive|search|serve|watch] [flags]

  interactive           prompt for language and topic (default)
  search -q TOPIC       run one search and print the report
  serve                 expose the HTTP API
  watch [-now]          run the configured watch queries on the cron schedule
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	mode, args := "interactive", os.Args[1:]
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		mode, args = args[0], args[1:]
	}

	if err := run(ctx, mode, args, cfg, logger); err != nil {
		logger.Error("newssearch stopped", "mode", mode, "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, mode string, args []string, cfg config.Config, logger *slog.Logger) error {
	switch mode {
	case "interactive", "search", "serve", "watch":
	case "help", "-h", "--help":
		fmt.Fprint(os.Stdout, usage)
		return nil
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown mode %q", mode)
	}

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := application.Close(); err != nil {
			logger.Warn("close application", "error", err)
		}
	}()

	switch mode {
	case "search":
		return runSearch(ctx, application, cfg, args)
	case "serve":
		return application.Serve(ctx)
	case "watch":
		fs := flag.NewFlagSet("watch", flag.ContinueOnError)
		now := fs.Bool("now", false, "run the watch queries once at startup")
		if err := fs.Parse(args); err != nil {
			return err
		}
		return application.Watch(ctx, *now)
	default:
		newConsole(application.Pipeline(), os.Stdin, os.Stdout).Run(ctx)
		return nil
	}
}

func runSearch(ctx context.Context, application *app.Application, cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	query := fs.String("q", "", "topic to search for")
	lang := fs.String("lang", cfg.Display.Language, "two-letter search language")
	asJSON := fs.Bool("json", false, "print the report as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*query) == "" {
		return fmt.Errorf("search: -q is required")
	}

	pipeline := application.Pipeline()
	report := pipeline.Search(ctx, strings.TrimSpace(*query), strings.ToLower(*lang))

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	fmt.Fprintln(os.Stdout, pipeline.Digest(report))
	if report.EntitiesText != "" {
		fmt.Fprintln(os.Stdout, report.EntitiesText)
	}
	return nil
}
