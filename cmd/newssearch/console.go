package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"NewsSearchEngine/internal/domain"
	"NewsSearchEngine/internal/i18n"
	"NewsSearchEngine/internal/ports"
	"NewsSearchEngine/internal/usecase"
)

var rule = strings.Repeat("=", 70)

type searcher interface {
	Search(ctx context.Context, query, language string) usecase.Report
	Localizer(language string) ports.Localizer
}

// console drives the interactive search loop over line-oriented IO.
type console struct {
	search searcher
	out    io.Writer
	lines  <-chan string
	l      ports.Localizer
}

func newConsole(s searcher, in io.Reader, out io.Writer) *console {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()
	return &console{search: s, out: out, lines: lines, l: i18n.Default()}
}

// readLine prints a prompt and waits for input. ok is false on EOF or cancellation.
func (c *console) readLine(ctx context.Context, prompt string) (line string, ok bool) {
	fmt.Fprintf(c.out, "\n%s", prompt)
	select {
	case <-ctx.Done():
		return "", false
	case line, ok = <-c.lines:
		return strings.TrimSpace(line), ok
	}
}

func isQuit(s string) bool {
	switch strings.ToLower(s) {
	case "quit", "exit", "q":
		return true
	}
	return false
}

func (c *console) Run(ctx context.Context) {
	fmt.Fprintf(c.out, "\n%s\n         %s\n%s\n", rule, c.l.T("app.welcome"), rule)

	for {
		fmt.Fprintf(c.out, "\n%s\n", rule)
		language, ok := c.chooseLanguage(ctx)
		if !ok {
			c.stop(ctx)
			return
		}
		c.l = c.search.Localizer(language)

		fmt.Fprintf(c.out, "\n%s\n", rule)
		query, ok := c.readLine(ctx, c.l.T("search.prompt"))
		if !ok || isQuit(query) {
			c.stop(ctx)
			return
		}
		if query == "" {
			fmt.Fprintln(c.out, c.l.T("search.invalid_topic"))
			continue
		}

		c.searchAndDisplay(ctx, query, language)

		fmt.Fprintf(c.out, "\n%s\n", rule)
		answer, ok := c.readLine(ctx, c.l.T("search.another"))
		if !ok {
			c.stop(ctx)
			return
		}
		switch strings.ToLower(answer) {
		case "n", "no", "nein":
			c.stop(ctx)
			return
		}
	}
}

func (c *console) stop(ctx context.Context) {
	if ctx.Err() != nil {
		fmt.Fprintf(c.out, "\n\n%s\n", c.l.T("app.interrupted"))
		return
	}
	fmt.Fprintf(c.out, "\n%s\n", c.l.T("app.goodbye"))
}

func (c *console) chooseLanguage(ctx context.Context) (string, bool) {
	fmt.Fprintf(c.out, "%s\n%s\n", c.l.T("language.select"), rule)
	fmt.Fprintf(c.out, "  1. %s\n", c.l.T("language.english"))
	fmt.Fprintf(c.out, "  2. %s\n", c.l.T("language.german"))

	for {
		choice, ok := c.readLine(ctx, c.l.T("language.prompt"))
		if !ok {
			return "", false
		}
		switch {
		case choice == "1":
			fmt.Fprintf(c.out, "%s: %s\n", c.l.T("language.selected"), c.l.T("language.english"))
			return "en", true
		case choice == "2":
			fmt.Fprintf(c.out, "%s: %s\n", c.l.T("language.selected"), c.l.T("language.german"))
			return "de", true
		case isQuit(choice):
			return "", false
		default:
			fmt.Fprintln(c.out, c.l.T("language.invalid"))
		}
	}
}

func (c *console) searchAndDisplay(ctx context.Context, query, language string) {
	fmt.Fprintf(c.out, "\n%s\n", c.l.T("search.searching", "query", query, "language", language))
	fmt.Fprintf(c.out, "%s\n\n", c.l.T("search.please_wait"))

	report := c.search.Search(ctx, query, language)
	if report.Total == 0 {
		fmt.Fprintln(c.out, c.l.T("search.no_results"))
		return
	}
	fmt.Fprintln(c.out, c.l.T("search.found", "count", report.Total))

	c.section(c.l.T("display.top_articles"))
	fmt.Fprintln(c.out)
	for i, article := range report.Top {
		fmt.Fprintf(c.out, "%d. %s\n", i+1, domain.OrNA(article.Title))
		fmt.Fprintf(c.out, "   %s: %s\n", c.l.T("display.source"), domain.OrNA(article.Source))
		fmt.Fprintf(c.out, "   %s: %s\n", c.l.T("display.published"), domain.FormatPublished(domain.OrNA(article.PublishedAt)))
		fmt.Fprintf(c.out, "   URL: %s\n\n", domain.OrNA(article.URL))
	}

	c.section(c.l.T("display.summary"))
	fmt.Fprintln(c.out, report.Summary)

	c.section(c.l.T("display.entities"))
	fmt.Fprintln(c.out, report.EntitiesText)

	for _, location := range report.Saved {
		fmt.Fprintf(c.out, "\n%s\n%s\n%s\n", rule, c.l.T("display.saved", "count", report.Total, "file", location), rule)
	}
}

func (c *console) section(title string) {
	fmt.Fprintf(c.out, "\n%s\n%s\n%s\n", rule, title, rule)
}
