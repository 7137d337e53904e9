package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"NewsSearchEngine/internal/domain"
	"NewsSearchEngine/internal/i18n"
	"NewsSearchEngine/internal/ports"
	"NewsSearchEngine/internal/usecase"
)

type stubSearcher struct {
	report usecase.Report
	calls  []string
}

func (s *stubSearcher) Search(_ context.Context, query, language string) usecase.Report {
	s.calls = append(s.calls, language+":"+query)
	r := s.report
	r.Query, r.Language = query, language
	return r
}

func (s *stubSearcher) Localizer(language string) ports.Localizer {
	l, err := i18n.ForLanguage(language)
	if err != nil {
		return i18n.Default()
	}
	return l
}

func runConsole(t *testing.T, s searcher, input string) string {
	t.Helper()
	var out bytes.Buffer
	newConsole(s, strings.NewReader(input), &out).Run(context.Background())
	return out.String()
}

func TestConsoleSearchThenStop(t *testing.T) {
	t.Parallel()

	s := &stubSearcher{report: usecase.Report{
		Total:        1,
		Top:          []domain.Article{{Title: "Markets rally", URL: "https://example.com/a", Source: "Wire", PublishedAt: "2024-01-15T10:30:00Z"}},
		Summary:      "Combined Headlines: Markets rally.",
		EntitiesText: "No named entities found.",
		Saved:        []string{"output/news_markets_en.csv"},
	}}

	out := runConsole(t, s, "1\nmarkets\nn\n")

	if len(s.calls) != 1 || s.calls[0] != "en:markets" {
		t.Fatalf("unexpected searches %v", s.calls)
	}
	for _, want := range []string{
		"1. Markets rally",
		"Source: Wire",
		"Published: 2024-01-15 10:30:00",
		"URL: https://example.com/a",
		"Combined Headlines: Markets rally.",
		"output/news_markets_en.csv",
		"Goodbye!",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output is missing %q:\n%s", want, out)
		}
	}
}

func TestConsoleGermanLoopAndNein(t *testing.T) {
	t.Parallel()

	s := &stubSearcher{}
	out := runConsole(t, s, "x\n2\n\n2\nklima\nj\n2\nwetter\nnein\n")

	if len(s.calls) != 2 || s.calls[0] != "de:klima" || s.calls[1] != "de:wetter" {
		t.Fatalf("unexpected searches %v", s.calls)
	}
	if !strings.Contains(out, "Invalid choice") {
		t.Fatalf("invalid language choice not reported:\n%s", out)
	}
	if strings.Contains(out, "Goodbye!") {
		t.Fatalf("goodbye must be localized after choosing German:\n%s", out)
	}
}

func TestConsoleQuitAndEOF(t *testing.T) {
	t.Parallel()

	s := &stubSearcher{}
	if out := runConsole(t, s, "quit\n"); !strings.Contains(out, "Goodbye!") {
		t.Fatalf("quit at language menu must say goodbye:\n%s", out)
	}
	if out := runConsole(t, s, "1\n"); !strings.Contains(out, "Goodbye!") {
		t.Fatalf("EOF must end the session:\n%s", out)
	}
	if len(s.calls) != 0 {
		t.Fatalf("no search expected, got %v", s.calls)
	}
}

func TestConsoleNoResults(t *testing.T) {
	t.Parallel()

	out := runConsole(t, &stubSearcher{}, "1\nnothing\nno\n")
	if !strings.Contains(out, "No articles found") {
		t.Fatalf("missing no-results message:\n%s", out)
	}
}
