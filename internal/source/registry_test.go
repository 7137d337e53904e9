package source

import (
	"context"
	"errors"
	"strings"
	"testing"

	"NewsSearchEngine/internal/domain"
	"NewsSearchEngine/internal/ports"
)

type stubSource struct {
	name     string
	articles []domain.Article
	err      error
}

func (s stubSource) Name() string { return s.name }

func (s stubSource) Search(context.Context, string, string) ([]domain.Article, error) {
	return s.articles, s.err
}

func TestRegistryResolve(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Register(stubSource{name: "rss"})
	reg.Register(stubSource{name: "newsapi"})

	if _, err := reg.Resolve("rss"); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if _, err := reg.Resolve("gdelt"); !errors.Is(err, ErrUnknownSource) {
		t.Fatalf("expected ErrUnknownSource, got %v", err)
	}
	if names := reg.Names(); len(names) != 2 || names[0] != "newsapi" {
		t.Fatalf("unexpected names %v", names)
	}
}

func TestRegistrySelect(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Register(stubSource{name: "a"})
	reg.Register(stubSource{name: "b"})

	single, err := reg.Select("a")
	if err != nil || single.Name() != "a" {
		t.Fatalf("Select(a) = %v, %v", single, err)
	}
	multi, err := reg.Select("a", "b")
	if err != nil || multi.Name() != "a+b" {
		t.Fatalf("Select(a, b) = %v, %v", multi, err)
	}
	if _, err := reg.Select(); err == nil {
		t.Fatalf("empty selection must fail")
	}
	if _, err := reg.Select("a", "missing"); !errors.Is(err, ErrUnknownSource) {
		t.Fatalf("expected ErrUnknownSource, got %v", err)
	}
}

func TestFanoutDeduplicates(t *testing.T) {
	t.Parallel()

	fan := NewFanout([]ports.ArticleSource{
		stubSource{name: "a", articles: []domain.Article{
			{Title: "One", URL: "https://example.com/1"},
			{Title: "No link", URL: domain.NotAvailable},
		}},
		stubSource{name: "broken", err: errors.New("offline")},
		stubSource{name: "b", articles: []domain.Article{
			{Title: "One again", URL: "https://example.com/1"},
			{Title: "Two", URL: "https://example.com/2"},
			{Title: "No link either", URL: domain.NotAvailable},
		}},
	}, nil)

	got, err := fan.Search(context.Background(), "q", "en")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	var titles []string
	for _, a := range got {
		titles = append(titles, a.Title)
	}
	if strings.Join(titles, "|") != "One|No link|Two|No link either" {
		t.Fatalf("unexpected merge: %v", titles)
	}
}

func TestFanoutAllFailed(t *testing.T) {
	t.Parallel()

	fan := NewFanout([]ports.ArticleSource{
		stubSource{name: "a", err: errors.New("down")},
		stubSource{name: "b", err: errors.New("down")},
	}, nil)
	if _, err := fan.Search(context.Background(), "q", "en"); err == nil {
		t.Fatalf("expected error when every source fails")
	}
}
