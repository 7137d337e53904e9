package i18n

import (
	"strings"
	"testing"
)

func newTranslator(t *testing.T) *Translator {
	t.Helper()
	tr, err := New()
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return tr
}

func TestNewDefaultsToEnglish(t *testing.T) {
	t.Parallel()

	tr := newTranslator(t)
	if tr.Language() != "en" {
		t.Fatalf("expected en, got %s", tr.Language())
	}
	langs := tr.Languages()
	if len(langs) != 2 || langs[0] != "de" || langs[1] != "en" {
		t.Fatalf("unexpected languages: %v", langs)
	}
}

func TestSetLanguage(t *testing.T) {
	t.Parallel()

	tr := newTranslator(t)
	if !tr.SetLanguage("de") {
		t.Fatalf("de should be supported")
	}
	if got := tr.T("app.title"); got != "Nachrichten-Suchmaschine" {
		t.Fatalf("unexpected german title: %s", got)
	}

	if tr.SetLanguage("fr") {
		t.Fatalf("fr should not be supported")
	}
	if tr.Language() != "en" {
		t.Fatalf("unsupported language must fall back to en, got %s", tr.Language())
	}
	if got := tr.T("app.title"); got != "News Search Engine" {
		t.Fatalf("unexpected english title: %s", got)
	}
}

func TestTranslateWithArguments(t *testing.T) {
	t.Parallel()

	tr := newTranslator(t)
	got := tr.T("search.found", "count", 5)
	if !strings.Contains(got, "5") || !strings.Contains(strings.ToLower(got), "articles") {
		t.Fatalf("unexpected formatted string: %s", got)
	}
}

func TestTranslateWrongArgumentsKeepsTemplate(t *testing.T) {
	t.Parallel()

	tr := newTranslator(t)
	got := tr.T("search.found", "wrong_arg", "value")
	if got != "Found {count} articles." {
		t.Fatalf("expected untouched template, got %s", got)
	}
}

func TestTranslateMissingKeyReturnsKey(t *testing.T) {
	t.Parallel()

	tr := newTranslator(t)
	for _, key := range []string{"nonexistent.key", "app", "app.title.deeper"} {
		if got := tr.T(key); got != key {
			t.Fatalf("T(%q) = %q, want key", key, got)
		}
	}
}

func TestCatalogsAreComplete(t *testing.T) {
	t.Parallel()

	tr := newTranslator(t)
	de := map[string]bool{}
	for _, k := range tr.Keys("de") {
		de[k] = true
	}
	for _, k := range tr.Keys("en") {
		if !de[k] {
			t.Fatalf("german catalog is missing %s", k)
		}
	}
}

func TestDefaultIsShared(t *testing.T) {
	t.Parallel()

	if Default() != Default() {
		t.Fatalf("Default must return the same translator")
	}
	if got := Default().T("summarizer.no_articles"); got != "No articles to summarize." {
		t.Fatalf("unexpected canonical message: %s", got)
	}
}
