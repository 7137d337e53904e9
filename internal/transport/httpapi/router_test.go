package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/assert/v2"

	"NewsSearchEngine/internal/domain"
	"NewsSearchEngine/internal/infrastructure/storage"
	"NewsSearchEngine/internal/logging"
	"NewsSearchEngine/internal/usecase"
)

type fakeSearcher struct {
	calls    int
	query    string
	language string
}

func (f *fakeSearcher) Search(_ context.Context, query, language string) usecase.Report {
	f.calls++
	f.query = query
	f.language = language
	return usecase.Report{
		RunID:    "run-1",
		Query:    query,
		Language: language,
		Total:    2,
		Top: []domain.Article{
			{Title: "Apple opens store", URL: "https://example.com/1", PublishedAt: "2026-01-15T10:30:00Z"},
		},
		Summary:  "Combined Headlines: Apple opens store.",
		Entities: []domain.Entity{{Text: "Apple", Type: "UNKNOWN", Frequency: 1}},
		Duration: 1500 * time.Millisecond,
	}
}

type fakeHistory struct {
	records  []storage.SearchRecord
	articles map[int64][]domain.Article
	err      error
}

func (f *fakeHistory) Recent(context.Context, int) ([]storage.SearchRecord, error) {
	return f.records, f.err
}

func (f *fakeHistory) Articles(_ context.Context, id int64) ([]domain.Article, error) {
	return f.articles[id], f.err
}

func newTestRouter(s Searcher, history HistoryStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewRouter(s, Options{
		AllowedOrigins: []string{"http://localhost:3000"},
		Languages:      []string{"de", "en"},
		History:        history,
		Logger:         logging.Discard(),
	})
}

func get(r http.Handler, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	w := get(newTestRouter(&fakeSearcher{}, nil), "/health")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `{"status":"ok"}`, w.Body.String())
}

func TestSearch(t *testing.T) {
	searcher := &fakeSearcher{}
	w := get(newTestRouter(searcher, nil), "/search?q=apple&lang=DE")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "de", searcher.language)

	var res searchResponse
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	assert.Equal(t, "run-1", res.RunID)
	assert.Equal(t, 2, res.Total)
	assert.Equal(t, 1, len(res.Articles))
	assert.Equal(t, "2026-01-15 10:30:00", res.Articles[0].Published)
	assert.Equal(t, "Apple", res.Entities[0].Text)
	assert.Equal(t, int64(1500), res.DurationMS)
	assert.Equal(t, 0, len(res.Saved))
}

func TestSearchDefaultsToEnglish(t *testing.T) {
	searcher := &fakeSearcher{}
	w := get(newTestRouter(searcher, nil), "/search?q=apple")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "en", searcher.language)
}

func TestSearchValidation(t *testing.T) {
	searcher := &fakeSearcher{}
	r := newTestRouter(searcher, nil)

	assert.Equal(t, http.StatusBadRequest, get(r, "/search").Code)
	assert.Equal(t, http.StatusBadRequest, get(r, "/search?q=%20%20").Code)
	assert.Equal(t, http.StatusBadRequest, get(r, "/search?q=apple&lang=fr").Code)
	assert.Equal(t, 0, searcher.calls)
}

func TestCORS(t *testing.T) {
	r := newTestRouter(&fakeSearcher{}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	r.ServeHTTP(w, req)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSearchHistory(t *testing.T) {
	history := &fakeHistory{
		records: []storage.SearchRecord{{ID: 1, Query: "apple", Language: "en", ArticleCount: 1}},
		articles: map[int64][]domain.Article{
			1: {{Title: "Apple opens store", URL: "https://example.com/1", PublishedAt: domain.NotAvailable}},
		},
	}
	r := newTestRouter(&fakeSearcher{}, history)

	w := get(r, "/searches?limit=5")
	assert.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Searches []storage.SearchRecord `json:"searches"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	assert.Equal(t, 1, len(list.Searches))
	assert.Equal(t, "apple", list.Searches[0].Query)

	w = get(r, "/searches/1/articles")
	assert.Equal(t, http.StatusOK, w.Code)
	var articles struct {
		Articles []articleResponse `json:"articles"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &articles); err != nil {
		t.Fatalf("decode: %v", err)
	}
	assert.Equal(t, domain.NotAvailable, articles.Articles[0].Published)

	assert.Equal(t, http.StatusNotFound, get(r, "/searches/9/articles").Code)
	assert.Equal(t, http.StatusBadRequest, get(r, "/searches/abc/articles").Code)
	assert.Equal(t, http.StatusBadRequest, get(r, "/searches?limit=0").Code)
}

func TestSearchHistoryErrors(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, get(newTestRouter(&fakeSearcher{}, nil), "/searches").Code)

	broken := newTestRouter(&fakeSearcher{}, &fakeHistory{err: errors.New("db down")})
	assert.Equal(t, http.StatusInternalServerError, get(broken, "/searches").Code)
}
