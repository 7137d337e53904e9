package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"NewsSearchEngine/internal/domain"
	"NewsSearchEngine/internal/ports"
)

type fakeSource struct {
	mu       sync.Mutex
	articles map[string][]domain.Article
	err      error
	calls    int
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) Search(_ context.Context, query, _ string) ([]domain.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.articles[query], nil
}

type fakeSink struct {
	mu       sync.Mutex
	location string
	err      error
	saved    [][]domain.Article
}

func (f *fakeSink) Save(_ context.Context, articles []domain.Article, query, language string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.saved = append(f.saved, articles)
	return fmt.Sprintf("%s/%s-%s", f.location, query, language), nil
}

type fakeSummarizer struct{ out string }

func (f fakeSummarizer) Summarize(context.Context, string, ports.SummaryOptions) (string, error) {
	return f.out, nil
}

type loaderCounter struct {
	mu    sync.Mutex
	calls map[string]int
}

func (c *loaderCounter) summarizer(out string, err error) ports.SummarizerLoader {
	return func(context.Context) (ports.AbstractiveSummarizer, error) {
		c.inc("summarizer")
		if err != nil {
			return nil, err
		}
		return fakeSummarizer{out: out}, nil
	}
}

func (c *loaderCounter) recognizers() ports.RecognizerLoader {
	return func(_ context.Context, language string) (ports.EntityRecognizer, error) {
		c.inc("ner:" + language)
		return nil, errors.New("no model")
	}
}

func (c *loaderCounter) inc(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.calls == nil {
		c.calls = map[string]int{}
	}
	c.calls[key]++
}

func (c *loaderCounter) count(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[key]
}

type fakeNotifier struct {
	mu      sync.Mutex
	digests []string
	err     error
}

func (f *fakeNotifier) PublishDigest(_ context.Context, digest string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.digests = append(f.digests, digest)
	return nil
}

type fakeDriver struct {
	job     func(time.Time)
	stopped bool
}

func (f *fakeDriver) Start(_ context.Context, job func(time.Time)) error {
	f.job = job
	return nil
}

func (f *fakeDriver) Stop(context.Context) error {
	f.stopped = true
	return nil
}

// headlines returns n ten-word titles that all mention Apple and Berlin.
func headlines(n int) []domain.Article {
	out := make([]domain.Article, n)
	for i := range out {
		out[i] = domain.Article{
			Title: fmt.Sprintf("Apple and Berlin story %d about markets moving on data", i+1),
			URL:   fmt.Sprintf("https://example.com/%d", i+1),
		}
	}
	return out
}

// ctxLoaders fail acquisition when the calling context is already done,
// like the HTTP adapters do.
type ctxLoaders struct {
	loaderCounter
	summary *closingSummarizer
}

func (c *ctxLoaders) recognizers() ports.RecognizerLoader {
	return func(ctx context.Context, language string) (ports.EntityRecognizer, error) {
		c.inc("ner:" + language)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return labelRecognizer{label: "ORG"}, nil
	}
}

func (c *ctxLoaders) summarizer() ports.SummarizerLoader {
	return func(ctx context.Context) (ports.AbstractiveSummarizer, error) {
		c.inc("summarizer")
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return c.summary, nil
	}
}

// labelRecognizer reports the first word of every text under one label.
type labelRecognizer struct{ label string }

func (r labelRecognizer) Recognize(_ context.Context, text string) ([]domain.Mention, error) {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil, nil
	}
	return []domain.Mention{{Text: words[0], Label: r.label}}, nil
}

type closingSummarizer struct {
	out    string
	mu     sync.Mutex
	closed int
}

func (s *closingSummarizer) Summarize(context.Context, string, ports.SummaryOptions) (string, error) {
	return s.out, nil
}

func (s *closingSummarizer) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed++
	return nil
}

// syncWriter serialises writes from the concurrent pipeline stages.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
