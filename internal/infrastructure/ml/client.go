package ml

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"NewsSearchEngine/internal/domain"
	"NewsSearchEngine/internal/ports"
)

const (
	defaultNERModel     = "en_core_web_sm"
	defaultSummaryModel = "facebook/bart-large-cnn"
)

// ErrModelUnavailable is returned when the inference service does not serve a model.
var ErrModelUnavailable = errors.New("model unavailable")

var defaultNERModels = map[string]string{
	"en": "en_core_web_sm",
	"de": "de_core_news_sm",
}

// Client talks to the NLP inference service for entity recognition and summarization.
type Client struct {
	endpoint     string
	apiKey       string
	nerModels    map[string]string
	summaryModel string
	http         *http.Client
}

var _ ports.AbstractiveSummarizer = (*Client)(nil)

// Option customises a Client.
type Option func(*Client)

// WithNERModels overrides the language to model mapping.
func WithNERModels(models map[string]string) Option {
	return func(c *Client) {
		for lang, name := range models {
			c.nerModels[lang] = name
		}
	}
}

// WithSummaryModel selects the summarization model name.
func WithSummaryModel(name string) Option {
	return func(c *Client) {
		if name != "" {
			c.summaryModel = name
		}
	}
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// NewClient creates a reusable HTTP client.
func NewClient(endpoint, apiKey string, opts ...Option) *Client {
	c := &Client{
		endpoint:     endpoint,
		apiKey:       apiKey,
		nerModels:    map[string]string{},
		summaryModel: defaultSummaryModel,
		http:         &http.Client{Timeout: 30 * time.Second},
	}
	for lang, name := range defaultNERModels {
		c.nerModels[lang] = name
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NERModel returns the model name used for language; unknown languages use the English model.
func (c *Client) NERModel(language string) string {
	if name, ok := c.nerModels[language]; ok {
		return name
	}
	if name, ok := c.nerModels["en"]; ok {
		return name
	}
	return defaultNERModel
}

// LoadRecognizer probes the service for the language's model and returns a
// recognizer bound to it. It matches ports.RecognizerLoader.
func (c *Client) LoadRecognizer(ctx context.Context, language string) (ports.EntityRecognizer, error) {
	name := c.NERModel(language)
	if err := c.probe(ctx, "/models/"+url.PathEscape(name)); err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	return &recognizer{client: c, model: name}, nil
}

// LoadSummarizer probes the service for the summarization model. It matches ports.SummarizerLoader.
func (c *Client) LoadSummarizer(ctx context.Context) (ports.AbstractiveSummarizer, error) {
	if err := c.probe(ctx, "/models/"+url.PathEscape(c.summaryModel)); err != nil {
		return nil, fmt.Errorf("load %s: %w", c.summaryModel, err)
	}
	return c, nil
}

type recognizer struct {
	client *Client
	model  string
}

var _ ports.EntityRecognizer = (*recognizer)(nil)

// Recognize tags entities in text.
func (r *recognizer) Recognize(ctx context.Context, text string) ([]domain.Mention, error) {
	payload := map[string]any{
		"model": r.model,
		"text":  text,
	}

	var resp struct {
		Entities []struct {
			Text  string `json:"text"`
			Label string `json:"label"`
		} `json:"entities"`
	}
	if err := r.client.post(ctx, "/entities", payload, &resp); err != nil {
		return nil, err
	}

	mentions := make([]domain.Mention, 0, len(resp.Entities))
	for _, e := range resp.Entities {
		mentions = append(mentions, domain.Mention{Text: e.Text, Label: e.Label})
	}
	return mentions, nil
}

// Summarize requests an abstractive summary of text.
func (c *Client) Summarize(ctx context.Context, text string, opts ports.SummaryOptions) (string, error) {
	payload := map[string]any{
		"model":      c.summaryModel,
		"text":       text,
		"max_length": opts.MaxLength,
		"min_length": opts.MinLength,
		"do_sample":  !opts.Deterministic,
	}

	var resp struct {
		Summary string `json:"summary"`
	}
	if err := c.post(ctx, "/summarize", payload, &resp); err != nil {
		return "", err
	}
	return resp.Summary, nil
}

func (c *Client) probe(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+path, nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}
	_ = resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %s", ErrModelUnavailable, resp.Status)
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

func (c *Client) post(ctx context.Context, path string, payload any, v any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	if v == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
