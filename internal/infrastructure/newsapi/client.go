// Package newsapi searches newsapi.org's /v2/everything endpoint.
package newsapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"NewsSearchEngine/internal/config"
	"NewsSearchEngine/internal/domain"
	"NewsSearchEngine/internal/infrastructure/markup"
	"NewsSearchEngine/internal/ports"
)

const (
	defaultEndpoint = "https://newsapi.org"
	placeholderKey  = "your_api_key_here"
	dateLayout      = "2006-01-02"
)

// ErrMissingAPIKey is returned when no usable NewsAPI key is configured.
var ErrMissingAPIKey = errors.New("newsapi: api key not set")

// Client fetches articles from NewsAPI.
type Client struct {
	endpoint string
	apiKey   string
	daysBack int
	pageSize int
	http     *http.Client
	now      func() time.Time
}

var _ ports.ArticleSource = (*Client)(nil)

// NewClient validates the key and prepares a reusable HTTP client.
func NewClient(cfg config.NewsAPIConfig, httpClient *http.Client) (*Client, error) {
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" || key == placeholderKey {
		return nil, ErrMissingAPIKey
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 20 * time.Second}
	}

	c := &Client{
		endpoint: strings.TrimSuffix(cfg.Endpoint, "/"),
		apiKey:   key,
		daysBack: cfg.DaysBack,
		pageSize: cfg.PageSize,
		http:     httpClient,
		now:      time.Now,
	}
	if c.endpoint == "" {
		c.endpoint = defaultEndpoint
	}
	if c.daysBack <= 0 {
		c.daysBack = 30
	}
	if c.pageSize <= 0 || c.pageSize > 100 {
		c.pageSize = 100
	}
	return c, nil
}

// Name identifies the source inside the registry.
func (c *Client) Name() string {
	return "newsapi"
}

type everythingResponse struct {
	Status       string       `json:"status"`
	Code         string       `json:"code"`
	Message      string       `json:"message"`
	TotalResults int          `json:"totalResults"`
	Articles     []rawArticle `json:"articles"`
}

type rawArticle struct {
	Source struct {
		Name *string `json:"name"`
	} `json:"source"`
	Author      *string `json:"author"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	URL         *string `json:"url"`
	PublishedAt *string `json:"publishedAt"`
}

// Search returns articles matching query published within the configured window,
// sorted by relevancy.
func (c *Client) Search(ctx context.Context, query, language string) ([]domain.Article, error) {
	to := c.now()
	from := to.AddDate(0, 0, -c.daysBack)

	params := url.Values{}
	params.Set("q", query)
	params.Set("language", language)
	params.Set("from", from.Format(dateLayout))
	params.Set("to", to.Format(dateLayout))
	params.Set("sortBy", "relevancy")
	params.Set("pageSize", strconv.Itoa(c.pageSize))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/v2/everything?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("User-Agent", "NewsSearchEngine/1.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch news: %w", err)
	}
	defer resp.Body.Close()

	var payload everythingResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 8<<20)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response (%s): %w", resp.Status, err)
	}
	if payload.Status != "ok" {
		msg := payload.Message
		if msg == "" {
			msg = "Unknown error"
		}
		return nil, fmt.Errorf("newsapi error %s: %s", resp.Status, msg)
	}

	articles := make([]domain.Article, 0, len(payload.Articles))
	for _, raw := range payload.Articles {
		articles = append(articles, raw.toDomain())
	}
	return articles, nil
}

func (r rawArticle) toDomain() domain.Article {
	description := valueOrNA(r.Description)
	if description != domain.NotAvailable {
		description = domain.OrNA(markup.PlainText(description))
	}
	return domain.Article{
		Title:       valueOrNA(r.Title),
		URL:         valueOrNA(r.URL),
		PublishedAt: valueOrNA(r.PublishedAt),
		Source:      valueOrNA(r.Source.Name),
		Author:      valueOrNA(r.Author),
		Description: description,
	}
}

func valueOrNA(v *string) string {
	if v == nil {
		return domain.NotAvailable
	}
	return domain.OrNA(*v)
}
