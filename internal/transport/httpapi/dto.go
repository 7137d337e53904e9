package httpapi

import (
	"NewsSearchEngine/internal/domain"
	"NewsSearchEngine/internal/usecase"
)

type errorResponse struct {
	Error string `json:"error"`
}

type articleResponse struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	PublishedAt string `json:"published_at"`
	Published   string `json:"published"`
	Source      string `json:"source"`
	Author      string `json:"author"`
	Description string `json:"description"`
}

type entityResponse struct {
	Text      string `json:"text"`
	Type      string `json:"type"`
	Frequency int    `json:"frequency"`
}

type searchResponse struct {
	RunID      string            `json:"run_id"`
	Query      string            `json:"query"`
	Language   string            `json:"language"`
	Total      int               `json:"total"`
	Articles   []articleResponse `json:"articles"`
	Summary    string            `json:"summary"`
	Entities   []entityResponse  `json:"entities"`
	Saved      []string          `json:"saved"`
	DurationMS int64             `json:"duration_ms"`
}

func toArticleResponses(articles []domain.Article) []articleResponse {
	out := make([]articleResponse, 0, len(articles))
	for _, a := range articles {
		out = append(out, articleResponse{
			Title:       a.Title,
			URL:         a.URL,
			PublishedAt: a.PublishedAt,
			Published:   domain.FormatPublished(a.PublishedAt),
			Source:      a.Source,
			Author:      a.Author,
			Description: a.Description,
		})
	}
	return out
}

func toSearchResponse(r usecase.Report) searchResponse {
	entities := make([]entityResponse, 0, len(r.Entities))
	for _, e := range r.Entities {
		entities = append(entities, entityResponse{Text: e.Text, Type: e.Type, Frequency: e.Frequency})
	}
	saved := r.Saved
	if saved == nil {
		saved = []string{}
	}
	return searchResponse{
		RunID:      r.RunID,
		Query:      r.Query,
		Language:   r.Language,
		Total:      r.Total,
		Articles:   toArticleResponses(r.Top),
		Summary:    r.Summary,
		Entities:   entities,
		Saved:      saved,
		DurationMS: r.Duration.Milliseconds(),
	}
}
