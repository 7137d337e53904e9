package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"NewsSearchEngine/internal/config"
	"NewsSearchEngine/internal/ports"
)

const defaultGeminiModel = "gemini-1.5-flash"

// GeminiSummarizer implements ports.AbstractiveSummarizer on the Gemini API.
type GeminiSummarizer struct {
	client *genai.Client
	model  string
}

var _ ports.AbstractiveSummarizer = (*GeminiSummarizer)(nil)

// NewGeminiSummarizer dials the Gemini API. Close releases the connection.
func NewGeminiSummarizer(ctx context.Context, cfg config.SummarizerConfig) (*GeminiSummarizer, error) {
	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("new gemini client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = defaultGeminiModel
	}
	return &GeminiSummarizer{client: client, model: model}, nil
}

// Summarize generates one candidate and joins its text parts.
func (g *GeminiSummarizer) Summarize(ctx context.Context, text string, opts ports.SummaryOptions) (string, error) {
	model := g.client.GenerativeModel(g.model)
	model.SetTemperature(float32(temperature(opts)))
	model.SetMaxOutputTokens(int32(maxTokens(opts)))
	model.SetCandidateCount(1)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemPrompt)}}

	resp, err := model.GenerateContent(ctx, genai.Text(userPrompt(text, opts)))
	if err != nil {
		return "", fmt.Errorf("gemini API error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no response from gemini")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	return cleanSummary(sb.String()), nil
}

// Close releases the underlying connection.
func (g *GeminiSummarizer) Close() error {
	return g.client.Close()
}
