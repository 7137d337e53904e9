package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"NewsSearchEngine/internal/config"
	"NewsSearchEngine/internal/ports"
)

const defaultAnthropicModel = anthropic.Model("claude-haiku-4-5")

// AnthropicSummarizer implements ports.AbstractiveSummarizer on the Messages API.
type AnthropicSummarizer struct {
	client anthropic.Client
	model  anthropic.Model
}

var _ ports.AbstractiveSummarizer = (*AnthropicSummarizer)(nil)

// NewAnthropicSummarizer builds a client from configuration. Endpoint overrides the base URL.
func NewAnthropicSummarizer(cfg config.SummarizerConfig, extra ...option.RequestOption) *AnthropicSummarizer {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithBaseURL(cfg.Endpoint))
	}
	opts = append(opts, extra...)

	model := anthropic.Model(cfg.Model)
	if cfg.Model == "" {
		model = defaultAnthropicModel
	}
	return &AnthropicSummarizer{
		client: anthropic.NewClient(opts...),
		model:  model,
	}
}

// Summarize concatenates the text blocks of the reply.
func (c *AnthropicSummarizer) Summarize(ctx context.Context, text string, opts ports.SummaryOptions) (string, error) {
	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       c.model,
		MaxTokens:   maxTokens(opts),
		Temperature: anthropic.Float(temperature(opts)),
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt(text, opts))),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic API error: %w", err)
	}
	if len(resp.Content) == 0 {
		return "", fmt.Errorf("no response from anthropic")
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		sb.WriteString(block.Text)
	}
	return cleanSummary(sb.String()), nil
}
