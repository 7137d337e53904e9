package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"NewsSearchEngine/internal/config"
	"NewsSearchEngine/internal/ports"
)

const defaultOpenAIModel = openai.ChatModelGPT4oMini

// OpenAISummarizer implements ports.AbstractiveSummarizer on the chat completions API.
type OpenAISummarizer struct {
	client openai.Client
	model  openai.ChatModel
}

var _ ports.AbstractiveSummarizer = (*OpenAISummarizer)(nil)

// NewOpenAISummarizer builds a client from configuration. Endpoint overrides the base URL.
func NewOpenAISummarizer(cfg config.SummarizerConfig, extra ...option.RequestOption) *OpenAISummarizer {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithBaseURL(cfg.Endpoint))
	}
	opts = append(opts, extra...)

	model := openai.ChatModel(cfg.Model)
	if cfg.Model == "" {
		model = defaultOpenAIModel
	}
	return &OpenAISummarizer{
		client: openai.NewClient(opts...),
		model:  model,
	}
}

// Summarize sends text as a user message and returns the first choice.
func (c *OpenAISummarizer) Summarize(ctx context.Context, text string, opts ports.SummaryOptions) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt(text, opts)),
		},
		Temperature:         openai.Float(temperature(opts)),
		MaxCompletionTokens: openai.Int(maxTokens(opts)),
	})
	if err != nil {
		return "", fmt.Errorf("openai API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from openai")
	}
	return cleanSummary(resp.Choices[0].Message.Content), nil
}
