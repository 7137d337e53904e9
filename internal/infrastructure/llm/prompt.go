package llm

import (
	"fmt"
	"strings"

	"NewsSearchEngine/internal/ports"
)

const systemPrompt = `You are a news editor. Summarize the headlines you receive into one short neutral paragraph.
Keep names, numbers and places. Do not invent facts. Reply with the paragraph only.`

// userPrompt carries the length bounds into the request; providers only enforce the upper one.
func userPrompt(text string, opts ports.SummaryOptions) string {
	var sb strings.Builder
	if opts.MinLength > 0 {
		fmt.Fprintf(&sb, "Write at least %d words", opts.MinLength)
		if opts.MaxLength > 0 {
			fmt.Fprintf(&sb, " and at most %d words", opts.MaxLength)
		}
		sb.WriteString(".\n\n")
	} else if opts.MaxLength > 0 {
		fmt.Fprintf(&sb, "Write at most %d words.\n\n", opts.MaxLength)
	}
	sb.WriteString("Headlines:\n")
	sb.WriteString(text)
	return sb.String()
}

// maxTokens leaves headroom over the word limit since a word is usually more than one token.
func maxTokens(opts ports.SummaryOptions) int64 {
	if opts.MaxLength <= 0 {
		return 512
	}
	return int64(opts.MaxLength) * 2
}

func temperature(opts ports.SummaryOptions) float64 {
	if opts.Deterministic {
		return 0
	}
	return 0.7
}

// cleanSummary strips wrappers chat models like to add around the paragraph.
func cleanSummary(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```text")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)
	for _, prefix := range []string{"Summary:", "summary:"} {
		content = strings.TrimPrefix(content, prefix)
	}
	content = strings.TrimSpace(content)
	if len(content) >= 2 && content[0] == '"' && content[len(content)-1] == '"' {
		content = strings.TrimSpace(content[1 : len(content)-1])
	}
	return content
}
