package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const DefaultClaudeModel = "claude-sonnet-4-20250514"

// ClaudeProvider implements the Provider interface using the Anthropic Messages API.
type ClaudeProvider struct {
	client      anthropic.Client
	model       string
	temperature float64
	maxTokens   int64
}

var _ Provider = (*ClaudeProvider)(nil)

// NewClaudeProvider creates a Claude provider.
func NewClaudeProvider(apiKey, model string, temperature float64, maxTokens int) (*ClaudeProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
	}
	if model == "" || model == DefaultGroqModel {
		model = DefaultClaudeModel
	}
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &ClaudeProvider{
		client:      anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:       model,
		temperature: temperature,
		maxTokens:   int64(maxTokens),
	}, nil
}

func (p *ClaudeProvider) Name() string {
	return "anthropic"
}

func (p *ClaudeProvider) GenerateResponse(ctx context.Context, prompt string, systemPrompt string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: p.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
		Temperature: anthropic.Float(p.temperature),
	}
	if systemPrompt != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: systemPrompt},
		}
	}

	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return "", &APIError{Provider: p.Name(), Kind: KindRequest, Err: err}
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", &APIError{Provider: p.Name(), Kind: KindEmpty, Message: "no text in response"}
	}
	return text.String(), nil
}
