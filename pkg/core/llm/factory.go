package llm

import (
	"context"
	"fmt"
	"time"
)

const (
	DefaultOpenAIBaseURL   = "https://api.openai.com/v1"
	DefaultOpenAIModel     = "gpt-4o-mini"
	DefaultDeepSeekBaseURL = "https://api.deepseek.com"
	DefaultDeepSeekModel   = "deepseek-chat"
)

// Settings selects and configures a provider.
type Settings struct {
	Provider     string // "groq", "openai", "deepseek", "gemini", "anthropic"
	APIKey       string
	BaseURL      string
	Model        string
	Temperature  float64
	MaxTokens    int
	Timeout      time.Duration
	GeminiAPIKey string
	ClaudeAPIKey string
}

// NewProvider builds the provider named in s.
func NewProvider(ctx context.Context, s Settings) (Provider, error) {
	switch s.Provider {
	case "", "groq":
		return NewChatProvider("groq", s.BaseURL, s.APIKey, s.Model, s.Temperature, s.MaxTokens, s.Timeout), nil
	case "openai":
		baseURL := s.BaseURL
		if baseURL == "" || baseURL == DefaultGroqBaseURL {
			baseURL = DefaultOpenAIBaseURL
		}
		model := s.Model
		if model == "" || model == DefaultGroqModel {
			model = DefaultOpenAIModel
		}
		return NewChatProvider("openai", baseURL, s.APIKey, model, s.Temperature, s.MaxTokens, s.Timeout), nil
	case "deepseek":
		baseURL := s.BaseURL
		if baseURL == "" || baseURL == DefaultGroqBaseURL {
			baseURL = DefaultDeepSeekBaseURL
		}
		model := s.Model
		if model == "" || model == DefaultGroqModel {
			model = DefaultDeepSeekModel
		}
		return NewChatProvider("deepseek", baseURL, s.APIKey, model, s.Temperature, s.MaxTokens, s.Timeout), nil
	case "gemini":
		return NewGeminiProvider(ctx, s.GeminiAPIKey, s.Model, s.Temperature, s.MaxTokens)
	case "anthropic":
		return NewClaudeProvider(s.ClaudeAPIKey, s.Model, s.Temperature, s.MaxTokens)
	default:
		return nil, fmt.Errorf("provider %s not found", s.Provider)
	}
}
