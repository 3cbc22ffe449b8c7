package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultGroqBaseURL = "https://api.groq.com/openai/v1"
	DefaultGroqModel   = "llama-3.1-8b-instant"
)

// ChatProvider talks to any OpenAI-compatible /chat/completions endpoint
// (Groq, OpenAI, DeepSeek, local gateways).
type ChatProvider struct {
	name        string
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
	httpClient  *http.Client
}

var _ Provider = (*ChatProvider)(nil)

// ChatRequest is the request body of a chat completion.
type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Stream      bool      `json:"stream"`
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatResponse is the subset of the completion response that is read.
type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewChatProvider creates a chat-completions provider. name labels errors and logs.
func NewChatProvider(name, baseURL, apiKey, model string, temperature float64, maxTokens int, timeout time.Duration) *ChatProvider {
	if baseURL == "" {
		baseURL = DefaultGroqBaseURL
	}
	if model == "" {
		model = DefaultGroqModel
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &ChatProvider{
		name:        name,
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      apiKey,
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

func (p *ChatProvider) Name() string {
	return p.name
}

// GenerateResponse sends a system+user message pair and returns the first choice's text.
func (p *ChatProvider) GenerateResponse(ctx context.Context, prompt string, systemPrompt string) (string, error) {
	reqBody := ChatRequest{
		Model: p.model,
		Messages: []Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: p.temperature,
		MaxTokens:   p.maxTokens,
		Stream:      false,
	}

	jsonBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", p.fail(KindRequest, 0, "marshal request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(jsonBytes))
	if err != nil {
		return "", p.fail(KindRequest, 0, "create request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	res, err := p.httpClient.Do(req)
	if err != nil {
		return "", p.fail(KindRequest, 0, "", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", p.fail(KindDecode, res.StatusCode, "read body", err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return "", p.fail(KindStatus, res.StatusCode, snippet(body), nil)
	}

	var response ChatResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", p.fail(KindDecode, res.StatusCode, "", err)
	}
	if response.Error != nil && response.Error.Message != "" {
		return "", p.fail(KindStatus, res.StatusCode, response.Error.Message, nil)
	}
	if len(response.Choices) == 0 {
		return "", p.fail(KindEmpty, res.StatusCode, "no choices in response", nil)
	}
	if response.Choices[0].Message.Content == "" {
		return "", p.fail(KindEmpty, res.StatusCode, "no text in response", nil)
	}

	return response.Choices[0].Message.Content, nil
}

func (p *ChatProvider) fail(kind ErrorKind, status int, msg string, err error) error {
	return &APIError{Provider: p.name, Kind: kind, StatusCode: status, Message: msg, Err: err}
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 300 {
		s = s[:300] + "..."
	}
	return fmt.Sprintf("body=%s", s)
}
