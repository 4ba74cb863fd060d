package clients

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// groqBaseURL is Groq's OpenAI-compatible endpoint.
const groqBaseURL = "https://api.groq.com/openai/v1"

// GroqConfig configures the completion-model façade. Model, MaxTokens and
// Temperature are the service-level defaults applied when a caller leaves the
// per-call options unset.
type GroqConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int64
	Temperature float64
}

// ChatMessage is one role-tagged message of a completion conversation.
// Role is conventionally "system", "user" or "assistant".
type ChatMessage struct {
	Role    string
	Content string
}

// CompleteOptions carries per-call overrides. Zero values fall back to the
// configured service defaults.
type CompleteOptions struct {
	Temperature float64
	MaxTokens   int64
}

// GroqClient wraps Groq's chat-completion API behind the uniform façade
// contract. A zero-value client is disabled.
type GroqClient struct {
	api         *openai.Client
	model       string
	maxTokens   int64
	temperature float64
}

// NewGroqClient builds the completion-model façade. A missing API key
// produces a disabled façade. No verification call is made: the first
// completion surfaces credential problems as a CompletionError.
func NewGroqClient(cfg GroqConfig) (*GroqClient, error) {
	if cfg.APIKey == "" {
		log.Printf("groq api key not configured; completion-model disabled")
		return &GroqClient{}, nil
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = groqBaseURL
	}
	api := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(baseURL),
	)
	log.Printf("groq client ready, model %s", cfg.Model)
	return &GroqClient{
		api:         &api,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}, nil
}

// Enabled reports whether the façade holds a live connection.
func (c *GroqClient) Enabled() bool {
	return c != nil && c.api != nil
}

// Complete generates text from an ordered conversation. Every API failure is
// a CompletionError; there is no not-found case.
func (c *GroqClient) Complete(ctx context.Context, messages []ChatMessage, opts CompleteOptions) (string, error) {
	if !c.Enabled() {
		return "", fmt.Errorf("groq: %w", ErrNotConfigured)
	}

	temperature := opts.Temperature
	if temperature == 0 {
		temperature = c.temperature
	}
	maxTokens := opts.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.maxTokens
	}

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.model),
		Messages:    make([]openai.ChatCompletionMessageParamUnion, 0, len(messages)),
		Temperature: openai.Float(temperature),
		MaxTokens:   openai.Int(maxTokens),
	}
	for _, message := range messages {
		switch message.Role {
		case "system":
			params.Messages = append(params.Messages, openai.SystemMessage(message.Content))
		case "assistant":
			params.Messages = append(params.Messages, openai.AssistantMessage(message.Content))
		default:
			params.Messages = append(params.Messages, openai.UserMessage(message.Content))
		}
	}

	completion, err := c.api.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", &CompletionError{StatusCode: apiErr.StatusCode, Message: apiErr.Error()}
		}
		return "", &CompletionError{Message: err.Error()}
	}
	if len(completion.Choices) == 0 {
		return "", &CompletionError{Message: "completion returned no choices"}
	}
	return completion.Choices[0].Message.Content, nil
}

// AnalyzeCode runs a code-review completion over a single file.
func (c *GroqClient) AnalyzeCode(ctx context.Context, code, language string) (string, error) {
	return c.Complete(ctx, []ChatMessage{
		{Role: "system", Content: "You are a code analysis expert. Analyze the provided code for quality, potential issues, and suggestions for improvement."},
		{Role: "user", Content: fmt.Sprintf("Please analyze this %s code:\n\n%s", language, code)},
	}, CompleteOptions{Temperature: 0.3})
}

// GenerateDocumentation runs a documentation-writing completion over a file.
func (c *GroqClient) GenerateDocumentation(ctx context.Context, code, language string) (string, error) {
	return c.Complete(ctx, []ChatMessage{
		{Role: "system", Content: "You are a technical documentation expert. Generate clear and comprehensive documentation for the provided code."},
		{Role: "user", Content: fmt.Sprintf("Please generate documentation for this %s code:\n\n%s", language, code)},
	}, CompleteOptions{Temperature: 0.2})
}

// Close is a no-op: the completion API is stateless token auth.
func (c *GroqClient) Close() error {
	return nil
}
