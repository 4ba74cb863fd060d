package domain

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func TestSample(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		provider := &fakeSamplingProvider{result: &mcp.CreateMessageResult{
			Content:    &mcp.TextContent{Text: "All clear."},
			StopReason: "endTurn",
		}}
		response := Sample(context.Background(), provider, SamplingRequest{
			Messages: []SamplingMessage{{Role: "user", Content: "How is the sprint going?"}},
		})
		if response.FinishReason != FinishReasonStop {
			t.Errorf("expected finish reason %q, got %q", FinishReasonStop, response.FinishReason)
		}
		if response.Content != "All clear." {
			t.Errorf("unexpected content: %q", response.Content)
		}
	})

	t.Run("system messages become the system prompt", func(t *testing.T) {
		provider := &fakeSamplingProvider{result: &mcp.CreateMessageResult{Content: &mcp.TextContent{Text: "ok"}}}
		Sample(context.Background(), provider, SamplingRequest{
			Messages: []SamplingMessage{
				{Role: "system", Content: "Be terse."},
				{Role: "user", Content: "Summarize."},
				{Role: "system", Content: "Answer in English."},
			},
		})
		if provider.params.SystemPrompt != "Be terse.\n\nAnswer in English." {
			t.Errorf("unexpected system prompt: %q", provider.params.SystemPrompt)
		}
		if len(provider.params.Messages) != 1 {
			t.Fatalf("expected 1 protocol message, got %d", len(provider.params.Messages))
		}
		if provider.params.Messages[0].Role != "user" {
			t.Errorf("expected user role, got %q", provider.params.Messages[0].Role)
		}
	})

	t.Run("default max tokens", func(t *testing.T) {
		provider := &fakeSamplingProvider{result: &mcp.CreateMessageResult{Content: &mcp.TextContent{Text: "ok"}}}
		Sample(context.Background(), provider, SamplingRequest{
			Messages: []SamplingMessage{{Role: "user", Content: "hi"}},
		})
		if provider.params.MaxTokens != defaultSamplingMaxTokens {
			t.Errorf("expected default max tokens %d, got %d", defaultSamplingMaxTokens, provider.params.MaxTokens)
		}
	})

	t.Run("explicit limits are preserved", func(t *testing.T) {
		provider := &fakeSamplingProvider{result: &mcp.CreateMessageResult{Content: &mcp.TextContent{Text: "ok"}}}
		Sample(context.Background(), provider, SamplingRequest{
			Messages:    []SamplingMessage{{Role: "user", Content: "hi"}},
			Temperature: 0.3,
			MaxTokens:   1500,
		})
		if provider.params.MaxTokens != 1500 {
			t.Errorf("expected max tokens 1500, got %d", provider.params.MaxTokens)
		}
		if provider.params.Temperature != 0.3 {
			t.Errorf("expected temperature 0.3, got %v", provider.params.Temperature)
		}
	})

	t.Run("nil provider", func(t *testing.T) {
		response := Sample(context.Background(), nil, SamplingRequest{
			Messages: []SamplingMessage{{Role: "user", Content: "hi"}},
		})
		if response.FinishReason != FinishReasonError {
			t.Errorf("expected finish reason %q, got %q", FinishReasonError, response.FinishReason)
		}
		if !strings.Contains(response.Content, "no provider connected") {
			t.Errorf("unexpected content: %q", response.Content)
		}
	})

	t.Run("provider error", func(t *testing.T) {
		provider := &fakeSamplingProvider{err: fmt.Errorf("peer went away")}
		response := Sample(context.Background(), provider, SamplingRequest{
			Messages: []SamplingMessage{{Role: "user", Content: "hi"}},
		})
		if response.FinishReason != FinishReasonError {
			t.Errorf("expected finish reason %q, got %q", FinishReasonError, response.FinishReason)
		}
		if !strings.Contains(response.Content, "peer went away") {
			t.Errorf("unexpected content: %q", response.Content)
		}
	})

	t.Run("error stop reason passes through", func(t *testing.T) {
		provider := &fakeSamplingProvider{result: &mcp.CreateMessageResult{
			Content:    &mcp.TextContent{Text: "model refused"},
			StopReason: "error",
		}}
		response := Sample(context.Background(), provider, SamplingRequest{
			Messages: []SamplingMessage{{Role: "user", Content: "hi"}},
		})
		if response.FinishReason != FinishReasonError {
			t.Errorf("expected finish reason %q, got %q", FinishReasonError, response.FinishReason)
		}
		if response.Content != "model refused" {
			t.Errorf("unexpected content: %q", response.Content)
		}
	})

	t.Run("nil result", func(t *testing.T) {
		response := Sample(context.Background(), &fakeSamplingProvider{}, SamplingRequest{
			Messages: []SamplingMessage{{Role: "user", Content: "hi"}},
		})
		if response.FinishReason != FinishReasonError {
			t.Errorf("expected finish reason %q, got %q", FinishReasonError, response.FinishReason)
		}
	})
}

func TestInsightsHandler(t *testing.T) {
	t.Run("no session", func(t *testing.T) {
		handler := InsightsHandler()
		result, _, err := handler(context.Background(), nil, InsightsInput{Context: "sprint data", Question: "status?"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Fatal("expected error result")
		}
		if text := resultText(t, result); !strings.Contains(text, "sampling is not available") {
			t.Errorf("unexpected message: %s", text)
		}
	})

	t.Run("nil session on request", func(t *testing.T) {
		handler := InsightsHandler()
		result, _, err := handler(context.Background(), &mcp.CallToolRequest{}, InsightsInput{Context: "sprint data", Question: "status?"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Fatal("expected error result")
		}
	})
}
