package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// newTestGroqClient builds a façade against a local OpenAI-compatible server.
func newTestGroqClient(t *testing.T, handler http.HandlerFunc) *GroqClient {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewGroqClient(GroqConfig{
		APIKey:      "gsk_test",
		BaseURL:     server.URL,
		Model:       "mixtral-8x7b-32768",
		MaxTokens:   1024,
		Temperature: 0.7,
	})
	if err != nil {
		t.Fatalf("new groq client: %v", err)
	}
	return client
}

func completionBody(content string) string {
	return fmt.Sprintf(`{
		"id": "chatcmpl-1",
		"object": "chat.completion",
		"model": "mixtral-8x7b-32768",
		"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": %q}}]
	}`, content)
}

func TestNewGroqClient(t *testing.T) {
	t.Run("missing key disables the facade", func(t *testing.T) {
		client, err := NewGroqClient(GroqConfig{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if client.Enabled() {
			t.Fatal("expected disabled facade")
		}
		_, err = client.Complete(context.Background(), []ChatMessage{{Role: "user", Content: "hi"}}, CompleteOptions{})
		if !errors.Is(err, ErrNotConfigured) {
			t.Errorf("expected ErrNotConfigured, got %v", err)
		}
	})
}

func TestGroqComplete(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		var captured struct {
			Model       string  `json:"model"`
			Temperature float64 `json:"temperature"`
			MaxTokens   int64   `json:"max_tokens"`
			Messages    []struct {
				Role string `json:"role"`
			} `json:"messages"`
		}
		client := newTestGroqClient(t, func(w http.ResponseWriter, r *http.Request) {
			if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
				t.Errorf("decode request: %v", err)
			}
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, completionBody("All services are healthy."))
		})

		content, err := client.Complete(context.Background(), []ChatMessage{
			{Role: "system", Content: "You are terse."},
			{Role: "user", Content: "How is the pipeline?"},
			{Role: "assistant", Content: "Checking."},
			{Role: "user", Content: "And now?"},
		}, CompleteOptions{Temperature: 0.3, MaxTokens: 256})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if content != "All services are healthy." {
			t.Errorf("unexpected content: %q", content)
		}
		if captured.Model != "mixtral-8x7b-32768" {
			t.Errorf("unexpected model: %q", captured.Model)
		}
		if captured.Temperature != 0.3 || captured.MaxTokens != 256 {
			t.Errorf("expected per-call overrides, got temp=%v max=%d", captured.Temperature, captured.MaxTokens)
		}
		wantRoles := []string{"system", "user", "assistant", "user"}
		if len(captured.Messages) != len(wantRoles) {
			t.Fatalf("expected %d messages, got %d", len(wantRoles), len(captured.Messages))
		}
		for i, role := range wantRoles {
			if captured.Messages[i].Role != role {
				t.Errorf("message %d: expected role %q, got %q", i, role, captured.Messages[i].Role)
			}
		}
	})

	t.Run("zero options fall back to configured defaults", func(t *testing.T) {
		var captured struct {
			Temperature float64 `json:"temperature"`
			MaxTokens   int64   `json:"max_tokens"`
		}
		client := newTestGroqClient(t, func(w http.ResponseWriter, r *http.Request) {
			if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
				t.Errorf("decode request: %v", err)
			}
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, completionBody("ok"))
		})

		if _, err := client.Complete(context.Background(), []ChatMessage{{Role: "user", Content: "hi"}}, CompleteOptions{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if captured.Temperature != 0.7 || captured.MaxTokens != 1024 {
			t.Errorf("expected configured defaults, got temp=%v max=%d", captured.Temperature, captured.MaxTokens)
		}
	})

	t.Run("api failure is a completion error", func(t *testing.T) {
		client := newTestGroqClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"error": {"message": "invalid api key", "type": "invalid_request_error"}}`)
		})

		_, err := client.Complete(context.Background(), []ChatMessage{{Role: "user", Content: "hi"}}, CompleteOptions{})
		var completionErr *CompletionError
		if !errors.As(err, &completionErr) {
			t.Fatalf("expected CompletionError, got %v", err)
		}
		if completionErr.StatusCode != http.StatusUnauthorized {
			t.Errorf("expected status 401, got %d", completionErr.StatusCode)
		}
	})

	t.Run("empty choices is a completion error", func(t *testing.T) {
		client := newTestGroqClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"id": "chatcmpl-1", "object": "chat.completion", "choices": []}`)
		})

		_, err := client.Complete(context.Background(), []ChatMessage{{Role: "user", Content: "hi"}}, CompleteOptions{})
		var completionErr *CompletionError
		if !errors.As(err, &completionErr) {
			t.Fatalf("expected CompletionError, got %v", err)
		}
	})
}

func TestGroqPromptWrappers(t *testing.T) {
	var captured struct {
		Temperature float64 `json:"temperature"`
		Messages    []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	client := newTestGroqClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, completionBody("done"))
	})
	ctx := context.Background()

	t.Run("analyze code", func(t *testing.T) {
		if _, err := client.AnalyzeCode(ctx, "print('hi')", "py"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if captured.Temperature != 0.3 {
			t.Errorf("expected temperature 0.3, got %v", captured.Temperature)
		}
		if len(captured.Messages) != 2 || captured.Messages[0].Role != "system" {
			t.Fatalf("unexpected messages: %+v", captured.Messages)
		}
		if want := "analyze this py code"; !strings.Contains(captured.Messages[1].Content, want) {
			t.Errorf("expected %q in user message, got %q", want, captured.Messages[1].Content)
		}
	})

	t.Run("generate documentation", func(t *testing.T) {
		if _, err := client.GenerateDocumentation(ctx, "package db", "go"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if captured.Temperature != 0.2 {
			t.Errorf("expected temperature 0.2, got %v", captured.Temperature)
		}
		if want := "documentation for this go code"; !strings.Contains(captured.Messages[1].Content, want) {
			t.Errorf("expected %q in user message, got %q", want, captured.Messages[1].Content)
		}
	})
}
