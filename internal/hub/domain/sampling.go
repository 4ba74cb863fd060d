package domain

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Finish reasons carried by SamplingResponse.
const (
	FinishReasonStop  = "stop"
	FinishReasonError = "error"
)

// defaultSamplingMaxTokens applies when a request leaves MaxTokens unset; the
// protocol requires a positive limit.
const defaultSamplingMaxTokens = 1000

// SamplingMessage is one role-tagged message of a sampling conversation.
// Roles are free text but conventionally "system", "user", or "assistant";
// order matters.
type SamplingMessage struct {
	Role    string
	Content string
}

// SamplingRequest asks the connected peer for a text completion.
type SamplingRequest struct {
	Messages    []SamplingMessage
	Temperature float64 // 0 means provider-defined
	MaxTokens   int64   // 0 means defaultSamplingMaxTokens
}

// SamplingResponse is the terminal outcome of a sampling round-trip. When
// FinishReason is FinishReasonError, Content carries the failure message.
type SamplingResponse struct {
	Content      string
	FinishReason string
}

// SamplingProvider services a sampling request. *mcp.ServerSession satisfies
// it, forwarding the request to whichever peer is on the other end of the
// connection; tests and alternative backends inject their own.
type SamplingProvider interface {
	CreateMessage(ctx context.Context, params *mcp.CreateMessageParams) (*mcp.CreateMessageResult, error)
}

// Sample performs one sampling round-trip. It never returns an error: every
// failure, including a missing provider, becomes a SamplingResponse with
// FinishReasonError so callers check the discriminator instead of recovering
// from panics or errors mid-handler.
func Sample(ctx context.Context, provider SamplingProvider, req SamplingRequest) SamplingResponse {
	if provider == nil {
		return SamplingResponse{
			Content:      "sampling is not available: no provider connected",
			FinishReason: FinishReasonError,
		}
	}

	params := &mcp.CreateMessageParams{
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	if params.MaxTokens == 0 {
		params.MaxTokens = defaultSamplingMaxTokens
	}
	for _, message := range req.Messages {
		// MCP carries the system role out of band.
		if message.Role == "system" {
			if params.SystemPrompt != "" {
				params.SystemPrompt += "\n\n"
			}
			params.SystemPrompt += message.Content
			continue
		}
		params.Messages = append(params.Messages, &mcp.SamplingMessage{
			Role:    mcp.Role(message.Role),
			Content: &mcp.TextContent{Text: message.Content},
		})
	}

	result, err := provider.CreateMessage(ctx, params)
	if err != nil {
		return SamplingResponse{
			Content:      fmt.Sprintf("sampling failed: %v", err),
			FinishReason: FinishReasonError,
		}
	}
	if result == nil {
		return SamplingResponse{
			Content:      "sampling failed: provider returned no result",
			FinishReason: FinishReasonError,
		}
	}

	content := contentText(result.Content)
	// Providers signal their own failures through the stop reason.
	if result.StopReason == FinishReasonError {
		return SamplingResponse{Content: content, FinishReason: FinishReasonError}
	}
	return SamplingResponse{Content: content, FinishReason: FinishReasonStop}
}

// contentText extracts the text of a content block, tolerating non-text
// blocks from permissive peers.
func contentText(content mcp.Content) string {
	if text, ok := content.(*mcp.TextContent); ok && text != nil {
		return text.Text
	}
	return ""
}
