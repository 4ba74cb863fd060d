package domain

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// insightsSystemPrompt frames the sampling conversation for the insights tool.
const insightsSystemPrompt = "You are an AI assistant specialized in software development and DevOps. " +
	"Analyze the provided context and answer the question with detailed insights."

// InsightsInput carries the context and question for AI-generated insights.
type InsightsInput struct {
	Context  string `json:"context" jsonschema:"context information for the AI to analyze"`
	Question string `json:"question" jsonschema:"specific question or analysis request"`
}

// InsightsHandler generates insights through the sampling bridge: the request
// is serviced by the connected peer rather than a server-side model.
func InsightsHandler() mcp.ToolHandlerFor[InsightsInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input InsightsInput) (*mcp.CallToolResult, any, error) {
		var provider SamplingProvider
		if req != nil && req.Session != nil {
			provider = req.Session
		}

		response := Sample(ctx, provider, SamplingRequest{
			Messages: []SamplingMessage{
				{Role: "system", Content: insightsSystemPrompt},
				{Role: "user", Content: fmt.Sprintf("Context:\n%s\n\nQuestion: %s", input.Context, input.Question)},
			},
			// Focused answers, but with room for detail.
			Temperature: 0.3,
			MaxTokens:   1500,
		})

		if response.FinishReason == FinishReasonError {
			return errorResult(fmt.Sprintf("Error generating insights: %s", response.Content)), nil, nil
		}
		return textResult(response.Content), nil, nil
	}
}
