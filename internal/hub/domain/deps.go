package domain

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sbdi/devops-hub/internal/clients"
)

// IssueTracker is the sprint-facing surface handlers need from the
// issue-tracker façade.
type IssueTracker interface {
	SprintIssues(ctx context.Context, projectKey, sprintID string) ([]clients.Issue, error)
	Sprint(ctx context.Context, sprintID string) (*clients.Sprint, error)
	RecentClosedSprints(ctx context.Context, projectKey string, limit int) ([]clients.Sprint, error)
}

// CodeHost is the repository-facing surface handlers need from the code-host
// façade.
type CodeHost interface {
	Content(ctx context.Context, owner, name, path string) (*clients.RepoContent, error)
}

// CIServer is the build-facing surface handlers need from the CI façade.
type CIServer interface {
	BuildInfo(ctx context.Context, jobName string, buildNumber int64) (*clients.BuildInfo, error)
}

// CompletionModel is the completion surface handlers need from the
// completion-model façade.
type CompletionModel interface {
	Complete(ctx context.Context, messages []clients.ChatMessage, opts clients.CompleteOptions) (string, error)
	AnalyzeCode(ctx context.Context, code, language string) (string, error)
	GenerateDocumentation(ctx context.Context, code, language string) (string, error)
}

// textResult wraps plain text in a successful tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

// errorResult wraps a human-readable failure message in a tool result. The
// message travels as tool output, not as a protocol fault.
func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: message}},
	}
}

// serviceUnavailable renders façade errors for the one case handlers treat
// specially: a service that was never configured.
func serviceUnavailable(service string, err error) string {
	if errors.Is(err, clients.ErrNotConfigured) {
		return fmt.Sprintf("%s is not configured", service)
	}
	return err.Error()
}
