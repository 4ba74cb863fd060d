package domain

import (
	"context"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sbdi/devops-hub/internal/clients"
)

type fakeIssueTracker struct {
	issuesBySprint map[string][]clients.Issue
	issuesErr      error
	sprint         *clients.Sprint
	sprintErr      error
	closedSprints  []clients.Sprint
	closedErr      error
}

func (f *fakeIssueTracker) SprintIssues(_ context.Context, _, sprintID string) ([]clients.Issue, error) {
	if f.issuesErr != nil {
		return nil, f.issuesErr
	}
	return f.issuesBySprint[sprintID], nil
}

func (f *fakeIssueTracker) Sprint(_ context.Context, _ string) (*clients.Sprint, error) {
	return f.sprint, f.sprintErr
}

func (f *fakeIssueTracker) RecentClosedSprints(_ context.Context, _ string, _ int) ([]clients.Sprint, error) {
	return f.closedSprints, f.closedErr
}

type fakeCodeHost struct {
	content    *clients.RepoContent
	contentErr error
}

func (f *fakeCodeHost) Content(_ context.Context, _, _, _ string) (*clients.RepoContent, error) {
	return f.content, f.contentErr
}

type fakeCIServer struct {
	build    *clients.BuildInfo
	buildErr error
}

func (f *fakeCIServer) BuildInfo(_ context.Context, _ string, _ int64) (*clients.BuildInfo, error) {
	return f.build, f.buildErr
}

type fakeCompletionModel struct {
	completeResp string
	completeErr  error
	analyzeResp  string
	analyzeErr   error
	docsResp     string
	docsErr      error
}

func (f *fakeCompletionModel) Complete(_ context.Context, _ []clients.ChatMessage, _ clients.CompleteOptions) (string, error) {
	return f.completeResp, f.completeErr
}

func (f *fakeCompletionModel) AnalyzeCode(_ context.Context, _, _ string) (string, error) {
	return f.analyzeResp, f.analyzeErr
}

func (f *fakeCompletionModel) GenerateDocumentation(_ context.Context, _, _ string) (string, error) {
	return f.docsResp, f.docsErr
}

type fakeSamplingProvider struct {
	result *mcp.CreateMessageResult
	err    error
	params *mcp.CreateMessageParams
}

func (f *fakeSamplingProvider) CreateMessage(_ context.Context, params *mcp.CreateMessageParams) (*mcp.CreateMessageResult, error) {
	f.params = params
	return f.result, f.err
}

// resultText extracts the text of a tool result's first content block.
func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil || len(result.Content) == 0 {
		t.Fatal("expected tool result with content")
	}
	text, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", result.Content[0])
	}
	return text.Text
}

// testSprintIssues is a sprint with two done issues and one in progress.
func testSprintIssues() []clients.Issue {
	return []clients.Issue{
		{Key: "TEST-1", Summary: "Build login page", Status: "Done", Assignee: "alice", StoryPoints: 3},
		{Key: "TEST-2", Summary: "Wire payment API", Status: "Done", Assignee: "bob", StoryPoints: 5},
		{Key: "TEST-3", Summary: "Fix flaky deploy", Status: "In Progress", Assignee: "carol", StoryPoints: 2},
	}
}
