package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RetrospectivePrompt describes the sprint retrospective guidance prompt.
func RetrospectivePrompt() *mcp.Prompt {
	return &mcp.Prompt{
		Name:        "sprint_retrospective_guidance",
		Description: "Guide a sprint retrospective using the sprint's report and burndown data.",
		Arguments: []*mcp.PromptArgument{
			{Name: "project_key", Description: "Issue tracker project key.", Required: true},
			{Name: "sprint_id", Description: "Sprint identifier.", Required: true},
		},
	}
}

// RetrospectivePromptHandler seeds a retrospective conversation with the
// sprint report and burndown prediction. When sprint data cannot be fetched
// the prompt still returns usable guidance so a client can proceed.
func RetrospectivePromptHandler(tracker IssueTracker) mcp.PromptHandler {
	return func(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		projectKey := req.Params.Arguments["project_key"]
		sprintID := req.Params.Arguments["sprint_id"]
		if projectKey == "" || sprintID == "" {
			return nil, fmt.Errorf("project_key and sprint_id arguments are required")
		}

		summary := retrospectiveSummary(ctx, tracker, projectKey, sprintID)
		return &mcp.GetPromptResult{
			Description: fmt.Sprintf("Retrospective guidance for %s sprint %s", projectKey, sprintID),
			Messages: []*mcp.PromptMessage{
				{
					Role: "user",
					Content: &mcp.TextContent{Text: fmt.Sprintf(
						"We are running a retrospective for sprint %s of project %s. Here is the sprint data:\n\n%s",
						sprintID, projectKey, summary)},
				},
				{
					Role: "assistant",
					Content: &mcp.TextContent{Text: "I have reviewed the sprint data. " +
						"I will help you structure the retrospective around what went well, " +
						"what did not, and what to change next sprint."},
				},
				{
					Role: "user",
					Content: &mcp.TextContent{Text: "Based on the data above, suggest three discussion " +
						"topics for the retrospective and one concrete improvement action for the team."},
				},
			},
		}, nil
	}
}

// retrospectiveSummary gathers the sprint report and burndown prediction,
// degrading to a note when either is unavailable.
func retrospectiveSummary(ctx context.Context, tracker IssueTracker, projectKey, sprintID string) string {
	if tracker == nil {
		return "Sprint data is unavailable: issue tracker is not configured."
	}

	issues, err := tracker.SprintIssues(ctx, projectKey, sprintID)
	if err != nil {
		return fmt.Sprintf("Sprint data is unavailable: %s.", serviceUnavailable("issue tracker", err))
	}
	report := FormatSprintReport(projectKey, sprintID, ComputeSprintStats(issues))

	prediction, err := predictBurndown(ctx, tracker, projectKey, sprintID, time.Now())
	if err != nil {
		return fmt.Sprintf("%s\n\nBurndown prediction unavailable: %s.", report, serviceUnavailable("issue tracker", err))
	}
	return report + "\n\n" + formatBurndown(projectKey, sprintID, prediction)
}
