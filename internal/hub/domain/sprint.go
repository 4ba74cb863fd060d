package domain

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sbdi/devops-hub/internal/clients"
)

const (
	// sprintDays is the assumed sprint length used by burndown prediction.
	sprintDays = 10
	// velocitySprints is how many closed sprints feed the velocity average.
	velocitySprints = 3
)

// SprintReportInput identifies the sprint a report is generated for.
type SprintReportInput struct {
	ProjectKey string `json:"project_key" jsonschema:"issue tracker project key (e.g. 'PROJ')"`
	SprintID   string `json:"sprint_id" jsonschema:"numeric ID of the sprint"`
}

// SprintReportHandler generates a text report summarizing completed and
// remaining work for a sprint.
func SprintReportHandler(tracker IssueTracker) mcp.ToolHandlerFor[SprintReportInput, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SprintReportInput) (*mcp.CallToolResult, any, error) {
		if tracker == nil {
			return errorResult("Error generating report: issue tracker is not configured"), nil, nil
		}

		issues, err := tracker.SprintIssues(ctx, input.ProjectKey, input.SprintID)
		if err != nil {
			return errorResult(fmt.Sprintf("Error generating report: %s", serviceUnavailable("issue tracker", err))), nil, nil
		}

		stats := ComputeSprintStats(issues)
		return textResult(FormatSprintReport(input.ProjectKey, input.SprintID, stats)), nil, nil
	}
}

// BurndownHandler predicts whether the remaining sprint work will complete,
// using the average velocity of recent closed sprints.
func BurndownHandler(tracker IssueTracker) mcp.ToolHandlerFor[SprintReportInput, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SprintReportInput) (*mcp.CallToolResult, any, error) {
		if tracker == nil {
			return errorResult("Error predicting burndown: issue tracker is not configured"), nil, nil
		}

		prediction, err := predictBurndown(ctx, tracker, input.ProjectKey, input.SprintID, time.Now())
		if err != nil {
			return errorResult(fmt.Sprintf("Error predicting burndown: %s", serviceUnavailable("issue tracker", err))), nil, nil
		}
		return textResult(formatBurndown(input.ProjectKey, input.SprintID, prediction)), nil, nil
	}
}

// burndownPrediction is the computed intermediate behind the burndown report.
type burndownPrediction struct {
	totalPoints     float64
	remainingPoints float64
	avgVelocity     float64
	daysRemaining   int
	predictedLeft   float64
}

func (p burndownPrediction) onTrack() bool {
	return p.predictedLeft <= 0
}

// predictBurndown gathers current sprint progress and historical velocity.
// Velocity is the mean of completed points over the most recent closed
// sprints; prediction scales it by the share of the sprint still ahead.
func predictBurndown(ctx context.Context, tracker IssueTracker, projectKey, sprintID string, now time.Time) (burndownPrediction, error) {
	sprint, err := tracker.Sprint(ctx, sprintID)
	if err != nil {
		return burndownPrediction{}, err
	}
	if sprint == nil {
		return burndownPrediction{}, fmt.Errorf("sprint %s not found", sprintID)
	}

	issues, err := tracker.SprintIssues(ctx, projectKey, sprintID)
	if err != nil {
		return burndownPrediction{}, err
	}
	stats := ComputeSprintStats(issues)

	closed, err := tracker.RecentClosedSprints(ctx, projectKey, velocitySprints)
	if err != nil {
		return burndownPrediction{}, err
	}

	var velocitySum float64
	for _, past := range closed {
		pastIssues, err := tracker.SprintIssues(ctx, projectKey, strconv.Itoa(past.ID))
		if err != nil {
			return burndownPrediction{}, err
		}
		velocitySum += ComputeSprintStats(pastIssues).CompletedPoints
	}
	var avgVelocity float64
	if len(closed) > 0 {
		avgVelocity = velocitySum / float64(len(closed))
	}

	daysRemaining := 0
	if !sprint.EndDate.IsZero() {
		daysRemaining = int(sprint.EndDate.Sub(now).Hours() / 24)
		if daysRemaining < 0 {
			daysRemaining = 0
		}
	}

	remaining := stats.RemainingPoints()
	return burndownPrediction{
		totalPoints:     stats.TotalPoints,
		remainingPoints: remaining,
		avgVelocity:     avgVelocity,
		daysRemaining:   daysRemaining,
		predictedLeft:   remaining - avgVelocity*float64(daysRemaining)/sprintDays,
	}, nil
}

func formatBurndown(projectKey, sprintID string, p burndownPrediction) string {
	status := "AT RISK"
	if p.onTrack() {
		status = "ON TRACK"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Burndown Prediction for %s Sprint %s\n", projectKey, sprintID)
	fmt.Fprintf(&b, "Total Points: %s\n", formatPoints(p.totalPoints))
	fmt.Fprintf(&b, "Remaining Points: %s\n", formatPoints(p.remainingPoints))
	fmt.Fprintf(&b, "Average Team Velocity: %.1f points/sprint\n", p.avgVelocity)
	fmt.Fprintf(&b, "Days Remaining: %d\n", p.daysRemaining)
	fmt.Fprintf(&b, "Predicted Points at Sprint End: %.1f\n", math.Max(0, p.predictedLeft))
	fmt.Fprintf(&b, "Status: %s", status)
	return b.String()
}

// sprintTaskEntry is the JSON shape of one task in the sprint-tasks resource.
type sprintTaskEntry struct {
	Key         string  `json:"key"`
	Summary     string  `json:"summary"`
	Status      string  `json:"status"`
	Assignee    string  `json:"assignee,omitempty"`
	StoryPoints float64 `json:"story_points"`
}

// sprintTasksPayload is the JSON body of the sprint-tasks resource.
type sprintTasksPayload struct {
	Total int               `json:"total"`
	Tasks []sprintTaskEntry `json:"tasks"`
}

func sprintTasksFromIssues(issues []clients.Issue) sprintTasksPayload {
	payload := sprintTasksPayload{Total: len(issues), Tasks: make([]sprintTaskEntry, 0, len(issues))}
	for _, issue := range issues {
		payload.Tasks = append(payload.Tasks, sprintTaskEntry{
			Key:         issue.Key,
			Summary:     issue.Summary,
			Status:      issue.Status,
			Assignee:    issue.Assignee,
			StoryPoints: issue.StoryPoints,
		})
	}
	return payload
}
