package domain

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sbdi/devops-hub/internal/clients"
)

// statusDone is the issue status that counts as completed work.
const statusDone = "Done"

// SprintStats is the computed intermediate between sprint issues and any
// rendered report, so formatting stays a separate, swappable concern.
type SprintStats struct {
	TotalTasks      int
	CompletedTasks  int
	TotalPoints     float64
	CompletedPoints float64
	StatusCounts    map[string]int
	StatusOrder     []string // statuses in first-seen order, for stable rendering
}

// ComputeSprintStats aggregates totals, completion counts, and per-status
// breakdowns from a sprint's issues.
func ComputeSprintStats(issues []clients.Issue) SprintStats {
	stats := SprintStats{StatusCounts: make(map[string]int)}
	for _, issue := range issues {
		stats.TotalTasks++
		stats.TotalPoints += issue.StoryPoints
		if issue.Status == statusDone {
			stats.CompletedTasks++
			stats.CompletedPoints += issue.StoryPoints
		}
		if _, seen := stats.StatusCounts[issue.Status]; !seen {
			stats.StatusOrder = append(stats.StatusOrder, issue.Status)
		}
		stats.StatusCounts[issue.Status]++
	}
	return stats
}

// RemainingPoints is the story-point total of issues not yet done.
func (s SprintStats) RemainingPoints() float64 {
	return s.TotalPoints - s.CompletedPoints
}

// percent returns part/whole as a percentage, 0 when the denominator is zero.
func percent(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return part / whole * 100
}

// formatPoints renders story points without a trailing ".0" for whole values.
func formatPoints(points float64) string {
	return strconv.FormatFloat(points, 'f', -1, 64)
}

// FormatSprintReport renders the human-readable sprint report. Percentages
// always show one decimal place and read 0.0% when there is nothing to divide
// by.
func FormatSprintReport(projectKey, sprintID string, stats SprintStats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Sprint Report for %s Sprint %s\n", projectKey, sprintID)
	b.WriteString(strings.Repeat("=", 50))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Total Tasks: %d\n", stats.TotalTasks)
	fmt.Fprintf(&b, "Completed Tasks: %d (%.1f%%)\n", stats.CompletedTasks, percent(float64(stats.CompletedTasks), float64(stats.TotalTasks)))
	fmt.Fprintf(&b, "Total Story Points: %s\n", formatPoints(stats.TotalPoints))
	fmt.Fprintf(&b, "Completed Points: %s (%.1f%%)\n", formatPoints(stats.CompletedPoints), percent(stats.CompletedPoints, stats.TotalPoints))
	b.WriteString("\nTask Breakdown by Status:\n")
	for _, status := range stats.StatusOrder {
		fmt.Fprintf(&b, "- %s: %d\n", status, stats.StatusCounts[status])
	}
	return strings.TrimRight(b.String(), "\n")
}
