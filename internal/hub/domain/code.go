package domain

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// minCommentRatio is the comment share below which the assessment
	// recommends adding comments.
	minCommentRatio = 0.1
	// maxComplexity is the branch-count ceiling before the assessment flags
	// the file as complex.
	maxComplexity = 10
)

// CodeQualityInput identifies the repository path a quality assessment runs
// over.
type CodeQualityInput struct {
	Owner string `json:"owner" jsonschema:"code host repository owner"`
	Repo  string `json:"repo" jsonschema:"code host repository name"`
	Path  string `json:"path,omitempty" jsonschema:"path to a file or directory; empty for the repository root"`
}

// CodeMetrics is the computed intermediate of a single-file assessment.
type CodeMetrics struct {
	TotalLines   int
	CodeLines    int
	CommentLines int
	Complexity   int
}

// CommentRatio is the share of lines that are comments, 0 for an empty file.
func (m CodeMetrics) CommentRatio() float64 {
	return percent(float64(m.CommentLines), float64(m.TotalLines)) / 100
}

// branchKeywords count toward the rough complexity estimate. The set covers
// the branching constructs of the mainstream languages this tool sees.
var branchKeywords = []string{"if ", "for ", "while ", "case ", "except ", "def ", "func ", "class "}

// commentPrefixes mark a line as a comment for the ratio metric.
var commentPrefixes = []string{"#", "//"}

// MeasureCode computes the line and complexity metrics of one file body.
func MeasureCode(code string) CodeMetrics {
	metrics := CodeMetrics{}
	for _, line := range strings.Split(code, "\n") {
		metrics.TotalLines++
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if isComment(trimmed) {
			metrics.CommentLines++
		} else {
			metrics.CodeLines++
		}
		for _, keyword := range branchKeywords {
			if strings.Contains(line, keyword) {
				metrics.Complexity++
				break
			}
		}
	}
	return metrics
}

func isComment(trimmedLine string) bool {
	for _, prefix := range commentPrefixes {
		if strings.HasPrefix(trimmedLine, prefix) {
			return true
		}
	}
	return false
}

// FormatCodeAssessment renders the quality report for one file.
func FormatCodeAssessment(path string, m CodeMetrics) string {
	commentAdvice := "Comment ratio is good"
	if m.CommentRatio() < minCommentRatio {
		commentAdvice = "Add more comments"
	}
	complexityAdvice := "Complexity is acceptable"
	if m.Complexity > maxComplexity {
		complexityAdvice = "Consider breaking down complex logic"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Code Quality Assessment for %s\n", path)
	b.WriteString(strings.Repeat("=", 32))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Total Lines: %d\n", m.TotalLines)
	fmt.Fprintf(&b, "Lines of Code: %d\n", m.CodeLines)
	fmt.Fprintf(&b, "Comment Lines: %d\n", m.CommentLines)
	fmt.Fprintf(&b, "Comment Ratio: %.1f%%\n", m.CommentRatio()*100)
	fmt.Fprintf(&b, "Cyclomatic Complexity: %d\n", m.Complexity)
	b.WriteString("\nRecommendations:\n")
	fmt.Fprintf(&b, "- %s\n", commentAdvice)
	fmt.Fprintf(&b, "- %s", complexityAdvice)
	return b.String()
}

// CodeQualityHandler assesses a file's quality metrics or summarizes a
// directory.
func CodeQualityHandler(host CodeHost) mcp.ToolHandlerFor[CodeQualityInput, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CodeQualityInput) (*mcp.CallToolResult, any, error) {
		if host == nil {
			return errorResult("Error assessing code quality: code host is not configured"), nil, nil
		}

		content, err := host.Content(ctx, input.Owner, input.Repo, input.Path)
		if err != nil {
			return errorResult(fmt.Sprintf("Error assessing code quality: %s", serviceUnavailable("code host", err))), nil, nil
		}
		if content == nil {
			return errorResult(fmt.Sprintf("Error assessing code quality: path %q not found in %s/%s", input.Path, input.Owner, input.Repo)), nil, nil
		}

		if content.Type == "dir" {
			summary := fmt.Sprintf("Directory Summary for %s\nTotal files: %d\nUse specific file paths for detailed analysis",
				input.Path, len(content.Entries))
			return textResult(summary), nil, nil
		}

		return textResult(FormatCodeAssessment(content.Path, MeasureCode(content.Content))), nil, nil
	}
}

// CodeAnalysisHandler sends a file through the completion model's
// code-review prompt.
func CodeAnalysisHandler(host CodeHost, model CompletionModel) mcp.ToolHandlerFor[CodeQualityInput, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CodeQualityInput) (*mcp.CallToolResult, any, error) {
		code, path, errResult := fetchFileForCompletion(ctx, host, model, input, "analyzing code")
		if errResult != nil {
			return errResult, nil, nil
		}

		analysis, err := model.AnalyzeCode(ctx, code, languageFromPath(path))
		if err != nil {
			return errorResult(fmt.Sprintf("Error analyzing code: %s", serviceUnavailable("completion model", err))), nil, nil
		}
		return textResult(fmt.Sprintf("Code Analysis for %s\n%s\n%s", path, strings.Repeat("=", 50), analysis)), nil, nil
	}
}

// CodeDocumentationHandler sends a file through the completion model's
// documentation prompt.
func CodeDocumentationHandler(host CodeHost, model CompletionModel) mcp.ToolHandlerFor[CodeQualityInput, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CodeQualityInput) (*mcp.CallToolResult, any, error) {
		code, path, errResult := fetchFileForCompletion(ctx, host, model, input, "generating documentation")
		if errResult != nil {
			return errResult, nil, nil
		}

		docs, err := model.GenerateDocumentation(ctx, code, languageFromPath(path))
		if err != nil {
			return errorResult(fmt.Sprintf("Error generating documentation: %s", serviceUnavailable("completion model", err))), nil, nil
		}
		return textResult(fmt.Sprintf("Documentation for %s\n%s\n%s", path, strings.Repeat("=", 50), docs)), nil, nil
	}
}

// fetchFileForCompletion resolves the shared preconditions of the
// completion-backed code tools: both façades present, path resolves, and the
// path is a file rather than a directory.
func fetchFileForCompletion(ctx context.Context, host CodeHost, model CompletionModel, input CodeQualityInput, action string) (code, path string, errResult *mcp.CallToolResult) {
	if host == nil {
		return "", "", errorResult(fmt.Sprintf("Error %s: code host is not configured", action))
	}
	if model == nil {
		return "", "", errorResult(fmt.Sprintf("Error %s: completion model is not configured", action))
	}

	content, err := host.Content(ctx, input.Owner, input.Repo, input.Path)
	if err != nil {
		return "", "", errorResult(fmt.Sprintf("Error %s: %s", action, serviceUnavailable("code host", err)))
	}
	if content == nil {
		return "", "", errorResult(fmt.Sprintf("Error %s: path %q not found in %s/%s", action, input.Path, input.Owner, input.Repo))
	}
	if content.Type != "file" {
		return "", "", errorResult(fmt.Sprintf("Error %s: please provide a path to a specific file", action))
	}
	return content.Content, content.Path, nil
}

// languageFromPath guesses the language from the file extension, which is all
// the completion prompts need.
func languageFromPath(path string) string {
	if i := strings.LastIndex(path, "."); i >= 0 && i < len(path)-1 {
		return path[i+1:]
	}
	return "plain text"
}
