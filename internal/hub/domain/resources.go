package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Resource URI templates served by the hub.
const (
	sprintTasksURITemplate = "issuetracker://project/{key}/sprint/{id}/tasks"
	repoContentURITemplate = "codehost://{owner}/{repo}/content"
	buildStatusURITemplate = "ci://{pipeline}/build/{number}/status"
)

// SprintTasksResourceTemplate describes the sprint task listing resource.
func SprintTasksResourceTemplate() *mcp.ResourceTemplate {
	return &mcp.ResourceTemplate{
		Name:        "sprint_tasks",
		Description: "Tasks of one sprint in an issue tracker project.",
		URITemplate: sprintTasksURITemplate,
		MIMEType:    "application/json",
	}
}

// RepoContentResourceTemplate describes the repository content resource. A
// path after /content addresses a file or subdirectory; none reads the root.
func RepoContentResourceTemplate() *mcp.ResourceTemplate {
	return &mcp.ResourceTemplate{
		Name:        "repo_content",
		Description: "File content or directory listing of a code host repository.",
		URITemplate: repoContentURITemplate,
		MIMEType:    "application/json",
	}
}

// BuildStatusResourceTemplate describes the CI build status resource.
func BuildStatusResourceTemplate() *mcp.ResourceTemplate {
	return &mcp.ResourceTemplate{
		Name:        "build_status",
		Description: "Status of one CI pipeline build.",
		URITemplate: buildStatusURITemplate,
		MIMEType:    "application/json",
	}
}

// SprintTasksResourceHandler serves issuetracker://project/{key}/sprint/{id}/tasks.
func SprintTasksResourceHandler(tracker IssueTracker) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		uri, err := requestURI(req)
		if err != nil {
			return nil, err
		}
		projectKey, sprintID, err := parseSprintTasksURI(uri)
		if err != nil {
			return nil, err
		}

		if tracker == nil {
			return jsonErrorResult(uri, "issue tracker is not configured"), nil
		}
		issues, err := tracker.SprintIssues(ctx, projectKey, sprintID)
		if err != nil {
			return jsonErrorResult(uri, serviceUnavailable("issue tracker", err)), nil
		}
		return jsonResult(uri, sprintTasksFromIssues(issues))
	}
}

// RepoContentResourceHandler serves codehost://{owner}/{repo}/content and
// codehost://{owner}/{repo}/content/{path}.
func RepoContentResourceHandler(host CodeHost) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		uri, err := requestURI(req)
		if err != nil {
			return nil, err
		}
		owner, repo, path, err := parseRepoContentURI(uri)
		if err != nil {
			return nil, err
		}

		if host == nil {
			return jsonErrorResult(uri, "code host is not configured"), nil
		}
		content, err := host.Content(ctx, owner, repo, path)
		if err != nil {
			return jsonErrorResult(uri, serviceUnavailable("code host", err)), nil
		}
		if content == nil {
			return jsonErrorResult(uri, fmt.Sprintf("path %q not found in %s/%s", path, owner, repo)), nil
		}

		payload := struct {
			Type    string     `json:"type"`
			Path    string     `json:"path"`
			Content string     `json:"content,omitempty"`
			Entries []dirEntry `json:"entries,omitempty"`
		}{Type: content.Type, Path: content.Path, Content: content.Content}
		for _, entry := range content.Entries {
			payload.Entries = append(payload.Entries, dirEntry{Name: entry.Name, Type: entry.Type})
		}
		return jsonResult(uri, payload)
	}
}

type dirEntry struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// BuildStatusResourceHandler serves ci://{pipeline}/build/{number}/status.
func BuildStatusResourceHandler(ci CIServer) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		uri, err := requestURI(req)
		if err != nil {
			return nil, err
		}
		pipeline, buildNumber, err := parseBuildStatusURI(uri)
		if err != nil {
			return nil, err
		}

		if ci == nil {
			return jsonErrorResult(uri, "ci server is not configured"), nil
		}
		build, err := ci.BuildInfo(ctx, pipeline, buildNumber)
		if err != nil {
			return jsonErrorResult(uri, serviceUnavailable("ci server", err)), nil
		}
		if build == nil {
			return jsonErrorResult(uri, fmt.Sprintf("build %d of %s not found", buildNumber, pipeline)), nil
		}

		payload := struct {
			Pipeline   string `json:"pipeline"`
			Build      int64  `json:"build"`
			Status     string `json:"status"`
			Building   bool   `json:"building"`
			Timestamp  string `json:"timestamp"`
			DurationMS int64  `json:"duration_ms"`
			URL        string `json:"url"`
		}{
			Pipeline:   pipeline,
			Build:      build.Number,
			Status:     build.Result,
			Building:   build.Building,
			Timestamp:  build.Timestamp.UTC().Format(time.RFC3339),
			DurationMS: build.Duration.Milliseconds(),
			URL:        build.URL,
		}
		return jsonResult(uri, payload)
	}
}

func requestURI(req *mcp.ReadResourceRequest) (string, error) {
	if req == nil || req.Params == nil || req.Params.URI == "" {
		return "", fmt.Errorf("resource uri is required")
	}
	return req.Params.URI, nil
}

// parseSprintTasksURI extracts project key and sprint ID from a URI of the
// form issuetracker://project/{key}/sprint/{id}/tasks.
func parseSprintTasksURI(uri string) (projectKey, sprintID string, err error) {
	rest, ok := strings.CutPrefix(uri, "issuetracker://")
	if !ok {
		return "", "", fmt.Errorf("unexpected resource uri %q; want %s", uri, sprintTasksURITemplate)
	}
	parts := strings.Split(rest, "/")
	if len(parts) != 5 || parts[0] != "project" || parts[2] != "sprint" || parts[4] != "tasks" || parts[1] == "" || parts[3] == "" {
		return "", "", fmt.Errorf("unexpected resource uri %q; want %s", uri, sprintTasksURITemplate)
	}
	return parts[1], parts[3], nil
}

// parseRepoContentURI extracts owner, repo, and optional path from a URI of
// the form codehost://{owner}/{repo}/content[/{path}].
func parseRepoContentURI(uri string) (owner, repo, path string, err error) {
	rest, ok := strings.CutPrefix(uri, "codehost://")
	if !ok {
		return "", "", "", fmt.Errorf("unexpected resource uri %q; want %s", uri, repoContentURITemplate)
	}
	parts := strings.SplitN(rest, "/", 4)
	if len(parts) < 3 || parts[0] == "" || parts[1] == "" || parts[2] != "content" {
		return "", "", "", fmt.Errorf("unexpected resource uri %q; want %s", uri, repoContentURITemplate)
	}
	if len(parts) == 4 {
		path = parts[3]
	}
	return parts[0], parts[1], path, nil
}

// parseBuildStatusURI extracts pipeline and build number from a URI of the
// form ci://{pipeline}/build/{number}/status.
func parseBuildStatusURI(uri string) (pipeline string, buildNumber int64, err error) {
	rest, ok := strings.CutPrefix(uri, "ci://")
	if !ok {
		return "", 0, fmt.Errorf("unexpected resource uri %q; want %s", uri, buildStatusURITemplate)
	}
	parts := strings.Split(rest, "/")
	if len(parts) != 4 || parts[0] == "" || parts[1] != "build" || parts[3] != "status" {
		return "", 0, fmt.Errorf("unexpected resource uri %q; want %s", uri, buildStatusURITemplate)
	}
	buildNumber, convErr := strconv.ParseInt(parts[2], 10, 64)
	if convErr != nil {
		return "", 0, fmt.Errorf("build number %q is not numeric", parts[2])
	}
	return parts[0], buildNumber, nil
}

// jsonResult marshals a payload into a JSON resource body.
func jsonResult(uri string, payload any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal resource payload: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{URI: uri, MIMEType: "application/json", Text: string(data)},
		},
	}, nil
}

// jsonErrorResult reports an upstream failure as a normal JSON payload so
// resource reads degrade instead of faulting.
func jsonErrorResult(uri, message string) *mcp.ReadResourceResult {
	data, _ := json.Marshal(map[string]string{"error": message})
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{URI: uri, MIMEType: "application/json", Text: string(data)},
		},
	}
}
