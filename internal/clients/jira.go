package clients

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	jira "github.com/andygrunwald/go-jira"
)

const serviceJira = "jira"

// jiraMaxSearchResults bounds a single sprint-issue search. Sprints in
// practice hold a few dozen issues; the agile API caps pages at 100 anyway.
const jiraMaxSearchResults = 100

// JiraConfig configures the issue-tracker façade.
type JiraConfig struct {
	URL              string
	Username         string
	APIToken         string
	BoardID          int
	StoryPointsField string
}

// Issue is the typed projection of a Jira issue that report handlers consume.
type Issue struct {
	Key         string
	Summary     string
	Status      string
	Assignee    string
	StoryPoints float64
}

// Sprint is the typed projection of a Jira agile sprint.
type Sprint struct {
	ID      int
	Name    string
	State   string
	EndDate time.Time // zero when the sprint has no end date set
}

// JiraClient wraps the Jira REST API behind the uniform façade contract.
// A zero-value client is disabled: every operation reports ErrNotConfigured.
type JiraClient struct {
	api              *jira.Client
	httpClient       *http.Client
	boardID          int
	storyPointsField string
}

// NewJiraClient builds the issue-tracker façade. Missing credentials produce
// a disabled façade and no error; present-but-rejected credentials produce a
// RemoteServiceError.
func NewJiraClient(ctx context.Context, cfg JiraConfig) (*JiraClient, error) {
	if cfg.URL == "" || cfg.Username == "" || cfg.APIToken == "" {
		log.Printf("jira credentials not fully configured; issue-tracker disabled")
		return &JiraClient{}, nil
	}

	transport := jira.BasicAuthTransport{Username: cfg.Username, Password: cfg.APIToken}
	httpClient := transport.Client()
	api, err := jira.NewClient(httpClient, cfg.URL)
	if err != nil {
		return nil, remoteErr(serviceJira, 0, err)
	}

	client := &JiraClient{
		api:              api,
		httpClient:       httpClient,
		boardID:          cfg.BoardID,
		storyPointsField: cfg.StoryPointsField,
	}

	// Verify the credentials up front so a misconfigured tracker fails at
	// startup instead of on the first tool call.
	var me struct {
		DisplayName string `json:"displayName"`
	}
	if err := client.get(ctx, "rest/api/2/myself", &me); err != nil {
		return nil, err
	}
	log.Printf("jira client ready, authenticated as %s", me.DisplayName)
	return client, nil
}

// Enabled reports whether the façade holds a live connection.
func (c *JiraClient) Enabled() bool {
	return c != nil && c.api != nil
}

// validSprintID rejects non-numeric sprint identifiers before they reach JQL
// or a request path.
func validSprintID(sprintID string) error {
	if _, err := strconv.ParseInt(sprintID, 10, 64); err != nil {
		return fmt.Errorf("%s: sprint id %q is not numeric", serviceJira, sprintID)
	}
	return nil
}

// SprintIssues returns all issues of a sprint within a project.
func (c *JiraClient) SprintIssues(ctx context.Context, projectKey, sprintID string) ([]Issue, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("%s: %w", serviceJira, ErrNotConfigured)
	}
	if err := validSprintID(sprintID); err != nil {
		return nil, err
	}

	jql := fmt.Sprintf("project = %q AND sprint = %s", projectKey, sprintID)
	raw, resp, err := c.api.Issue.SearchWithContext(ctx, jql, &jira.SearchOptions{MaxResults: jiraMaxSearchResults})
	if err != nil {
		return nil, remoteErr(serviceJira, jiraStatus(resp), err)
	}

	issues := make([]Issue, 0, len(raw))
	for i := range raw {
		issues = append(issues, c.projectIssue(&raw[i]))
	}
	return issues, nil
}

// Sprint returns sprint details, or nil when the sprint does not exist.
func (c *JiraClient) Sprint(ctx context.Context, sprintID string) (*Sprint, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("%s: %w", serviceJira, ErrNotConfigured)
	}
	if err := validSprintID(sprintID); err != nil {
		return nil, err
	}

	req, err := c.api.NewRequestWithContext(ctx, http.MethodGet, "rest/agile/1.0/sprint/"+sprintID, nil)
	if err != nil {
		return nil, remoteErr(serviceJira, 0, err)
	}
	raw := new(jira.Sprint)
	resp, err := c.api.Do(req, raw)
	if err != nil {
		if jiraStatus(resp) == http.StatusNotFound {
			return nil, nil
		}
		return nil, remoteErr(serviceJira, jiraStatus(resp), err)
	}
	sprint := projectSprint(*raw)
	return &sprint, nil
}

// RecentClosedSprints returns up to limit recently closed sprints from the
// board configured for the project.
func (c *JiraClient) RecentClosedSprints(ctx context.Context, projectKey string, limit int) ([]Sprint, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("%s: %w", serviceJira, ErrNotConfigured)
	}
	// TODO: look up the board for projectKey instead of relying on the
	// configured board ID; requires the boards-by-project endpoint.
	_ = projectKey

	list, resp, err := c.api.Board.GetAllSprintsWithOptionsWithContext(ctx, c.boardID, &jira.GetAllSprintsOptions{
		State:         "closed",
		SearchOptions: jira.SearchOptions{MaxResults: limit},
	})
	if err != nil {
		return nil, remoteErr(serviceJira, jiraStatus(resp), err)
	}

	sprints := make([]Sprint, 0, limit)
	for _, raw := range list.Values {
		if len(sprints) == limit {
			break
		}
		sprints = append(sprints, projectSprint(raw))
	}
	return sprints, nil
}

// Close releases pooled HTTP connections. Basic-auth sessions hold no remote
// state, so closing twice is harmless.
func (c *JiraClient) Close() error {
	if c == nil || c.httpClient == nil {
		return nil
	}
	c.httpClient.CloseIdleConnections()
	return nil
}

// get performs a raw API GET for endpoints the SDK has no typed wrapper for.
func (c *JiraClient) get(ctx context.Context, path string, out any) error {
	req, err := c.api.NewRequestWithContext(ctx, http.MethodGet, path, nil)
	if err != nil {
		return remoteErr(serviceJira, 0, err)
	}
	resp, err := c.api.Do(req, out)
	if err != nil {
		return remoteErr(serviceJira, jiraStatus(resp), err)
	}
	return nil
}

func (c *JiraClient) projectIssue(raw *jira.Issue) Issue {
	issue := Issue{Key: raw.Key}
	if raw.Fields == nil {
		return issue
	}
	issue.Summary = raw.Fields.Summary
	if raw.Fields.Status != nil {
		issue.Status = raw.Fields.Status.Name
	}
	if raw.Fields.Assignee != nil {
		issue.Assignee = raw.Fields.Assignee.DisplayName
	}
	issue.StoryPoints = storyPoints(raw.Fields.Unknowns[c.storyPointsField])
	return issue
}

// storyPoints reads the estimate out of the custom field, which Jira returns
// as a JSON number or omits entirely.
func storyPoints(value any) float64 {
	switch n := value.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}

func projectSprint(raw jira.Sprint) Sprint {
	sprint := Sprint{ID: raw.ID, Name: raw.Name, State: raw.State}
	if raw.EndDate != nil {
		sprint.EndDate = *raw.EndDate
	}
	return sprint
}

func jiraStatus(resp *jira.Response) int {
	if resp == nil || resp.Response == nil {
		return 0
	}
	return resp.StatusCode
}
