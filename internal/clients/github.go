package clients

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"
)

const serviceGitHub = "github"

// GitHubConfig configures the code-host façade. BaseURL is only needed for
// GitHub Enterprise installations.
type GitHubConfig struct {
	Token   string
	BaseURL string
}

// Repository is the typed projection of a code-host repository.
type Repository struct {
	FullName      string
	Description   string
	DefaultBranch string
	Language      string
	Stars         int
	OpenIssues    int
	Private       bool
}

// DirEntry describes one entry of a directory listing.
type DirEntry struct {
	Name string
	Type string
}

// RepoContent is the discriminated content of a repository path: a decoded
// file (Type "file") or a directory listing (Type "dir").
type RepoContent struct {
	Type    string
	Path    string
	Content string     // decoded file body, file only
	Entries []DirEntry // directory only
}

// GitHubClient wraps the GitHub REST API behind the uniform façade contract.
// A zero-value client is disabled.
type GitHubClient struct {
	api        *github.Client
	httpClient *http.Client
}

// NewGitHubClient builds the code-host façade. A missing token produces a
// disabled façade; a rejected token produces a RemoteServiceError.
func NewGitHubClient(ctx context.Context, cfg GitHubConfig) (*GitHubClient, error) {
	if cfg.Token == "" {
		log.Printf("github token not configured; code-host disabled")
		return &GitHubClient{}, nil
	}

	source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
	httpClient := oauth2.NewClient(ctx, source)
	api := github.NewClient(httpClient)
	if cfg.BaseURL != "" {
		enterprise, err := api.WithEnterpriseURLs(cfg.BaseURL, cfg.BaseURL)
		if err != nil {
			return nil, remoteErr(serviceGitHub, 0, err)
		}
		api = enterprise
	}

	user, resp, err := api.Users.Get(ctx, "")
	if err != nil {
		return nil, remoteErr(serviceGitHub, githubStatus(resp), err)
	}
	log.Printf("github client ready, authenticated as %s", user.GetLogin())
	return &GitHubClient{api: api, httpClient: httpClient}, nil
}

// Enabled reports whether the façade holds a live connection.
func (c *GitHubClient) Enabled() bool {
	return c != nil && c.api != nil
}

// Repository returns repository metadata, or nil when the repository does not
// exist or is not visible to the configured token.
func (c *GitHubClient) Repository(ctx context.Context, owner, name string) (*Repository, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("%s: %w", serviceGitHub, ErrNotConfigured)
	}

	raw, resp, err := c.api.Repositories.Get(ctx, owner, name)
	if err != nil {
		if githubStatus(resp) == http.StatusNotFound {
			return nil, nil
		}
		return nil, remoteErr(serviceGitHub, githubStatus(resp), err)
	}
	return &Repository{
		FullName:      raw.GetFullName(),
		Description:   raw.GetDescription(),
		DefaultBranch: raw.GetDefaultBranch(),
		Language:      raw.GetLanguage(),
		Stars:         raw.GetStargazersCount(),
		OpenIssues:    raw.GetOpenIssuesCount(),
		Private:       raw.GetPrivate(),
	}, nil
}

// Content returns the decoded file or directory listing at path, or nil when
// the path does not exist. An empty path reads the repository root.
func (c *GitHubClient) Content(ctx context.Context, owner, name, path string) (*RepoContent, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("%s: %w", serviceGitHub, ErrNotConfigured)
	}

	file, dir, resp, err := c.api.Repositories.GetContents(ctx, owner, name, path, nil)
	if err != nil {
		if githubStatus(resp) == http.StatusNotFound {
			return nil, nil
		}
		return nil, remoteErr(serviceGitHub, githubStatus(resp), err)
	}

	if file != nil {
		body, err := file.GetContent()
		if err != nil {
			return nil, remoteErr(serviceGitHub, 0, fmt.Errorf("decode content of %s: %w", file.GetPath(), err))
		}
		return &RepoContent{Type: "file", Path: file.GetPath(), Content: body}, nil
	}

	content := &RepoContent{Type: "dir", Path: path, Entries: make([]DirEntry, 0, len(dir))}
	for _, entry := range dir {
		content.Entries = append(content.Entries, DirEntry{Name: entry.GetName(), Type: entry.GetType()})
	}
	return content, nil
}

// Close releases pooled HTTP connections. Token auth holds no remote session
// state, so this is effectively a no-op and safe to repeat.
func (c *GitHubClient) Close() error {
	if c == nil || c.httpClient == nil {
		return nil
	}
	c.httpClient.CloseIdleConnections()
	return nil
}

func githubStatus(resp *github.Response) int {
	if resp == nil || resp.Response == nil {
		return 0
	}
	return resp.StatusCode
}
