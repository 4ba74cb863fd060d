package clients

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bndr/gojenkins"
)

const serviceJenkins = "jenkins"

// JenkinsConfig configures the CI façade.
type JenkinsConfig struct {
	URL      string
	Username string
	APIToken string
}

// JobInfo is the typed projection of a CI job.
type JobInfo struct {
	Name            string
	Description     string
	Color           string
	Buildable       bool
	InQueue         bool
	LastBuildNumber int64
	URL             string
}

// BuildInfo is the typed projection of one CI build.
type BuildInfo struct {
	Number    int64
	Result    string
	Building  bool
	Duration  time.Duration
	Timestamp time.Time
	URL       string
}

// JenkinsClient wraps the Jenkins REST API behind the uniform façade
// contract. Unlike the token-auth façades it owns an HTTP session that Close
// must release. A zero-value client is disabled.
type JenkinsClient struct {
	api        *gojenkins.Jenkins
	httpClient *http.Client
}

// NewJenkinsClient builds the CI façade. Missing credentials produce a
// disabled façade; an unreachable or rejecting server produces a
// RemoteServiceError from the initial connectivity poll.
func NewJenkinsClient(ctx context.Context, cfg JenkinsConfig) (*JenkinsClient, error) {
	if cfg.URL == "" || cfg.Username == "" || cfg.APIToken == "" {
		log.Printf("jenkins credentials not fully configured; ci disabled")
		return &JenkinsClient{}, nil
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}
	api := gojenkins.CreateJenkins(httpClient, strings.TrimRight(cfg.URL, "/"), cfg.Username, cfg.APIToken)
	if _, err := api.Init(ctx); err != nil {
		return nil, remoteErr(serviceJenkins, jenkinsStatus(err), err)
	}
	log.Printf("jenkins client ready at %s", cfg.URL)
	return &JenkinsClient{api: api, httpClient: httpClient}, nil
}

// Enabled reports whether the façade holds a live connection.
func (c *JenkinsClient) Enabled() bool {
	return c != nil && c.api != nil
}

// JobInfo returns job metadata, or nil when the job does not exist.
func (c *JenkinsClient) JobInfo(ctx context.Context, jobName string) (*JobInfo, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("%s: %w", serviceJenkins, ErrNotConfigured)
	}

	job, err := c.api.GetJob(ctx, jobName)
	if err != nil {
		if jenkinsStatus(err) == http.StatusNotFound {
			return nil, nil
		}
		return nil, remoteErr(serviceJenkins, jenkinsStatus(err), err)
	}
	return &JobInfo{
		Name:            job.Raw.Name,
		Description:     job.Raw.Description,
		Color:           job.Raw.Color,
		Buildable:       job.Raw.Buildable,
		InQueue:         job.Raw.InQueue,
		LastBuildNumber: job.Raw.LastBuild.Number,
		URL:             job.Raw.URL,
	}, nil
}

// BuildInfo returns one build of a job, or nil when the job or build does not
// exist.
func (c *JenkinsClient) BuildInfo(ctx context.Context, jobName string, buildNumber int64) (*BuildInfo, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("%s: %w", serviceJenkins, ErrNotConfigured)
	}

	build, err := c.api.GetBuild(ctx, jobName, buildNumber)
	if err != nil {
		if jenkinsStatus(err) == http.StatusNotFound {
			return nil, nil
		}
		return nil, remoteErr(serviceJenkins, jenkinsStatus(err), err)
	}
	return &BuildInfo{
		Number:    build.Raw.Number,
		Result:    build.Raw.Result,
		Building:  build.Raw.Building,
		Duration:  time.Duration(build.Raw.Duration) * time.Millisecond,
		Timestamp: build.GetTimestamp(),
		URL:       build.Raw.URL,
	}, nil
}

// Close releases the HTTP session shared by all calls on this façade.
// Idempotent: pooled connections can be closed any number of times.
func (c *JenkinsClient) Close() error {
	if c == nil || c.httpClient == nil {
		return nil
	}
	c.httpClient.CloseIdleConnections()
	return nil
}

// jenkinsStatus recovers the HTTP status gojenkins reports as a bare numeric
// error string (e.g. "404"). Zero when the error carries no status.
func jenkinsStatus(err error) int {
	if err == nil {
		return 0
	}
	status, convErr := strconv.Atoi(strings.TrimSpace(err.Error()))
	if convErr != nil {
		return 0
	}
	return status
}
