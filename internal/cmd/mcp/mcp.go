// Package mcp parses hub command flags and starts the MCP server.
package mcp

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/sbdi/devops-hub/internal/clients"
	"github.com/sbdi/devops-hub/internal/hub/service"
	"github.com/sbdi/devops-hub/internal/platform/config"
	"github.com/sbdi/devops-hub/internal/platform/otel"
)

// Config holds hub command configuration. Service credentials are optional;
// a missing credential disables that service's tools instead of failing
// startup.
type Config struct {
	Transport string `env:"DEVOPS_HUB_MCP_TRANSPORT" envDefault:"stdio"`
	HTTPAddr  string `env:"DEVOPS_HUB_MCP_HTTP_ADDR" envDefault:"localhost:8081"`

	JiraURL              string `env:"DEVOPS_HUB_JIRA_URL"`
	JiraUsername         string `env:"DEVOPS_HUB_JIRA_USERNAME"`
	JiraAPIToken         string `env:"DEVOPS_HUB_JIRA_API_TOKEN"`
	JiraBoardID          int    `env:"DEVOPS_HUB_JIRA_BOARD_ID" envDefault:"1"`
	JiraStoryPointsField string `env:"DEVOPS_HUB_JIRA_STORY_POINTS_FIELD" envDefault:"customfield_10026"`

	GitHubToken   string `env:"DEVOPS_HUB_GITHUB_TOKEN"`
	GitHubBaseURL string `env:"DEVOPS_HUB_GITHUB_BASE_URL"`

	JenkinsURL      string `env:"DEVOPS_HUB_JENKINS_URL"`
	JenkinsUsername string `env:"DEVOPS_HUB_JENKINS_USERNAME"`
	JenkinsAPIToken string `env:"DEVOPS_HUB_JENKINS_API_TOKEN"`

	GroqAPIKey      string  `env:"DEVOPS_HUB_GROQ_API_KEY"`
	GroqBaseURL     string  `env:"DEVOPS_HUB_GROQ_BASE_URL"`
	GroqModel       string  `env:"DEVOPS_HUB_GROQ_MODEL" envDefault:"mixtral-8x7b-32768"`
	GroqMaxTokens   int64   `env:"DEVOPS_HUB_GROQ_MAX_TOKENS" envDefault:"32768"`
	GroqTemperature float64 `env:"DEVOPS_HUB_GROQ_TEMPERATURE" envDefault:"0.7"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.Transport, "transport", cfg.Transport, "Transport type: stdio or http")
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP server address (for HTTP transport)")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ClientConfig maps the flat command configuration onto the per-service
// client configuration.
func (c Config) ClientConfig() clients.Config {
	return clients.Config{
		Jira: clients.JiraConfig{
			URL:              c.JiraURL,
			Username:         c.JiraUsername,
			APIToken:         c.JiraAPIToken,
			BoardID:          c.JiraBoardID,
			StoryPointsField: c.JiraStoryPointsField,
		},
		GitHub: clients.GitHubConfig{
			Token:   c.GitHubToken,
			BaseURL: c.GitHubBaseURL,
		},
		Jenkins: clients.JenkinsConfig{
			URL:      c.JenkinsURL,
			Username: c.JenkinsUsername,
			APIToken: c.JenkinsAPIToken,
		},
		Groq: clients.GroqConfig{
			APIKey:      c.GroqAPIKey,
			BaseURL:     c.GroqBaseURL,
			Model:       c.GroqModel,
			MaxTokens:   c.GroqMaxTokens,
			Temperature: c.GroqTemperature,
		},
	}
}

// Run starts the MCP server with tracing hooks installed.
func Run(ctx context.Context, cfg Config) error {
	shutdown, err := otel.Setup(ctx, "mcp")
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			log.Printf("otel shutdown: %v", err)
		}
	}()

	return service.Run(ctx, service.Config{
		Transport: service.TransportKind(cfg.Transport),
		HTTPAddr:  cfg.HTTPAddr,
		Clients:   cfg.ClientConfig(),
	})
}
