// Package service hosts the MCP server: it wires the upstream client bundle
// into tool, resource, and prompt registrations and runs the protocol loop
// over the configured transport.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sbdi/devops-hub/internal/clients"
	"github.com/sbdi/devops-hub/internal/hub/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// serverName identifies this MCP server to clients.
	serverName = "DevOps Visibility Hub"
	// serverVersion identifies the MCP server version.
	serverVersion = "0.1.0"
)

// TransportKind identifies the MCP transport implementation.
type TransportKind string

const (
	// TransportStdio uses standard input/output for MCP.
	TransportStdio TransportKind = "stdio"
	// TransportHTTP runs MCP over streamable HTTP for remote clients.
	TransportHTTP TransportKind = "http"
)

// defaultHTTPAddr binds localhost-only; remote exposure needs explicit opt-in.
const defaultHTTPAddr = "localhost:8081"

// httpShutdownTimeout bounds graceful HTTP shutdown after cancellation.
const httpShutdownTimeout = 5 * time.Second

// Config configures the MCP server.
type Config struct {
	Transport TransportKind
	HTTPAddr  string // HTTP listen address. Defaults to localhost:8081 for HTTP transport.
	Clients   clients.Config
}

// Server hosts the MCP server and the upstream client bundle behind it.
type Server struct {
	mcpServer *mcp.Server
	bundle    *clients.Bundle
}

type registrationModule struct {
	name     string
	register func(*mcp.Server)
}

const (
	sprintToolsModuleName  = "sprint-tools"
	codeToolsModuleName    = "code-tools"
	insightToolsModuleName = "insight-tools"
	resourcesModuleName    = "resources"
	promptsModuleName      = "prompts"
)

// tracerName is the instrumentation scope for tool invocation spans.
const tracerName = "github.com/sbdi/devops-hub/internal/hub/service"

// addTool registers a tool with a span wrapped around every invocation.
func addTool[In, Out any](server *mcp.Server, name, description string, handler mcp.ToolHandlerFor[In, Out]) {
	mcp.AddTool(server, &mcp.Tool{Name: name, Description: description}, tracedHandler(name, handler))
}

// tracedHandler records one span per tool call. Handler errors and IsError
// tool results both mark the span as failed; the result itself is unchanged.
func tracedHandler[In, Out any](toolName string, handler mcp.ToolHandlerFor[In, Out]) mcp.ToolHandlerFor[In, Out] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input In) (*mcp.CallToolResult, Out, error) {
		ctx, span := otel.Tracer(tracerName).Start(ctx, "tool "+toolName,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attribute.String("mcp.tool.name", toolName)),
		)
		defer span.End()

		result, output, err := handler(ctx, req, input)
		switch {
		case err != nil:
			span.SetStatus(codes.Error, err.Error())
		case result != nil && result.IsError:
			span.SetStatus(codes.Error, "tool reported an error result")
		default:
			span.SetStatus(codes.Ok, "")
		}
		return result, output, err
	}
}

// newRegistrationModules binds the bundle's clients into handler
// registrations. Unavailable clients register as nil dependencies so every
// tool stays listed and reports its own unavailability when called.
func newRegistrationModules(bundle *clients.Bundle) []registrationModule {
	var tracker domain.IssueTracker
	if bundle.Jira != nil {
		tracker = bundle.Jira
	}
	var host domain.CodeHost
	if bundle.GitHub != nil {
		host = bundle.GitHub
	}
	var ci domain.CIServer
	if bundle.Jenkins != nil {
		ci = bundle.Jenkins
	}
	var model domain.CompletionModel
	if bundle.Groq != nil {
		model = bundle.Groq
	}

	return []registrationModule{
		{
			name: sprintToolsModuleName,
			register: func(server *mcp.Server) {
				addTool(server, "generate_sprint_report",
					"Generate a report of completed and remaining work for a sprint.",
					domain.SprintReportHandler(tracker))
				addTool(server, "predict_burndown",
					"Predict whether the remaining sprint work will complete, from recent team velocity.",
					domain.BurndownHandler(tracker))
			},
		},
		{
			name: codeToolsModuleName,
			register: func(server *mcp.Server) {
				addTool(server, "assess_code_quality",
					"Assess line, comment, and complexity metrics of a repository file.",
					domain.CodeQualityHandler(host))
				addTool(server, "analyze_code_with_groq",
					"Analyze a repository file for quality, bugs, and improvements using Groq.",
					domain.CodeAnalysisHandler(host, model))
				addTool(server, "generate_code_documentation",
					"Generate documentation for a repository file using Groq.",
					domain.CodeDocumentationHandler(host, model))
			},
		},
		{
			name: insightToolsModuleName,
			register: func(server *mcp.Server) {
				addTool(server, "generate_ai_insights",
					"Answer a DevOps question over provided context, sampled through the connected client.",
					domain.InsightsHandler())
			},
		},
		{
			name: resourcesModuleName,
			register: func(server *mcp.Server) {
				server.AddResourceTemplate(domain.SprintTasksResourceTemplate(), domain.SprintTasksResourceHandler(tracker))
				server.AddResourceTemplate(domain.RepoContentResourceTemplate(), domain.RepoContentResourceHandler(host))
				server.AddResourceTemplate(domain.BuildStatusResourceTemplate(), domain.BuildStatusResourceHandler(ci))
			},
		},
		{
			name: promptsModuleName,
			register: func(server *mcp.Server) {
				server.AddPrompt(domain.RetrospectivePrompt(), domain.RetrospectivePromptHandler(tracker))
			},
		},
	}
}

// NewServer builds the upstream client bundle and registers every handler.
// Construction never fails: clients that cannot connect register as
// unavailable and the remaining surface stays usable.
func NewServer(ctx context.Context, cfg clients.Config) *Server {
	return newServer(clients.NewBundle(ctx, cfg))
}

func newServer(bundle *clients.Bundle) *Server {
	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)
	for _, module := range newRegistrationModules(bundle) {
		module.register(mcpServer)
		log.Printf("registered MCP module %q", module.name)
	}
	return &Server{mcpServer: mcpServer, bundle: bundle}
}

// Run is the service entrypoint and blocks until context cancellation.
func Run(ctx context.Context, cfg Config) error {
	if cfg.Transport == "" {
		cfg.Transport = TransportStdio
	}

	switch cfg.Transport {
	case TransportStdio:
		server := NewServer(ctx, cfg.Clients)
		return server.serveWithTransport(ctx, &mcp.StdioTransport{})
	case TransportHTTP:
		return runWithHTTPTransport(ctx, cfg)
	default:
		return fmt.Errorf("transport %q is not supported", cfg.Transport)
	}
}

// Close releases the upstream clients held by the server.
func (s *Server) Close() {
	if s == nil || s.bundle == nil {
		return
	}
	s.bundle.Close()
}

// serveWithTransport runs the MCP server over the provided transport. The
// protocol loop and the client bundle share a single exit path so cleanup is
// consistent for both stdio and HTTP runs.
func (s *Server) serveWithTransport(ctx context.Context, transport mcp.Transport) error {
	if s == nil || s.mcpServer == nil {
		return fmt.Errorf("MCP server is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	err := s.mcpServer.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}
	s.Close()
	if err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}

// runWithHTTPTransport serves the MCP server over streamable HTTP. Every
// request is routed to the same server instance so upstream clients are
// shared across sessions.
func runWithHTTPTransport(ctx context.Context, cfg Config) error {
	httpAddr := cfg.HTTPAddr
	if httpAddr == "" {
		httpAddr = defaultHTTPAddr
	}

	server := NewServer(ctx, cfg.Clients)
	defer server.Close()

	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server.mcpServer
	}, nil)
	httpServer := &http.Server{
		Addr:              httpAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), httpShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP shutdown: %v", err)
		}
	}()

	log.Printf("MCP HTTP server listening on %s", httpAddr)
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		err = nil
		<-shutdownDone
	}
	if err != nil {
		return fmt.Errorf("serve MCP over HTTP: %w", err)
	}
	return nil
}
