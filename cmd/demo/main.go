// The demo command is an interactive MCP client for the hub. It spawns the
// server as a subprocess on stdio, walks its tools, resources, and prompts
// from a terminal menu, and services sampling requests with a local Groq
// client so generate_ai_insights works end to end. A couple of menu items
// bypass MCP and hit the service façades directly, to contrast the two
// access paths.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sbdi/devops-hub/internal/clients"
	mcpcmd "github.com/sbdi/devops-hub/internal/cmd/mcp"
	"github.com/sbdi/devops-hub/internal/platform/config"
)

func main() {
	serverCmd := flag.String("server", "", "server binary to spawn; empty runs 'go run ./cmd/mcp'")
	flag.Parse()
	log.SetPrefix("[demo] ")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var cfg mcpcmd.Config
	if err := config.ParseEnv(&cfg); err != nil {
		log.Fatalf("parse env: %v", err)
	}
	bundle := clients.NewBundle(ctx, cfg.ClientConfig())
	defer bundle.Close()

	session, err := connect(ctx, *serverCmd, bundle.Groq, cfg.GroqModel)
	if err != nil {
		log.Fatalf("connect to server: %v", err)
	}
	defer func() { _ = session.Close() }()

	fmt.Println("Connected to", session.InitializeResult().ServerInfo.Name)
	runMenu(ctx, session, bundle)
}

// connect spawns the server subprocess and attaches a client with a local
// sampling handler.
func connect(ctx context.Context, serverCmd string, groq *clients.GroqClient, model string) (*mcp.ClientSession, error) {
	var cmd *exec.Cmd
	if serverCmd != "" {
		cmd = exec.Command(serverCmd)
	} else {
		cmd = exec.Command("go", "run", "./cmd/mcp")
	}
	cmd.Env = os.Environ()
	cmd.Stderr = os.Stderr

	client := mcp.NewClient(&mcp.Implementation{Name: "devops-hub-demo", Version: "0.1.0"}, &mcp.ClientOptions{
		CreateMessageHandler: samplingHandler(groq, model),
	})
	return client.Connect(ctx, &mcp.CommandTransport{Command: cmd}, nil)
}

// samplingHandler services the server's sampling requests with the local
// Groq client. Failures are reported through the stop reason so the server
// sees a completed round-trip rather than a protocol fault.
func samplingHandler(groq *clients.GroqClient, model string) func(context.Context, *mcp.CreateMessageRequest) (*mcp.CreateMessageResult, error) {
	return func(ctx context.Context, req *mcp.CreateMessageRequest) (*mcp.CreateMessageResult, error) {
		messages := make([]clients.ChatMessage, 0, len(req.Params.Messages)+1)
		if req.Params.SystemPrompt != "" {
			messages = append(messages, clients.ChatMessage{Role: "system", Content: req.Params.SystemPrompt})
		}
		for _, message := range req.Params.Messages {
			text, ok := message.Content.(*mcp.TextContent)
			if !ok {
				continue
			}
			messages = append(messages, clients.ChatMessage{Role: string(message.Role), Content: text.Text})
		}

		content, err := groq.Complete(ctx, messages, clients.CompleteOptions{
			Temperature: req.Params.Temperature,
			MaxTokens:   req.Params.MaxTokens,
		})
		if err != nil {
			return &mcp.CreateMessageResult{
				Content:    &mcp.TextContent{Text: fmt.Sprintf("Error generating response: %v", err)},
				Model:      model,
				Role:       "assistant",
				StopReason: "error",
			}, nil
		}
		return &mcp.CreateMessageResult{
			Content:    &mcp.TextContent{Text: content},
			Model:      model,
			Role:       "assistant",
			StopReason: "endTurn",
		}, nil
	}
}

const menu = `
DevOps Visibility Hub demo
 1) Sprint report
 2) Burndown prediction
 3) Repository contents (resource)
 4) CI build status (resource)
 5) Code quality assessment
 6) Analyze code with Groq
 7) Sprint retrospective prompt
 8) AI insights (sampling round-trip)
 9) Repository overview (direct client call)
10) CI job overview (direct client call)
 0) Exit
`

func runMenu(ctx context.Context, session *mcp.ClientSession, bundle *clients.Bundle) {
	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print(menu, "choice> ")
		choice, err := readLine(reader)
		if err != nil {
			return
		}

		switch choice {
		case "0", "exit", "quit":
			return
		case "1":
			project, sprint := askSprint(reader)
			callTool(ctx, session, "generate_sprint_report", map[string]any{"project_key": project, "sprint_id": sprint})
		case "2":
			project, sprint := askSprint(reader)
			callTool(ctx, session, "predict_burndown", map[string]any{"project_key": project, "sprint_id": sprint})
		case "3":
			owner := ask(reader, "repository owner")
			repo := ask(reader, "repository name")
			path := ask(reader, "path (empty for root)")
			uri := fmt.Sprintf("codehost://%s/%s/content", owner, repo)
			if path != "" {
				uri += "/" + path
			}
			readResource(ctx, session, uri)
		case "4":
			pipeline := ask(reader, "pipeline name")
			build := ask(reader, "build number")
			if _, err := strconv.ParseInt(build, 10, 64); err != nil {
				fmt.Println("build number must be numeric")
				continue
			}
			readResource(ctx, session, fmt.Sprintf("ci://%s/build/%s/status", pipeline, build))
		case "5":
			owner := ask(reader, "repository owner")
			repo := ask(reader, "repository name")
			path := ask(reader, "file path")
			callTool(ctx, session, "assess_code_quality", map[string]any{"owner": owner, "repo": repo, "path": path})
		case "6":
			owner := ask(reader, "repository owner")
			repo := ask(reader, "repository name")
			path := ask(reader, "file path")
			callTool(ctx, session, "analyze_code_with_groq", map[string]any{"owner": owner, "repo": repo, "path": path})
		case "7":
			project, sprint := askSprint(reader)
			getPrompt(ctx, session, project, sprint)
		case "8":
			contextText := ask(reader, "context")
			question := ask(reader, "question")
			callTool(ctx, session, "generate_ai_insights", map[string]any{"context": contextText, "question": question})
		case "9":
			owner := ask(reader, "repository owner")
			repo := ask(reader, "repository name")
			showRepository(ctx, bundle.GitHub, owner, repo)
		case "10":
			showJob(ctx, bundle.Jenkins, ask(reader, "pipeline name"))
		default:
			fmt.Println("unknown choice")
		}
	}
}

func readLine(reader *bufio.Reader) (string, error) {
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func ask(reader *bufio.Reader, label string) string {
	fmt.Printf("%s> ", label)
	value, err := readLine(reader)
	if err != nil {
		return ""
	}
	return value
}

func askSprint(reader *bufio.Reader) (project, sprint string) {
	return ask(reader, "project key"), ask(reader, "sprint id")
}

func callTool(ctx context.Context, session *mcp.ClientSession, name string, args map[string]any) {
	result, err := session.CallTool(ctx, &mcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		fmt.Println("call failed:", err)
		return
	}
	for _, content := range result.Content {
		if text, ok := content.(*mcp.TextContent); ok {
			fmt.Println(text.Text)
		}
	}
}

func readResource(ctx context.Context, session *mcp.ClientSession, uri string) {
	result, err := session.ReadResource(ctx, &mcp.ReadResourceParams{URI: uri})
	if err != nil {
		fmt.Println("read failed:", err)
		return
	}
	for _, content := range result.Contents {
		fmt.Println(content.Text)
	}
}

// showRepository hits the code-host façade directly, without going through
// the MCP session.
func showRepository(ctx context.Context, host *clients.GitHubClient, owner, repo string) {
	if host == nil {
		fmt.Println("code host client is unavailable")
		return
	}
	repository, err := host.Repository(ctx, owner, repo)
	if err != nil {
		fmt.Println("repository lookup failed:", err)
		return
	}
	if repository == nil {
		fmt.Printf("repository %s/%s not found\n", owner, repo)
		return
	}
	fmt.Printf("%s (%s)\n", repository.FullName, repository.Language)
	if repository.Description != "" {
		fmt.Println(repository.Description)
	}
	fmt.Printf("default branch %s, %d stars, %d open issues, private=%t\n",
		repository.DefaultBranch, repository.Stars, repository.OpenIssues, repository.Private)
}

// showJob hits the CI façade directly, without going through the MCP session.
func showJob(ctx context.Context, ci *clients.JenkinsClient, jobName string) {
	if ci == nil {
		fmt.Println("CI client is unavailable")
		return
	}
	job, err := ci.JobInfo(ctx, jobName)
	if err != nil {
		fmt.Println("job lookup failed:", err)
		return
	}
	if job == nil {
		fmt.Printf("job %s not found\n", jobName)
		return
	}
	fmt.Printf("%s: color=%s buildable=%t in_queue=%t last_build=%d\n",
		job.Name, job.Color, job.Buildable, job.InQueue, job.LastBuildNumber)
	if job.URL != "" {
		fmt.Println(job.URL)
	}
}

func getPrompt(ctx context.Context, session *mcp.ClientSession, project, sprint string) {
	result, err := session.GetPrompt(ctx, &mcp.GetPromptParams{
		Name:      "sprint_retrospective_guidance",
		Arguments: map[string]string{"project_key": project, "sprint_id": sprint},
	})
	if err != nil {
		fmt.Println("prompt failed:", err)
		return
	}
	for _, message := range result.Messages {
		if text, ok := message.Content.(*mcp.TextContent); ok {
			fmt.Printf("[%s] %s\n\n", message.Role, text.Text)
		}
	}
}
