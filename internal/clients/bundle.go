// Package clients provides façades over the external DevOps services the hub
// aggregates (issue tracker, code host, CI server, completion model) and the
// Bundle that owns their shared lifecycle.
//
// Every façade follows the same contract: missing configuration yields a
// disabled façade instead of an error, HTTP 404 yields a nil result instead
// of an error, and any other remote failure yields a typed error. Façades are
// safe for concurrent use and never retry.
package clients

import (
	"context"
	"log"
	"sync"
)

// Config aggregates the per-service façade configuration.
type Config struct {
	Jira    JiraConfig
	GitHub  GitHubConfig
	Jenkins JenkinsConfig
	Groq    GroqConfig
}

// Bundle is the read-only collection of service façades published once per
// server lifetime. A nil slot means construction of that façade failed;
// consumers must degrade gracefully rather than fail the process. Slots are
// never swapped or reconstructed after NewBundle returns.
type Bundle struct {
	Jira    *JiraClient
	GitHub  *GitHubClient
	Jenkins *JenkinsClient
	Groq    *GroqClient

	closeOnce sync.Once
}

// NewBundle constructs all façades concurrently, each on its own goroutine so
// one slow or failing construction cannot stall the others. Construction
// failures are logged and leave the slot nil; partial availability is the
// normal operating mode, so NewBundle itself never fails.
func NewBundle(ctx context.Context, cfg Config) *Bundle {
	log.Printf("initializing service clients")
	bundle := &Bundle{}

	var wg sync.WaitGroup
	buildSlot(&wg, "issue-tracker", &bundle.Jira, func() (*JiraClient, error) {
		return NewJiraClient(ctx, cfg.Jira)
	})
	buildSlot(&wg, "code-host", &bundle.GitHub, func() (*GitHubClient, error) {
		return NewGitHubClient(ctx, cfg.GitHub)
	})
	buildSlot(&wg, "ci", &bundle.Jenkins, func() (*JenkinsClient, error) {
		return NewJenkinsClient(ctx, cfg.Jenkins)
	})
	buildSlot(&wg, "completion-model", &bundle.Groq, func() (*GroqClient, error) {
		return NewGroqClient(cfg.Groq)
	})
	wg.Wait()

	return bundle
}

// buildSlot runs one façade construction and captures either the client or
// the failure. Failures stay local to their slot.
func buildSlot[T any](wg *sync.WaitGroup, name string, slot **T, build func() (*T, error)) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		client, err := build()
		if err != nil {
			log.Printf("failed to initialize %s client: %v", name, err)
			return
		}
		*slot = client
	}()
}

// Close concurrently releases every constructed façade, tolerating individual
// close failures. It runs its teardown exactly once no matter how many exit
// paths reach it.
func (b *Bundle) Close() {
	if b == nil {
		return
	}
	b.closeOnce.Do(func() {
		log.Printf("closing service clients")

		var wg sync.WaitGroup
		closeSlot := func(name string, close func() error) {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := close(); err != nil {
					log.Printf("error closing %s client: %v", name, err)
				}
			}()
		}

		if b.Jira != nil {
			closeSlot("issue-tracker", b.Jira.Close)
		}
		if b.GitHub != nil {
			closeSlot("code-host", b.GitHub.Close)
		}
		if b.Jenkins != nil {
			closeSlot("ci", b.Jenkins.Close)
		}
		if b.Groq != nil {
			closeSlot("completion-model", b.Groq.Close)
		}
		wg.Wait()
	})
}
