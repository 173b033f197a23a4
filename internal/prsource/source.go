// Package prsource fetches pull-request records from the gh CLI, the GitHub
// REST API, a saved JSON file or a stored snapshot.
package prsource

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/retry"
	vcsurl "github.com/gitsight/go-vcsurl"

	"github.com/roivaz/repo-insights/internal/logging"
	"github.com/roivaz/repo-insights/internal/pullrequest"
)

const (
	KindGH       = "gh"
	KindAPI      = "api"
	KindFile     = "file"
	KindSnapshot = "snapshot"
)

type Source interface {
	Fetch(ctx context.Context) ([]pullrequest.Record, error)
}

// RetryPolicy controls how transient fetch failures are retried.
type RetryPolicy struct {
	Attempts int
	Delay    time.Duration
	MaxDelay time.Duration
}

func DefaultRetryPolicy(attempts int) RetryPolicy {
	return RetryPolicy{Attempts: attempts, Delay: time.Second, MaxDelay: 30 * time.Second}
}

func (p RetryPolicy) do(ctx context.Context, log logging.Logger, operation string, fn func() error) error {
	attempts := p.Attempts
	if attempts <= 0 {
		attempts = 1
	}
	return retry.Do(
		fn,
		retry.Context(ctx),
		retry.Attempts(uint(attempts)),
		retry.DelayType(retry.BackOffDelay),
		retry.Delay(p.Delay),
		retry.MaxDelay(p.MaxDelay),
		retry.OnRetry(func(n uint, err error) {
			log.Info("fetch attempt failed", "operation", operation, "attempt", n+1, "max", attempts, "error", err.Error())
		}),
		retry.LastErrorOnly(true),
	)
}

// RepoRef identifies a GitHub repository.
type RepoRef struct {
	Owner string
	Name  string
}

func (r RepoRef) String() string {
	if r.Owner == "" {
		return r.Name
	}
	return r.Owner + "/" + r.Name
}

func (r RepoRef) IsZero() bool { return r.Owner == "" && r.Name == "" }

// ParseRepo accepts owner/name or any URL go-vcsurl understands. An empty
// string yields the zero RepoRef, meaning "the repository in the working
// directory".
func ParseRepo(raw string) (RepoRef, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return RepoRef{}, nil
	}
	if strings.Count(raw, "/") == 1 && !strings.Contains(raw, ":") {
		owner, name, _ := strings.Cut(raw, "/")
		if owner == "" || name == "" {
			return RepoRef{}, fmt.Errorf("invalid repository %q", raw)
		}
		return RepoRef{Owner: owner, Name: strings.TrimSuffix(name, ".git")}, nil
	}
	info, err := vcsurl.Parse(raw)
	if err != nil {
		return RepoRef{}, fmt.Errorf("parse repository %q: %w", raw, err)
	}
	if info.Username == "" || info.Name == "" {
		return RepoRef{}, fmt.Errorf("repository %q has no owner/name", raw)
	}
	return RepoRef{Owner: info.Username, Name: info.Name}, nil
}
