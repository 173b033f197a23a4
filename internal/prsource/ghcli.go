package prsource

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/codeGROOVE-dev/retry"

	"github.com/roivaz/repo-insights/internal/command"
	"github.com/roivaz/repo-insights/internal/logging"
	"github.com/roivaz/repo-insights/internal/pullrequest"
)

// CLISource shells out to `gh pr list`.
type CLISource struct {
	Exec   command.Executor
	GHPath string
	Repo   RepoRef
	State  string
	Limit  int
	Retry  RetryPolicy
	Log    logging.Logger
}

func (s *CLISource) Args() []string {
	state := s.State
	if state == "" {
		state = "all"
	}
	args := []string{"pr", "list", "--state", state}
	if s.Limit > 0 {
		args = append(args, "--limit", strconv.Itoa(s.Limit))
	}
	if !s.Repo.IsZero() {
		args = append(args, "--repo", s.Repo.String())
	}
	return append(args, "--json", strings.Join(pullrequest.JSONFields, ","))
}

func (s *CLISource) Fetch(ctx context.Context) ([]pullrequest.Record, error) {
	gh := s.GHPath
	if gh == "" {
		gh = "gh"
	}
	args := s.Args()
	s.Log.Debug("running gh", "args", args)

	var out []byte
	err := s.Retry.do(ctx, s.Log, "gh pr list", func() error {
		res, err := s.Exec.Run(ctx, gh, args...)
		if err != nil {
			if ctx.Err() != nil {
				return retry.Unrecoverable(err)
			}
			return err
		}
		out = res
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch pull requests: %w", err)
	}

	records, err := pullrequest.Decode(out)
	if err != nil {
		return nil, fmt.Errorf("decode gh output: %w", err)
	}
	s.Log.Info("fetched pull requests", "source", KindGH, "count", len(records))
	return records, nil
}
