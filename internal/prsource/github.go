package prsource

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"

	"github.com/roivaz/repo-insights/internal/logging"
	"github.com/roivaz/repo-insights/internal/pullrequest"
)

const apiPageSize = 100

func NewGitHubClient(token string) *github.Client {
	if token == "" {
		return github.NewClient(&http.Client{Timeout: 30 * time.Second})
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(context.Background(), ts)
	tc.Timeout = 30 * time.Second
	return github.NewClient(tc)
}

// APISource reads pull requests through the GitHub REST API. List results
// lack line counts, so each PR is loaded individually along with its issue
// comments and reviews (first page of each).
type APISource struct {
	Client *github.Client
	Repo   RepoRef
	State  string
	Limit  int
	Retry  RetryPolicy
	Log    logging.Logger
}

func (s *APISource) Fetch(ctx context.Context) ([]pullrequest.Record, error) {
	if s.Repo.Owner == "" || s.Repo.Name == "" {
		return nil, errors.New("api source requires --repo owner/name")
	}
	state := s.State
	if state == "" {
		state = "all"
	}

	var listed []*github.PullRequest
	page := 1
	for {
		opts := &github.PullRequestListOptions{
			State:       state,
			Sort:        "created",
			Direction:   "desc",
			ListOptions: github.ListOptions{PerPage: apiPageSize, Page: page},
		}
		var (
			prs  []*github.PullRequest
			resp *github.Response
		)
		err := s.Retry.do(ctx, s.Log, "list pull requests", func() error {
			var err error
			prs, resp, err = s.Client.PullRequests.List(ctx, s.Repo.Owner, s.Repo.Name, opts)
			return classify(err)
		})
		if err != nil {
			return nil, fmt.Errorf("list pull requests (page %d): %w", page, err)
		}
		listed = append(listed, prs...)
		if s.Limit > 0 && len(listed) >= s.Limit {
			listed = listed[:s.Limit]
			break
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		page = resp.NextPage
	}

	records := make([]pullrequest.Record, 0, len(listed))
	for _, item := range listed {
		rec, err := s.loadRecord(ctx, item)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	s.Log.Info("fetched pull requests", "source", KindAPI, "repo", s.Repo.String(), "count", len(records))
	return records, nil
}

func (s *APISource) loadRecord(ctx context.Context, item *github.PullRequest) (pullrequest.Record, error) {
	number := item.GetNumber()
	s.Log.Debug("loading pull request", "number", number)

	var pr *github.PullRequest
	err := s.Retry.do(ctx, s.Log, "get pull request", func() error {
		var err error
		pr, _, err = s.Client.PullRequests.Get(ctx, s.Repo.Owner, s.Repo.Name, number)
		return classify(err)
	})
	if err != nil {
		return pullrequest.Record{}, fmt.Errorf("get pull request #%d: %w", number, err)
	}

	var comments []*github.IssueComment
	err = s.Retry.do(ctx, s.Log, "list comments", func() error {
		var err error
		comments, _, err = s.Client.Issues.ListComments(ctx, s.Repo.Owner, s.Repo.Name, number,
			&github.IssueListCommentsOptions{ListOptions: github.ListOptions{PerPage: apiPageSize}})
		return classify(err)
	})
	if err != nil {
		return pullrequest.Record{}, fmt.Errorf("list comments #%d: %w", number, err)
	}

	var reviews []*github.PullRequestReview
	err = s.Retry.do(ctx, s.Log, "list reviews", func() error {
		var err error
		reviews, _, err = s.Client.PullRequests.ListReviews(ctx, s.Repo.Owner, s.Repo.Name, number,
			&github.ListOptions{PerPage: apiPageSize})
		return classify(err)
	})
	if err != nil {
		return pullrequest.Record{}, fmt.Errorf("list reviews #%d: %w", number, err)
	}

	return buildRecord(pr, comments, reviews), nil
}

func buildRecord(pr *github.PullRequest, comments []*github.IssueComment, reviews []*github.PullRequestReview) pullrequest.Record {
	rec := pullrequest.Record{
		Number:    pr.GetNumber(),
		Title:     pr.GetTitle(),
		CreatedAt: pr.GetCreatedAt().Time,
		UpdatedAt: pr.GetUpdatedAt().Time,
		MergedAt:  timePtr(pr.GetMergedAt().Time),
		ClosedAt:  timePtr(pr.GetClosedAt().Time),
		Additions: pr.GetAdditions(),
		Deletions: pr.GetDeletions(),
		Author: pullrequest.Actor{
			Login: pr.GetUser().GetLogin(),
			Name:  pr.GetUser().GetName(),
			IsBot: pr.GetUser().GetType() == "Bot",
		},
		Comments:       []pullrequest.Comment{},
		Reviews:        []pullrequest.Review{},
		ReviewRequests: []pullrequest.ReviewRequest{},
	}
	for _, c := range comments {
		rec.Comments = append(rec.Comments, pullrequest.Comment{
			Author:    c.GetUser().GetLogin(),
			CreatedAt: c.GetCreatedAt().Time,
		})
	}
	for _, r := range reviews {
		rec.Reviews = append(rec.Reviews, pullrequest.Review{
			Author:      r.GetUser().GetLogin(),
			State:       r.GetState(),
			SubmittedAt: r.GetSubmittedAt().Time,
		})
	}
	for _, u := range pr.RequestedReviewers {
		rec.ReviewRequests = append(rec.ReviewRequests, pullrequest.ReviewRequest{Kind: "User", Name: u.GetLogin()})
	}
	for _, t := range pr.RequestedTeams {
		rec.ReviewRequests = append(rec.ReviewRequests, pullrequest.ReviewRequest{Kind: "Team", Name: t.GetSlug()})
	}
	return rec
}

// classify stops retrying on client errors other than rate limiting.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var rateErr *github.RateLimitError
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &rateErr) || errors.As(err, &abuseErr) {
		return err
	}
	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		code := respErr.Response.StatusCode
		if code >= 400 && code < 500 {
			return retry.Unrecoverable(err)
		}
	}
	return err
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
