// Package pullrequest holds the pull-request record shared by every PR source
// and the statistics built on top of it.
package pullrequest

import (
	"time"
)

// MonthLayout formats calendar months used as grouping keys.
const MonthLayout = "2006-01"

// JSONFields is the field list requested from `gh pr list --json`.
var JSONFields = []string{
	"number", "title", "createdAt", "updatedAt", "mergedAt", "closedAt",
	"additions", "deletions", "comments", "reviews", "reviewRequests", "author",
}

type Actor struct {
	Login string `json:"login"`
	Name  string `json:"name,omitempty"`
	IsBot bool   `json:"is_bot,omitempty"`
}

type Comment struct {
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
}

type Review struct {
	Author      string    `json:"author"`
	State       string    `json:"state"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// ReviewRequest is a pending request addressed to a user or a team.
type ReviewRequest struct {
	Kind string `json:"kind"` // User or Team
	Name string `json:"name"`
}

type Record struct {
	Number         int             `json:"number"`
	Title          string          `json:"title"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
	MergedAt       *time.Time      `json:"mergedAt,omitempty"`
	ClosedAt       *time.Time      `json:"closedAt,omitempty"`
	Additions      int             `json:"additions"`
	Deletions      int             `json:"deletions"`
	Comments       []Comment       `json:"comments"`
	Reviews        []Review        `json:"reviews"`
	ReviewRequests []ReviewRequest `json:"reviewRequests"`
	Author         Actor           `json:"author"`
}

// EndTime is when the review window closed: merge time, else close time,
// else now for PRs that are still open.
func (r Record) EndTime(now time.Time) time.Time {
	switch {
	case r.MergedAt != nil:
		return *r.MergedAt
	case r.ClosedAt != nil:
		return *r.ClosedAt
	default:
		return now
	}
}

// ReviewDuration returns the review window length in hours.
func (r Record) ReviewDuration(now time.Time) float64 {
	return r.EndTime(now).Sub(r.CreatedAt).Hours()
}

func (r Record) CommentCount() int       { return len(r.Comments) }
func (r Record) ReviewCount() int        { return len(r.Reviews) }
func (r Record) ReviewRequestCount() int { return len(r.ReviewRequests) }

// Changes is the total number of changed lines.
func (r Record) Changes() int { return r.Additions + r.Deletions }

// AuthorName prefers the display name and falls back to the login.
func (r Record) AuthorName() string {
	if r.Author.Name != "" {
		return r.Author.Name
	}
	return r.Author.Login
}

// Month is the creation month key, e.g. 2024-03.
func (r Record) Month() string {
	return r.CreatedAt.Format(MonthLayout)
}
