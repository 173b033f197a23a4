package db

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/roivaz/repo-insights/internal/pullrequest"
)

// Snapshot is one stored fetch of pull requests.
type Snapshot struct {
	bun.BaseModel `bun:"table:pr_snapshots"`

	ID         uuid.UUID `bun:"id,pk,type:uuid"`
	Repo       string    `bun:"repo"`
	Source     string    `bun:"source"`
	CapturedAt time.Time `bun:"captured_at"`
	PRCount    int       `bun:"pr_count"`
}

// SnapshotPullRequest is a pull request row belonging to a snapshot. The
// comment/review collections are kept as jsonb.
type SnapshotPullRequest struct {
	bun.BaseModel `bun:"table:snapshot_pull_requests"`

	ID             int64                       `bun:"id,pk,autoincrement"`
	SnapshotID     uuid.UUID                   `bun:"snapshot_id,type:uuid"`
	Number         int                         `bun:"number"`
	Title          string                      `bun:"title"`
	CreatedAt      time.Time                   `bun:"created_at"`
	UpdatedAt      time.Time                   `bun:"updated_at,nullzero"`
	MergedAt       *time.Time                  `bun:"merged_at"`
	ClosedAt       *time.Time                  `bun:"closed_at"`
	Additions      int                         `bun:"additions"`
	Deletions      int                         `bun:"deletions"`
	AuthorLogin    string                      `bun:"author_login"`
	AuthorName     string                      `bun:"author_name"`
	AuthorIsBot    bool                        `bun:"author_is_bot"`
	Comments       []pullrequest.Comment       `bun:"comments,type:jsonb"`
	Reviews        []pullrequest.Review        `bun:"reviews,type:jsonb"`
	ReviewRequests []pullrequest.ReviewRequest `bun:"review_requests,type:jsonb"`
}

func fromRecord(snapshotID uuid.UUID, rec pullrequest.Record) SnapshotPullRequest {
	return SnapshotPullRequest{
		SnapshotID:     snapshotID,
		Number:         rec.Number,
		Title:          rec.Title,
		CreatedAt:      rec.CreatedAt,
		UpdatedAt:      rec.UpdatedAt,
		MergedAt:       rec.MergedAt,
		ClosedAt:       rec.ClosedAt,
		Additions:      rec.Additions,
		Deletions:      rec.Deletions,
		AuthorLogin:    rec.Author.Login,
		AuthorName:     rec.Author.Name,
		AuthorIsBot:    rec.Author.IsBot,
		Comments:       nonNil(rec.Comments),
		Reviews:        nonNil(rec.Reviews),
		ReviewRequests: nonNil(rec.ReviewRequests),
	}
}

func (row SnapshotPullRequest) toRecord() pullrequest.Record {
	return pullrequest.Record{
		Number:         row.Number,
		Title:          row.Title,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
		MergedAt:       row.MergedAt,
		ClosedAt:       row.ClosedAt,
		Additions:      row.Additions,
		Deletions:      row.Deletions,
		Comments:       row.Comments,
		Reviews:        row.Reviews,
		ReviewRequests: row.ReviewRequests,
		Author: pullrequest.Actor{
			Login: row.AuthorLogin,
			Name:  row.AuthorName,
			IsBot: row.AuthorIsBot,
		},
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
