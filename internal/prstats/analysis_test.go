package prstats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roivaz/repo-insights/internal/pullrequest"
)

func ts(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func ptr(t time.Time) *time.Time { return &t }

func sampleRecords() []pullrequest.Record {
	return []pullrequest.Record{
		{
			Number: 1, CreatedAt: ts("2024-01-03T00:00:00Z"), MergedAt: ptr(ts("2024-01-04T00:00:00Z")),
			Additions: 100, Deletions: 20,
			Comments: []pullrequest.Comment{{Author: "b"}, {Author: "c"}},
			Reviews:  []pullrequest.Review{{Author: "b"}},
			Author:   pullrequest.Actor{Login: "alice", Name: "Alice"},
		},
		{
			Number: 2, CreatedAt: ts("2024-01-20T00:00:00Z"), ClosedAt: ptr(ts("2024-01-20T12:00:00Z")),
			Additions: 10, Deletions: 10,
			ReviewRequests: []pullrequest.ReviewRequest{{Kind: "User", Name: "alice"}},
			Author:         pullrequest.Actor{Login: "bob"},
		},
		{
			Number: 3, CreatedAt: ts("2024-02-01T00:00:00Z"),
			Additions: 4, Deletions: 0,
			Author: pullrequest.Actor{Login: "alice", Name: "Alice"},
		},
	}
}

func TestAnalyzeMonthlyBuckets(t *testing.T) {
	now := ts("2024-02-02T00:00:00Z")
	got, err := Analyze(sampleRecords(), now)
	require.NoError(t, err)

	assert.Equal(t, 3, got.Total)
	assert.Equal(t, "2024-01", got.FirstMonth)
	assert.Equal(t, "2024-02", got.LastMonth)
	require.Len(t, got.Monthly, 2)

	jan := got.Monthly[0]
	assert.Equal(t, "2024-01", jan.Month)
	assert.Equal(t, 2, jan.PRCount)
	assert.InDelta(t, (24.0+12.0)/2, jan.AvgReviewHours, 1e-9)
	assert.InDelta(t, 1.0, jan.AvgComments, 1e-9)
	assert.InDelta(t, 0.5, jan.AvgReviews, 1e-9)
	assert.InDelta(t, 0.5, jan.AvgReviewRequests, 1e-9)
	assert.InDelta(t, 70.0, jan.AvgChanges, 1e-9)

	feb := got.Monthly[1]
	assert.Equal(t, 1, feb.PRCount)
	assert.InDelta(t, 24.0, feb.AvgReviewHours, 1e-9)

	total := 0
	for _, m := range got.Monthly {
		total += m.PRCount
	}
	assert.Equal(t, got.Total, total)
}

func TestAnalyzeAuthors(t *testing.T) {
	now := ts("2024-02-02T00:00:00Z")
	got, err := Analyze(sampleRecords(), now)
	require.NoError(t, err)

	require.Len(t, got.Authors, 2)
	assert.Equal(t, AuthorStats{Name: "Alice", PRCount: 2, AvgReviewHours: 24}, got.Authors[0])
	assert.Equal(t, "bob", got.Authors[1].Name)
	assert.InDelta(t, 12.0, got.Authors[1].AvgReviewHours, 1e-9)
}

func TestAnalyzeEmpty(t *testing.T) {
	_, err := Analyze(nil, time.Now())
	assert.ErrorIs(t, err, ErrNoPullRequests)
}
