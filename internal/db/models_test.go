package db

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roivaz/repo-insights/internal/pullrequest"
)

func TestRecordRowRoundTrip(t *testing.T) {
	closed := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	rec := pullrequest.Record{
		Number:    9,
		Title:     "Tidy",
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		ClosedAt:  &closed,
		Additions: 2,
		Deletions: 8,
		ReviewRequests: []pullrequest.ReviewRequest{
			{Kind: "Team", Name: "platform"},
		},
		Author: pullrequest.Actor{Login: "bot", IsBot: true},
	}

	id := uuid.New()
	row := fromRecord(id, rec)
	assert.Equal(t, id, row.SnapshotID)
	assert.NotNil(t, row.Comments, "empty collections must be stored as [] not null")
	assert.NotNil(t, row.Reviews)

	back := row.toRecord()
	assert.Equal(t, rec.Number, back.Number)
	assert.Equal(t, rec.Changes(), back.Changes())
	assert.Equal(t, rec.Author, back.Author)
	require.Len(t, back.ReviewRequests, 1)
	assert.Equal(t, "platform", back.ReviewRequests[0].Name)
	assert.Equal(t, rec.ClosedAt, back.ClosedAt)
}

func TestNewDatabaseRequiresDSN(t *testing.T) {
	_, err := NewDatabase(Config{})
	assert.ErrorIs(t, err, ErrMissingDSN)
}
