//go:build integration

package db_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/roivaz/repo-insights/internal/db"
	dbmigrate "github.com/roivaz/repo-insights/internal/db/migrate"
	"github.com/roivaz/repo-insights/internal/pullrequest"
)

func startPostgres(t *testing.T) *db.Database {
	t.Helper()
	ctx := context.Background()

	ctr, err := postgres.Run(ctx, "docker.io/postgres:16-alpine",
		postgres.WithDatabase("insights"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		postgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ctr.Terminate(context.Background()) })

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	database, err := db.NewDatabase(db.Config{DSN: dsn})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	require.NoError(t, dbmigrate.EnsureCurrent(ctx, database.Bun(), "", true))
	return database
}

func TestSnapshotRoundTrip(t *testing.T) {
	database := startPostgres(t)
	repo := db.NewSnapshotRepository(database)
	ctx := context.Background()

	merged := time.Date(2024, 5, 2, 12, 0, 0, 0, time.UTC)
	records := []pullrequest.Record{
		{
			Number:    7,
			Title:     "Fix flake",
			CreatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
			MergedAt:  &merged,
			ClosedAt:  &merged,
			Additions: 3,
			Deletions: 1,
			Comments:  []pullrequest.Comment{{Author: "bob", CreatedAt: merged}},
			Reviews:   []pullrequest.Review{{Author: "bob", State: "APPROVED", SubmittedAt: merged}},
			Author:    pullrequest.Actor{Login: "alice", Name: "Alice"},
		},
		{
			Number:    8,
			Title:     "WIP",
			CreatedAt: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
			Author:    pullrequest.Actor{Login: "carol"},
		},
	}

	snap, err := repo.SaveSnapshot(ctx, "octo/widgets", "gh", records, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 2, snap.PRCount)

	latest, err := repo.LatestSnapshot(ctx, "octo/widgets")
	require.NoError(t, err)
	assert.Equal(t, snap.ID, latest.ID)

	loaded, err := repo.LoadSnapshot(ctx, snap.ID)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, 7, loaded[0].Number)
	assert.Equal(t, "Alice", loaded[0].AuthorName())
	assert.Equal(t, 1, loaded[0].CommentCount())
	assert.Equal(t, 1, loaded[0].ReviewCount())
	require.NotNil(t, loaded[0].MergedAt)
	assert.True(t, merged.Equal(*loaded[0].MergedAt))
	assert.Nil(t, loaded[1].MergedAt)

	list, err := repo.ListSnapshots(ctx, "octo/widgets", 10)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, repo.DeleteSnapshot(ctx, snap.ID))
	_, err = repo.LoadSnapshot(ctx, snap.ID)
	assert.ErrorIs(t, err, db.ErrSnapshotNotFound)
}

func TestLatestSnapshotMissing(t *testing.T) {
	database := startPostgres(t)
	repo := db.NewSnapshotRepository(database)

	_, err := repo.LatestSnapshot(context.Background(), "nobody/nothing")
	assert.ErrorIs(t, err, db.ErrSnapshotNotFound)

	assert.ErrorIs(t, repo.DeleteSnapshot(context.Background(), uuid.New()), db.ErrSnapshotNotFound)
}
