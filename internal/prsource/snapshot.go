package prsource

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/roivaz/repo-insights/internal/db"
	"github.com/roivaz/repo-insights/internal/logging"
	"github.com/roivaz/repo-insights/internal/pullrequest"
)

type SnapshotStore interface {
	LatestSnapshot(ctx context.Context, repo string) (*db.Snapshot, error)
	LoadSnapshot(ctx context.Context, id uuid.UUID) ([]pullrequest.Record, error)
}

// SnapshotSource replays a stored snapshot: the given ID, or the newest one
// for Repo when ID is empty.
type SnapshotSource struct {
	Store SnapshotStore
	Repo  RepoRef
	ID    string
	Log   logging.Logger
}

func (s *SnapshotSource) Fetch(ctx context.Context) ([]pullrequest.Record, error) {
	var id uuid.UUID
	if s.ID != "" {
		parsed, err := uuid.Parse(s.ID)
		if err != nil {
			return nil, fmt.Errorf("invalid snapshot id %q: %w", s.ID, err)
		}
		id = parsed
	} else {
		snap, err := s.Store.LatestSnapshot(ctx, s.Repo.String())
		if err != nil {
			return nil, fmt.Errorf("latest snapshot for %q: %w", s.Repo.String(), err)
		}
		id = snap.ID
	}

	records, err := s.Store.LoadSnapshot(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", id, err)
	}
	s.Log.Info("loaded snapshot", "id", id.String(), "count", len(records))
	return records, nil
}
