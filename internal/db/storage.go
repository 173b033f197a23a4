package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/roivaz/repo-insights/internal/pullrequest"
)

var ErrSnapshotNotFound = errors.New("snapshot not found")

type SnapshotRepository struct {
	db *bun.DB
}

func NewSnapshotRepository(database *Database) *SnapshotRepository {
	return &SnapshotRepository{db: database.Bun()}
}

// SaveSnapshot stores records under a new snapshot id in one transaction.
func (r *SnapshotRepository) SaveSnapshot(ctx context.Context, repo, source string, records []pullrequest.Record, capturedAt time.Time) (*Snapshot, error) {
	snap := &Snapshot{
		ID:         uuid.New(),
		Repo:       repo,
		Source:     source,
		CapturedAt: capturedAt.UTC(),
		PRCount:    len(records),
	}

	rows := make([]SnapshotPullRequest, 0, len(records))
	for _, rec := range records {
		rows = append(rows, fromRecord(snap.ID, rec))
	}

	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(snap).Exec(ctx); err != nil {
			return fmt.Errorf("insert snapshot: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if _, err := tx.NewInsert().Model(&rows).Exec(ctx); err != nil {
			return fmt.Errorf("insert pull requests: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

func (r *SnapshotRepository) LatestSnapshot(ctx context.Context, repo string) (*Snapshot, error) {
	snap := new(Snapshot)
	err := r.db.NewSelect().Model(snap).
		Where("repo = ?", repo).
		OrderExpr("captured_at DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSnapshotNotFound
		}
		return nil, err
	}
	return snap, nil
}

func (r *SnapshotRepository) GetSnapshot(ctx context.Context, id uuid.UUID) (*Snapshot, error) {
	snap := new(Snapshot)
	err := r.db.NewSelect().Model(snap).Where("id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSnapshotNotFound
		}
		return nil, err
	}
	return snap, nil
}

func (r *SnapshotRepository) ListSnapshots(ctx context.Context, repo string, limit int) ([]Snapshot, error) {
	if limit <= 0 {
		limit = 20
	}
	var snaps []Snapshot
	q := r.db.NewSelect().Model(&snaps).OrderExpr("captured_at DESC").Limit(limit)
	if repo != "" {
		q = q.Where("repo = ?", repo)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return snaps, nil
}

// LoadSnapshot returns the records of a snapshot ordered by PR number.
func (r *SnapshotRepository) LoadSnapshot(ctx context.Context, id uuid.UUID) ([]pullrequest.Record, error) {
	if _, err := r.GetSnapshot(ctx, id); err != nil {
		return nil, err
	}
	var rows []SnapshotPullRequest
	err := r.db.NewSelect().Model(&rows).
		Where("snapshot_id = ?", id).
		OrderExpr("number ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	records := make([]pullrequest.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.toRecord())
	}
	return records, nil
}

func (r *SnapshotRepository) DeleteSnapshot(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.NewDelete().Model((*Snapshot)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrSnapshotNotFound
	}
	return nil
}
