package dbmigrate

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"

	"github.com/roivaz/repo-insights/internal/db/migrations"
)

type Manager struct {
	migrator *migrate.Migrator
}

// NewManager loads migrations from dir, or from the schema embedded in the
// binary when dir is empty.
func NewManager(db *bun.DB, dir string) (*Manager, error) {
	if dir == "" {
		return NewManagerWithFS(db, migrations.FS)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve migrations dir: %w", err)
	}
	return NewManagerWithFS(db, os.DirFS(abs))
}

func NewManagerWithFS(db *bun.DB, fsys fs.FS) (*Manager, error) {
	if db == nil {
		return nil, errors.New("database is required")
	}
	if fsys == nil {
		return nil, errors.New("migrations filesystem is required")
	}

	set := migrate.NewMigrations()
	if err := set.Discover(fsys); err != nil {
		return nil, fmt.Errorf("discover migrations: %w", err)
	}
	return &Manager{migrator: migrate.NewMigrator(db, set)}, nil
}

func (m *Manager) Init(ctx context.Context) error {
	return m.migrator.Init(ctx)
}

// MigrateUp applies pending migrations as one group and returns their names.
func (m *Manager) MigrateUp(ctx context.Context) ([]string, error) {
	group, err := m.migrator.Migrate(ctx)
	if err != nil {
		return nil, err
	}
	if group.IsZero() {
		return nil, nil
	}
	names := make([]string, 0, len(group.Migrations))
	for _, mig := range group.Migrations {
		names = append(names, mig.String())
	}
	return names, nil
}

// MigrateDownSteps rolls back up to steps migration groups; zero means all.
func (m *Manager) MigrateDownSteps(ctx context.Context, steps int) error {
	if steps < 0 {
		return errors.New("steps must be >= 0")
	}
	status, err := m.migrator.MigrationsWithStatus(ctx)
	if err != nil {
		return err
	}
	groups := len(appliedGroups(status))
	count := steps
	if steps == 0 || steps > groups {
		count = groups
	}
	return m.rollback(ctx, count)
}

// MigrateDownTo rolls back every group applied after target; target itself
// stays applied. Groups are atomic, so a group holding both target and a
// newer migration is an error.
func (m *Manager) MigrateDownTo(ctx context.Context, target string) error {
	status, err := m.migrator.MigrationsWithStatus(ctx)
	if err != nil {
		return err
	}
	steps, err := groupsAfter(status, target)
	if err != nil {
		return err
	}
	return m.rollback(ctx, steps)
}

func (m *Manager) rollback(ctx context.Context, groups int) error {
	for i := 0; i < groups; i++ {
		group, err := m.migrator.Rollback(ctx)
		if err != nil {
			return err
		}
		if group.IsZero() {
			break
		}
	}
	return nil
}

func appliedGroups(status migrate.MigrationSlice) map[int64]bool {
	groups := make(map[int64]bool)
	for _, mig := range status {
		if mig.IsApplied() {
			groups[mig.GroupID] = true
		}
	}
	return groups
}

// groupsAfter counts the applied groups holding migrations newer than
// target. Rollback always undoes the highest group, so every such group
// must sit above every group holding target or older migrations.
func groupsAfter(status migrate.MigrationSlice, target string) (int, error) {
	if target == "" {
		return 0, errors.New("target version is required")
	}
	known := false
	for _, mig := range status {
		if mig.Name == target {
			known = true
			break
		}
	}
	if !known {
		return 0, fmt.Errorf("migration %s not found", target)
	}

	newer := make(map[int64]bool)
	var keepMax int64
	var minNewer int64 = -1
	for _, mig := range status {
		if !mig.IsApplied() {
			continue
		}
		if mig.Name > target {
			newer[mig.GroupID] = true
			if minNewer < 0 || mig.GroupID < minNewer {
				minNewer = mig.GroupID
			}
			continue
		}
		if mig.GroupID > keepMax {
			keepMax = mig.GroupID
		}
	}
	if len(newer) == 0 {
		return 0, nil
	}
	if minNewer <= keepMax {
		return 0, fmt.Errorf("migration %s shares rollback group %d with newer migrations; use --steps to roll back whole groups", target, keepMax)
	}
	return len(newer), nil
}

func (m *Manager) Status(ctx context.Context) (migrate.MigrationSlice, error) {
	return m.migrator.MigrationsWithStatus(ctx)
}

// Pending lists migrations not yet applied, as name_comment.
func (m *Manager) Pending(ctx context.Context) ([]string, error) {
	status, err := m.Status(ctx)
	if err != nil {
		return nil, err
	}
	var pending []string
	for _, mig := range status {
		if !mig.IsApplied() {
			pending = append(pending, fmt.Sprintf("%s_%s", mig.Name, mig.Comment))
		}
	}
	return pending, nil
}

func (m *Manager) Reset(ctx context.Context) error {
	return m.migrator.Reset(ctx)
}
