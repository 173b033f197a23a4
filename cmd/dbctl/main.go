package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/uptrace/bun"

	"github.com/roivaz/repo-insights/internal/config"
	"github.com/roivaz/repo-insights/internal/db"
	dbmigrate "github.com/roivaz/repo-insights/internal/db/migrate"
)

var rootCmd = &cobra.Command{
	Use:   "dbctl",
	Short: "Snapshot database schema management CLI",
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize migration tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWithDatabase(func(database *db.Database) error {
			manager, err := newManager(database)
			if err != nil {
				return err
			}
			return manager.Init(cmd.Context())
		})
	},
}

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that the database is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWithDatabase(func(database *db.Database) error {
			if err := database.Ping(cmd.Context()); err != nil {
				return fmt.Errorf("database connection failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "database connection successful")
			return nil
		})
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply or rollback schema migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWithDatabase(func(database *db.Database) error {
			manager, err := newManager(database)
			if err != nil {
				return err
			}
			applied, err := manager.MigrateUp(cmd.Context())
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no new migrations")
				return nil
			}
			for _, name := range applied {
				fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", name)
			}
			return nil
		})
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		steps, _ := cmd.Flags().GetInt("steps")
		to, _ := cmd.Flags().GetString("to")

		return runWithDatabase(func(database *db.Database) error {
			manager, err := newManager(database)
			if err != nil {
				return err
			}
			if to != "" {
				return manager.MigrateDownTo(cmd.Context(), to)
			}
			return manager.MigrateDownSteps(cmd.Context(), steps)
		})
	},
}

var statusCmd = &cobra.Command{
	Use:           "status",
	Short:         "Show applied and pending migrations",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWithDatabase(func(database *db.Database) error {
			manager, err := newManager(database)
			if err != nil {
				return err
			}
			status, err := manager.Status(cmd.Context())
			if err != nil {
				return err
			}
			for _, m := range status {
				state := "pending"
				if m.IsApplied() {
					state = "applied"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s_%s\t%s\n", m.Name, m.Comment, state)
			}
			return nil
		})
	},
}

var verifyCmd = &cobra.Command{
	Use:           "verify",
	Short:         "Ensure database is on the latest schema version",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWithDatabase(func(database *db.Database) error {
			return dbmigrate.EnsureCurrent(cmd.Context(), database.Bun(), config.MigrationsDir(), false)
		})
	},
}

var recreateCmd = &cobra.Command{
	Use:   "recreate <scope>",
	Short: "Clear snapshot data (prs) or rebuild the schema (all); destructive",
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return errors.New("scope must be exactly one of: all, prs")
		}
		switch args[0] {
		case "all", "prs":
			return nil
		default:
			return errors.New("scope must be one of: all, prs")
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if strings.ToLower(os.Getenv("DB_ALLOW_DESTRUCTIVE")) != "yes" {
			return errors.New("DB_ALLOW_DESTRUCTIVE=yes must be set for recreate")
		}
		scope := args[0]
		return runWithDatabase(func(database *db.Database) error {
			return recreateScope(cmd.Context(), database.Bun(), scope)
		})
	},
}

func main() {
	config.Init(rootCmd)

	rootCmd.PersistentFlags().String("dsn", "", "PostgreSQL DSN (overrides POSTGRES_URL)")
	rootCmd.PersistentFlags().String("migrations", "", "Migrations directory (default: embedded)")
	config.BindFlag(config.KeyPostgresURL, rootCmd.PersistentFlags().Lookup("dsn"))
	config.BindFlag(config.KeyMigrationsDir, rootCmd.PersistentFlags().Lookup("migrations"))

	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd)
	rootCmd.AddCommand(initCmd, pingCmd, migrateCmd, statusCmd, verifyCmd, recreateCmd)
	_ = migrateDownCmd.Flags().Int("steps", 1, "Number of migration groups to roll back (0 = all)")
	_ = migrateDownCmd.Flags().String("to", "", "Roll back every group applied after this migration, which stays applied")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "dbctl: %v\n", err)
		os.Exit(1)
	}
}

func runWithDatabase(fn func(*db.Database) error) error {
	database, err := db.NewDatabase(db.Config{DSN: config.PostgresURL(), Debug: config.DBDebug()})
	if err != nil {
		return err
	}
	defer database.Close()
	return fn(database)
}

// recreateScope empties the snapshot tables (prs) or drops the whole schema
// with its migration history and migrates back up (all).
func recreateScope(ctx context.Context, bunDB *bun.DB, scope string) error {
	switch scope {
	case "prs":
		_, err := bunDB.ExecContext(ctx, `TRUNCATE snapshot_pull_requests, pr_snapshots`)
		return err
	case "all":
		if _, err := bunDB.ExecContext(ctx, `DROP TABLE IF EXISTS snapshot_pull_requests, pr_snapshots CASCADE`); err != nil {
			return err
		}
		manager, err := dbmigrate.NewManager(bunDB, config.MigrationsDir())
		if err != nil {
			return err
		}
		if err := manager.Reset(ctx); err != nil {
			return err
		}
		return dbmigrate.EnsureCurrent(ctx, bunDB, config.MigrationsDir(), true)
	default:
		return fmt.Errorf("unknown scope: %s", scope)
	}
}

func newManager(database *db.Database) (*dbmigrate.Manager, error) {
	return dbmigrate.NewManager(database.Bun(), config.MigrationsDir())
}
