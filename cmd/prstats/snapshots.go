package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/roivaz/repo-insights/internal/config"
	"github.com/roivaz/repo-insights/internal/db"
	"github.com/roivaz/repo-insights/internal/prsource"
)

var snapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "Inspect stored pull-request snapshots",
}

var snapshotsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List snapshots, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		count, _ := cmd.Flags().GetInt("max")
		repo, err := prsource.ParseRepo(config.GitHubRepo())
		if err != nil {
			return err
		}

		database, err := openDatabase(cmd.Context())
		if err != nil {
			return err
		}
		defer database.Close()

		snaps, err := db.NewSnapshotRepository(database).ListSnapshots(cmd.Context(), repo.String(), count)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tREPO\tSOURCE\tCAPTURED\tPRS")
		for _, s := range snaps {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", s.ID, s.Repo, s.Source, s.CapturedAt.Format("2006-01-02 15:04:05"), s.PRCount)
		}
		return w.Flush()
	},
}

var snapshotsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a snapshot and its pull requests",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid snapshot id %q: %w", args[0], err)
		}
		database, err := openDatabase(cmd.Context())
		if err != nil {
			return err
		}
		defer database.Close()

		if err := db.NewSnapshotRepository(database).DeleteSnapshot(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted snapshot %s\n", id)
		return nil
	},
}

func init() {
	snapshotsListCmd.Flags().Int("max", 20, "Maximum number of snapshots to list")
	snapshotsCmd.AddCommand(snapshotsListCmd, snapshotsDeleteCmd)
}
