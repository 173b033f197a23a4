package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roivaz/repo-insights/internal/command"
	"github.com/roivaz/repo-insights/internal/config"
	"github.com/roivaz/repo-insights/internal/db"
	dbmigrate "github.com/roivaz/repo-insights/internal/db/migrate"
	"github.com/roivaz/repo-insights/internal/logging"
	"github.com/roivaz/repo-insights/internal/prsource"
	"github.com/roivaz/repo-insights/internal/prstats"
	"github.com/roivaz/repo-insights/internal/pullrequest"
	"github.com/roivaz/repo-insights/internal/report"
	"github.com/roivaz/repo-insights/internal/summary"
)

var rootCmd = &cobra.Command{
	Use:           "prstats",
	Short:         "Pull-request statistics for a GitHub repository",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Fetch pull requests and write the console, markdown and chart reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext(cmd.Context())
		defer cancel()

		log := newLogger()
		snapshotID, _ := cmd.Flags().GetString("snapshot-id")
		save, _ := cmd.Flags().GetBool("save")

		records, source, err := fetchRecords(ctx, log, snapshotID)
		if err != nil {
			return err
		}
		if save {
			if source == prsource.KindSnapshot {
				log.Info("records came from a snapshot; not saving again")
			} else if err := saveSnapshot(ctx, log, source, records); err != nil {
				return err
			}
		}

		analysis, err := prstats.Analyze(records, time.Now())
		if err != nil {
			return err
		}
		if err := report.PrintConsole(cmd.OutOrStdout(), analysis); err != nil {
			return err
		}

		narrative := summarize(ctx, log, analysis)
		return writeOutputs(cmd, log, analysis, narrative)
	},
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch pull requests and store them as a snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext(cmd.Context())
		defer cancel()

		log := newLogger()
		records, source, err := fetchRecords(ctx, log, "")
		if err != nil {
			return err
		}
		if source == prsource.KindSnapshot {
			return errors.New("fetch needs a live source (gh, api or file)")
		}
		return saveSnapshot(ctx, log, source, records)
	},
}

func main() {
	config.Init(rootCmd)

	pf := rootCmd.PersistentFlags()
	pf.String("repo", "", "Repository as owner/name or URL (default: repository in the working directory)")
	pf.String("dsn", "", "PostgreSQL DSN for snapshots (overrides POSTGRES_URL)")
	config.BindFlag(config.KeyGitHubRepo, pf.Lookup("repo"))
	config.BindFlag(config.KeyPostgresURL, pf.Lookup("dsn"))

	pf.String("source", "", "Pull-request source: gh, api, file or snapshot")
	pf.String("state", "", "Pull-request state filter (open, closed, merged, all)")
	pf.Int("limit", 0, "Maximum number of pull requests to fetch")
	pf.String("input", "", "JSON file saved from gh pr list (source=file)")
	pf.String("gh-path", "", "Path to the gh executable")
	config.BindFlag(config.KeyPRSource, pf.Lookup("source"))
	config.BindFlag(config.KeyPRState, pf.Lookup("state"))
	config.BindFlag(config.KeyPRLimit, pf.Lookup("limit"))
	config.BindFlag(config.KeyPRInputFile, pf.Lookup("input"))
	config.BindFlag(config.KeyGHPath, pf.Lookup("gh-path"))

	af := analyzeCmd.Flags()
	af.String("snapshot-id", "", "Snapshot to analyse (source=snapshot; default: latest for --repo)")
	af.Bool("save", false, "Store fetched pull requests as a snapshot")
	af.Bool("summarize", false, "Add an LLM-written summary to the markdown report")
	af.String("output-dir", "", "Directory for the report and chart")
	af.String("report", "", "Markdown report file name")
	af.String("chart", "", "Chart image file name")
	config.BindFlag(config.KeySummaryEnabled, af.Lookup("summarize"))
	config.BindFlag(config.KeyOutputDir, af.Lookup("output-dir"))
	config.BindFlag(config.KeyReportFile, af.Lookup("report"))
	config.BindFlag(config.KeyChartFile, af.Lookup("chart"))

	rootCmd.AddCommand(analyzeCmd, fetchCmd, snapshotsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "prstats: %v\n", err)
		os.Exit(1)
	}
}

func newLogger() logging.Logger {
	return logging.New(logging.LeveledLogger(config.LogLevel())).WithName("prstats")
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigs:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigs)
	}()
	return ctx, cancel
}

// fetchRecords builds the configured source and returns its records with
// the source kind that produced them.
func fetchRecords(ctx context.Context, log logging.Logger, snapshotID string) ([]pullrequest.Record, string, error) {
	kind := config.PRSource()
	repo, err := prsource.ParseRepo(config.GitHubRepo())
	if err != nil {
		return nil, "", err
	}
	retryPolicy := prsource.DefaultRetryPolicy(config.FetchAttempts())
	log = log.WithValues("source", kind)

	var src prsource.Source
	switch kind {
	case prsource.KindGH:
		timeout, err := config.ParseDuration(config.GHTimeout(), 2*time.Minute)
		if err != nil {
			return nil, "", fmt.Errorf("invalid %s: %w", config.KeyGHTimeout, err)
		}
		src = &prsource.CLISource{
			Exec:   command.Runner{Timeout: timeout},
			GHPath: config.GHPath(),
			Repo:   repo,
			State:  config.PRState(),
			Limit:  config.PRLimit(),
			Retry:  retryPolicy,
			Log:    log,
		}
	case prsource.KindAPI:
		src = &prsource.APISource{
			Client: prsource.NewGitHubClient(config.GitHubToken()),
			Repo:   repo,
			State:  config.PRState(),
			Limit:  config.PRLimit(),
			Retry:  retryPolicy,
			Log:    log,
		}
	case prsource.KindFile:
		src = &prsource.FileSource{Path: config.PRInputFile()}
	case prsource.KindSnapshot:
		database, err := openDatabase(ctx)
		if err != nil {
			return nil, "", err
		}
		defer database.Close()
		src = &prsource.SnapshotSource{
			Store: db.NewSnapshotRepository(database),
			Repo:  repo,
			ID:    snapshotID,
			Log:   log,
		}
	default:
		return nil, "", fmt.Errorf("unknown source %q (want gh, api, file or snapshot)", kind)
	}

	records, err := src.Fetch(ctx)
	if err != nil {
		return nil, "", err
	}
	return records, kind, nil
}

func openDatabase(ctx context.Context) (*db.Database, error) {
	database, err := db.NewDatabase(db.Config{DSN: config.PostgresURL(), Debug: config.DBDebug()})
	if err != nil {
		return nil, err
	}
	if err := dbmigrate.EnsureCurrent(ctx, database.Bun(), config.MigrationsDir(), config.DBAutoMigrate()); err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}

func saveSnapshot(ctx context.Context, log logging.Logger, source string, records []pullrequest.Record) error {
	database, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	repo, err := prsource.ParseRepo(config.GitHubRepo())
	if err != nil {
		return err
	}
	snap, err := db.NewSnapshotRepository(database).SaveSnapshot(ctx, repo.String(), source, records, time.Now().UTC())
	if err != nil {
		return err
	}
	log.Info("saved snapshot", "id", snap.ID.String(), "repo", snap.Repo, "count", snap.PRCount)
	return nil
}

// summarize returns the LLM narrative, or "" when disabled or failing.
func summarize(ctx context.Context, log logging.Logger, analysis prstats.Analysis) string {
	if !config.SummaryEnabled() {
		return ""
	}
	timeout, err := config.ParseDuration(config.LLMCallTimeout(), 2*time.Minute)
	if err != nil {
		log.Error(err, "invalid llm call timeout; skipping summary")
		return ""
	}
	client, err := summary.New(summary.Config{
		Model:       config.SummaryModel(),
		OllamaURL:   config.OllamaURL(),
		TokenBudget: config.SummaryBudget(),
		CallTimeout: timeout,
	}, log.WithName("summary"))
	if err != nil {
		log.Error(err, "summary client unavailable")
		return ""
	}
	text, err := client.Summarize(ctx, report.Tables(analysis))
	if err != nil {
		log.Error(err, "summary failed; writing report without it")
		return ""
	}
	return text
}

func writeOutputs(cmd *cobra.Command, log logging.Logger, analysis prstats.Analysis, narrative string) error {
	dir := config.OutputDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	mdPath := filepath.Join(dir, config.ReportFile())
	chartPath := filepath.Join(dir, config.ChartFile())

	if err := report.WriteMarkdown(mdPath, analysis, narrative); err != nil {
		return err
	}
	if err := report.WriteChart(chartPath, analysis); err != nil {
		return err
	}
	log.Debug("reports written", "markdown", mdPath, "chart", chartPath)
	fmt.Fprintf(cmd.OutOrStdout(), "\nSaved analysis to %s and %s\n", chartPath, mdPath)
	return nil
}
