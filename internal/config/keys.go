package config

const (
	KeyLogLevel = "log_level"

	KeyGHPath      = "gh_path"
	KeyGHTimeout   = "gh_timeout"
	KeyGitHubRepo  = "github_repo"
	KeyGitHubToken = "github_token"
	KeyPRState     = "pr_state"
	KeyPRLimit     = "pr_limit"
	KeyPRSource    = "pr_source"
	KeyPRInputFile = "pr_input_file"
	KeyFetchTries  = "fetch_attempts"

	KeyOutputDir  = "output_dir"
	KeyReportFile = "report_file"
	KeyChartFile  = "chart_file"

	KeyPostgresURL   = "postgres_url"
	KeyDBDebug       = "db_debug"
	KeyMigrationsDir = "db_migrations_dir"
	KeyDBAutoMigrate = "db_auto_migrate"

	KeySummaryEnabled = "summary_enabled"
	KeySummaryModel   = "summary_model"
	KeyOllamaURL      = "ollama_url"
	KeySummaryBudget  = "summary_token_budget"
	KeyLLMCallTimeout = "llm_call_timeout"

	KeyManifestPath     = "manifest_path"
	KeySourceDir        = "source_dir"
	KeySourceExt        = "source_ext"
	KeyImportAlias      = "import_alias"
	KeyProjectName      = "project_name"
	KeyPackageGraphFile = "package_graph_file"
	KeySourceGraphFile  = "source_graph_file"
)
